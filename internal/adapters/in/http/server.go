package http

import (
	"errors"
	"net/http"
	"time"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/application/usecases/queries"
	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/generated/servers"
	"consolidation/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

var _ servers.ServerInterface = (*Server)(nil)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateBatch          commands.CreateBatchCommandHandler
	AddOrdersToBatch     commands.AddOrdersToBatchCommandHandler
	RemoveOrderFromBatch commands.RemoveOrderFromBatchCommandHandler
	ChangeBatchStatus    commands.ChangeBatchStatusCommandHandler
	AutoBatchOrders      commands.AutoBatchOrdersCommandHandler
	RegisterOrder        commands.RegisterOrderCommandHandler
	ChangeOrderStatus    commands.ChangeOrderStatusCommandHandler

	GetBatch        queries.GetBatchQueryHandler
	ListBatches     queries.ListBatchesQueryHandler
	UnbatchedOrders queries.GetUnbatchedOrdersQueryHandler
	Destinations    queries.GetDestinationsWithUnbatchedOrdersQueryHandler
}

// Server implements servers.ServerInterface on top of the command and query
// handlers. Errors are returned to echo and rendered by NewErrorHandler.
type Server struct {
	h Handlers
}

func NewServer(h Handlers) *Server {
	return &Server{h: h}
}

// CreateBatch handles POST /api/v1/batches. The origin comes from the body,
// falling back to the caller's office header.
func (s *Server) CreateBatch(ctx echo.Context, params servers.CreateBatchParams) error {
	var body servers.CreateBatchJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	originParam := body.OriginOfficeId
	if originParam == nil {
		originParam = params.XOfficeID
	}
	if originParam == nil {
		return errs.NewValueIsRequiredError("originOfficeId")
	}
	origin, err := toKernelUUID("originOfficeId", *originParam)
	if err != nil {
		return err
	}
	destination, err := toKernelUUID("destinationOfficeId", body.DestinationOfficeId)
	if err != nil {
		return err
	}
	var orderIDs []kernel.UUID
	if body.OrderIds != nil {
		if orderIDs, err = toKernelUUIDs("orderIds", *body.OrderIds); err != nil {
			return err
		}
	}

	cmd, err := commands.NewCreateBatchCommand(origin, destination, body.MaxWeightKg, orderIDs)
	if err != nil {
		return err
	}
	b, err := s.h.CreateBatch.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, batchResponse(b))
}

// AddOrdersToBatch handles POST /api/v1/batches/{batchId}/orders.
func (s *Server) AddOrdersToBatch(ctx echo.Context, batchID servers.BatchIdPath) error {
	var body servers.AddOrdersToBatchJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	id, err := toKernelUUID("batchId", batchID)
	if err != nil {
		return err
	}
	orderIDs, err := toKernelUUIDs("orderIds", body.OrderIds)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAddOrdersToBatchCommand(id, orderIDs)
	if err != nil {
		return err
	}
	b, err := s.h.AddOrdersToBatch.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, batchResponse(b))
}

// RemoveOrderFromBatch handles DELETE /api/v1/batches/{batchId}/orders/{orderId}.
func (s *Server) RemoveOrderFromBatch(ctx echo.Context, batchID servers.BatchIdPath, orderID servers.OrderIdPath) error {
	bID, err := toKernelUUID("batchId", batchID)
	if err != nil {
		return err
	}
	oID, err := toKernelUUID("orderId", orderID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRemoveOrderFromBatchCommand(bID, oID)
	if err != nil {
		return err
	}
	b, err := s.h.RemoveOrderFromBatch.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, batchResponse(b))
}

// ChangeBatchStatus handles POST /api/v1/batches/{batchId}/{action}.
func (s *Server) ChangeBatchStatus(
	ctx echo.Context,
	batchID servers.BatchIdPath,
	action servers.ChangeBatchStatusParamsAction,
) error {
	id, err := toKernelUUID("batchId", batchID)
	if err != nil {
		return err
	}
	parsed, err := commands.ParseBatchAction(string(action))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	cmd, err := commands.NewChangeBatchStatusCommand(id, parsed)
	if err != nil {
		return err
	}
	b, err := s.h.ChangeBatchStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, batchResponse(b))
}

// AutoBatchOrders handles POST /api/v1/batches/auto. When some destinations
// committed and others failed, the committed part is returned with the
// failures listed.
func (s *Server) AutoBatchOrders(ctx echo.Context, params servers.AutoBatchOrdersParams) error {
	var body servers.AutoBatchOrdersJSONRequestBody
	if ctx.Request().ContentLength != 0 {
		if err := ctx.Bind(&body); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
		}
	}

	origin, err := toKernelUUIDPtr("X-Office-ID", params.XOfficeID)
	if err != nil {
		return err
	}
	destination, err := toKernelUUIDPtr("destinationOfficeId", body.DestinationOfficeId)
	if err != nil {
		return err
	}
	var maxWeightKg float64
	if body.MaxWeightPerBatch != nil {
		if maxWeightKg = *body.MaxWeightPerBatch; maxWeightKg == 0 {
			return errs.NewValueIsInvalidError("maxWeightPerBatch")
		}
	}

	cmd, err := commands.NewAutoBatchOrdersCommand(maxWeightKg, origin, destination)
	if err != nil {
		return err
	}
	result, err := s.h.AutoBatchOrders.Handle(ctx.Request().Context(), cmd)
	if err != nil && result.BatchesCreated == 0 {
		return err
	}

	resp := servers.AutoBatchResult{
		BatchesCreated:  result.BatchesCreated,
		OrdersProcessed: result.OrdersProcessed,
		OversizeOrders:  result.OversizeOrders,
		Batches:         make([]servers.Batch, len(result.Batches)),
	}
	for i, b := range result.Batches {
		resp.Batches[i] = batchResponse(b)
	}
	if err != nil {
		failures := failureMessages(err)
		resp.Failures = &failures
	}

	return ctx.JSON(http.StatusOK, resp)
}

func failureMessages(err error) []string {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return []string{err.Error()}
	}
	var out []string
	for _, e := range joined.Unwrap() {
		out = append(out, e.Error())
	}
	return out
}

// GetBatch handles GET /api/v1/batches/{batchId}.
func (s *Server) GetBatch(ctx echo.Context, batchID servers.BatchIdPath, params servers.GetBatchParams) error {
	id, err := toKernelUUID("batchId", batchID)
	if err != nil {
		return err
	}
	includeOrders := params.IncludeOrders != nil && *params.IncludeOrders

	query, err := queries.NewGetBatchByIDQuery(id, includeOrders)
	if err != nil {
		return err
	}
	view, err := s.h.GetBatch.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, batchViewResponse(view, includeOrders))
}

// GetBatchByCode handles GET /api/v1/batches/code/{code}.
func (s *Server) GetBatchByCode(ctx echo.Context, code string, params servers.GetBatchByCodeParams) error {
	includeOrders := params.IncludeOrders != nil && *params.IncludeOrders

	query, err := queries.NewGetBatchByCodeQuery(code, includeOrders)
	if err != nil {
		return err
	}
	view, err := s.h.GetBatch.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, batchViewResponse(view, includeOrders))
}

// ListOutgoingBatches handles GET /api/v1/batches.
func (s *Server) ListOutgoingBatches(ctx echo.Context, params servers.ListOutgoingBatchesParams) error {
	return s.listBatches(ctx, queries.Outgoing, params.XOfficeID, params.Status, params.Page, params.Size)
}

// ListIncomingBatches handles GET /api/v1/batches/incoming.
func (s *Server) ListIncomingBatches(ctx echo.Context, params servers.ListIncomingBatchesParams) error {
	return s.listBatches(ctx, queries.Incoming, params.XOfficeID, params.Status, params.Page, params.Size)
}

func (s *Server) listBatches(
	ctx echo.Context,
	direction queries.Direction,
	office servers.OfficeHeader,
	status *servers.StatusQuery,
	page *servers.PageQuery,
	size *servers.SizeQuery,
) error {
	officeID, err := toKernelUUID("X-Office-ID", office)
	if err != nil {
		return err
	}
	var statusFilter *batch.Status
	if status != nil {
		parsed, parseErr := batch.ParseStatus(string(*status))
		if parseErr != nil {
			return parseErr
		}
		statusFilter = &parsed
	}
	var pageNum, pageSize int
	if page != nil {
		pageNum = *page
	}
	if size != nil {
		pageSize = *size
	}

	query, err := queries.NewListBatchesQuery(direction, officeID, statusFilter, pageNum, pageSize, false)
	if err != nil {
		return err
	}
	result, err := s.h.ListBatches.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, batchPageResponse(result))
}

// GetDestinationsWithUnbatchedOrders handles GET /api/v1/destinations/unbatched.
func (s *Server) GetDestinationsWithUnbatchedOrders(
	ctx echo.Context,
	params servers.GetDestinationsWithUnbatchedOrdersParams,
) error {
	origin, err := toKernelUUIDPtr("X-Office-ID", params.XOfficeID)
	if err != nil {
		return err
	}

	query, err := queries.NewGetDestinationsWithUnbatchedOrdersQuery(origin)
	if err != nil {
		return err
	}
	summaries, err := s.h.Destinations.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]servers.DestinationSummary, len(summaries))
	for i, d := range summaries {
		response[i] = destinationResponse(d)
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetUnbatchedOrders handles GET /api/v1/orders/unbatched.
func (s *Server) GetUnbatchedOrders(ctx echo.Context, params servers.GetUnbatchedOrdersParams) error {
	origin, err := toKernelUUIDPtr("X-Office-ID", params.XOfficeID)
	if err != nil {
		return err
	}
	destination, err := toKernelUUIDPtr("destinationOfficeId", params.DestinationOfficeId)
	if err != nil {
		return err
	}

	query, err := queries.NewGetUnbatchedOrdersQuery(origin, destination)
	if err != nil {
		return err
	}
	orders, err := s.h.UnbatchedOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]servers.Order, len(orders))
	for i, o := range orders {
		response[i] = orderViewResponse(o)
	}

	return ctx.JSON(http.StatusOK, response)
}

// RegisterOrder handles POST /api/v1/orders.
func (s *Server) RegisterOrder(ctx echo.Context) error {
	var body servers.RegisterOrderJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	id, err := toKernelUUID("id", body.Id)
	if err != nil {
		return err
	}
	origin, err := toKernelUUID("originOfficeId", body.OriginOfficeId)
	if err != nil {
		return err
	}
	destination, err := toKernelUUID("destinationOfficeId", body.DestinationOfficeId)
	if err != nil {
		return err
	}
	var createdAt time.Time
	if body.CreatedAt != nil {
		createdAt = *body.CreatedAt
	}

	cmd, err := commands.NewRegisterOrderCommand(id, body.TrackingNumber, body.WeightKg, origin, destination, createdAt)
	if err != nil {
		return err
	}
	o, err := s.h.RegisterOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, orderResponse(o))
}

// ChangeOrderStatus handles PUT /api/v1/orders/{orderId}/status.
func (s *Server) ChangeOrderStatus(ctx echo.Context, orderID servers.OrderIdPath) error {
	var body servers.ChangeOrderStatusJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	id, err := toKernelUUID("orderId", orderID)
	if err != nil {
		return err
	}
	status, err := order.ParseStatus(string(body.Status))
	if err != nil {
		return err
	}

	cmd, err := commands.NewChangeOrderStatusCommand(id, status)
	if err != nil {
		return err
	}
	o, err := s.h.ChangeOrderStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, orderResponse(o))
}
