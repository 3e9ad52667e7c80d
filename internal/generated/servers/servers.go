// Package servers holds the HTTP contract of the consolidation API: wire
// types, the echo server interface and the parameter binding glue. It
// mirrors openapi.yaml in this directory.
package servers

import (
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Defines values for StatusQuery.
const (
	StatusQueryARRIVED     StatusQuery = "ARRIVED"
	StatusQueryCANCELLED   StatusQuery = "CANCELLED"
	StatusQueryDISTRIBUTED StatusQuery = "DISTRIBUTED"
	StatusQueryINTRANSIT   StatusQuery = "IN_TRANSIT"
	StatusQueryOPEN        StatusQuery = "OPEN"
	StatusQuerySEALED      StatusQuery = "SEALED"
)

// Defines values for ChangeBatchStatusParamsAction.
const (
	Arrive     ChangeBatchStatusParamsAction = "arrive"
	Cancel     ChangeBatchStatusParamsAction = "cancel"
	Dispatch   ChangeBatchStatusParamsAction = "dispatch"
	Distribute ChangeBatchStatusParamsAction = "distribute"
	Seal       ChangeBatchStatusParamsAction = "seal"
)

// Defines values for OrderStatusChangeStatus.
const (
	AtDestinationOffice OrderStatusChangeStatus = "AT_DESTINATION_OFFICE"
	Cancelled           OrderStatusChangeStatus = "CANCELLED"
	Created             OrderStatusChangeStatus = "CREATED"
	Delivered           OrderStatusChangeStatus = "DELIVERED"
	InTransit           OrderStatusChangeStatus = "IN_TRANSIT"
	PickedUp            OrderStatusChangeStatus = "PICKED_UP"
)

// AutoBatchRequest defines model for AutoBatchRequest.
type AutoBatchRequest struct {
	DestinationOfficeId *openapi_types.UUID `json:"destinationOfficeId,omitempty"`
	MaxWeightPerBatch   *float64            `json:"maxWeightPerBatch,omitempty"`
}

// AutoBatchResult defines model for AutoBatchResult.
type AutoBatchResult struct {
	Batches        []Batch `json:"batches"`
	BatchesCreated int     `json:"batchesCreated"`

	// Failures Destinations that failed while others were committed
	Failures        *[]string `json:"failures,omitempty"`
	OrdersProcessed int       `json:"ordersProcessed"`
	OversizeOrders  int       `json:"oversizeOrders"`
}

// Batch defines model for Batch.
type Batch struct {
	Code                string             `json:"code"`
	CreatedAt           time.Time          `json:"createdAt"`
	DestinationOfficeId openapi_types.UUID `json:"destinationOfficeId"`
	Id                  openapi_types.UUID `json:"id"`
	MaxWeightKg         float64            `json:"maxWeightKg"`
	OrderCount          int                `json:"orderCount"`
	Orders              *[]Order           `json:"orders,omitempty"`
	OriginOfficeId      openapi_types.UUID `json:"originOfficeId"`
	Status              string             `json:"status"`
	TotalWeightKg       float64            `json:"totalWeightKg"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}

// BatchPage defines model for BatchPage.
type BatchPage struct {
	Items      []Batch `json:"items"`
	Page       int     `json:"page"`
	Size       int     `json:"size"`
	TotalItems int64   `json:"totalItems"`
	TotalPages int     `json:"totalPages"`
}

// DestinationSummary defines model for DestinationSummary.
type DestinationSummary struct {
	OfficeId            openapi_types.UUID `json:"officeId"`
	OldestCreatedAt     *time.Time         `json:"oldestCreatedAt,omitempty"`
	OpenBatchCount      int                `json:"openBatchCount"`
	TotalWeightKg       float64            `json:"totalWeightKg"`
	UnbatchedOrderCount int                `json:"unbatchedOrderCount"`
}

// Error defines model for Error.
type Error struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewBatch defines model for NewBatch.
type NewBatch struct {
	DestinationOfficeId openapi_types.UUID    `json:"destinationOfficeId"`
	MaxWeightKg         float64               `json:"maxWeightKg"`
	OrderIds            *[]openapi_types.UUID `json:"orderIds,omitempty"`
	OriginOfficeId      *openapi_types.UUID   `json:"originOfficeId,omitempty"`
}

// NewOrder defines model for NewOrder.
type NewOrder struct {
	CreatedAt           *time.Time         `json:"createdAt,omitempty"`
	DestinationOfficeId openapi_types.UUID `json:"destinationOfficeId"`
	Id                  openapi_types.UUID `json:"id"`
	OriginOfficeId      openapi_types.UUID `json:"originOfficeId"`
	TrackingNumber      string             `json:"trackingNumber"`
	WeightKg            float64            `json:"weightKg"`
}

// Order defines model for Order.
type Order struct {
	BatchId             *openapi_types.UUID `json:"batchId,omitempty"`
	CreatedAt           *time.Time          `json:"createdAt,omitempty"`
	DestinationOfficeId openapi_types.UUID  `json:"destinationOfficeId"`
	Id                  openapi_types.UUID  `json:"id"`
	OriginOfficeId      openapi_types.UUID  `json:"originOfficeId"`
	Status              string              `json:"status"`
	TrackingNumber      string              `json:"trackingNumber"`
	WeightKg            float64             `json:"weightKg"`
}

// OrderIds defines model for OrderIds.
type OrderIds struct {
	OrderIds []openapi_types.UUID `json:"orderIds"`
}

// OrderStatusChange defines model for OrderStatusChange.
type OrderStatusChange struct {
	Status OrderStatusChangeStatus `json:"status"`
}

// OrderStatusChangeStatus defines model for OrderStatusChange.Status.
type OrderStatusChangeStatus string

// BatchIdPath defines model for BatchIdPath.
type BatchIdPath = openapi_types.UUID

// IncludeOrdersQuery defines model for IncludeOrdersQuery.
type IncludeOrdersQuery = bool

// OfficeHeader defines model for OfficeHeader.
type OfficeHeader = openapi_types.UUID

// OptionalOfficeHeader defines model for OptionalOfficeHeader.
type OptionalOfficeHeader = openapi_types.UUID

// OrderIdPath defines model for OrderIdPath.
type OrderIdPath = openapi_types.UUID

// PageQuery defines model for PageQuery.
type PageQuery = int

// SizeQuery defines model for SizeQuery.
type SizeQuery = int

// StatusQuery defines model for StatusQuery.
type StatusQuery string

// ListOutgoingBatchesParams defines parameters for ListOutgoingBatches.
type ListOutgoingBatchesParams struct {
	Status    *StatusQuery `form:"status,omitempty" json:"status,omitempty"`
	Page      *PageQuery   `form:"page,omitempty" json:"page,omitempty"`
	Size      *SizeQuery   `form:"size,omitempty" json:"size,omitempty"`
	XOfficeID OfficeHeader `json:"X-Office-ID"`
}

// CreateBatchParams defines parameters for CreateBatch.
type CreateBatchParams struct {
	XOfficeID *OptionalOfficeHeader `json:"X-Office-ID,omitempty"`
}

// AutoBatchOrdersParams defines parameters for AutoBatchOrders.
type AutoBatchOrdersParams struct {
	XOfficeID *OptionalOfficeHeader `json:"X-Office-ID,omitempty"`
}

// GetBatchByCodeParams defines parameters for GetBatchByCode.
type GetBatchByCodeParams struct {
	IncludeOrders *IncludeOrdersQuery `form:"includeOrders,omitempty" json:"includeOrders,omitempty"`
}

// ListIncomingBatchesParams defines parameters for ListIncomingBatches.
type ListIncomingBatchesParams struct {
	Status    *StatusQuery `form:"status,omitempty" json:"status,omitempty"`
	Page      *PageQuery   `form:"page,omitempty" json:"page,omitempty"`
	Size      *SizeQuery   `form:"size,omitempty" json:"size,omitempty"`
	XOfficeID OfficeHeader `json:"X-Office-ID"`
}

// GetBatchParams defines parameters for GetBatch.
type GetBatchParams struct {
	IncludeOrders *IncludeOrdersQuery `form:"includeOrders,omitempty" json:"includeOrders,omitempty"`
}

// ChangeBatchStatusParamsAction defines parameters for ChangeBatchStatus.
type ChangeBatchStatusParamsAction string

// GetDestinationsWithUnbatchedOrdersParams defines parameters for GetDestinationsWithUnbatchedOrders.
type GetDestinationsWithUnbatchedOrdersParams struct {
	XOfficeID *OptionalOfficeHeader `json:"X-Office-ID,omitempty"`
}

// GetUnbatchedOrdersParams defines parameters for GetUnbatchedOrders.
type GetUnbatchedOrdersParams struct {
	DestinationOfficeId *openapi_types.UUID   `form:"destinationOfficeId,omitempty" json:"destinationOfficeId,omitempty"`
	XOfficeID           *OptionalOfficeHeader `json:"X-Office-ID,omitempty"`
}

// CreateBatchJSONRequestBody defines body for CreateBatch for application/json ContentType.
type CreateBatchJSONRequestBody = NewBatch

// AutoBatchOrdersJSONRequestBody defines body for AutoBatchOrders for application/json ContentType.
type AutoBatchOrdersJSONRequestBody = AutoBatchRequest

// AddOrdersToBatchJSONRequestBody defines body for AddOrdersToBatch for application/json ContentType.
type AddOrdersToBatchJSONRequestBody = OrderIds

// RegisterOrderJSONRequestBody defines body for RegisterOrder for application/json ContentType.
type RegisterOrderJSONRequestBody = NewOrder

// ChangeOrderStatusJSONRequestBody defines body for ChangeOrderStatus for application/json ContentType.
type ChangeOrderStatusJSONRequestBody = OrderStatusChange

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Batches leaving the caller's office, newest first
	// (GET /batches)
	ListOutgoingBatches(ctx echo.Context, params ListOutgoingBatchesParams) error
	// Create an OPEN batch, optionally with initial orders
	// (POST /batches)
	CreateBatch(ctx echo.Context, params CreateBatchParams) error
	// Consolidate the unbatched pool into new OPEN batches
	// (POST /batches/auto)
	AutoBatchOrders(ctx echo.Context, params AutoBatchOrdersParams) error

	// (GET /batches/code/{code})
	GetBatchByCode(ctx echo.Context, code string, params GetBatchByCodeParams) error
	// Batches travelling to the caller's office, newest first
	// (GET /batches/incoming)
	ListIncomingBatches(ctx echo.Context, params ListIncomingBatchesParams) error

	// (GET /batches/{batchId})
	GetBatch(ctx echo.Context, batchId BatchIdPath, params GetBatchParams) error

	// (POST /batches/{batchId}/orders)
	AddOrdersToBatch(ctx echo.Context, batchId BatchIdPath) error

	// (DELETE /batches/{batchId}/orders/{orderId})
	RemoveOrderFromBatch(ctx echo.Context, batchId BatchIdPath, orderId OrderIdPath) error
	// Apply a lifecycle action
	// (POST /batches/{batchId}/{action})
	ChangeBatchStatus(ctx echo.Context, batchId BatchIdPath, action ChangeBatchStatusParamsAction) error

	// (GET /destinations/unbatched)
	GetDestinationsWithUnbatchedOrders(ctx echo.Context, params GetDestinationsWithUnbatchedOrdersParams) error
	// Register an order from the order subsystem; repeats are idempotent
	// (POST /orders)
	RegisterOrder(ctx echo.Context) error

	// (GET /orders/unbatched)
	GetUnbatchedOrders(ctx echo.Context, params GetUnbatchedOrdersParams) error

	// (PUT /orders/{orderId}/status)
	ChangeOrderStatus(ctx echo.Context, orderId OrderIdPath) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// ListOutgoingBatches converts echo context to params.
func (w *ServerInterfaceWrapper) ListOutgoingBatches(ctx echo.Context) error {
	var params ListOutgoingBatchesParams
	if err := bindListQuery(ctx, &params.Status, &params.Page, &params.Size); err != nil {
		return err
	}
	officeID, err := requiredOfficeHeader(ctx)
	if err != nil {
		return err
	}
	params.XOfficeID = officeID

	return w.Handler.ListOutgoingBatches(ctx, params)
}

// CreateBatch converts echo context to params.
func (w *ServerInterfaceWrapper) CreateBatch(ctx echo.Context) error {
	var params CreateBatchParams
	officeID, err := optionalOfficeHeader(ctx)
	if err != nil {
		return err
	}
	params.XOfficeID = officeID

	return w.Handler.CreateBatch(ctx, params)
}

// AutoBatchOrders converts echo context to params.
func (w *ServerInterfaceWrapper) AutoBatchOrders(ctx echo.Context) error {
	var params AutoBatchOrdersParams
	officeID, err := optionalOfficeHeader(ctx)
	if err != nil {
		return err
	}
	params.XOfficeID = officeID

	return w.Handler.AutoBatchOrders(ctx, params)
}

// GetBatchByCode converts echo context to params.
func (w *ServerInterfaceWrapper) GetBatchByCode(ctx echo.Context) error {
	var code string
	err := runtime.BindStyledParameterWithLocation("simple", false, "code", runtime.ParamLocationPath, ctx.Param("code"), &code)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter code: %s", err))
	}

	var params GetBatchByCodeParams
	err = runtime.BindQueryParameter("form", true, false, "includeOrders", ctx.QueryParams(), &params.IncludeOrders)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter includeOrders: %s", err))
	}

	return w.Handler.GetBatchByCode(ctx, code, params)
}

// ListIncomingBatches converts echo context to params.
func (w *ServerInterfaceWrapper) ListIncomingBatches(ctx echo.Context) error {
	var params ListIncomingBatchesParams
	if err := bindListQuery(ctx, &params.Status, &params.Page, &params.Size); err != nil {
		return err
	}
	officeID, err := requiredOfficeHeader(ctx)
	if err != nil {
		return err
	}
	params.XOfficeID = officeID

	return w.Handler.ListIncomingBatches(ctx, params)
}

// GetBatch converts echo context to params.
func (w *ServerInterfaceWrapper) GetBatch(ctx echo.Context) error {
	batchId, err := bindUUIDPath(ctx, "batchId")
	if err != nil {
		return err
	}

	var params GetBatchParams
	err = runtime.BindQueryParameter("form", true, false, "includeOrders", ctx.QueryParams(), &params.IncludeOrders)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter includeOrders: %s", err))
	}

	return w.Handler.GetBatch(ctx, batchId, params)
}

// AddOrdersToBatch converts echo context to params.
func (w *ServerInterfaceWrapper) AddOrdersToBatch(ctx echo.Context) error {
	batchId, err := bindUUIDPath(ctx, "batchId")
	if err != nil {
		return err
	}

	return w.Handler.AddOrdersToBatch(ctx, batchId)
}

// RemoveOrderFromBatch converts echo context to params.
func (w *ServerInterfaceWrapper) RemoveOrderFromBatch(ctx echo.Context) error {
	batchId, err := bindUUIDPath(ctx, "batchId")
	if err != nil {
		return err
	}
	orderId, err := bindUUIDPath(ctx, "orderId")
	if err != nil {
		return err
	}

	return w.Handler.RemoveOrderFromBatch(ctx, batchId, orderId)
}

// ChangeBatchStatus converts echo context to params.
func (w *ServerInterfaceWrapper) ChangeBatchStatus(ctx echo.Context) error {
	batchId, err := bindUUIDPath(ctx, "batchId")
	if err != nil {
		return err
	}

	var action ChangeBatchStatusParamsAction
	err = runtime.BindStyledParameterWithLocation("simple", false, "action", runtime.ParamLocationPath, ctx.Param("action"), &action)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter action: %s", err))
	}

	return w.Handler.ChangeBatchStatus(ctx, batchId, action)
}

// GetDestinationsWithUnbatchedOrders converts echo context to params.
func (w *ServerInterfaceWrapper) GetDestinationsWithUnbatchedOrders(ctx echo.Context) error {
	var params GetDestinationsWithUnbatchedOrdersParams
	officeID, err := optionalOfficeHeader(ctx)
	if err != nil {
		return err
	}
	params.XOfficeID = officeID

	return w.Handler.GetDestinationsWithUnbatchedOrders(ctx, params)
}

// RegisterOrder converts echo context to params.
func (w *ServerInterfaceWrapper) RegisterOrder(ctx echo.Context) error {
	return w.Handler.RegisterOrder(ctx)
}

// GetUnbatchedOrders converts echo context to params.
func (w *ServerInterfaceWrapper) GetUnbatchedOrders(ctx echo.Context) error {
	var params GetUnbatchedOrdersParams
	err := runtime.BindQueryParameter("form", true, false, "destinationOfficeId", ctx.QueryParams(), &params.DestinationOfficeId)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter destinationOfficeId: %s", err))
	}
	officeID, err := optionalOfficeHeader(ctx)
	if err != nil {
		return err
	}
	params.XOfficeID = officeID

	return w.Handler.GetUnbatchedOrders(ctx, params)
}

// ChangeOrderStatus converts echo context to params.
func (w *ServerInterfaceWrapper) ChangeOrderStatus(ctx echo.Context) error {
	orderId, err := bindUUIDPath(ctx, "orderId")
	if err != nil {
		return err
	}

	return w.Handler.ChangeOrderStatus(ctx, orderId)
}

func bindUUIDPath(ctx echo.Context, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationPath, ctx.Param(name), &id)
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return id, nil
}

func bindListQuery(ctx echo.Context, status **StatusQuery, page **PageQuery, size **SizeQuery) error {
	if err := runtime.BindQueryParameter("form", true, false, "status", ctx.QueryParams(), status); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter status: %s", err))
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", ctx.QueryParams(), page); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter page: %s", err))
	}
	if err := runtime.BindQueryParameter("form", true, false, "size", ctx.QueryParams(), size); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter size: %s", err))
	}
	return nil
}

func officeHeader(ctx echo.Context) (*openapi_types.UUID, error) {
	valueList, found := ctx.Request().Header[http.CanonicalHeaderKey("X-Office-ID")]
	if !found {
		return nil, nil
	}
	if n := len(valueList); n != 1 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Expected one value for X-Office-ID, got %d", n))
	}

	var officeID openapi_types.UUID
	err := runtime.BindStyledParameterWithLocation("simple", false, "X-Office-ID", runtime.ParamLocationHeader, valueList[0], &officeID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter X-Office-ID: %s", err))
	}
	return &officeID, nil
}

func requiredOfficeHeader(ctx echo.Context) (OfficeHeader, error) {
	officeID, err := officeHeader(ctx)
	if err != nil {
		return OfficeHeader{}, err
	}
	if officeID == nil {
		return OfficeHeader{}, echo.NewHTTPError(http.StatusBadRequest, "Header parameter X-Office-ID is required, but not found")
	}
	return *officeID, nil
}

func optionalOfficeHeader(ctx echo.Context) (*OptionalOfficeHeader, error) {
	return officeHeader(ctx)
}

// EchoRouter is the subset of echo.Echo and echo.Group used for registration.
type EchoRouter interface {
	CONNECT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	HEAD(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	OPTIONS(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	TRACE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers handlers, and prepends BaseURL to the
// paths, so that the paths can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.GET(baseURL+"/batches", wrapper.ListOutgoingBatches)
	router.POST(baseURL+"/batches", wrapper.CreateBatch)
	router.POST(baseURL+"/batches/auto", wrapper.AutoBatchOrders)
	router.GET(baseURL+"/batches/code/:code", wrapper.GetBatchByCode)
	router.GET(baseURL+"/batches/incoming", wrapper.ListIncomingBatches)
	router.GET(baseURL+"/batches/:batchId", wrapper.GetBatch)
	router.POST(baseURL+"/batches/:batchId/orders", wrapper.AddOrdersToBatch)
	router.DELETE(baseURL+"/batches/:batchId/orders/:orderId", wrapper.RemoveOrderFromBatch)
	router.POST(baseURL+"/batches/:batchId/:action", wrapper.ChangeBatchStatus)
	router.GET(baseURL+"/destinations/unbatched", wrapper.GetDestinationsWithUnbatchedOrders)
	router.POST(baseURL+"/orders", wrapper.RegisterOrder)
	router.GET(baseURL+"/orders/unbatched", wrapper.GetUnbatchedOrders)
	router.PUT(baseURL+"/orders/:orderId/status", wrapper.ChangeOrderStatus)
}

//go:embed openapi.yaml
var rawSpec []byte

// RawSpec returns the OpenAPI document as written.
func RawSpec() []byte {
	out := make([]byte, len(rawSpec))
	copy(out, rawSpec)
	return out
}

// GetSwagger returns the parsed OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	swagger, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("error loading Swagger: %w", err)
	}
	return swagger, nil
}
