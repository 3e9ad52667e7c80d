package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/services"
	"consolidation/internal/core/ports"
	"consolidation/internal/generated/servers"
	"consolidation/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// RetryAfterSeconds is sent with 503 responses for busy destinations.
const RetryAfterSeconds = 1

type conflict struct {
	err  error
	name string
}

// Order matters: ErrOriginMismatch wraps ErrDestinationMismatch, and a
// missing order is reported as both not-in-batch and not-found.
var conflicts = []conflict{
	{batch.ErrCapacityExceeded, "CapacityExceeded"},
	{batch.ErrOriginMismatch, "OriginMismatch"},
	{batch.ErrDestinationMismatch, "DestinationMismatch"},
	{batch.ErrBatchNotOpen, "BatchNotOpen"},
	{batch.ErrInvalidTransition, "InvalidTransition"},
	{batch.ErrOrderAlreadyBatched, "OrderAlreadyBatched"},
	{batch.ErrOrderNotEligible, "OrderNotEligible"},
	{batch.ErrOrderNotInBatch, "OrderNotInBatch"},
	{commands.ErrOrderConflict, "OrderConflict"},
}

// problem maps an error to the response status and body.
func problem(err error) (int, servers.Error) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
		return httpErr.Code, servers.Error{Code: httpErr.Code, Error: errorName(httpErr.Code), Message: message}
	}

	status, name := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	return status, servers.Error{Code: status, Error: name, Message: message}
}

func classify(err error) (int, string) {
	if errors.Is(err, ports.ErrBusy) {
		return http.StatusServiceUnavailable, "Busy"
	}
	if errors.Is(err, batch.ErrInvariantViolated) {
		return http.StatusInternalServerError, "InternalError"
	}
	for _, c := range conflicts {
		if errors.Is(err, c.err) {
			return http.StatusConflict, c.name
		}
	}

	switch {
	case errors.Is(err, commands.ErrInvalidDestination):
		return http.StatusBadRequest, "InvalidDestination"
	case errors.Is(err, services.ErrNothingToPlan),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest, "ValidationError"
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, "NotFound"
	default:
		return http.StatusInternalServerError, "InternalError"
	}
}

func errorName(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "ValidationError"
	case http.StatusNotFound:
		return "NotFound"
	case http.StatusMethodNotAllowed:
		return "MethodNotAllowed"
	case http.StatusServiceUnavailable:
		return "Busy"
	default:
		if code >= http.StatusInternalServerError {
			return "InternalError"
		}
		return "Error"
	}
}

// NewErrorHandler renders every handler error as servers.Error.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		status, body := problem(err)
		switch {
		case status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable:
			logger.Error("request failed",
				"method", ctx.Request().Method,
				"path", ctx.Path(),
				"error", err,
			)
		case status == http.StatusServiceUnavailable:
			ctx.Response().Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
		}

		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(status)
		} else {
			err = ctx.JSON(status, body)
		}
		if err != nil {
			logger.Error("failed to write error response", "error", err)
		}
	}
}
