package handlers

import (
	"log/slog"

	"expense-tracker/internal/errors"

	"github.com/labstack/echo/v4"
)

// Handlers answer failures only through SendError (4xx with a known code) and
// SendSystemError (500, cause logged, never sent). Both write the response and
// return nil, so callers can `return SendError(...)`.

// TraceIDContextKey is where RequestID stores the trace id on the echo context
const TraceIDContextKey = "trace_id"

// SuccessResponse wraps payloads that carry a message alongside data
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty" swaggertype:"object"`
	Message string      `json:"message,omitempty"`
	Meta    interface{} `json:"meta,omitempty" swaggertype:"object"`
}

type ErrorResponse = errors.ErrorResponse

func getTraceID(c echo.Context) string {
	traceID, _ := c.Get(TraceIDContextKey).(string)
	return traceID
}

// SendError answers with the status and envelope registered for code.
// An unregistered code is logged and answered as SYSTEM_005.
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	if !code.Known() {
		slog.WarnContext(c.Request().Context(), "unregistered error code", "code", string(code), "trace_id", getTraceID(c))
		code, opts = errors.SystemUnexpectedError, nil
	}
	response := errors.NewErrorResponse(code, getTraceID(c), opts...)
	return c.JSON(response.Status(), response)
}

// SendSystemError logs err and answers SYSTEM_001
func SendSystemError(c echo.Context, err error) error {
	traceID := getTraceID(c)
	req := c.Request()

	slog.ErrorContext(req.Context(), "request failed",
		"trace_id", traceID,
		"method", req.Method,
		"path", req.URL.Path,
		"error", err,
	)

	response := errors.NewSystemError(traceID)
	return c.JSON(response.Status(), response)
}
