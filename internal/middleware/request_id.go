package middleware

import (
	"expense-tracker/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	TraceIDHeader     = "X-Trace-ID"
	TraceIDContextKey = "trace_id"

	maxTraceIDLength = 128
)

// RequestID tags every request with a trace id: the caller's X-Trace-ID when it
// is usable, otherwise a new UUID. The id is echoed in the response header and
// stored on both the echo context and the request context, where the audit
// logger picks it up as correlation_id.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			traceID := req.Header.Get(TraceIDHeader)
			if !validTraceID(traceID) {
				traceID = uuid.NewString()
			}

			c.Set(TraceIDContextKey, traceID)
			c.SetRequest(req.WithContext(services.WithTraceID(req.Context(), traceID)))
			c.Response().Header().Set(TraceIDHeader, traceID)

			return next(c)
		}
	}
}

// GetTraceID returns the trace id set by RequestID, or ""
func GetTraceID(c echo.Context) string {
	traceID, _ := c.Get(TraceIDContextKey).(string)
	return traceID
}

// validTraceID accepts short printable ASCII ids so client values cannot
// inject control characters into logs or headers
func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
