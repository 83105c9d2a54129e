package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"expense-tracker/internal/errors"
	"expense-tracker/internal/handlers"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var panicsRecoveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_panics_recovered_total",
		Help: "Total number of handler panics recovered, by route",
	},
	[]string{"endpoint"},
)

// PanicRecovery turns a handler panic into a SYSTEM_001 answer.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				recoverPanic(c, r)
			}()

			return next(c)
		}
	}
}

func recoverPanic(c echo.Context, r interface{}) {
	traceID := traceIDOrUnknown(c)
	req := c.Request()

	attrs := []any{
		"trace_id", traceID,
		"panic", fmt.Sprint(r),
		"method", req.Method,
		"path", req.URL.Path,
		"stack_trace", string(debug.Stack()),
	}
	if userID := c.Get(handlers.UserIDContextKey); userID != nil {
		attrs = append(attrs, "user_id", fmt.Sprint(userID))
	}
	slog.ErrorContext(req.Context(), "panic recovered", attrs...)
	panicsRecoveredTotal.WithLabelValues(c.Path()).Inc()

	// headers are already gone; nothing useful can be sent
	if c.Response().Committed {
		return
	}

	response := errors.NewSystemError(traceID)
	if err := c.JSON(response.Status(), response); err != nil {
		slog.Error("failed to send panic response", "trace_id", traceID, "error", err)
	}
}

func traceIDOrUnknown(c echo.Context) string {
	if traceID := GetTraceID(c); traceID != "" {
		return traceID
	}
	return "unknown"
}
