package middleware

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"expense-tracker/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var apiErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "Total number of API errors by code, endpoint, and status",
	},
	[]string{"code", "endpoint", "status"},
)

// codeForStatus names the envelope code for errors raised by echo itself
// (unknown route, body too large, bind failures)
var codeForStatus = map[int]errors.ErrorCode{
	http.StatusBadRequest:            errors.ValidationGeneral,
	http.StatusUnauthorized:          errors.AuthMissingToken,
	http.StatusForbidden:             errors.AuthInsufficientPermission,
	http.StatusNotFound:              errors.TransactionNotFound,
	http.StatusMethodNotAllowed:      errors.ValidationGeneral,
	http.StatusRequestEntityTooLarge: errors.TransactionImportTooLarge,
	http.StatusUnprocessableEntity:   errors.ValidationGeneral,
	http.StatusTooManyRequests:       errors.SystemRateLimitExceeded,
	http.StatusInternalServerError:   errors.SystemInternalError,
	http.StatusServiceUnavailable:    errors.SystemServiceUnavailable,
}

// CustomHTTPErrorHandler answers every error a handler returns with the
// standard envelope. Validation failures list one "field: problem" line per
// failed rule, in struct order.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	traceID := traceIDOrUnknown(c)
	response, status := buildErrorResponse(err, traceID)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(c.Request().Context(), level, "HTTP error occurred",
		"trace_id", traceID,
		"error_code", response.Error.Code,
		"status", status,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"error", err.Error(),
	)
	apiErrorsTotal.WithLabelValues(response.Error.Code, c.Path(), strconv.Itoa(status)).Inc()

	if sendErr := c.JSON(status, response); sendErr != nil {
		slog.Error("failed to send error response", "trace_id", traceID, "error", sendErr)
	}
}

func buildErrorResponse(err error, traceID string) (*errors.ErrorResponse, int) {
	var echoErr *echo.HTTPError
	if stderrors.As(err, &echoErr) {
		response := errors.NewErrorResponse(mapHTTPStatusToErrorCode(echoErr.Code), traceID,
			errors.WithMessage(fmt.Sprint(echoErr.Message)))
		return response, echoErr.Code
	}

	var validationErrs validator.ValidationErrors
	if stderrors.As(err, &validationErrs) {
		details := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, errors.FieldDetail(fieldPath(fe), formatValidationError(fe)))
		}
		return errors.NewValidationError(details, traceID), http.StatusBadRequest
	}

	response := errors.NewSystemError(traceID)
	return response, response.Status()
}

func mapHTTPStatusToErrorCode(status int) errors.ErrorCode {
	if code, ok := codeForStatus[status]; ok {
		return code
	}
	return errors.SystemUnexpectedError
}

// fieldPath drops the root struct name from the namespace, giving e.g. "transactions[2].amount"
func fieldPath(fe validator.FieldError) string {
	namespace := fe.Namespace()
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return fe.Field()
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return bound("at least", fe)
	case "max":
		return bound("at most", fe)
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "numeric":
		return "must be a valid number"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "dive":
		return "contains an invalid element"
	case "money_amount":
		return "must be a positive amount with at most 2 decimal places"
	case "currency_code":
		return "must be a 3-letter currency code"
	case "transaction_source":
		return "must be one of: MANUAL, GMAIL, WHATSAPP, IMPORT"
	case "transaction_date":
		return "must be an RFC 3339 timestamp or a YYYY-MM-DD date"
	default:
		return fmt.Sprintf("failed validation for '%s'", fe.Tag())
	}
}

// bound phrases min/max by the kind of field: characters, items, or a number
func bound(relation string, fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("must be %s %s characters long", relation, fe.Param())
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("must contain %s %s items", relation, fe.Param())
	default:
		return fmt.Sprintf("must be %s %s", relation, fe.Param())
	}
}
