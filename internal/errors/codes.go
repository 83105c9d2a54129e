package errors

import "net/http"

// ErrorCode is the machine-readable code carried in every error envelope
type ErrorCode string

const (
	AuthMissingToken           ErrorCode = "AUTH_002"
	AuthExpiredToken           ErrorCode = "AUTH_003"
	AuthInvalidTokenFormat     ErrorCode = "AUTH_004"
	AuthInsufficientPermission ErrorCode = "AUTH_005"
)

const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidDate   ErrorCode = "VALIDATION_007"
)

const (
	TransactionNotFound         ErrorCode = "TRANSACTION_001"
	TransactionInvalidAmount    ErrorCode = "TRANSACTION_002"
	TransactionValidationFailed ErrorCode = "TRANSACTION_005"
	TransactionInvalidSource    ErrorCode = "TRANSACTION_006"
	TransactionImportEmpty      ErrorCode = "TRANSACTION_007"
	TransactionImportTooLarge   ErrorCode = "TRANSACTION_008"
	TransactionEmptyUpdate      ErrorCode = "TRANSACTION_009"
)

const (
	AnalyticsInvalidPeriod ErrorCode = "ANALYTICS_001"
)

const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemUnexpectedError    ErrorCode = "SYSTEM_005"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_006"
)

type codeInfo struct {
	status  int
	message string
}

var registry = map[ErrorCode]codeInfo{
	AuthMissingToken:           {http.StatusUnauthorized, "Authorization token is required"},
	AuthExpiredToken:           {http.StatusUnauthorized, "Authorization token has expired"},
	AuthInvalidTokenFormat:     {http.StatusUnauthorized, "Invalid authorization token format"},
	AuthInsufficientPermission: {http.StatusForbidden, "Unauthorized"},

	ValidationGeneral:       {http.StatusBadRequest, "Validation failed"},
	ValidationRequiredField: {http.StatusBadRequest, "Required field is missing"},
	ValidationInvalidFormat: {http.StatusBadRequest, "Invalid field format"},
	ValidationOutOfRange:    {http.StatusBadRequest, "Field value is out of allowed range"},
	ValidationInvalidDate:   {http.StatusBadRequest, "Invalid date format or range"},

	TransactionNotFound:         {http.StatusNotFound, "Transaction not found"},
	TransactionInvalidAmount:    {http.StatusBadRequest, "Invalid transaction amount"},
	TransactionValidationFailed: {http.StatusUnprocessableEntity, "Transaction validation failed"},
	TransactionInvalidSource:    {http.StatusBadRequest, "Invalid transaction source"},
	TransactionImportEmpty:      {http.StatusBadRequest, "Import contains no transactions"},
	TransactionImportTooLarge:   {http.StatusRequestEntityTooLarge, "Import contains too many transactions"},
	TransactionEmptyUpdate:      {http.StatusBadRequest, "Update contains no fields"},

	AnalyticsInvalidPeriod: {http.StatusBadRequest, "Invalid month or year"},

	SystemInternalError:      {http.StatusInternalServerError, "An unexpected error occurred. Please contact support with trace ID"},
	SystemDatabaseError:      {http.StatusInternalServerError, "Database connection error"},
	SystemServiceUnavailable: {http.StatusServiceUnavailable, "Service temporarily unavailable"},
	SystemUnexpectedError:    {http.StatusInternalServerError, "An unexpected error occurred"},
	SystemRateLimitExceeded:  {http.StatusTooManyRequests, "Rate limit exceeded. Please try again later"},
}

// Message returns the default client-facing message for the code
func (c ErrorCode) Message() string {
	if info, ok := registry[c]; ok {
		return info.message
	}
	return "An error occurred"
}

// Status returns the HTTP status the code is served with. Unknown codes are 500.
func (c ErrorCode) Status() int {
	if info, ok := registry[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Known reports whether the code is registered
func (c ErrorCode) Known() bool {
	_, ok := registry[c]
	return ok
}
