package errors

import "fmt"

// ErrorResponse is the envelope every failed request is answered with
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	TraceID string   `json:"trace_id"`
}

type ErrorOption func(*ErrorResponse)

// WithDetails replaces the detail lines of the response
func WithDetails(details ...string) ErrorOption {
	return func(er *ErrorResponse) {
		er.Error.Details = details
	}
}

// WithMessage overrides the default message of the code
func WithMessage(message string) ErrorOption {
	return func(er *ErrorResponse) {
		er.Error.Message = message
	}
}

func NewErrorResponse(code ErrorCode, traceID string, opts ...ErrorOption) *ErrorResponse {
	response := &ErrorResponse{
		Error: ErrorDetail{
			Code:    string(code),
			Message: code.Message(),
			Details: []string{},
			TraceID: traceID,
		},
	}
	for _, opt := range opts {
		opt(response)
	}
	return response
}

// NewValidationError builds a VALIDATION_001 response from "field: problem" lines,
// keeping their order
func NewValidationError(details []string, traceID string) *ErrorResponse {
	if details == nil {
		details = []string{}
	}
	return NewErrorResponse(ValidationGeneral, traceID, WithDetails(details...))
}

// FieldDetail formats one validation detail line
func FieldDetail(field, problem string) string {
	return fmt.Sprintf("%s: %s", field, problem)
}

// NewSystemError answers with SYSTEM_001 and nothing about the cause;
// the cause is for server-side logs only
func NewSystemError(traceID string) *ErrorResponse {
	return NewErrorResponse(SystemInternalError, traceID)
}

// Status returns the HTTP status the response is served with
func (er *ErrorResponse) Status() int {
	return ErrorCode(er.Error.Code).Status()
}

func (er *ErrorResponse) String() string {
	return fmt.Sprintf("[%s] %s (trace: %s)", er.Error.Code, er.Error.Message, er.Error.TraceID)
}
