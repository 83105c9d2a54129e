package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"expense-tracker/internal/dto"
	apierrors "expense-tracker/internal/errors"
	"expense-tracker/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ErrorHandlerTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func (s *ErrorHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.echo.HTTPErrorHandler = CustomHTTPErrorHandler
}

func TestErrorHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorHandlerTestSuite))
}

func (s *ErrorHandlerTestSuite) handle(err error, traceID string) (*httptest.ResponseRecorder, apierrors.ErrorResponse) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	if traceID != "" {
		c.Set(TraceIDContextKey, traceID)
	}

	CustomHTTPErrorHandler(err, c)

	var response apierrors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	return rec, response
}

func (s *ErrorHandlerTestSuite) TestEchoHTTPError() {
	rec, response := s.handle(echo.NewHTTPError(http.StatusNotFound, "route not found"), "trace-1")

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("TRANSACTION_001", response.Error.Code)
	s.Equal("route not found", response.Error.Message)
	s.Equal("trace-1", response.Error.TraceID)
}

func (s *ErrorHandlerTestSuite) TestOpaqueErrorBecomesSystemError() {
	rec, response := s.handle(errors.New("pq: relation \"transactions\" does not exist"), "trace-2")

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("SYSTEM_001", response.Error.Code)
	s.NotContains(rec.Body.String(), "relation")
	s.Contains(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

func (s *ErrorHandlerTestSuite) TestMissingTraceID() {
	_, response := s.handle(errors.New("boom"), "")

	s.Equal("unknown", response.Error.TraceID)
}

func (s *ErrorHandlerTestSuite) TestCommittedResponseIsLeftAlone() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})

	CustomHTTPErrorHandler(errors.New("late"), c)

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (s *ErrorHandlerTestSuite) TestMapHTTPStatusToErrorCode() {
	tests := []struct {
		status int
		code   apierrors.ErrorCode
	}{
		{http.StatusBadRequest, apierrors.ValidationGeneral},
		{http.StatusUnauthorized, apierrors.AuthMissingToken},
		{http.StatusForbidden, apierrors.AuthInsufficientPermission},
		{http.StatusNotFound, apierrors.TransactionNotFound},
		{http.StatusMethodNotAllowed, apierrors.ValidationGeneral},
		{http.StatusRequestEntityTooLarge, apierrors.TransactionImportTooLarge},
		{http.StatusTooManyRequests, apierrors.SystemRateLimitExceeded},
		{http.StatusServiceUnavailable, apierrors.SystemServiceUnavailable},
		{http.StatusTeapot, apierrors.SystemUnexpectedError},
	}

	for _, tt := range tests {
		s.Run(fmt.Sprint(tt.status), func() {
			s.Equal(tt.code, mapHTTPStatusToErrorCode(tt.status))

			rec, response := s.handle(echo.NewHTTPError(tt.status), "trace")
			s.Equal(tt.status, rec.Code)
			s.Equal(string(tt.code), response.Error.Code)
		})
	}
}

func (s *ErrorHandlerTestSuite) TestImportRowValidationError() {
	body := dto.ImportTransactionsRequest{
		Transactions: []dto.CreateTransactionRequest{
			{Amount: decimal.RequireFromString("10"), Date: "2024-03-01"},
			{Amount: decimal.RequireFromString("-3"), Date: "2024-03-02"},
		},
	}
	validationErr := validation.GetValidator().Struct(body)
	s.Require().Error(validationErr)

	rec, response := s.handle(fmt.Errorf("bind: %w", validationErr), "trace")

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_001", response.Error.Code)
	s.Equal([]string{"transactions[1].amount: must be a positive amount with at most 2 decimal places"}, response.Error.Details)
}

func (s *ErrorHandlerTestSuite) TestDomainTagMessagesInFieldOrder() {
	body := dto.CreateTransactionRequest{
		Amount:   decimal.RequireFromString("5"),
		Date:     "yesterday",
		Source:   "fax",
		Currency: "rupee",
	}
	err := validation.GetValidator().Struct(body)
	s.Require().Error(err)

	_, response := s.handle(err, "trace")

	s.Equal([]string{
		"date: must be an RFC 3339 timestamp or a YYYY-MM-DD date",
		"source: must be one of: MANUAL, GMAIL, WHATSAPP, IMPORT",
		"currency: must be a 3-letter currency code",
	}, response.Error.Details)
}

func (s *ErrorHandlerTestSuite) TestStringLengthBound() {
	body := dto.CreateTransactionRequest{
		Amount:   decimal.RequireFromString("5"),
		Date:     "2024-03-01",
		Merchant: strings.Repeat("m", 256),
	}
	err := validation.GetValidator().Struct(body)
	s.Require().Error(err)

	_, response := s.handle(err, "trace")

	s.Equal([]string{"merchant: must be at most 255 characters long"}, response.Error.Details)
}
