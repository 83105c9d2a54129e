package handlers

import (
	"net/http"
	"time"

	"expense-tracker/internal/dto"
	apierrors "expense-tracker/internal/errors"
	"expense-tracker/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	defaultSeedCount = 100
	defaultSeedDays  = 90
	maxSeedDays      = 365
)

// DevHandler handles development-only endpoints
// These endpoints should only be available in development environments
type DevHandler struct {
	transactionService services.TransactionServiceInterface
	generator          services.TransactionGeneratorInterface
	tokenService       services.TokenServiceInterface
	now                func() time.Time
}

// NewDevHandler creates a new development handler
func NewDevHandler(
	transactionService services.TransactionServiceInterface,
	generator services.TransactionGeneratorInterface,
	tokenService services.TokenServiceInterface,
) *DevHandler {
	return &DevHandler{
		transactionService: transactionService,
		generator:          generator,
		tokenService:       tokenService,
		now:                time.Now,
	}
}

// IssueToken signs an access token so the API can be called locally
//
// Method: POST /api/v1/dev/token
// Authentication: None
// Environment: Development only, and only when a signing key is configured
//
// Body (optional):
//   - userId: Subject of the token (default: a new random user)
//   - email: Email claim
//
// Success Response: 201 Created
//   - accessToken, tokenType, expiresAt, userId
//
// Error Responses:
//   - 400: Invalid body or user id
//   - 500: Signing failed
func (h *DevHandler) IssueToken(c echo.Context) error {
	var req dto.DevTokenRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	userID := uuid.New()
	if req.UserID != "" {
		parsed, err := uuid.Parse(req.UserID)
		if err != nil || parsed == uuid.Nil {
			return SendError(c, apierrors.ValidationInvalidFormat, apierrors.WithDetails("userId: must be a non-nil UUID"))
		}
		userID = parsed
	}

	token, expiresAt, err := h.tokenService.GenerateAccessToken(userID, req.Email)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.DevTokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		UserID:      userID,
	})
}

// SeedTransactions generates realistic sample expenses for the authenticated user
//
// Method: POST /api/v1/dev/seed
// Authentication: Required
// Environment: Development only
//
// Query parameters:
//   - count: Number of transactions to generate (default: 100, max: 500)
//   - days: Number of days of history to generate (default: 90, max: 365)
//
// Success Response: 201 Created
//   - message: Success message
//   - data.imported: Number of transactions created
//
// Error Responses:
//   - 401: Unauthorized
//   - 500: Internal server error
func (h *DevHandler) SeedTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	count := clamp(getIntParam(c, "count", defaultSeedCount), 1, services.MaxImportBatchSize)
	days := clamp(getIntParam(c, "days", defaultSeedDays), 1, maxSeedDays)

	endDate := h.now().UTC()
	startDate := endDate.AddDate(0, 0, -days)

	generated := h.generator.GenerateTransactions(userID, startDate, endDate, count)

	inputs := make([]services.TransactionInput, 0, len(generated))
	for i := range generated {
		inputs = append(inputs, services.TransactionInput{
			Amount:      generated[i].Amount,
			Merchant:    generated[i].Merchant,
			Description: generated[i].Description,
			Date:        generated[i].Date,
			Category:    generated[i].Category,
			Source:      generated[i].Source,
			Currency:    generated[i].Currency,
		})
	}

	transactions, err := h.transactionService.ImportTransactions(c.Request().Context(), userID, inputs)
	if err != nil {
		return sendTransactionError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Message: "test data generated successfully",
		Data: map[string]interface{}{
			"imported": len(transactions),
			"date_range": map[string]string{
				"start": startDate.Format(time.RFC3339),
				"end":   endDate.Format(time.RFC3339),
			},
		},
	})
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
