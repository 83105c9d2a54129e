package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"expense-tracker/internal/dto"
	apierrors "expense-tracker/internal/errors"
	"expense-tracker/internal/models"
	"expense-tracker/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TransactionHandler serves the expense endpoints
type TransactionHandler struct {
	transactionService services.TransactionServiceInterface
	location           *time.Location
}

// NewTransactionHandler creates a new transaction handler.
// loc is the zone in which bare YYYY-MM-DD dates are read.
func NewTransactionHandler(transactionService services.TransactionServiceInterface, loc *time.Location) *TransactionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionHandler{
		transactionService: transactionService,
		location:           loc,
	}
}

// CreateTransaction records a single expense
// @Summary Create transaction
// @Description Record one expense for the authenticated user. Missing merchant, category, source and currency take defaults.
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateTransactionRequest true "Transaction"
// @Success 201 {object} dto.TransactionResponse "Transaction created"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body or TRANSACTION_002 - Invalid amount"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	var req dto.CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	input, err := h.toInput(req)
	if err != nil {
		return sendTransactionError(c, err)
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request().Context(), userID, input)
	if err != nil {
		return sendTransactionError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.ToTransactionResponse(transaction))
}

// ImportTransactions records a batch of expenses atomically
// @Summary Import transactions
// @Description Record up to 500 expenses in one request. Either every row is stored or none is.
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ImportTransactionsRequest true "Transactions"
// @Success 201 {object} dto.ImportTransactionsResponse "Transactions imported"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid row or TRANSACTION_007 - Empty import"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 413 {object} errors.ErrorResponse "TRANSACTION_008 - Too many transactions"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions/import [post]
func (h *TransactionHandler) ImportTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	var req dto.ImportTransactionsRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("Invalid request body"))
	}

	// batch size is checked before rows are validated
	if len(req.Transactions) == 0 {
		return SendError(c, apierrors.TransactionImportEmpty)
	}
	if len(req.Transactions) > services.MaxImportBatchSize {
		return SendError(c, apierrors.TransactionImportTooLarge)
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	inputs := make([]services.TransactionInput, 0, len(req.Transactions))
	for i := range req.Transactions {
		input, err := h.toInput(req.Transactions[i])
		if err != nil {
			return sendTransactionError(c, err)
		}
		inputs = append(inputs, input)
	}

	transactions, err := h.transactionService.ImportTransactions(c.Request().Context(), userID, inputs)
	if err != nil {
		return sendTransactionError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.ImportTransactionsResponse{
		Imported:     len(transactions),
		Transactions: dto.ToTransactionResponses(transactions),
	})
}

// ListTransactions lists the user's transactions, newest first
// @Summary List transactions
// @Description Page through the authenticated user's transactions with optional category and date filters
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param category query string false "Exact category"
// @Param start_date query string false "Inclusive lower bound (YYYY-MM-DD or RFC 3339)"
// @Param end_date query string false "Inclusive upper bound (YYYY-MM-DD or RFC 3339)"
// @Success 200 {object} dto.ListTransactionsResponse "One page of transactions"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_004 - Invalid pagination or VALIDATION_007 - Invalid date"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	query, err := h.parseListQuery(c)
	if err != nil {
		return sendTransactionError(c, err)
	}

	list, err := h.transactionService.ListTransactions(c.Request().Context(), userID, services.ListQuery{
		Page:      query.Page,
		Limit:     query.Limit,
		Category:  query.Category,
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
	})
	if err != nil {
		return sendTransactionError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(list.Transactions),
		Pagination: dto.PaginationInfo{
			Total: list.Total,
			Page:  list.Page,
			Pages: list.Pages,
			Limit: list.Limit,
		},
	})
}

// parseListQuery reads the listing query string. Errors wrap services.ErrInvalidPagination
// or models.ErrInvalidDate.
func (h *TransactionHandler) parseListQuery(c echo.Context) (*dto.ListTransactionsQuery, error) {
	query := &dto.ListTransactionsQuery{
		Category: strings.TrimSpace(c.QueryParam("category")),
	}

	page, ok := getIntQueryParam(c, "page")
	if !ok || (page != nil && *page < 1) {
		return nil, fmt.Errorf("invalid page: %w", services.ErrInvalidPagination)
	}
	if page != nil {
		query.Page = *page
	}

	limit, ok := getIntQueryParam(c, "limit")
	if !ok || (limit != nil && (*limit < 1 || *limit > services.MaxPageSize)) {
		return nil, fmt.Errorf("invalid limit: %w", services.ErrInvalidPagination)
	}
	if limit != nil {
		query.Limit = *limit
	}

	startDate, err := parseDateQueryParam(c, "start_date", h.location, false)
	if err != nil {
		return nil, err
	}
	query.StartDate = startDate

	endDate, err := parseDateQueryParam(c, "end_date", h.location, true)
	if err != nil {
		return nil, err
	}
	query.EndDate = endDate

	return query, nil
}

// GetTransaction retrieves a specific transaction by ID
// @Summary Get transaction by ID
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Success 200 {object} dto.TransactionResponse "Transaction details"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid transaction ID format"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 403 {object} errors.ErrorResponse "AUTH_005 - Transaction belongs to another user"
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("Transaction ID must be a valid UUID"))
	}

	transaction, err := h.transactionService.GetTransaction(c.Request().Context(), userID, transactionID)
	if err != nil {
		return sendTransactionError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ToTransactionResponse(transaction))
}

// UpdateTransaction applies a partial update to a transaction
// @Summary Update transaction
// @Description Change amount, merchant, description, date or category of an owned transaction
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Param request body dto.UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} dto.TransactionResponse "Updated transaction"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid body or TRANSACTION_009 - No fields to update"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 403 {object} errors.ErrorResponse "AUTH_005 - Transaction missing or owned by another user"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("Transaction ID must be a valid UUID"))
	}

	var req dto.UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("Invalid request body"))
	}

	if req.IsEmpty() {
		return SendError(c, apierrors.TransactionEmptyUpdate)
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	update := models.TransactionUpdate{
		Amount:      req.Amount,
		Merchant:    req.Merchant,
		Description: req.Description,
		Category:    req.Category,
		BankName:    req.BankName,
	}
	if req.Date != nil {
		date, err := models.ParseTransactionDate(*req.Date, h.location)
		if err != nil {
			return sendTransactionError(c, err)
		}
		update.Date = &date
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request().Context(), userID, transactionID, update)
	if err != nil {
		return sendTransactionError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ToTransactionResponse(transaction))
}

func (h *TransactionHandler) toInput(req dto.CreateTransactionRequest) (services.TransactionInput, error) {
	date, err := models.ParseTransactionDate(req.Date, h.location)
	if err != nil {
		return services.TransactionInput{}, err
	}

	return services.TransactionInput{
		Amount:      req.Amount,
		Merchant:    req.Merchant,
		Description: req.Description,
		Date:        date,
		Category:    req.Category,
		Source:      req.Source,
		Currency:    req.Currency,
		BankName:    req.BankName,
	}, nil
}

// sendTransactionError maps service and model errors onto API error codes
func sendTransactionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrTransactionNotFound):
		return SendError(c, apierrors.TransactionNotFound)
	case errors.Is(err, services.ErrForbidden):
		return SendError(c, apierrors.AuthInsufficientPermission)
	case errors.Is(err, services.ErrEmptyImport):
		return SendError(c, apierrors.TransactionImportEmpty)
	case errors.Is(err, services.ErrImportTooLarge):
		return SendError(c, apierrors.TransactionImportTooLarge)
	case errors.Is(err, services.ErrEmptyUpdate):
		return SendError(c, apierrors.TransactionEmptyUpdate)
	case errors.Is(err, services.ErrInvalidPagination):
		return SendError(c, apierrors.ValidationOutOfRange, apierrors.WithDetails(err.Error()))
	case errors.Is(err, services.ErrInvalidDateRange):
		return SendError(c, apierrors.ValidationInvalidDate, apierrors.WithDetails(err.Error()))
	case errors.Is(err, models.ErrInvalidDate), errors.Is(err, models.ErrMissingDate):
		return SendError(c, apierrors.ValidationInvalidDate, apierrors.WithDetails(err.Error()))
	case errors.Is(err, models.ErrInvalidAmount):
		return SendError(c, apierrors.TransactionInvalidAmount, apierrors.WithDetails(err.Error()))
	case errors.Is(err, models.ErrInvalidSource):
		return SendError(c, apierrors.TransactionInvalidSource, apierrors.WithDetails(err.Error()))
	case errors.Is(err, models.ErrInvalidCurrency), errors.Is(err, models.ErrCategoryTooLong), errors.Is(err, models.ErrBankNameTooLong), errors.Is(err, models.ErrMissingOwner):
		return SendError(c, apierrors.TransactionValidationFailed, apierrors.WithDetails(err.Error()))
	default:
		return SendSystemError(c, err)
	}
}
