package dto

import (
	"time"

	"expense-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest is the body of POST /transactions.
// Date accepts RFC 3339 or a plain YYYY-MM-DD calendar date.
type CreateTransactionRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required,money_amount"`
	Merchant    string          `json:"merchant,omitempty" validate:"omitempty,max=255"`
	Description string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Date        string          `json:"date" validate:"required,transaction_date"`
	Category    string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Source      string          `json:"source,omitempty" validate:"omitempty,transaction_source"`
	Currency    string          `json:"currency,omitempty" validate:"omitempty,currency_code"`
	BankName    string          `json:"bankName,omitempty" validate:"omitempty,max=100"`
}

// ImportTransactionsRequest is the body of POST /transactions/import
type ImportTransactionsRequest struct {
	Transactions []CreateTransactionRequest `json:"transactions" validate:"dive"`
}

// UpdateTransactionRequest is the body of PUT /transactions/:id; absent fields are left unchanged
type UpdateTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount,omitempty" validate:"omitempty,money_amount"`
	Merchant    *string          `json:"merchant,omitempty" validate:"omitempty,max=255"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Date        *string          `json:"date,omitempty" validate:"omitempty,transaction_date"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	BankName    *string          `json:"bankName,omitempty" validate:"omitempty,max=100"`
}

// IsEmpty reports whether the update carries no fields
func (r *UpdateTransactionRequest) IsEmpty() bool {
	return r.Amount == nil && r.Merchant == nil && r.Description == nil && r.Date == nil && r.Category == nil && r.BankName == nil
}

// ListTransactionsQuery holds the parsed query of GET /transactions
type ListTransactionsQuery struct {
	Page      int
	Limit     int
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
}

// TransactionResponse is the wire form of a transaction
type TransactionResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Amount      string    `json:"amount"`
	Merchant    string    `json:"merchant"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Source      string    `json:"source"`
	Currency    string    `json:"currency"`
	BankName    string    `json:"bankName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

// ListTransactionsResponse represents the response for listing transactions
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   PaginationInfo        `json:"pagination"`
}

// ImportTransactionsResponse reports the rows created by an import
type ImportTransactionsResponse struct {
	Imported     int                   `json:"imported"`
	Transactions []TransactionResponse `json:"transactions"`
}

// ToTransactionResponse converts a model into its wire form
func ToTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount.StringFixed(2),
		Merchant:    t.Merchant,
		Description: t.Description,
		Date:        t.Date,
		Category:    t.Category,
		Source:      t.Source,
		Currency:    t.Currency,
		BankName:    t.BankName,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ToTransactionResponses converts a slice of models
func ToTransactionResponses(transactions []models.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		responses = append(responses, ToTransactionResponse(&transactions[i]))
	}
	return responses
}
