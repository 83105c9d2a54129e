package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionFilters contains filtering options for transaction listings
type TransactionFilters struct {
	UserID    uuid.UUID
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
	Offset    int
	Limit     int
}

// TransactionPage is one page of a listing together with the total match count
type TransactionPage struct {
	Transactions []Transaction
	Total        int64
}

// TransactionUpdate carries the mutable fields of a transaction; nil means unchanged
type TransactionUpdate struct {
	Amount      *decimal.Decimal
	Merchant    *string
	Description *string
	Category    *string
	Date        *time.Time
	BankName    *string
}
