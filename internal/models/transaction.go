package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	SourceManual   = "MANUAL"
	SourceGmail    = "GMAIL"
	SourceWhatsApp = "WHATSAPP"
	SourceImport   = "IMPORT"

	DefaultCategory = "Uncategorized"
	DefaultMerchant = "Unknown"
	DefaultCurrency = "INR"

	MaxCategoryLength = 100
	MaxBankNameLength = 100
)

var (
	ErrInvalidAmount   = errors.New("transaction amount must be positive")
	ErrInvalidSource   = errors.New("invalid transaction source")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter code")
	ErrMissingDate     = errors.New("transaction date is required")
	ErrInvalidDate     = errors.New("date must be RFC 3339 or YYYY-MM-DD")
	ErrMissingOwner    = errors.New("transaction owner is required")
	ErrCategoryTooLong = errors.New("category too long")
	ErrBankNameTooLong = errors.New("bank name too long")
)

// Transaction is a single expense owned by one user
type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"userId"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Merchant    string          `gorm:"type:varchar(255);not null" json:"merchant"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Category    string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Source      string          `gorm:"type:varchar(20);not null" json:"source"`
	Currency    string          `gorm:"type:varchar(3);not null" json:"currency"`
	BankName    string          `gorm:"type:varchar(100)" json:"bankName,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	t.ApplyDefaults()

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

// BeforeUpdate hook for Transaction
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	return nil
}

// ApplyDefaults fills absent descriptive fields and normalizes the date to UTC
func (t *Transaction) ApplyDefaults() {
	t.Category = NormalizeCategory(t.Category)
	if strings.TrimSpace(t.Merchant) == "" {
		t.Merchant = DefaultMerchant
	}
	if t.Source == "" {
		t.Source = SourceManual
	}
	if t.Currency == "" {
		t.Currency = DefaultCurrency
	}
	t.Currency = strings.ToUpper(t.Currency)
	t.BankName = strings.TrimSpace(t.BankName)
	if !t.Date.IsZero() {
		t.Date = t.Date.UTC()
	}
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return ErrMissingOwner
	}

	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if t.Date.IsZero() {
		return ErrMissingDate
	}

	if len(t.Category) > MaxCategoryLength {
		return ErrCategoryTooLong
	}

	if len(t.BankName) > MaxBankNameLength {
		return ErrBankNameTooLong
	}

	if !IsValidSource(t.Source) {
		return ErrInvalidSource
	}

	if len(t.Currency) != 3 {
		return ErrInvalidCurrency
	}

	return nil
}

// IsOwnedBy reports whether userID owns the transaction
func (t *Transaction) IsOwnedBy(userID uuid.UUID) bool {
	return t.UserID == userID
}

// TableName returns the table name for Transaction
func (t *Transaction) TableName() string {
	return "transactions"
}

// IsValidSource checks if the transaction source is one of the known ingestion channels
func IsValidSource(source string) bool {
	switch source {
	case SourceManual, SourceGmail, SourceWhatsApp, SourceImport:
		return true
	default:
		return false
	}
}

// NormalizeCategory trims a free-form category label; blank becomes Uncategorized
func NormalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return DefaultCategory
	}
	return category
}

// ParseTransactionDate accepts RFC 3339 timestamps or YYYY-MM-DD dates.
// A bare date is taken as midnight in loc.
func ParseTransactionDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
