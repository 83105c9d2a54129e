package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"expense-tracker/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const maxAmountDecimalPlaces = 2

var currencyCodePattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

var (
	instance *Validator
	once     sync.Once
)

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	once.Do(func() {
		instance = NewValidator()
	})
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	// decimals are validated through their canonical string form
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	_ = v.RegisterValidation("money_amount", validateMoneyAmount)
	_ = v.RegisterValidation("currency_code", validateCurrencyCode)
	_ = v.RegisterValidation("transaction_source", validateTransactionSource)
	_ = v.RegisterValidation("transaction_date", validateTransactionDate)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates a struct using the registered rules
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

// validateMoneyAmount accepts a positive amount with at most two decimal places
func validateMoneyAmount(fl validator.FieldLevel) bool {
	var amount decimal.Decimal

	switch fl.Field().Kind() {
	case reflect.String:
		parsed, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		amount = parsed
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		amount = decimal.NewFromInt(fl.Field().Int())
	case reflect.Float32, reflect.Float64:
		amount = decimal.NewFromFloat(fl.Field().Float())
	default:
		return false
	}

	if !amount.IsPositive() {
		return false
	}

	return amount.Equal(amount.Truncate(maxAmountDecimalPlaces))
}

// validateCurrencyCode validates a three-letter ISO 4217 style code
func validateCurrencyCode(fl validator.FieldLevel) bool {
	return currencyCodePattern.MatchString(fl.Field().String())
}

// validateTransactionSource validates the ingestion channel of a transaction
func validateTransactionSource(fl validator.FieldLevel) bool {
	return models.IsValidSource(strings.ToUpper(fl.Field().String()))
}

// validateTransactionDate accepts the formats models.ParseTransactionDate understands
func validateTransactionDate(fl validator.FieldLevel) bool {
	_, err := models.ParseTransactionDate(fl.Field().String(), time.UTC)
	return err == nil
}
