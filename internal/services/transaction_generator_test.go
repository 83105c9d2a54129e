package services

import (
	"testing"
	"time"

	"expense-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionGeneratorTestSuite struct {
	suite.Suite
	generator *transactionGenerator
	userID    uuid.UUID
}

func TestTransactionGeneratorSuite(t *testing.T) {
	suite.Run(t, new(TransactionGeneratorTestSuite))
}

func (s *TransactionGeneratorTestSuite) SetupTest() {
	s.generator = newTransactionGeneratorWithSeed(42, "INR")
	s.userID = uuid.New()
}

// Merchant Pool Tests

func (s *TransactionGeneratorTestSuite) TestMerchantPool_CoversSampleCategories() {
	categories := make(map[string]bool)
	for _, merchant := range s.generator.merchantPool {
		s.NotEmpty(merchant.Name)
		categories[merchant.Category] = true
	}

	for _, category := range models.SampleCategories() {
		s.True(categories[category], "missing merchants for %s", category)
	}
}

func (s *TransactionGeneratorTestSuite) TestSelectRandomMerchant_ReturnsPoolMember() {
	pool := make(map[string]string)
	for _, merchant := range s.generator.merchantPool {
		pool[merchant.Name] = merchant.Category
	}

	for i := 0; i < 100; i++ {
		merchant := s.generator.SelectRandomMerchant()
		s.Equal(pool[merchant.Name], merchant.Category)
	}
}

// Amount Tests

func (s *TransactionGeneratorTestSuite) TestGenerateAmount_WithinCategoryRange() {
	testCases := []struct {
		category string
		min      float64
		max      float64
	}{
		{models.CategoryFood, 150, 1500},
		{models.CategoryBills, 500, 15000},
		{models.CategoryShopping, 500, 15000},
		{models.CategoryTransport, 50, 2000},
		{"Pets", 50, 2000},
	}

	for _, tc := range testCases {
		for i := 0; i < 50; i++ {
			amount := s.generator.GenerateAmount(tc.category)
			s.True(amount.GreaterThanOrEqual(decimal.NewFromFloat(tc.min)), "%s: %s below range", tc.category, amount)
			s.True(amount.LessThanOrEqual(decimal.NewFromFloat(tc.max)), "%s: %s above range", tc.category, amount)
			s.LessOrEqual(-amount.Exponent(), int32(2), "amount must have at most two decimals")
		}
	}
}

// Timestamp Tests

func (s *TransactionGeneratorTestSuite) TestGenerateTimestamp_WithinRangeAndBusinessHours() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	for i := 0; i < 200; i++ {
		ts := s.generator.GenerateTimestamp(start, end)
		s.False(ts.Before(start))
		s.True(ts.Before(end.AddDate(0, 0, 1)))
		s.GreaterOrEqual(ts.Hour(), businessHoursStart)
		s.Equal(time.UTC, ts.Location())
	}
}

func (s *TransactionGeneratorTestSuite) TestGenerateTimestamp_EmptyRange() {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s.Equal(start, s.generator.GenerateTimestamp(start, start))
}

// Batch Tests

func (s *TransactionGeneratorTestSuite) TestGenerateTransactions_ValidAndSorted() {
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -90)

	transactions := s.generator.GenerateTransactions(s.userID, start, end, 120)

	s.Len(transactions, 120)
	for i := range transactions {
		txn := transactions[i]
		s.Equal(s.userID, txn.UserID)
		s.Equal("INR", txn.Currency)
		s.Equal(models.SourceImport, txn.Source)
		s.Contains(s.generator.bankPool, txn.BankName)
		s.NoError(txn.Validate())
		if i > 0 {
			s.False(txn.Date.Before(transactions[i-1].Date), "transactions must be oldest first")
		}
	}
}

func (s *TransactionGeneratorTestSuite) TestGenerateTransactions_ZeroCount() {
	now := time.Now()
	s.Empty(s.generator.GenerateTransactions(s.userID, now.AddDate(0, 0, -1), now, 0))
}

func (s *TransactionGeneratorTestSuite) TestNewTransactionGenerator_DefaultCurrency() {
	generator := NewTransactionGenerator("").(*transactionGenerator)
	s.Equal(models.DefaultCurrency, generator.currency)
}
