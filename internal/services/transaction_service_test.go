package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"expense-tracker/internal/models"
	"expense-tracker/internal/repositories"
	"expense-tracker/internal/repositories/repository_mocks"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// TransactionServiceTestSuite defines the test suite for TransactionService
type TransactionServiceTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRepo *repository_mocks.MockTransactionRepositoryInterface
	registry *prometheus.Registry
	service  TransactionServiceInterface
	ctx      context.Context
	userID   uuid.UUID
}

// SetupTest runs before each test
func (s *TransactionServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = repository_mocks.NewMockTransactionRepositoryInterface(s.ctrl)
	s.registry = prometheus.NewRegistry()
	s.service = NewTransactionService(s.mockRepo, NewPrometheusMetricsWithRegistry(s.registry), discardAuditLogger(), "inr")
	s.ctx = context.Background()
	s.userID = uuid.New()
}

// TearDownTest runs after each test
func (s *TransactionServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

// TestTransactionServiceSuite runs the test suite
func TestTransactionServiceSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func (s *TransactionServiceTestSuite) input(value string) TransactionInput {
	return TransactionInput{
		Amount:   amount(value),
		Merchant: gofakeit.Company(),
		Date:     time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Category: "Food",
	}
}

func (s *TransactionServiceTestSuite) ownedTransaction(owner uuid.UUID) *models.Transaction {
	return &models.Transaction{
		ID:       uuid.New(),
		UserID:   owner,
		Amount:   amount("25.00"),
		Merchant: "Swiggy",
		Date:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Category: "Food",
		Source:   models.SourceManual,
		Currency: "INR",
	}
}

// CreateTransaction

func (s *TransactionServiceTestSuite) TestCreateTransaction_AppliesDefaults() {
	s.mockRepo.EXPECT().Create(s.ctx, gomock.Any()).Return(nil)

	txn, err := s.service.CreateTransaction(s.ctx, s.userID, TransactionInput{
		Amount: amount("40"),
		Date:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)

	s.Equal(s.userID, txn.UserID)
	s.Equal(models.DefaultMerchant, txn.Merchant)
	s.Equal(models.DefaultCategory, txn.Category)
	s.Equal(models.SourceManual, txn.Source)
	s.Equal("INR", txn.Currency)
	s.Equal(1.0, sampleValue(s.T(), s.registry, "transactions_created_total", "source", models.SourceManual))
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_KeepsSuppliedFields() {
	s.mockRepo.EXPECT().Create(s.ctx, gomock.Any()).Return(nil)

	in := s.input("12.50")
	in.Source = "gmail"
	in.Currency = "usd"
	in.BankName = " HDFC Bank "

	txn, err := s.service.CreateTransaction(s.ctx, s.userID, in)
	s.Require().NoError(err)

	s.Equal(in.Merchant, txn.Merchant)
	s.Equal("Food", txn.Category)
	s.Equal(models.SourceGmail, txn.Source)
	s.Equal("USD", txn.Currency)
	s.Equal("HDFC Bank", txn.BankName)
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_RejectsLongBankName() {
	in := s.input("12.50")
	in.BankName = strings.Repeat("b", models.MaxBankNameLength+1)

	_, err := s.service.CreateTransaction(s.ctx, s.userID, in)
	s.ErrorIs(err, models.ErrBankNameTooLong)
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_RejectsNonPositiveAmount() {
	for _, value := range []string{"0", "-5"} {
		txn, err := s.service.CreateTransaction(s.ctx, s.userID, s.input(value))
		s.ErrorIs(err, models.ErrInvalidAmount)
		s.Nil(txn)
	}
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_RejectsUnknownSource() {
	in := s.input("10")
	in.Source = "FAX"

	_, err := s.service.CreateTransaction(s.ctx, s.userID, in)
	s.ErrorIs(err, models.ErrInvalidSource)
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_StoreFailure() {
	dbErr := errors.New("disk full")
	s.mockRepo.EXPECT().Create(s.ctx, gomock.Any()).Return(dbErr)

	txn, err := s.service.CreateTransaction(s.ctx, s.userID, s.input("10"))
	s.ErrorIs(err, dbErr)
	s.Nil(txn)
}

// ImportTransactions

func (s *TransactionServiceTestSuite) TestImportTransactions_Success() {
	var stored []models.Transaction
	s.mockRepo.EXPECT().CreateBatch(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, batch []models.Transaction) error {
			stored = batch
			return nil
		})

	inputs := []TransactionInput{s.input("40"), s.input("60"), s.input("0.5")}
	inputs[1].Source = models.SourceWhatsApp

	transactions, err := s.service.ImportTransactions(s.ctx, s.userID, inputs)
	s.Require().NoError(err)

	s.Len(transactions, 3)
	s.Len(stored, 3)
	s.Equal(models.SourceImport, transactions[0].Source)
	s.Equal(models.SourceWhatsApp, transactions[1].Source)
	for _, txn := range transactions {
		s.Equal(s.userID, txn.UserID)
	}
	s.Equal(1.0, sampleValue(s.T(), s.registry, "transaction_import_batch_size", "", ""))
}

func (s *TransactionServiceTestSuite) TestImportTransactions_Empty() {
	_, err := s.service.ImportTransactions(s.ctx, s.userID, nil)
	s.ErrorIs(err, ErrEmptyImport)
}

func (s *TransactionServiceTestSuite) TestImportTransactions_TooLarge() {
	inputs := make([]TransactionInput, MaxImportBatchSize+1)
	for i := range inputs {
		inputs[i] = s.input("1")
	}

	_, err := s.service.ImportTransactions(s.ctx, s.userID, inputs)
	s.ErrorIs(err, ErrImportTooLarge)
}

func (s *TransactionServiceTestSuite) TestImportTransactions_InvalidRowRejectsWholeBatch() {
	inputs := []TransactionInput{s.input("10"), s.input("-1")}

	_, err := s.service.ImportTransactions(s.ctx, s.userID, inputs)
	s.ErrorIs(err, models.ErrInvalidAmount)
	s.Contains(err.Error(), "transaction 1")
}

func (s *TransactionServiceTestSuite) TestImportTransactions_StoreFailure() {
	dbErr := errors.New("constraint violation")
	s.mockRepo.EXPECT().CreateBatch(s.ctx, gomock.Any()).Return(dbErr)

	transactions, err := s.service.ImportTransactions(s.ctx, s.userID, []TransactionInput{s.input("10")})
	s.ErrorIs(err, dbErr)
	s.Nil(transactions)
}

// GetTransaction

func (s *TransactionServiceTestSuite) TestGetTransaction_Owned() {
	existing := s.ownedTransaction(s.userID)
	s.mockRepo.EXPECT().GetByID(s.ctx, existing.ID).Return(existing, nil)

	txn, err := s.service.GetTransaction(s.ctx, s.userID, existing.ID)
	s.NoError(err)
	s.Equal(existing, txn)
}

func (s *TransactionServiceTestSuite) TestGetTransaction_NotFound() {
	id := uuid.New()
	s.mockRepo.EXPECT().GetByID(s.ctx, id).Return(nil, repositories.ErrTransactionNotFound)

	_, err := s.service.GetTransaction(s.ctx, s.userID, id)
	s.ErrorIs(err, ErrTransactionNotFound)
}

func (s *TransactionServiceTestSuite) TestGetTransaction_Foreign() {
	existing := s.ownedTransaction(uuid.New())
	s.mockRepo.EXPECT().GetByID(s.ctx, existing.ID).Return(existing, nil)

	txn, err := s.service.GetTransaction(s.ctx, s.userID, existing.ID)
	s.ErrorIs(err, ErrForbidden)
	s.Nil(txn)
}

// UpdateTransaction

func (s *TransactionServiceTestSuite) TestUpdateTransaction_Success() {
	existing := s.ownedTransaction(s.userID)
	newAmount := amount("99.99")
	newCategory := "  "
	newDate := time.Date(2024, 3, 9, 0, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))

	updated := *existing
	updated.Amount = newAmount
	updated.Category = models.DefaultCategory

	gomock.InOrder(
		s.mockRepo.EXPECT().GetByID(s.ctx, existing.ID).Return(existing, nil),
		s.mockRepo.EXPECT().UpdateFields(s.ctx, existing.ID, map[string]interface{}{
			"amount":   newAmount,
			"category": models.DefaultCategory,
			"date":     newDate.UTC(),
		}).Return(nil),
		s.mockRepo.EXPECT().GetByID(s.ctx, existing.ID).Return(&updated, nil),
	)

	txn, err := s.service.UpdateTransaction(s.ctx, s.userID, existing.ID, models.TransactionUpdate{
		Amount:   &newAmount,
		Category: &newCategory,
		Date:     &newDate,
	})
	s.Require().NoError(err)
	s.True(txn.Amount.Equal(newAmount))
	s.Equal(1.0, sampleValue(s.T(), s.registry, "transactions_updated_total", "", ""))
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction_MissingIsForbidden() {
	id := uuid.New()
	merchant := "Zomato"
	s.mockRepo.EXPECT().GetByID(s.ctx, id).Return(nil, repositories.ErrTransactionNotFound)

	_, err := s.service.UpdateTransaction(s.ctx, s.userID, id, models.TransactionUpdate{Merchant: &merchant})
	s.ErrorIs(err, ErrForbidden)
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction_ForeignIsForbidden() {
	existing := s.ownedTransaction(uuid.New())
	merchant := "Zomato"
	s.mockRepo.EXPECT().GetByID(s.ctx, existing.ID).Return(existing, nil)

	_, err := s.service.UpdateTransaction(s.ctx, s.userID, existing.ID, models.TransactionUpdate{Merchant: &merchant})
	s.ErrorIs(err, ErrForbidden)
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction_InvalidFields() {
	zero := decimal.Zero
	var emptyDate time.Time

	_, err := s.service.UpdateTransaction(s.ctx, s.userID, uuid.New(), models.TransactionUpdate{})
	s.ErrorIs(err, ErrEmptyUpdate)

	_, err = s.service.UpdateTransaction(s.ctx, s.userID, uuid.New(), models.TransactionUpdate{Amount: &zero})
	s.ErrorIs(err, models.ErrInvalidAmount)

	_, err = s.service.UpdateTransaction(s.ctx, s.userID, uuid.New(), models.TransactionUpdate{Date: &emptyDate})
	s.ErrorIs(err, models.ErrMissingDate)

	longBank := strings.Repeat("b", models.MaxBankNameLength+1)
	_, err = s.service.UpdateTransaction(s.ctx, s.userID, uuid.New(), models.TransactionUpdate{BankName: &longBank})
	s.ErrorIs(err, models.ErrBankNameTooLong)
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction_BankName() {
	existing := s.ownedTransaction(s.userID)
	bank := "  Axis Bank "

	updated := *existing
	updated.BankName = "Axis Bank"

	gomock.InOrder(
		s.mockRepo.EXPECT().GetByID(s.ctx, existing.ID).Return(existing, nil),
		s.mockRepo.EXPECT().UpdateFields(s.ctx, existing.ID, map[string]interface{}{"bank_name": "Axis Bank"}).Return(nil),
		s.mockRepo.EXPECT().GetByID(s.ctx, existing.ID).Return(&updated, nil),
	)

	txn, err := s.service.UpdateTransaction(s.ctx, s.userID, existing.ID, models.TransactionUpdate{BankName: &bank})
	s.Require().NoError(err)
	s.Equal("Axis Bank", txn.BankName)
}

// ListTransactions

func (s *TransactionServiceTestSuite) TestListTransactions_Defaults() {
	s.mockRepo.EXPECT().FindPageWithCount(s.ctx, models.TransactionFilters{
		UserID: s.userID,
		Offset: 0,
		Limit:  DefaultPageSize,
	}).Return(&models.TransactionPage{Transactions: []models.Transaction{}, Total: 0}, nil)

	list, err := s.service.ListTransactions(s.ctx, s.userID, ListQuery{})
	s.Require().NoError(err)

	s.Equal(1, list.Page)
	s.Equal(DefaultPageSize, list.Limit)
	s.Equal(0, list.Pages)
	s.Empty(list.Transactions)
}

func (s *TransactionServiceTestSuite) TestListTransactions_PaginationMath() {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)

	s.mockRepo.EXPECT().FindPageWithCount(s.ctx, models.TransactionFilters{
		UserID:    s.userID,
		Category:  "Food",
		StartDate: &start,
		EndDate:   &end,
		Offset:    20,
		Limit:     10,
	}).Return(&models.TransactionPage{
		Transactions: []models.Transaction{*s.ownedTransaction(s.userID)},
		Total:        21,
	}, nil)

	list, err := s.service.ListTransactions(s.ctx, s.userID, ListQuery{
		Page:      3,
		Limit:     10,
		Category:  " Food ",
		StartDate: &start,
		EndDate:   &end,
	})
	s.Require().NoError(err)

	s.Equal(int64(21), list.Total)
	s.Equal(3, list.Pages)
	s.Equal(3, list.Page)
	s.Len(list.Transactions, 1)
}

func (s *TransactionServiceTestSuite) TestListTransactions_InvalidQuery() {
	start := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	for _, query := range []ListQuery{{Page: -1}, {Limit: -3}, {Limit: MaxPageSize + 1}, {Page: math.MaxInt/4 + 1, Limit: 4}} {
		_, err := s.service.ListTransactions(s.ctx, s.userID, query)
		s.ErrorIs(err, ErrInvalidPagination)
	}

	_, err := s.service.ListTransactions(s.ctx, s.userID, ListQuery{StartDate: &start, EndDate: &end})
	s.ErrorIs(err, ErrInvalidDateRange)
}

func (s *TransactionServiceTestSuite) TestListTransactions_OffsetOverflow() {
	// (page-1)*limit wraps to 0 here and would silently serve the first page
	_, err := s.service.ListTransactions(s.ctx, s.userID, ListQuery{Page: 1<<62 + 1, Limit: 4})
	s.ErrorIs(err, ErrInvalidPagination)

	s.mockRepo.EXPECT().FindPageWithCount(s.ctx, gomock.Any()).Return(&models.TransactionPage{Transactions: []models.Transaction{}}, nil)
	list, err := s.service.ListTransactions(s.ctx, s.userID, ListQuery{Page: math.MaxInt / MaxPageSize, Limit: MaxPageSize})
	s.Require().NoError(err)
	s.Equal(math.MaxInt/MaxPageSize, list.Page)
}

func (s *TransactionServiceTestSuite) TestListTransactions_StoreFailure() {
	dbErr := errors.New("serialization failure")
	s.mockRepo.EXPECT().FindPageWithCount(s.ctx, gomock.Any()).Return(nil, dbErr)

	list, err := s.service.ListTransactions(s.ctx, s.userID, ListQuery{})
	s.ErrorIs(err, dbErr)
	s.Nil(list)
}

func TestTotalPages(t *testing.T) {
	testCases := []struct {
		total    int64
		limit    int
		expected int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{26, 10, 3},
		{5, 0, 0},
	}

	for _, tc := range testCases {
		if got := totalPages(tc.total, tc.limit); got != tc.expected {
			t.Errorf("totalPages(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.expected)
		}
	}
}
