package services

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"expense-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type transactionGenerator struct {
	merchantPool []models.MerchantInfo
	bankPool     []string
	rng          *rand.Rand
	currency     string
}

const (
	businessHoursStart = 6
	businessHoursEnd   = 24
)

// NewTransactionGenerator creates a new transaction generator
func NewTransactionGenerator(currency string) TransactionGeneratorInterface {
	return newTransactionGeneratorWithSeed(time.Now().UnixNano(), currency)
}

func newTransactionGeneratorWithSeed(seed int64, currency string) *transactionGenerator {
	if currency == "" {
		currency = models.DefaultCurrency
	}
	return &transactionGenerator{
		merchantPool: initializeMerchantPool(),
		bankPool:     []string{"HDFC Bank", "SBI", "ICICI Bank", "Axis Bank", "Kotak Mahindra Bank"},
		rng:          rand.New(&lockedSource{src: rand.NewSource(seed)}),
		currency:     currency,
	}
}

// lockedSource lets concurrent seed requests share one generator
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}

func initializeMerchantPool() []models.MerchantInfo {
	return []models.MerchantInfo{
		{"Swiggy", models.CategoryFood},
		{"Zomato", models.CategoryFood},
		{"Starbucks", models.CategoryFood},
		{"KFC", models.CategoryFood},
		{"Dominos", models.CategoryFood},

		{"Uber", models.CategoryTransport},
		{"Ola", models.CategoryTransport},
		{"Rapido", models.CategoryTransport},
		{"Shell Fuel", models.CategoryTransport},
		{"IndiGo", models.CategoryTransport},

		{"Amazon", models.CategoryShopping},
		{"Flipkart", models.CategoryShopping},
		{"Myntra", models.CategoryShopping},
		{"Uniqlo", models.CategoryShopping},

		{"Jio Prepaid", models.CategoryBills},
		{"Bescom", models.CategoryBills},
		{"Netflix", models.CategoryBills},
		{"ACT Fibernet", models.CategoryBills},
		{"HDFC CC Bill", models.CategoryBills},

		{"BookMyShow", models.CategoryEntertainment},
		{"PVR", models.CategoryEntertainment},
		{"Steam Games", models.CategoryEntertainment},
	}
}

// SelectRandomMerchant selects a random merchant from the pool
func (g *transactionGenerator) SelectRandomMerchant() models.MerchantInfo {
	return g.merchantPool[g.rng.Intn(len(g.merchantPool))]
}

// GenerateAmount generates a realistic amount based on category
func (g *transactionGenerator) GenerateAmount(category string) decimal.Decimal {
	minValue, maxValue := g.getAmountRange(category)
	amount := minValue + g.rng.Float64()*(maxValue-minValue)
	return decimal.NewFromFloat(amount).Round(2)
}

func (g *transactionGenerator) getAmountRange(category string) (float64, float64) {
	switch category {
	case models.CategoryBills, models.CategoryShopping:
		return 500.00, 15000.00
	case models.CategoryFood:
		return 150.00, 1500.00
	default:
		return 50.00, 2000.00
	}
}

// GenerateTimestamp generates a random timestamp within the date range
func (g *transactionGenerator) GenerateTimestamp(startDate, endDate time.Time) time.Time {
	diff := endDate.Sub(startDate)
	if diff <= 0 {
		return startDate.UTC()
	}
	timestamp := startDate.Add(time.Duration(g.rng.Int63n(int64(diff))))

	hour := businessHoursStart + g.rng.Intn(businessHoursEnd-businessHoursStart)
	minute := g.rng.Intn(60)
	second := g.rng.Intn(60)

	return time.Date(
		timestamp.Year(),
		timestamp.Month(),
		timestamp.Day(),
		hour,
		minute,
		second,
		0,
		time.UTC,
	)
}

// GenerateTransactions generates count expenses for userID spread over [startDate, endDate),
// oldest first
func (g *transactionGenerator) GenerateTransactions(userID uuid.UUID, startDate, endDate time.Time, count int) []models.Transaction {
	transactions := make([]models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		merchant := g.SelectRandomMerchant()
		transactions = append(transactions, models.Transaction{
			UserID:      userID,
			Amount:      g.GenerateAmount(merchant.Category),
			Merchant:    merchant.Name,
			Description: "Purchase at " + merchant.Name,
			Date:        g.GenerateTimestamp(startDate, endDate),
			Category:    merchant.Category,
			Source:      models.SourceImport,
			Currency:    g.currency,
			BankName:    g.bankPool[g.rng.Intn(len(g.bankPool))],
		})
	}

	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].Date.Before(transactions[j].Date)
	})

	return transactions
}
