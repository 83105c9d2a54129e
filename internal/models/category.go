package models

// Well-known expense categories used by sample data. The category field itself
// is an open domain: any non-blank label is accepted and stored as given.
const (
	CategoryFood          = "Food"
	CategoryTransport     = "Transport"
	CategoryShopping      = "Shopping"
	CategoryBills         = "Bills"
	CategoryEntertainment = "Entertainment"
)

// SampleCategories returns the categories the sample-data generator draws from
func SampleCategories() []string {
	return []string{
		CategoryFood,
		CategoryTransport,
		CategoryShopping,
		CategoryBills,
		CategoryEntertainment,
	}
}

// MerchantInfo pairs a merchant name with the category its spend is filed under
type MerchantInfo struct {
	Name     string
	Category string
}
