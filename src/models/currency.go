package models

// CurrencyRate is one daily observation from the NBP table A feed.
type CurrencyRate struct {
	No            string  `json:"no"`
	EffectiveDate string  `json:"effectiveDate"`
	Mid           float64 `json:"mid"`
}

// CurrencyData is the NBP exchange-rate response for one currency over one
// calendar year. Rates keep the provider's order; the rate resolver's
// fallback depends on it.
type CurrencyData struct {
	Table    string         `json:"table"`
	Currency string         `json:"currency"`
	Code     string         `json:"code"`
	Rates    []CurrencyRate `json:"rates"`
}
