package models

// Trade represents a single executed trade row from the statement's
// transactions table. Optional numeric columns that the broker renders as
// empty or "--" are kept as nil pointers rather than zeroes.
type Trade struct {
	Symbol        string   `json:"symbol"`
	Date          string   `json:"date"` // broker-native format, e.g. "2023-01-15, 09:30:00"
	Quantity      float64  `json:"quantity"`
	TradePrice    float64  `json:"tradePrice"`
	ClosingPrice  *float64 `json:"closingPrice"`
	Proceeds      float64  `json:"proceeds"`
	CommissionFee float64  `json:"commissionFee"`
	Basis         *float64 `json:"basis"`
	RealizedPL    *float64 `json:"realizedPL"`
	MTMPL         *float64 `json:"mtmPL"`
	Code          string   `json:"code"`
	AssetType     string   `json:"assetType,omitempty"`
	Currency      string   `json:"currency,omitempty"`
}

// Dividend is one un-aggregated dividend row. Amount is signed and kept in
// the original statement currency.
type Dividend struct {
	Date     string  `json:"date"`
	Symbol   string  `json:"symbol"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

// WithholdingTax is one tax-deduction row. Amount is typically negative.
type WithholdingTax struct {
	Date     string  `json:"date"`
	Symbol   string  `json:"symbol"`
	Amount   float64 `json:"amount"`
	Code     string  `json:"code"`
	Currency string  `json:"currency,omitempty"`
}

// ParsedStatement holds everything extracted from a single statement file.
type ParsedStatement struct {
	Dividends        []Dividend       `json:"dividends"`
	Trades           []Trade          `json:"trades"`
	WithholdingTaxes []WithholdingTax `json:"withholdingTax"`
	Year             string           `json:"year,omitempty"`
}

// CombinedDividendData is one aggregated (date, symbol, currency) dividend
// group paired with its withholding tax. AmountAfterTax + WithheldTax adds
// back up to Amount within rounding tolerance.
type CombinedDividendData struct {
	Symbol         string  `json:"symbol"`
	Date           string  `json:"date"`
	Amount         float64 `json:"amount"`
	WithheldTax    float64 `json:"withheldTax"`
	AmountAfterTax float64 `json:"amountAfterTax"`
	TaxPercentage  float64 `json:"taxPercentage"`
	Currency       string  `json:"currency,omitempty"`
}

// DividendWithLocalCurrency is a CombinedDividendData with the exchange rate
// used to convert its amounts into the local currency.
type DividendWithLocalCurrency struct {
	CombinedDividendData
	CurrencyRate float64 `json:"currencyRate"`
	LocalDate    string  `json:"localDate"` // dd.mm.yyyy, for the rendered detail table
}
