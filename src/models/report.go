package models

// TaxFormCell maps one computed total onto a cell of the tax form.
type TaxFormCell struct {
	Cell        string `json:"cell"`
	Total       string `json:"total"`
	Description string `json:"description"`
}

// YearReport is the PIT-38 section computed for a single statement year.
type YearReport struct {
	Year           string                      `json:"year"`
	Dividends      []DividendWithLocalCurrency `json:"dividends"`
	DividendsTotal float64                     `json:"dividendsTotal"` // gross, local currency
	TaxTotal       float64                     `json:"taxTotal"`       // G.45
	TaxesPaid      float64                     `json:"taxesPaid"`      // G.46
	TaxesToPay     float64                     `json:"taxesToPay"`     // G.47
	Cells          []TaxFormCell               `json:"cells"`
}

// UploadReport is the full response for one multi-file upload.
type UploadReport struct {
	Dividends        []CombinedDividendData `json:"dividends"`
	Trades           []Trade                `json:"trades"`
	WithholdingTaxes []WithholdingTax       `json:"withholdingTax"`
	Years            []string               `json:"years"`
	LocalCurrency    string                 `json:"localCurrency"`
	Reports          map[string]YearReport  `json:"reports"`
}
