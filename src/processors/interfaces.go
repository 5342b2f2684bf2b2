package processors

import (
	"github.com/username/pitfolio/backend/src/models"
)

// DividendProcessor pairs aggregated dividend groups with their withholding
// taxes into tax-form-ready records.
type DividendProcessor interface {
	DividendsTotal(dividends []models.Dividend, taxes []models.WithholdingTax) []models.CombinedDividendData
}
