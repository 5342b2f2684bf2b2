package processors

import (
	"math"

	"github.com/username/pitfolio/backend/src/models"
	"github.com/username/pitfolio/backend/src/utils"
)

// groupKey identifies one economic event: the broker splits a single payout
// across several statement rows, all sharing date, symbol and currency.
type groupKey struct {
	date     string
	symbol   string
	currency string
}

// dividendProcessorImpl implements the DividendProcessor interface.
type dividendProcessorImpl struct{}

// NewDividendProcessor creates a new instance of DividendProcessor.
func NewDividendProcessor() DividendProcessor {
	return &dividendProcessorImpl{}
}

// groupDividends merges dividend rows sharing a (date, symbol, currency) key,
// summing amounts. The first-seen row of each group is the representative;
// groups come out in first-seen order.
func groupDividends(dividends []models.Dividend) []models.Dividend {
	index := make(map[groupKey]int, len(dividends))
	grouped := make([]models.Dividend, 0, len(dividends))

	for _, d := range dividends {
		key := groupKey{d.Date, d.Symbol, d.Currency}
		if i, ok := index[key]; ok {
			grouped[i].Amount += d.Amount
			continue
		}
		index[key] = len(grouped)
		grouped = append(grouped, d)
	}
	return grouped
}

// groupWithholdingTaxes is the withholding-tax counterpart of groupDividends.
func groupWithholdingTaxes(taxes []models.WithholdingTax) []models.WithholdingTax {
	index := make(map[groupKey]int, len(taxes))
	grouped := make([]models.WithholdingTax, 0, len(taxes))

	for _, t := range taxes {
		key := groupKey{t.Date, t.Symbol, t.Currency}
		if i, ok := index[key]; ok {
			grouped[i].Amount += t.Amount
			continue
		}
		index[key] = len(grouped)
		grouped = append(grouped, t)
	}
	return grouped
}

// DividendsTotal groups both inputs by (date, symbol, currency), then pairs
// each dividend group with the matching tax group. A tax group only counts
// when the signed sum of tax and dividend stays positive, which guards
// against a mismatched or oversized tax record wiping out the dividend.
//
// Known limitation: a dividend split across multiple partial withholding
// entries is matched against at most one of them after grouping; this is a
// single guarded match, not ledger reconciliation.
func (p *dividendProcessorImpl) DividendsTotal(dividends []models.Dividend, taxes []models.WithholdingTax) []models.CombinedDividendData {
	groupedDividends := groupDividends(dividends)
	groupedTaxes := groupWithholdingTaxes(taxes)

	combined := make([]models.CombinedDividendData, 0, len(groupedDividends))
	for _, dividend := range groupedDividends {
		withheldTax := 0.0
		for _, tax := range groupedTaxes {
			if tax.Date == dividend.Date &&
				tax.Symbol == dividend.Symbol &&
				tax.Currency == dividend.Currency &&
				tax.Amount+dividend.Amount > 0 {
				withheldTax = math.Abs(tax.Amount)
				break
			}
		}

		taxPercentage := 0.0
		if dividend.Amount != 0 {
			taxPercentage = math.Abs(utils.RoundFloat(withheldTax/dividend.Amount*100, 0))
		}

		combined = append(combined, models.CombinedDividendData{
			Symbol:         dividend.Symbol,
			Date:           dividend.Date,
			Amount:         dividend.Amount,
			WithheldTax:    utils.RoundFloat(withheldTax, 2),
			AmountAfterTax: utils.RoundFloat(dividend.Amount-withheldTax, 2),
			TaxPercentage:  taxPercentage,
			Currency:       dividend.Currency,
		})
	}
	return combined
}
