package processors

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/pitfolio/backend/src/logger"
	"github.com/username/pitfolio/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestDividendsTotalGroupsAndPairs(t *testing.T) {
	processor := NewDividendProcessor()

	dividends := []models.Dividend{
		{Date: "2023-01-15", Symbol: "AAPL", Amount: 10.00, Currency: "USD"},
		{Date: "2023-01-15", Symbol: "AAPL", Amount: 5.00, Currency: "USD"},
	}
	taxes := []models.WithholdingTax{
		{Date: "2023-01-15", Symbol: "AAPL", Amount: -2.25, Code: "Re", Currency: "USD"},
	}

	combined := processor.DividendsTotal(dividends, taxes)
	require.Len(t, combined, 1, "split rows for the same payout merge into one group")

	got := combined[0]
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, "2023-01-15", got.Date)
	assert.Equal(t, 15.00, got.Amount)
	assert.Equal(t, 2.25, got.WithheldTax)
	assert.Equal(t, 12.75, got.AmountAfterTax)
	assert.Equal(t, 15.0, got.TaxPercentage)
	assert.Equal(t, "USD", got.Currency)
}

func TestDividendsTotalNoMatchingTax(t *testing.T) {
	processor := NewDividendProcessor()

	combined := processor.DividendsTotal(
		[]models.Dividend{{Date: "2023-06-01", Symbol: "MSFT", Amount: 8.40, Currency: "USD"}},
		nil,
	)
	require.Len(t, combined, 1)

	assert.Equal(t, 0.0, combined[0].WithheldTax)
	assert.Equal(t, 8.40, combined[0].AmountAfterTax)
	assert.Equal(t, 0.0, combined[0].TaxPercentage)
}

func TestDividendsTotalGroupKeySeparation(t *testing.T) {
	processor := NewDividendProcessor()

	dividends := []models.Dividend{
		{Date: "2023-01-15", Symbol: "AAPL", Amount: 10.00, Currency: "USD"},
		{Date: "2023-01-15", Symbol: "AAPL", Amount: 3.00, Currency: "EUR"},
		{Date: "2023-01-16", Symbol: "AAPL", Amount: 1.00, Currency: "USD"},
		{Date: "2023-01-15", Symbol: "MSFT", Amount: 2.00, Currency: "USD"},
	}

	combined := processor.DividendsTotal(dividends, nil)
	require.Len(t, combined, 4, "date, symbol and currency all participate in the key")

	// first-seen order is preserved
	assert.Equal(t, 10.00, combined[0].Amount)
	assert.Equal(t, "EUR", combined[1].Currency)
	assert.Equal(t, "2023-01-16", combined[2].Date)
	assert.Equal(t, "MSFT", combined[3].Symbol)
}

func TestDividendsTotalGuardRejectsOversizedTax(t *testing.T) {
	processor := NewDividendProcessor()

	// tax larger than the dividend: the signed sum is not positive, so the
	// match is rejected rather than producing a negative net amount
	combined := processor.DividendsTotal(
		[]models.Dividend{{Date: "2023-01-15", Symbol: "AAPL", Amount: 2.00, Currency: "USD"}},
		[]models.WithholdingTax{{Date: "2023-01-15", Symbol: "AAPL", Amount: -5.00, Currency: "USD"}},
	)
	require.Len(t, combined, 1)

	assert.Equal(t, 0.0, combined[0].WithheldTax)
	assert.Equal(t, 2.00, combined[0].AmountAfterTax)
}

func TestDividendsTotalTaxCurrencyMustMatch(t *testing.T) {
	processor := NewDividendProcessor()

	combined := processor.DividendsTotal(
		[]models.Dividend{{Date: "2023-01-15", Symbol: "AAPL", Amount: 10.00, Currency: "USD"}},
		[]models.WithholdingTax{{Date: "2023-01-15", Symbol: "AAPL", Amount: -1.50, Currency: "EUR"}},
	)
	require.Len(t, combined, 1)
	assert.Equal(t, 0.0, combined[0].WithheldTax)
}

func TestDividendsTotalSplitTaxRowsSumBeforePairing(t *testing.T) {
	processor := NewDividendProcessor()

	combined := processor.DividendsTotal(
		[]models.Dividend{{Date: "2023-01-15", Symbol: "AAPL", Amount: 10.00, Currency: "USD"}},
		[]models.WithholdingTax{
			{Date: "2023-01-15", Symbol: "AAPL", Amount: -1.00, Currency: "USD"},
			{Date: "2023-01-15", Symbol: "AAPL", Amount: -0.50, Currency: "USD"},
		},
	)
	require.Len(t, combined, 1)

	assert.Equal(t, 1.50, combined[0].WithheldTax)
	assert.Equal(t, 8.50, combined[0].AmountAfterTax)
}

func TestDividendsTotalRoundingInvariant(t *testing.T) {
	processor := NewDividendProcessor()

	combined := processor.DividendsTotal(
		[]models.Dividend{
			{Date: "2023-01-15", Symbol: "TLT", Amount: 3.159288, Currency: "USD"},
		},
		[]models.WithholdingTax{
			{Date: "2023-01-15", Symbol: "TLT", Amount: -0.473893, Currency: "USD"},
		},
	)
	require.Len(t, combined, 1)

	got := combined[0]
	assert.InDelta(t, got.Amount, got.AmountAfterTax+got.WithheldTax, 0.01)
}

func TestDividendsTotalIdempotentOnGroupedInput(t *testing.T) {
	processor := NewDividendProcessor()

	dividends := []models.Dividend{
		{Date: "2023-01-15", Symbol: "AAPL", Amount: 10.00, Currency: "USD"},
		{Date: "2023-01-15", Symbol: "AAPL", Amount: 5.00, Currency: "USD"},
		{Date: "2023-02-15", Symbol: "MSFT", Amount: 7.00, Currency: "USD"},
	}

	first := processor.DividendsTotal(dividends, nil)

	regrouped := make([]models.Dividend, 0, len(first))
	for _, d := range first {
		regrouped = append(regrouped, models.Dividend{
			Date: d.Date, Symbol: d.Symbol, Amount: d.Amount, Currency: d.Currency,
		})
	}
	second := processor.DividendsTotal(regrouped, nil)

	assert.Equal(t, first, second, "aggregating already-grouped output changes nothing")
}
