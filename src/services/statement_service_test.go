package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/pitfolio/backend/src/models"
	"github.com/username/pitfolio/backend/src/parsers/ibkr"
	"github.com/username/pitfolio/backend/src/processors"
)

const testStatement2023 = `<html>
<head><title>Activity Statement 2023 - Annual</title></head>
<body>
<div id="tblCombDiv_U1234567">
  <table>
    <tr><th>Date</th><th>Description</th><th>Amount</th></tr>
    <tr><td class="header-currency" colspan="3">USD</td></tr>
    <tr><td>2023-01-16</td><td>AAPL(US0378331005) Cash Dividend USD 0.23 per Share</td><td>10.00</td></tr>
    <tr><td>2023-01-16</td><td>AAPL(US0378331005) Cash Dividend USD 0.23 per Share</td><td>5.00</td></tr>
    <tr class="total"><td></td><td>Total</td><td>15.00</td></tr>
  </table>
</div>
<div id="tblTransactions_U1234567">
  <table>
    <tr><th>Symbol</th><th>Date/Time</th><th>Quantity</th><th>T. Price</th><th>C. Price</th><th>Proceeds</th><th>Comm/Fee</th><th>Basis</th><th>Realized P/L</th><th>MTM P/L</th><th>Code</th></tr>
    <tr><td class="header-asset" colspan="11">Stocks</td></tr>
    <tr><td>AAPL</td><td>2023-01-10, 09:45:12</td><td>10</td><td>130.50</td><td>131.00</td><td>-1,305.00</td><td>-1.00</td><td>1,306.00</td><td>--</td><td>5.00</td><td>O</td></tr>
  </table>
</div>
<div id="tblWithholdingTax_U1234567">
  <table>
    <tr><th>Date</th><th>Description</th><th>Amount</th><th>Code</th></tr>
    <tr><td class="header-currency" colspan="4">USD</td></tr>
    <tr><td>2023-01-16</td><td>AAPL(US0378331005) Cash Dividend USD 0.23 per Share - US Tax</td><td>-2.25</td><td>Re</td></tr>
  </table>
</div>
</body></html>`

// fakeCurrencyService serves a fixed rate table for every requested year and
// records which years were asked for.
type fakeCurrencyService struct {
	table          models.CurrencyData
	err            error
	requestedYears []string
}

func (f *fakeCurrencyService) RatesForYear(ctx context.Context, currency, year string) (models.CurrencyData, error) {
	if f.err != nil {
		return models.CurrencyData{}, f.err
	}
	return f.table, nil
}

func (f *fakeCurrencyService) RatesForYears(ctx context.Context, currency string, years []string) (map[string]models.CurrencyData, error) {
	f.requestedYears = years
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]models.CurrencyData, len(years))
	for _, year := range years {
		out[year] = f.table
	}
	return out, nil
}

func newTestStatementService(currencySvc CurrencyService) StatementService {
	return NewStatementService(ibkr.NewParser(), processors.NewDividendProcessor(), currencySvc, "USD", "PLN")
}

func TestProcessUploadEndToEnd(t *testing.T) {
	currencySvc := &fakeCurrencyService{
		table: models.CurrencyData{
			Code: "USD",
			Rates: []models.CurrencyRate{
				{EffectiveDate: "2023-01-16", Mid: 4.0},
			},
		},
	}
	service := newTestStatementService(currencySvc)

	report, err := service.ProcessUpload(context.Background(), []UploadedFile{
		{Filename: "statement_2023.html", Reader: strings.NewReader(testStatement2023)},
	})
	require.NoError(t, err)

	require.Len(t, report.Dividends, 1, "two split rows aggregate into one group")
	combined := report.Dividends[0]
	assert.Equal(t, "AAPL", combined.Symbol)
	assert.Equal(t, 15.00, combined.Amount)
	assert.Equal(t, 2.25, combined.WithheldTax)
	assert.Equal(t, 12.75, combined.AmountAfterTax)
	assert.Equal(t, 15.0, combined.TaxPercentage)

	assert.Len(t, report.Trades, 1)
	assert.Len(t, report.WithholdingTaxes, 1)
	assert.Equal(t, []string{"2023"}, report.Years)
	assert.Equal(t, []string{"2023"}, currencySvc.requestedYears)
	assert.Equal(t, "PLN", report.LocalCurrency)

	yearReport, ok := report.Reports["2023"]
	require.True(t, ok)
	require.Len(t, yearReport.Dividends, 1)
	assert.Equal(t, 4.0, yearReport.Dividends[0].CurrencyRate)
	assert.Equal(t, "16.01.2023", yearReport.Dividends[0].LocalDate)

	// 15 USD * 4.0 = 60 PLN gross
	assert.InDelta(t, 60.00, yearReport.DividendsTotal, 0.001)
	// 19% flat tax on the gross
	assert.InDelta(t, 11.40, yearReport.TaxTotal, 0.001)
	// 2.25 USD withheld * 4.0
	assert.InDelta(t, 9.00, yearReport.TaxesPaid, 0.001)
	// 4% residual on the gross
	assert.InDelta(t, 2.40, yearReport.TaxesToPay, 0.001)

	require.Len(t, yearReport.Cells, 4)
	assert.Equal(t, "G.45", yearReport.Cells[1].Cell)
	assert.Equal(t, "11.40", yearReport.Cells[1].Total)
	assert.Equal(t, "G.46", yearReport.Cells[2].Cell)
	assert.Equal(t, "9.00", yearReport.Cells[2].Total)
	assert.Equal(t, "G.47", yearReport.Cells[3].Cell)
	assert.Equal(t, "2.40", yearReport.Cells[3].Total)
}

func TestProcessUploadMergesMultipleFiles(t *testing.T) {
	statement2022 := strings.ReplaceAll(testStatement2023, "2023", "2022")

	currencySvc := &fakeCurrencyService{
		table: models.CurrencyData{
			Code:  "USD",
			Rates: []models.CurrencyRate{{EffectiveDate: "2023-01-16", Mid: 4.0}, {EffectiveDate: "2022-01-16", Mid: 4.1}},
		},
	}
	service := newTestStatementService(currencySvc)

	report, err := service.ProcessUpload(context.Background(), []UploadedFile{
		{Filename: "statement_2023.html", Reader: strings.NewReader(testStatement2023)},
		{Filename: "statement_2022.html", Reader: strings.NewReader(statement2022)},
	})
	require.NoError(t, err)

	assert.Len(t, report.Dividends, 2, "per-file groups stay distinct across years")
	assert.Equal(t, []string{"2023", "2022"}, report.Years, "years sort descending")
	assert.Len(t, report.Reports, 2)

	// dividends sort newest-first across files
	assert.Equal(t, "2023-01-16", report.Dividends[0].Date)
	assert.Equal(t, "2022-01-16", report.Dividends[1].Date)
}

func TestProcessUploadMissingSectionAborts(t *testing.T) {
	service := newTestStatementService(&fakeCurrencyService{})

	_, err := service.ProcessUpload(context.Background(), []UploadedFile{
		{Filename: "empty.html", Reader: strings.NewReader(`<html><body><p>nothing here</p></body></html>`)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParsingFailed)
	assert.ErrorContains(t, err, "empty.html")
}

func TestProcessUploadCurrencyFailureAborts(t *testing.T) {
	service := newTestStatementService(&fakeCurrencyService{err: ErrCurrencyFetchFailed})

	_, err := service.ProcessUpload(context.Background(), []UploadedFile{
		{Filename: "statement_2023.html", Reader: strings.NewReader(testStatement2023)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCurrencyFetchFailed)
}

func TestProcessUploadNoYearsSkipsCurrencyFetch(t *testing.T) {
	noTitle := strings.Replace(testStatement2023, "<title>Activity Statement 2023 - Annual</title>", "<title>Activity Statement</title>", 1)

	currencySvc := &fakeCurrencyService{}
	service := newTestStatementService(currencySvc)

	report, err := service.ProcessUpload(context.Background(), []UploadedFile{
		{Filename: "statement.html", Reader: strings.NewReader(noTitle)},
	})
	require.NoError(t, err)

	assert.Empty(t, report.Years)
	assert.Empty(t, report.Reports)
	assert.Nil(t, currencySvc.requestedYears, "no fetch without a statement year")
	assert.Len(t, report.Dividends, 1, "records still come back without a year")
}
