package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/username/pitfolio/backend/src/logger"
	"github.com/username/pitfolio/backend/src/models"
	"github.com/username/pitfolio/backend/src/parsers"
	"github.com/username/pitfolio/backend/src/processors"
	"github.com/username/pitfolio/backend/src/security/validation"
	"github.com/username/pitfolio/backend/src/utils"
)

// ErrParsingFailed wraps extraction failures from any uploaded file. The
// whole upload aborts on the first failing file.
var ErrParsingFailed = errors.New("error parsing statement file")

// Polish dividend taxation: 19% flat tax, of which the US treaty withholding
// (15%) is creditable, leaving 4% payable at home.
const (
	totalTaxRate    = 0.19
	residualTaxRate = 0.04
)

type statementServiceImpl struct {
	parser            parsers.StatementParser
	dividendProcessor processors.DividendProcessor
	currencyService   CurrencyService
	sourceCurrency    string
	localCurrency     string
}

// NewStatementService wires the ingestion pipeline.
func NewStatementService(
	parser parsers.StatementParser,
	dividendProcessor processors.DividendProcessor,
	currencyService CurrencyService,
	sourceCurrency string,
	localCurrency string,
) StatementService {
	return &statementServiceImpl{
		parser:            parser,
		dividendProcessor: dividendProcessor,
		currencyService:   currencyService,
		sourceCurrency:    sourceCurrency,
		localCurrency:     localCurrency,
	}
}

// ProcessUpload parses every uploaded statement, merges the record lists,
// aggregates dividends against withholding taxes, fetches one rate table per
// distinct statement year and computes the per-year tax-form report.
func (s *statementServiceImpl) ProcessUpload(ctx context.Context, files []UploadedFile) (*models.UploadReport, error) {
	var (
		dividends []models.Dividend
		trades    []models.Trade
		taxes     []models.WithholdingTax
		years     []string
	)

	for _, file := range files {
		parsed, err := s.parser.Parse(file.Reader)
		if err != nil {
			return nil, fmt.Errorf("%w (%s): %w", ErrParsingFailed, file.Filename, err)
		}
		logger.L.Info("Statement parsed",
			"filename", file.Filename,
			"dividends", len(parsed.Dividends),
			"trades", len(parsed.Trades),
			"withholdingTaxes", len(parsed.WithholdingTaxes),
			"year", parsed.Year)

		dividends = append(dividends, sanitizeDividends(parsed.Dividends)...)
		trades = append(trades, sanitizeTrades(parsed.Trades)...)
		taxes = append(taxes, sanitizeWithholdingTaxes(parsed.WithholdingTaxes)...)
		if parsed.Year != "" {
			years = append(years, parsed.Year)
		}
	}

	sortByDateDesc(dividends, func(d models.Dividend) string { return d.Date })
	sortByDateDesc(taxes, func(t models.WithholdingTax) string { return t.Date })
	years = dedupeSortedDesc(years)

	combined := s.dividendProcessor.DividendsTotal(dividends, taxes)

	report := &models.UploadReport{
		Dividends:        combined,
		Trades:           trades,
		WithholdingTaxes: taxes,
		Years:            years,
		LocalCurrency:    s.localCurrency,
		Reports:          make(map[string]models.YearReport, len(years)),
	}

	if len(years) == 0 {
		return report, nil
	}

	rateTables, err := s.currencyService.RatesForYears(ctx, s.sourceCurrency, years)
	if err != nil {
		return nil, err
	}

	for _, year := range years {
		report.Reports[year] = buildYearReport(year, combined, rateTables[year])
	}
	return report, nil
}

// buildYearReport computes the PIT-38 section for one statement year from
// the aggregated dividends that fall into it.
func buildYearReport(year string, combined []models.CombinedDividendData, rates models.CurrencyData) models.YearReport {
	var localized []models.DividendWithLocalCurrency
	for _, dividend := range combined {
		if !strings.Contains(dividend.Date, year) {
			continue
		}
		localized = append(localized, models.DividendWithLocalCurrency{
			CombinedDividendData: dividend,
			CurrencyRate:         processors.RateForDate(dividend.Date, rates),
			LocalDate:            utils.FormatPolishDate(dividend.Date),
		})
	}

	var dividendsTotal, taxesPaid, taxesToPay float64
	for _, dividend := range localized {
		dividendsTotal += dividend.Amount * dividend.CurrencyRate
		taxesPaid += dividend.WithheldTax * dividend.CurrencyRate
		// Withheld tax abroad can exceed the treaty 15%, so the residual is
		// computed from the gross amount, not as taxTotal - taxesPaid.
		taxesToPay += dividend.Amount * residualTaxRate * dividend.CurrencyRate
	}
	taxTotal := utils.RoundFloat(dividendsTotal*totalTaxRate, 2)

	return models.YearReport{
		Year:           year,
		Dividends:      localized,
		DividendsTotal: utils.RoundFloat(dividendsTotal, 2),
		TaxTotal:       taxTotal,
		TaxesPaid:      utils.RoundFloat(taxesPaid, 2),
		TaxesToPay:     utils.RoundFloat(taxesToPay, 2),
		Cells: []models.TaxFormCell{
			{
				Cell:        "-",
				Total:       fmt.Sprintf("%.2f", dividendsTotal),
				Description: "Suma wypłat dywidend zagranicznych - podstawa opodatkowania (wiersz pomocniczy)",
			},
			{
				Cell:        "G.45",
				Total:       fmt.Sprintf("%.2f", taxTotal),
				Description: "Zryczałtowany podatek obliczony od przychodów (dochodów), o których mowa w art. 30a ust. 1 pkt 1-5 ustawy, uzyskanych poza granicami Rzeczypospolitej Polskiej",
			},
			{
				Cell:        "G.46",
				Total:       fmt.Sprintf("%.2f", taxesPaid),
				Description: "Podatek zapłacony za granicą, o którym mowa w art. 30a ust. 9 ustawy",
			},
			{
				Cell:        "G.47",
				Total:       fmt.Sprintf("%.2f", taxesToPay),
				Description: "Różnica między zryczałtowanym podatkiem a podatkiem zapłaconym za granicą",
			},
		},
	}
}

func sanitizeDividends(dividends []models.Dividend) []models.Dividend {
	for i := range dividends {
		dividends[i].Symbol = validation.SanitizeText(dividends[i].Symbol)
		dividends[i].Currency = validation.SanitizeText(dividends[i].Currency)
	}
	return dividends
}

func sanitizeTrades(trades []models.Trade) []models.Trade {
	for i := range trades {
		trades[i].Symbol = validation.SanitizeText(trades[i].Symbol)
		trades[i].Code = validation.SanitizeText(trades[i].Code)
		trades[i].AssetType = validation.SanitizeText(trades[i].AssetType)
		trades[i].Currency = validation.SanitizeText(trades[i].Currency)
	}
	return trades
}

func sanitizeWithholdingTaxes(taxes []models.WithholdingTax) []models.WithholdingTax {
	for i := range taxes {
		taxes[i].Symbol = validation.SanitizeText(taxes[i].Symbol)
		taxes[i].Code = validation.SanitizeText(taxes[i].Code)
		taxes[i].Currency = validation.SanitizeText(taxes[i].Currency)
	}
	return taxes
}

// sortByDateDesc sorts records newest-first. Records whose date fails to
// parse sink to the end, keeping their relative order.
func sortByDateDesc[T any](records []T, dateOf func(T) string) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, errI := utils.ParseStatementDate(dateOf(records[i]))
		tj, errJ := utils.ParseStatementDate(dateOf(records[j]))
		if errI != nil {
			return false
		}
		if errJ != nil {
			return true
		}
		return ti.After(tj)
	})
}

func dedupeSortedDesc(years []string) []string {
	seen := make(map[string]bool, len(years))
	out := make([]string, 0, len(years))
	for _, y := range years {
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}
