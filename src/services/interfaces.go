package services

import (
	"context"
	"io"

	"github.com/username/pitfolio/backend/src/models"
)

// UploadedFile is one statement file taken from the multipart request.
type UploadedFile struct {
	Filename string
	Reader   io.Reader
}

// StatementService runs the full ingestion pipeline: parse every uploaded
// file, merge records, aggregate dividends against withholding taxes,
// resolve exchange rates per statement year and compute the tax-form report.
type StatementService interface {
	ProcessUpload(ctx context.Context, files []UploadedFile) (*models.UploadReport, error)
}

// CurrencyService fetches per-year exchange-rate tables from the provider.
type CurrencyService interface {
	// RatesForYear returns the table for one currency and calendar year.
	RatesForYear(ctx context.Context, currency, year string) (models.CurrencyData, error)
	// RatesForYears fetches all years concurrently; any failure fails the
	// whole call with no partial result.
	RatesForYears(ctx context.Context, currency string, years []string) (map[string]models.CurrencyData, error)
}

// RateStore is a persistent cache of fetched rate tables. Implementations
// are best-effort: a miss or write failure only costs a refetch.
type RateStore interface {
	Get(currency, year string) (models.CurrencyData, bool)
	Put(currency, year string, data models.CurrencyData)
}
