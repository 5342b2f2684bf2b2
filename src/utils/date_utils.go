package utils

import (
	"strings"
	"time"
)

// StatementDateFormat is the date layout used by the broker statements and
// by the exchange-rate provider's effectiveDate field.
const StatementDateFormat = "2006-01-02"

// PolishDateFormat is the layout used when rendering dates for the tax form.
const PolishDateFormat = "02.01.2006"

// ParseStatementDate parses a statement date string. Trade dates carry a
// time suffix ("2023-01-15, 09:30:00"); only the date part is significant.
func ParseStatementDate(dateStr string) (time.Time, error) {
	datePart := strings.TrimSpace(dateStr)
	if idx := strings.Index(datePart, ","); idx >= 0 {
		datePart = strings.TrimSpace(datePart[:idx])
	}
	return time.Parse(StatementDateFormat, datePart)
}

// FormatPolishDate renders a statement date in the local dd.mm.yyyy form.
// Unparseable dates are returned unchanged.
func FormatPolishDate(dateStr string) string {
	t, err := ParseStatementDate(dateStr)
	if err != nil {
		return dateStr
	}
	return t.Format(PolishDateFormat)
}
