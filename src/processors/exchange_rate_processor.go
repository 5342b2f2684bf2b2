package processors

import (
	"time"

	"github.com/username/pitfolio/backend/src/logger"
	"github.com/username/pitfolio/backend/src/models"
	"github.com/username/pitfolio/backend/src/utils"
)

// MaxDaysShift bounds the backward day-by-day search for an exchange rate.
// The statement date may fall on a weekend or holiday with no published
// rate, so the resolver walks back up to this many days.
const MaxDaysShift = 10

// RateForDate returns the mid exchange rate for the given statement date.
//
// Exact effectiveDate match wins; otherwise the target date shifts back one
// day at a time. After MaxDaysShift failed attempts the resolver falls back
// to the first rate in the table as supplied by the provider (NBP returns
// ascending dates, so this is the earliest rate of the year, not the
// nearest), or 1 when the table is empty. A table covers a single calendar
// year, so dates early in January may exhaust the shift without reaching the
// prior year's rates; that lookback limit is part of the contract.
func RateForDate(dateStr string, data models.CurrencyData) float64 {
	target, err := utils.ParseStatementDate(dateStr)
	if err != nil {
		if logger.L != nil {
			logger.L.Warn("Cannot parse dividend date for rate lookup", "date", dateStr, "error", err)
		}
		return fallbackRate(data)
	}

	for shift := 0; shift < MaxDaysShift; shift++ {
		day := target.AddDate(0, 0, -shift)
		for _, rate := range data.Rates {
			effective, err := time.Parse(utils.StatementDateFormat, rate.EffectiveDate)
			if err != nil {
				continue
			}
			if effective.Equal(day) {
				return rate.Mid
			}
		}
	}

	return fallbackRate(data)
}

func fallbackRate(data models.CurrencyData) float64 {
	if len(data.Rates) > 0 {
		return data.Rates[0].Mid
	}
	return 1
}
