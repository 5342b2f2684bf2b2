package ibkr

import (
	"golang.org/x/net/html"

	"github.com/username/pitfolio/backend/src/logger"
	"github.com/username/pitfolio/backend/src/models"
)

// ParseDividends extracts dividend rows from the combined dividends section
// (container id prefixed "tblCombDiv"). Currency section headers inside the
// table update the running currency for the rows that follow.
func ParseDividends(doc *html.Node) ([]models.Dividend, error) {
	rows, err := sectionRows(doc, "tblCombDiv", "dividends")
	if err != nil {
		return nil, err
	}

	var dividends []models.Dividend
	currentCurrency := defaultCurrency

	for _, row := range rows {
		if firstDescendant(row, "th") != nil {
			continue
		}

		if currencyCell := cellWithClass(row, "header-currency"); currencyCell != nil {
			if text := nodeText(currencyCell); text != "" {
				currentCurrency = text
			}
			continue
		}

		cells := descendants(row, "td")
		if isTotalRow(row, cells, false) {
			continue
		}

		// Date, Description, Amount
		if len(cells) < 3 {
			continue
		}
		date := nodeText(cells[0])
		description := nodeText(cells[1])
		amount := parseAmount(nodeText(cells[2]))
		symbol := ParseTicker(description)

		if date == "" || symbol == "" {
			if logger.L != nil {
				logger.L.Warn("Skipping invalid dividend row", "date", date, "description", description, "amount", amount)
			}
			continue
		}

		dividends = append(dividends, models.Dividend{
			Date:     date,
			Symbol:   symbol,
			Amount:   amount,
			Currency: currentCurrency,
		})
	}

	return dividends, nil
}
