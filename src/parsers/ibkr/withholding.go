package ibkr

import (
	"golang.org/x/net/html"

	"github.com/username/pitfolio/backend/src/logger"
	"github.com/username/pitfolio/backend/src/models"
)

// ParseWithholdingTax extracts withholding-tax rows from the section whose
// container id is prefixed "tblWithholdingTax_". Amounts are kept signed;
// deductions come through negative.
func ParseWithholdingTax(doc *html.Node) ([]models.WithholdingTax, error) {
	rows, err := sectionRows(doc, "tblWithholdingTax_", "withholding tax")
	if err != nil {
		return nil, err
	}

	var taxes []models.WithholdingTax
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

		// Date, Description, Amount, Code
		if len(cells) < 4 {
			continue
		}
		date := nodeText(cells[0])
		description := nodeText(cells[1])
		amount := parseAmount(nodeText(cells[2]))
		code := nodeText(cells[3])
		symbol := ParseTicker(description)

		if date == "" || symbol == "" {
			if logger.L != nil {
				logger.L.Warn("Skipping invalid withholding tax row", "date", date, "description", description, "amount", amount)
			}
			continue
		}

		taxes = append(taxes, models.WithholdingTax{
			Date:     date,
			Symbol:   symbol,
			Amount:   amount,
			Code:     code,
			Currency: currentCurrency,
		})
	}

	return taxes, nil
}
