package ibkr

import (
	"golang.org/x/net/html"

	"github.com/username/pitfolio/backend/src/logger"
	"github.com/username/pitfolio/backend/src/models"
)

// ParseTrades extracts executed trades from the transactions section
// (container id prefixed "tblTransactions_"). The table interleaves data
// rows with asset-class headers ("Stocks", "Forex") and currency headers;
// both update running state and emit nothing themselves.
func ParseTrades(doc *html.Node) ([]models.Trade, error) {
	rows, err := sectionRows(doc, "tblTransactions_", "trades")
	if err != nil {
		return nil, err
	}

	var trades []models.Trade
	currentAssetType := ""
	currentCurrency := defaultCurrency

	for _, row := range rows {
		if firstDescendant(row, "th") != nil {
			continue
		}

		if assetCell := cellWithClass(row, "header-asset"); assetCell != nil {
			if text := nodeText(assetCell); text != "" {
				currentAssetType = text
			}
			continue
		}

		if currencyCell := cellWithClass(row, "header-currency"); currencyCell != nil {
			if text := nodeText(currencyCell); text != "" {
				currentCurrency = text
			}
			continue
		}

		cells := descendants(row, "td")
		// The per-symbol header cells read "Total ... Symbol" and must not
		// trip the total-row skip.
		if isTotalRow(row, cells, true) {
			continue
		}

		// Symbol, Date/Time, Quantity, T. Price, C. Price, Proceeds,
		// Comm/Fee, Basis, Realized P/L, MTM P/L, Code
		if len(cells) < 11 {
			continue
		}

		symbol := nodeText(cells[0])
		date := nodeText(cells[1])
		quantity := parseOptionalNumber(nodeText(cells[2]))
		tradePrice := parseOptionalNumber(nodeText(cells[3]))
		closingPrice := parseOptionalNumber(nodeText(cells[4]))
		proceeds := parseOptionalNumber(nodeText(cells[5]))
		commissionFee := parseOptionalNumber(nodeText(cells[6]))
		basis := parseOptionalNumber(nodeText(cells[7]))
		realizedPL := parseOptionalNumber(nodeText(cells[8]))
		mtmPL := parseOptionalNumber(nodeText(cells[9]))
		code := nodeText(cells[10])

		if symbol == "" || date == "" || quantity == nil || tradePrice == nil || proceeds == nil {
			if logger.L != nil {
				logger.L.Warn("Skipping invalid trade row", "symbol", symbol, "date", date)
			}
			continue
		}

		trade := models.Trade{
			Symbol:       symbol,
			Date:         date,
			Quantity:     *quantity,
			TradePrice:   *tradePrice,
			ClosingPrice: closingPrice,
			Proceeds:     *proceeds,
			Basis:        basis,
			RealizedPL:   realizedPL,
			MTMPL:        mtmPL,
			Code:         code,
			AssetType:    currentAssetType,
			Currency:     currentCurrency,
		}
		if commissionFee != nil {
			trade.CommissionFee = *commissionFee
		}
		trades = append(trades, trade)
	}

	return trades, nil
}
