package ibkr

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"

	"github.com/username/pitfolio/backend/src/models"
)

// ErrSectionNotFound means a required statement section container is missing
// from the document. Fatal for that file's extraction.
var ErrSectionNotFound = errors.New("statement section not found")

// ErrTableNotFound means the section container exists but no table is nested
// inside it.
var ErrTableNotFound = errors.New("no table found in statement section")

// IBKRParser implements parsers.StatementParser for IBKR HTML activity
// statements.
type IBKRParser struct{}

// NewParser creates a new instance of the IBKRParser.
func NewParser() *IBKRParser {
	return &IBKRParser{}
}

// Parse reads one HTML activity statement and extracts its dividend, trade
// and withholding-tax records plus the statement year. Extractor state
// (running currency, asset type) is fresh per call.
func (p *IBKRParser) Parse(file io.Reader) (*models.ParsedStatement, error) {
	doc, err := html.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("ibkr parser: failed to parse HTML: %w", err)
	}

	dividends, err := ParseDividends(doc)
	if err != nil {
		return nil, err
	}
	trades, err := ParseTrades(doc)
	if err != nil {
		return nil, err
	}
	taxes, err := ParseWithholdingTax(doc)
	if err != nil {
		return nil, err
	}

	return &models.ParsedStatement{
		Dividends:        dividends,
		Trades:           trades,
		WithholdingTaxes: taxes,
		Year:             ParseYear(doc),
	}, nil
}
