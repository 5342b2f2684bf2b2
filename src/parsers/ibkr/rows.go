package ibkr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

const defaultCurrency = "USD"

// notNumericRe strips everything except digits, dot and minus before
// numeric parsing. Thousand separators and currency signs go away with it.
var notNumericRe = regexp.MustCompile(`[^0-9.\-]`)

// sectionRows locates the statement section whose container id starts with
// idPrefix, finds the table nested in it and returns the table's rows in
// document order.
func sectionRows(doc *html.Node, idPrefix, sectionName string) ([]*html.Node, error) {
	container := findElementByIDPrefix(doc, idPrefix)
	if container == nil {
		return nil, fmt.Errorf("%s: %w", sectionName, ErrSectionNotFound)
	}

	table := firstDescendant(container, "table")
	if table == nil {
		return nil, fmt.Errorf("%s: %w", sectionName, ErrTableNotFound)
	}

	return descendants(table, "tr"), nil
}

// isTotalRow reports whether the row is a subtotal/total row. Such rows are
// flagged either by row class or by any cell whose text contains "total".
// The trades table labels its per-symbol header cells "Total ... Symbol";
// keepSymbolCells exempts those from the textual check.
func isTotalRow(row *html.Node, cells []*html.Node, keepSymbolCells bool) bool {
	if hasClass(row, "subtotal") || hasClass(row, "total") {
		return true
	}
	for _, cell := range cells {
		text := strings.ToLower(nodeText(cell))
		if !strings.Contains(text, "total") {
			continue
		}
		if keepSymbolCells && strings.Contains(text, "symbol") {
			continue
		}
		return true
	}
	return false
}

// parseAmount parses a cleaned monetary cell, defaulting to zero when the
// cell holds no parseable number.
func parseAmount(text string) float64 {
	cleaned := notNumericRe.ReplaceAllString(text, "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// parseOptionalNumber parses a numeric cell that the broker may leave empty.
// Empty text, "--" and bare non-breaking space all mean "no value", which is
// distinct from zero.
func parseOptionalNumber(text string) *float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "--" || trimmed == " " || trimmed == "&nbsp;" {
		return nil
	}
	cleaned := notNumericRe.ReplaceAllString(trimmed, "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}
