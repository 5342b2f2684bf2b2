package ibkr

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var yearRe = regexp.MustCompile(`\b\d{4}\b`)

// ParseTicker derives the ticker symbol from a free-text description such as
// "TLT(US00000000) Cash Dividend USD 0.351032 per Share - US Tax": the
// trimmed text before the first "(". Descriptions without a parenthesis
// yield no symbol, which makes the caller drop the row.
func ParseTicker(text string) string {
	idx := strings.Index(text, "(")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(text[:idx])
}

// ParseYear extracts a standalone 4-digit year from the document title, or
// returns "" when the title is missing or carries no such token.
func ParseYear(doc *html.Node) string {
	title := firstDescendant(doc, "title")
	if title == nil {
		return ""
	}
	return yearRe.FindString(nodeText(title))
}
