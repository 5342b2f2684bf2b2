package ibkr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTicker(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "standard dividend description",
			text: "TLT(US00000000) Cash Dividend USD 0.351032 per Share - US Tax",
			want: "TLT",
		},
		{
			name: "ticker with whitespace before parenthesis",
			text: "AAPL (US0378331005) Cash Dividend",
			want: "AAPL",
		},
		{
			name: "no parenthesis yields no symbol",
			text: "Cash Dividend USD 0.35 per Share",
			want: "",
		},
		{
			name: "leading parenthesis yields no symbol",
			text: "(US0378331005) Cash Dividend",
			want: "",
		},
		{
			name: "empty input",
			text: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTicker(tt.text))
		})
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "year in statement title",
			title: "Statement 2022 - Annual",
			want:  "2022",
		},
		{
			name:  "first standalone four-digit token wins",
			title: "Activity 2021 covering 2022",
			want:  "2021",
		},
		{
			name:  "no four-digit run",
			title: "Statement - Annual",
			want:  "",
		},
		{
			name:  "longer digit runs do not match",
			title: "Account U12345678",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParseHTML(t, `<html><head><title>`+tt.title+`</title></head><body></body></html>`)
			assert.Equal(t, tt.want, ParseYear(doc))
		})
	}
}

func TestParseYearNoTitle(t *testing.T) {
	doc := mustParseHTML(t, `<html><body><p>2023</p></body></html>`)
	// html.Parse synthesizes head/title-free documents; the year must come
	// from the title element only
	require.Equal(t, "", ParseYear(doc))
}
