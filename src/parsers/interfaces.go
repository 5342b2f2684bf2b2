package parsers

import (
	"io"

	"github.com/username/pitfolio/backend/src/models"
)

// StatementParser turns one raw statement file into typed records.
// Each Parse call starts with fresh extractor state; merging records across
// files is the caller's job.
type StatementParser interface {
	Parse(file io.Reader) (*models.ParsedStatement, error)
}
