package parsers

import (
	"fmt"

	"github.com/username/pitfolio/backend/src/parsers/ibkr"
)

func GetParser(source string) (StatementParser, error) {
	switch source {
	case "ibkr":
		return ibkr.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
