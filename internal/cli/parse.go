package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount reads a money or percentage value typed by a user. Both
// "1.234,56" and "1234.56" are accepted, with an optional "R$" or "%".
func ParseAmount(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "R$")
	clean = strings.TrimSuffix(clean, "%")
	clean = strings.ReplaceAll(clean, " ", "")
	if clean == "" {
		return 0, errors.New("empty amount")
	}

	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return d.InexactFloat64(), nil
}
