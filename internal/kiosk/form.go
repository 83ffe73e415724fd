package kiosk

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dispenagua/kiosk/internal/vending"
)

// ProductForm holds the raw add-product inputs as typed by the admin
type ProductForm struct {
	Name   string `json:"name"`
	Volume string `json:"volume"`
	Price  string `json:"price"`
}

var (
	intPrefix     = regexp.MustCompile(`^[+-]?\d+`)
	decimalPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)
)

// Parse turns the form into a create request. Numbers are read from the leading
// numeric part of each field ("350ml" is 350); a field without one becomes nil
// and is sent as null, and so does a price beyond float64 range. Nothing is
// validated.
func (f ProductForm) Parse() vending.NewProduct {
	return vending.NewProduct{
		Name:     f.Name,
		VolumeML: parseIntPrefix(f.Volume),
		Price:    parseDecimalPrefix(f.Price),
	}
}

func parseIntPrefix(s string) *decimal.Decimal {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return nil
	}
	// digits only, so the size is bounded by the input
	d, err := decimal.NewFromString(m)
	if err != nil {
		return nil
	}
	return &d
}

func parseDecimalPrefix(s string) *decimal.Decimal {
	m := decimalPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return nil
	}

	// The exponent is unbounded in the pattern; float64 range caps it before
	// decimal expands it digit by digit.
	f, err := strconv.ParseFloat(m, 64)
	if math.IsInf(f, 0) {
		return nil
	}
	if err != nil {
		// underflow
		zero := decimal.Zero
		return &zero
	}

	d, err := decimal.NewFromString(m)
	if err != nil {
		return nil
	}
	return &d
}
