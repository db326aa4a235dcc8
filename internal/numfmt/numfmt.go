// Package numfmt holds display numbers: floats that carry their own
// precision and grouping, formatted with thousands separators.
package numfmt

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Number is a float with a fixed number of decimal places, optionally
// grouped with thousands separators. JSON output keeps the raw value.
type Number struct {
	Value   float64
	Places  int
	Grouped bool
}

// Money formats v like "1,234,567.89".
func Money(v float64) Number {
	return Number{Value: v, Places: 2, Grouped: true}
}

// Grouped formats v with thousands separators and places decimals.
func Grouped(v float64, places int) Number {
	return Number{Value: v, Places: places, Grouped: true}
}

// Fixed formats v with places decimals and no grouping.
func Fixed(v float64, places int) Number {
	return Number{Value: v, Places: places}
}

func (n Number) String() string {
	switch {
	case math.IsNaN(n.Value):
		return "NaN"
	case math.IsInf(n.Value, 0):
		return strconv.FormatFloat(n.Value, 'f', -1, 64)
	case n.Grouped:
		return printer.Sprintf(fmt.Sprintf("%%.%df", n.Places), n.Value)
	default:
		return strconv.FormatFloat(n.Value, 'f', n.Places, 64)
	}
}

// MarshalJSON writes the unformatted value, or null for NaN and Inf.
func (n Number) MarshalJSON() ([]byte, error) {
	if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}
