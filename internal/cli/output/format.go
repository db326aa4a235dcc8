package output

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/boxoffice/internal/numfmt"
)

// FormatValue renders a scalar for text and markdown output. Plain floats
// use two grouped decimals.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case float64:
		return numfmt.Money(x).String()
	case float32:
		return numfmt.Money(float64(x)).String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatHeader returns a markdown header of the given level.
func FormatHeader(level int, text string) string {
	return strings.Repeat("#", max(level, 1)) + " " + text
}

// FormatKeyValue returns a markdown list item "- **key:** value".
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s:** %s", key, value)
}
