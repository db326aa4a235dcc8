package numfmt

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name string
		n    Number
		want string
	}{
		{name: "money", n: Money(1234567.891), want: "1,234,567.89"},
		{name: "grouped slope", n: Grouped(6.8406614, 6), want: "6.840661"},
		{name: "negative grouped", n: Grouped(-159991614.6868, 2), want: "-159,991,614.69"},
		{name: "fixed", n: Fixed(0.4, 4), want: "0.4000"},
		{name: "nan", n: Money(math.NaN()), want: "NaN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.n.String())
		})
	}

	b, err := json.Marshal(Fixed(0.4, 4))
	require.NoError(t, err)
	assert.JSONEq(t, "0.4", string(b))

	b, err = json.Marshal(Money(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}
