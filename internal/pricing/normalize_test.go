package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		present  bool
	}{
		{"space thousands with decimals", "1 234,50", 1234.50, true},
		{"dot thousands with decimals", "1.234,50", 1234.50, true},
		{"no-break space", "1\u00a0234 kr", 1234, true},
		{"narrow no-break space", "12\u202f999,-", 12999, true},
		{"trailing currency", "999 kr", 999, true},
		{"leading label", "fra 4 490", 4490, true},
		{"not a number", "n/a", 0, false},
		{"empty", "", 0, false},
		{"two decimal commas", "1,234,50", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.input)
			v, ok := got.Get()
			assert.Equal(t, tt.present, ok)
			if tt.present {
				assert.InDelta(t, tt.expected, v, 0.0001)
			}
		})
	}
}

func TestParsePrice_StopsAtLineBreak(t *testing.T) {
	v, ok := ParsePrice("1 250\n2025").Get()
	assert.True(t, ok)
	assert.Equal(t, 1250.0, v)
}

func TestParseLocalDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		present  bool
	}{
		{"1. aug 2025", "01.08.2025", true},
		{"1 aug. 2025", "01.08.2025", true},
		{"15. desember 2024", "15.12.2024", true},
		{"3. MAI 2023", "03.05.2023", true},
		{"01.08.2025", "01.08.2025", true},
		{"1/8/25", "01.08.2025", true},
		{"29-02-2024", "29.02.2024", true},
		{"31. feb 2024", "", false},
		{"31.04.2025", "", false},
		{"29.02.2023", "", false},
		{"1. foo 2025", "", false},
		{"13.13.2025", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLocalDate(tt.input).Get()
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseLocalDate_RoundTrip(t *testing.T) {
	for _, canonical := range []string{"01.01.2024", "29.02.2024", "31.12.2025", "15.06.2030"} {
		got, ok := ParseLocalDate(canonical).Get()
		assert.True(t, ok, canonical)
		assert.Equal(t, canonical, got)
	}
}

func TestOptional(t *testing.T) {
	absent := None[float64]()
	assert.False(t, absent.Present())
	assert.Nil(t, absent.Ptr())
	assert.Equal(t, 7.0, absent.OrElse(7))

	zero := Some(0.0)
	assert.True(t, zero.Present())
	assert.Equal(t, 0.0, *zero.Ptr())

	data, err := absent.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, "null", string(data))

	data, err = Some(12.5).MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, "12.5", string(data))
}
