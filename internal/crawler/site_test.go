package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategory(t *testing.T) {
	tests := map[string]string{
		"TV":              "tv",
		"Bærbare PC-er":   "baerbarepcer",
		"Robotstøvsugere": "robotstovsugere",
		"Smart klokker":   "smartklokker",
		"Spill/konsoller": "spillkonsoller",
		"Håndmiksere":     "handmiksere",
		"ÆØÅ":             "aeoa",
		"":                "",
	}

	for input, expected := range tests {
		assert.Equal(t, expected, NormalizeCategory(input), input)
	}
}

func TestSite_ListingURL(t *testing.T) {
	site := Prisjakt()

	u, ok := site.ListingURL("Bærbare PC-er")
	assert.True(t, ok)
	assert.Equal(t, "https://www.prisjakt.no/c/baerbare-pc-er", u)

	for _, category := range DefaultCategories {
		_, ok := site.ListingURL(category)
		assert.True(t, ok, category)
	}

	_, ok = site.ListingURL("Kaffetrakter")
	assert.False(t, ok)
}

func TestSite_SearchURLs(t *testing.T) {
	assert.Equal(t, []string{
		"https://www.prisjakt.no/search?q=B%C3%A6rbare+PC-er",
		"https://www.prisjakt.no/?q=B%C3%A6rbare+PC-er",
	}, Prisjakt().SearchURLs("Bærbare PC-er"))
}

func TestSite_CanonicalProductURL(t *testing.T) {
	site := Prisjakt()

	tests := []struct {
		link     string
		expected string
		ok       bool
	}{
		{"/product.php?p=5412345", "https://www.prisjakt.no/product.php?p=5412345", true},
		{"https://www.prisjakt.no/product.php?p=42&o=1#prices", "https://www.prisjakt.no/product.php?p=42", true},
		{"http://www.prisjakt.no/product.php?p=7", "http://www.prisjakt.no/product.php?p=7", true},
		{"/c/tv", "", false},
		{"https://example.com/?u=https://www.prisjakt.no/product.php?p=1", "", false},
		{"/product.php?p=abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		u, ok := site.CanonicalProductURL(tt.link)
		assert.Equal(t, tt.ok, ok, tt.link)
		assert.Equal(t, tt.expected, u, tt.link)
	}
}

func TestSite_CleanTitle(t *testing.T) {
	site := Prisjakt()
	assert.Equal(t, "Samsung QE55Q80D", site.CleanTitle("Samsung QE55Q80D – Prisjakt"))
	assert.Equal(t, "Wi-Fi 6 router", site.CleanTitle("Wi-Fi 6 router - Prisjakt Norge"))
	assert.Equal(t, "Uten suffiks", site.CleanTitle("  Uten suffiks "))
	assert.Equal(t, "", site.CleanTitle(""))
}
