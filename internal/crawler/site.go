package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"sjsage522/prisagent/helpers"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultCategories are discovered when no categories are configured
var DefaultCategories = []string{
	"TV",
	"Mobiltelefoner",
	"Bærbare PC-er",
	"Hodetelefoner",
	"Robotstøvsugere",
	"Skjermer",
	"Smartklokker",
}

// Prisjakt returns the site description for prisjakt.no
func Prisjakt() Site {
	return Site{
		BaseURL: "https://www.prisjakt.no",
		Categories: map[string]string{
			"tv":              "https://www.prisjakt.no/c/tv",
			"mobiltelefoner":  "https://www.prisjakt.no/c/mobiltelefoner",
			"baerbarepcer":    "https://www.prisjakt.no/c/baerbare-pc-er",
			"hodetelefoner":   "https://www.prisjakt.no/c/hodetelefoner",
			"skjermer":        "https://www.prisjakt.no/c/skjermer",
			"smartklokker":    "https://www.prisjakt.no/c/smartklokker",
			"robotstovsugere": "https://www.prisjakt.no/c/robotstovsugere",
			"nettbrett":       "https://www.prisjakt.no/c/nettbrett",
			"spillkonsoller":  "https://www.prisjakt.no/c/spillkonsoller",
		},
		SearchTemplates: []string{
			"https://www.prisjakt.no/search?q=%s",
			"https://www.prisjakt.no/?q=%s",
		},
		Selectors: Selectors{
			ProductLink:     "a[href*='product.php?p=']",
			ProductLinkAttr: "href",
		},
		ProductURLRe:  regexp.MustCompile(`https?://www\.prisjakt\.no/product\.php\?p=\d+`),
		TitleSuffixRe: regexp.MustCompile(`\s*[–-]\s*Prisjakt.*$`),
	}
}

// ListingURL looks up the category listing page for a user-supplied category name
func (s Site) ListingURL(category string) (string, bool) {
	u, ok := s.Categories[NormalizeCategory(category)]
	return u, ok
}

// SearchURLs returns the keyword search pages tried in order
func (s Site) SearchURLs(keyword string) []string {
	urls := make([]string, 0, len(s.SearchTemplates))
	for _, tmpl := range s.SearchTemplates {
		urls = append(urls, fmt.Sprintf(tmpl, url.QueryEscape(keyword)))
	}
	return urls
}

// CanonicalProductURL resolves link against the site and trims it to the product URL
// shape. Links that do not start with a product URL are rejected.
func (s Site) CanonicalProductURL(link string) (string, bool) {
	if link == "" {
		return "", false
	}
	abs := helpers.ResolveURL(s.BaseURL, link)
	loc := s.ProductURLRe.FindStringIndex(abs)
	if loc == nil || loc[0] != 0 {
		return "", false
	}
	return abs[:loc[1]], true
}

// CleanTitle strips the trailing site name from a page title
func (s Site) CleanTitle(title string) string {
	if s.TitleSuffixRe == nil {
		return strings.TrimSpace(title)
	}
	return strings.TrimSpace(s.TitleSuffixRe.ReplaceAllString(title, ""))
}

// NormalizeCategory folds a category name to its lookup key:
// "Bærbare PC-er" becomes "baerbarepcer", "Robotstøvsugere" becomes "robotstovsugere".
func NormalizeCategory(name string) string {
	key := strings.ToLower(name)
	key = strings.NewReplacer("æ", "ae", "ø", "o").Replace(key)

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, key); err == nil {
		key = folded
	}

	var b strings.Builder
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
