package crawler

import (
	"context"
	"regexp"

	"sjsage522/prisagent/internal/pricing"
)

// Discovery turns a category name into candidate product URLs
type Discovery interface {
	// DiscoverForCategory returns at most maxLinks unique product URLs, possibly none
	DiscoverForCategory(ctx context.Context, category string, maxLinks int) []string
}

// ProductExtractor turns one product page into a result
type ProductExtractor interface {
	// Extract visits url and reads its price history fields
	Extract(ctx context.Context, url string) (pricing.ProductResult, error)
}

// Selectors contains CSS selectors for the elements discovery reads
type Selectors struct {
	ProductLink     string
	ProductLinkAttr string
}

// Site describes the price comparison site. It is built once at startup and only read afterwards.
type Site struct {
	BaseURL         string
	Categories      map[string]string
	SearchTemplates []string
	Selectors       Selectors
	ProductURLRe    *regexp.Regexp
	TitleSuffixRe   *regexp.Regexp
}
