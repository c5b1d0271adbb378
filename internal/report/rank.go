package report

import (
	"math"
	"sort"

	"sjsage522/prisagent/internal/pricing"
)

// MinPriceNote is appended to results whose current price is below the minimum
const MinPriceNote = "filtrert bort (< min pris)"

// Aggregate deduplicates by URL, annotates cheap products and ranks the rest
func Aggregate(results []pricing.ProductResult, minPrice float64) []pricing.ProductResult {
	return Rank(AnnotateMinPrice(Dedupe(results), minPrice))
}

// Dedupe keeps the first result for each URL
func Dedupe(results []pricing.ProductResult) []pricing.ProductResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]pricing.ProductResult, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}
	return out
}

// AnnotateMinPrice notes, but keeps, results priced below minPrice. A minPrice of zero disables it.
func AnnotateMinPrice(results []pricing.ProductResult, minPrice float64) []pricing.ProductResult {
	out := make([]pricing.ProductResult, len(results))
	for i, r := range results {
		if now, ok := r.NowPrice.Get(); ok && minPrice > 0 && now < minPrice {
			r = r.WithNote(MinPriceNote)
		}
		out[i] = r
	}
	return out
}

// Rank orders suspicious results first, then by 3-month delta descending.
// A missing delta ranks below every present one. The sort is stable.
func Rank(results []pricing.ProductResult) []pricing.ProductResult {
	out := make([]pricing.ProductResult, len(results))
	copy(out, results)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Suspicious != b.Suspicious {
			return a.Suspicious
		}
		return a.Delta3M.OrElse(math.Inf(-1)) > b.Delta3M.OrElse(math.Inf(-1))
	})
	return out
}

// topBy returns up to n results having metric, highest first
func topBy(results []pricing.ProductResult, n int, metric func(pricing.ProductResult) pricing.Optional[float64]) []pricing.ProductResult {
	var out []pricing.ProductResult
	for _, r := range results {
		if metric(r).Present() {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, _ := metric(out[i]).Get()
		b, _ := metric(out[j]).Get()
		return a > b
	})

	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
