package report

import (
	"bufio"
	"fmt"
	"io"

	"sjsage522/prisagent/internal/pricing"
)

const (
	markdownHeader    = "| Produkt | Laveste 3 mnd (kr) | Dato (3 mnd) | Nå (kr) | Δ3m (kr) | %Δ3m | Min30 (kr) | Δ30d (kr) | %Δ30d | Mistenkelig | Notater |"
	markdownAlignment = "|---|---:|:---:|---:|---:|---:|---:|---:|---:|:---:|---|"

	TopAbsoluteHeading = "## Toppliste: Størst absolutt økning (3 mnd)"
	TopPercentHeading  = "## Toppliste: Størst prosentvis økning (3 mnd)"
)

// WriteMarkdown writes the grid of ranked results followed by the two top-N leaderboards
func WriteMarkdown(w io.Writer, results []pricing.ProductResult, topN int) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, markdownHeader)
	fmt.Fprintln(bw, markdownAlignment)
	for _, r := range results {
		fmt.Fprintf(bw, "| [%s](%s) | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			escapeMarkdown(r.Title), r.URL,
			formatMoney(r.Min3MPrice, AbsentMark),
			r.Min3MDate.OrElse(AbsentMark),
			formatMoney(r.NowPrice, AbsentMark),
			formatMoney(r.Delta3M, AbsentMark),
			formatPercent(r.Pct3M, AbsentMark),
			formatMoney(r.Min30Price, AbsentMark),
			formatMoney(r.Delta30D, AbsentMark),
			formatPercent(r.Pct30D, AbsentMark),
			formatSuspicious(r.Suspicious),
			escapeMarkdown(r.Notes),
		)
	}

	fmt.Fprintln(bw)
	writeLeaderboard(bw, TopAbsoluteHeading, topBy(results, topN, func(r pricing.ProductResult) pricing.Optional[float64] {
		return r.Delta3M
	}))

	fmt.Fprintln(bw)
	writeLeaderboard(bw, TopPercentHeading, topBy(results, topN, func(r pricing.ProductResult) pricing.Optional[float64] {
		return r.Pct3M
	}))

	return bw.Flush()
}

func writeLeaderboard(w io.Writer, heading string, entries []pricing.ProductResult) {
	fmt.Fprintln(w, heading)
	for i, r := range entries {
		fmt.Fprintf(w, "%d. **[%s](%s)** — %s kr (**%s**), nå: %s kr.\n",
			i+1,
			escapeMarkdown(r.Title), r.URL,
			formatSignedMoney(r.Delta3M, AbsentMark),
			formatSignedPercent(r.Pct3M, AbsentMark),
			formatMoney(r.NowPrice, AbsentMark),
		)
	}
}
