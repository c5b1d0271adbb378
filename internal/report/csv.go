package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"sjsage522/prisagent/internal/pricing"
)

// CSVHeader is the fixed column order of the tabular report
var CSVHeader = []string{
	"Produkt",
	"URL",
	"Laveste 3 mnd (kr)",
	"Dato (3 mnd)",
	"Nå (kr)",
	"Δ3m (kr)",
	"%Δ3m",
	"Min30 (kr)",
	"Δ30d (kr)",
	"%Δ30d",
	"Mistenkelig",
	"Notater",
}

// WriteCSV writes the ranked results as the tabular report. Missing values are empty cells.
func WriteCSV(w io.Writer, results []pricing.ProductResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range results {
		record := []string{
			r.Title,
			r.URL,
			formatMoney(r.Min3MPrice, ""),
			r.Min3MDate.OrElse(""),
			formatMoney(r.NowPrice, ""),
			formatMoney(r.Delta3M, ""),
			formatPercent(r.Pct3M, ""),
			formatMoney(r.Min30Price, ""),
			formatMoney(r.Delta30D, ""),
			formatPercent(r.Pct30D, ""),
			formatSuspicious(r.Suspicious),
			r.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.URL, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
