package pricing

import (
	"fmt"
	"strings"

	"sjsage522/prisagent/helpers"
)

// Notes fragments written into ProductResult.Notes
const (
	NoteMin3MNotFound = "Laveste 3 mnd: ikke funnet"
	NoteSeparator     = "; "
)

// ProductResult is one extracted product. It is immutable once built.
type ProductResult struct {
	URL        string            `json:"url"`
	Title      string            `json:"title"`
	Min3MPrice Optional[float64] `json:"min_3m_price"`
	Min3MDate  Optional[string]  `json:"min_3m_date"`
	NowPrice   Optional[float64] `json:"now_price"`
	Min30Price Optional[float64] `json:"min_30_price"`
	Delta3M    Optional[float64] `json:"delta_3m"`
	Pct3M      Optional[float64] `json:"pct_3m"`
	Delta30D   Optional[float64] `json:"delta_30d"`
	Pct30D     Optional[float64] `json:"pct_30d"`
	Suspicious bool              `json:"suspicious"`
	Notes      string            `json:"notes"`
}

// NewProductResult normalizes the matched fields, derives metrics and classifies the product
func NewProductResult(url, title string, m Matches) ProductResult {
	if strings.TrimSpace(title) == "" {
		title = url
	}

	r := ProductResult{
		URL:        url,
		Title:      title,
		Min3MPrice: parseField(m.Min3M),
		NowPrice:   parseField(m.Now),
		Min30Price: parseField(m.Min30D),
		Notes:      buildNotes(m),
	}
	if fm, ok := m.Min3M.Get(); ok {
		if raw, ok := fm.Date.Get(); ok {
			r.Min3MDate = ParseLocalDate(raw)
		}
	}

	metrics := ComputeMetrics(r.Min3MPrice, r.NowPrice, r.Min30Price)
	r.Delta3M = metrics.Delta3M
	r.Pct3M = metrics.Pct3M
	r.Delta30D = metrics.Delta30D
	r.Pct30D = metrics.Pct30D
	r.Suspicious = ClassifySuspicious(r.Pct3M, r.NowPrice, r.Min30Price)
	return r
}

// WithNote returns a copy with note appended to the notes trail
func (r ProductResult) WithNote(note string) ProductResult {
	if r.Notes == "" {
		r.Notes = note
	} else {
		r.Notes = r.Notes + NoteSeparator + note
	}
	return r
}

// ProductID is the numeric id from the product URL, empty when the URL has none
func (r ProductResult) ProductID() string {
	id, err := helpers.GetSplitPart(r.URL, "p=", 1)
	if err != nil {
		return ""
	}
	if i := strings.IndexAny(id, "&#"); i >= 0 {
		id = id[:i]
	}
	return id
}

func parseField(field Optional[FieldMatch]) Optional[float64] {
	fm, ok := field.Get()
	if !ok {
		return None[float64]()
	}
	return ParsePrice(fm.Raw)
}

func buildNotes(m Matches) string {
	parts := make([]string, 0, 3)

	if fm, ok := m.Min3M.Get(); ok {
		note := "Laveste 3 mnd: " + fm.Raw
		if date, ok := fm.Date.Get(); ok {
			note += fmt.Sprintf(" (%s)", date)
		}
		parts = append(parts, note)
	} else {
		parts = append(parts, NoteMin3MNotFound)
	}
	if fm, ok := m.Now.Get(); ok {
		parts = append(parts, "Nå: "+fm.Raw)
	}
	if fm, ok := m.Min30D.Get(); ok {
		parts = append(parts, "Min30: "+fm.Raw)
	}

	return strings.Join(parts, NoteSeparator)
}
