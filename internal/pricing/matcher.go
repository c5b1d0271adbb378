package pricing

import (
	"regexp"
	"strings"
)

// Building blocks for the field grammars. Amounts either carry thousands groups
// ("1 000", "1.234,50") or are a plain digit run ("999", "12,5"); the grouped form is
// tried first so a following date is not swallowed into the amount.
const (
	amountExpr      = `(\d{1,3}(?:[ \x{00A0}\x{202F}.]\d{3})+(?:,\d+)?|\d+(?:[,.]\d+)?)`
	fillerExpr      = `[^\n\r\d]*?`
	monthDateExpr   = `\d{1,2}\.?\s*(?:jan|feb|mar|apr|mai|jun|jul|aug|sep|okt|nov|des)[a-zæøå]*\.?\s*\d{4}`
	numericDateExpr = `\d{1,2}[./-]\d{1,2}[./-](?:\d{4}|\d{2})`
	dateTailExpr    = `(?:[ \t,\-]*\(?\s*(?:(` + monthDateExpr + `)|(` + numericDateExpr + `)))?`
)

// FieldPattern is one tolerant label-then-value grammar. ValueGroup is the capture
// holding the amount; DateGroups lists alternative captures holding a trailing date.
type FieldPattern struct {
	Name       string
	Regexp     *regexp.Regexp
	ValueGroup int
	DateGroups []int
}

// FieldMatch is the raw text captured for one field
type FieldMatch struct {
	Raw  string
	Date Optional[string]
}

// Grammar groups the three field patterns applied to a product page
type Grammar struct {
	Min3M  FieldPattern
	Min30D FieldPattern
	Now    FieldPattern
}

// Matches holds the first match of each pattern, absent when the label was not found
type Matches struct {
	Min3M  Optional[FieldMatch]
	Min30D Optional[FieldMatch]
	Now    Optional[FieldMatch]
}

// DefaultGrammar returns the Norwegian label grammars used on prisjakt.no
func DefaultGrammar() Grammar {
	return Grammar{
		Min3M: FieldPattern{
			Name: "min_3m",
			Regexp: regexp.MustCompile(
				`(?i)laveste\s+pris\s*(?:siste\s*)?(?:3\s*mnd|90\s*dager)` + fillerExpr + amountExpr + dateTailExpr),
			ValueGroup: 1,
			DateGroups: []int{2, 3},
		},
		Min30D: FieldPattern{
			Name: "min_30d",
			Regexp: regexp.MustCompile(
				`(?i)laveste\s+pris\s*(?:siste\s*)?(?:30\s*dager|1\s*mnd)` + fillerExpr + amountExpr),
			ValueGroup: 1,
		},
		Now: FieldPattern{
			Name: "now",
			Regexp: regexp.MustCompile(
				`(?im)(?:laveste\s+pris\s+nå|dagens\s+laveste\s+pris|den\s+billigste\s+prisen[^\n\r]*?\(\s*nå\s*\)|` +
					`(?:^|[^\p{L}\p{N}])nå(?:[^\p{L}\p{N}\n\r]|$))` + fillerExpr + amountExpr),
			ValueGroup: 1,
		},
	}
}

// Find returns the first occurrence of the pattern in document order
func (p FieldPattern) Find(text string) Optional[FieldMatch] {
	if p.Regexp == nil {
		return None[FieldMatch]()
	}
	m := p.Regexp.FindStringSubmatch(text)
	if m == nil || p.ValueGroup >= len(m) {
		return None[FieldMatch]()
	}

	match := FieldMatch{Raw: strings.TrimSpace(m[p.ValueGroup])}
	for _, g := range p.DateGroups {
		if g < len(m) && m[g] != "" {
			match.Date = Some(strings.TrimSpace(m[g]))
			break
		}
	}
	return Some(match)
}

// Match applies all three patterns to a page's visible text
func (g Grammar) Match(text string) Matches {
	return Matches{
		Min3M:  g.Min3M.Find(text),
		Min30D: g.Min30D.Find(text),
		Now:    g.Now.Find(text),
	}
}
