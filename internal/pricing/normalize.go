package pricing

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// priceRunRe matches the first run of digits, spaces and separators.
	// Norwegian pages group thousands with regular, no-break or narrow no-break spaces.
	priceRunRe = regexp.MustCompile(`\d[\d \t\x{00A0}\x{202F}.,]*`)

	priceSpaceReplacer = strings.NewReplacer(" ", "", "\t", "", "\u00a0", "", "\u202f", "", ".", "")

	monthNameDateRe = regexp.MustCompile(`^(\d{1,2})\.?\s*([a-zæøå]+)\.?\s*(\d{4})$`)
	numericDateRe   = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{4}|\d{2})$`)
)

// norwegianMonths maps the three-letter month abbreviations used on the site
var norwegianMonths = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"mai": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"okt": time.October,
	"nov": time.November,
	"des": time.December,
}

// canonicalDateLayout is DD.MM.YYYY
const canonicalDateLayout = "02.01.2006"

// ParsePrice converts a locale-formatted amount such as "1 234,50 kr" into a number.
// Spaces and dots are thousands separators and the last comma is the decimal point.
func ParsePrice(text string) Optional[float64] {
	raw := priceRunRe.FindString(text)
	if raw == "" {
		return None[float64]()
	}

	raw = priceSpaceReplacer.Replace(raw)
	if i := strings.LastIndex(raw, ","); i >= 0 {
		raw = raw[:i] + "." + raw[i+1:]
	}
	// "1 250,-" leaves a dangling decimal point
	raw = strings.TrimSuffix(raw, ".")

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return None[float64]()
	}
	return Some(amount.InexactFloat64())
}

// ParseLocalDate parses "1. aug 2025", "01.08.2025", "1/8/25" and similar into DD.MM.YYYY.
// Calendar-invalid dates and unknown month names are absent.
func ParseLocalDate(text string) Optional[string] {
	txt := strings.ToLower(strings.TrimSpace(text))
	if txt == "" {
		return None[string]()
	}

	if m := monthNameDateRe.FindStringSubmatch(txt); m != nil {
		month, ok := monthFromName(m[2])
		if !ok {
			return None[string]()
		}
		return canonicalDate(m[1], int(month), m[3])
	}

	if m := numericDateRe.FindStringSubmatch(txt); m != nil {
		month, err := strconv.Atoi(m[2])
		if err != nil {
			return None[string]()
		}
		year := m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		return canonicalDate(m[1], month, year)
	}

	return None[string]()
}

// monthFromName accepts abbreviations and full names by their three-letter prefix
func monthFromName(name string) (time.Month, bool) {
	runes := []rune(name)
	if len(runes) < 3 {
		return 0, false
	}
	month, ok := norwegianMonths[string(runes[:3])]
	return month, ok
}

func canonicalDate(dayStr string, month int, yearStr string) Optional[string] {
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return None[string]()
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return None[string]()
	}
	if month < 1 || month > 12 || day < 1 {
		return None[string]()
	}

	// time.Date normalizes overflow, so a changed day or month means the input was invalid
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return None[string]()
	}
	return Some(t.Format(canonicalDateLayout))
}
