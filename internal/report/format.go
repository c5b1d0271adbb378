package report

import (
	"fmt"
	"strings"

	"sjsage522/prisagent/internal/pricing"

	"github.com/dustin/go-humanize"
)

const (
	// AbsentMark is shown in the markdown grid for missing values
	AbsentMark = "—"

	SuspiciousMark = "✅"
	NormalMark     = "❌"
)

// moneyFormat groups thousands with a space and rounds to whole kroner
const moneyFormat = "# ###."

func formatMoney(v pricing.Optional[float64], absent string) string {
	x, ok := v.Get()
	if !ok {
		return absent
	}
	return humanize.FormatFloat(moneyFormat, x)
}

// formatSignedMoney always carries a sign, as in "+250" or "-1 200"
func formatSignedMoney(v pricing.Optional[float64], absent string) string {
	x, ok := v.Get()
	if !ok {
		return absent
	}
	if x >= 0 {
		return "+" + humanize.FormatFloat(moneyFormat, x)
	}
	return humanize.FormatFloat(moneyFormat, x)
}

func formatPercent(v pricing.Optional[float64], absent string) string {
	x, ok := v.Get()
	if !ok {
		return absent
	}
	return fmt.Sprintf("%.1f%%", x)
}

func formatSignedPercent(v pricing.Optional[float64], absent string) string {
	x, ok := v.Get()
	if !ok {
		return absent
	}
	return fmt.Sprintf("%+.1f%%", x)
}

func formatSuspicious(suspicious bool) string {
	if suspicious {
		return SuspiciousMark
	}
	return NormalMark
}

var markdownEscaper = strings.NewReplacer(
	"|", `\|`,
	"[", `\[`,
	"]", `\]`,
	"\n", " ",
	"\r", "",
)

// escapeMarkdown keeps titles and notes from breaking table cells and link text
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
