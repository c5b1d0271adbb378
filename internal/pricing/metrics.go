package pricing

// Thresholds for the inflate-then-discount heuristic, in percent
const (
	SuspiciousPct3M  = 15.0
	SuspiciousPct30D = 10.0
)

// Metrics are the derived deltas of a product. Each output is absent unless both
// operands are present, and percentages additionally need a positive baseline.
type Metrics struct {
	Delta3M  Optional[float64]
	Pct3M    Optional[float64]
	Delta30D Optional[float64]
	Pct30D   Optional[float64]
}

// ComputeMetrics derives the 3-month and 30-day deltas of the current price
func ComputeMetrics(min3m, now, min30 Optional[float64]) Metrics {
	var m Metrics
	m.Delta3M, m.Pct3M = change(min3m, now)
	m.Delta30D, m.Pct30D = change(min30, now)
	return m
}

func change(base, now Optional[float64]) (Optional[float64], Optional[float64]) {
	b, okBase := base.Get()
	n, okNow := now.Get()
	if !okBase || !okNow {
		return None[float64](), None[float64]()
	}

	delta := n - b
	if b <= 0 {
		return Some(delta), None[float64]()
	}
	return Some(delta), Some(delta / b * 100)
}

// ClassifySuspicious flags a likely raised-then-discounted price. The 3-month rule
// wins outright; otherwise the current price is compared with the 30-day low.
func ClassifySuspicious(pct3m, now, min30 Optional[float64]) bool {
	if p, ok := pct3m.Get(); ok && p >= SuspiciousPct3M {
		return true
	}

	_, pct30 := change(min30, now)
	if p, ok := pct30.Get(); ok && p >= SuspiciousPct30D {
		return true
	}
	return false
}
