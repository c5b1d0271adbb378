package archive

import (
	"context"
	"time"

	"sjsage522/prisagent/internal/pricing"
)

// Row is one ranked result of a run
type Row struct {
	RunID       string
	Rank        int
	CollectedAt time.Time
	Result      pricing.ProductResult
}

// Archive stores ranked results so runs can be compared over time
type Archive interface {
	// Save stores rows and returns how many were new
	Save(ctx context.Context, rows []Row) (int, error)

	// Close releases the underlying connection
	Close() error
}

// Rows numbers ranked results from 1 and stamps them with the run
func Rows(runID string, collectedAt time.Time, ranked []pricing.ProductResult) []Row {
	rows := make([]Row, len(ranked))
	for i, r := range ranked {
		rows[i] = Row{
			RunID:       runID,
			Rank:        i + 1,
			CollectedAt: collectedAt.UTC(),
			Result:      r,
		}
	}
	return rows
}

// min3MTime converts the canonical DD.MM.YYYY date into a time for DATE columns
func min3MTime(r pricing.ProductResult) *time.Time {
	s, ok := r.Min3MDate.Get()
	if !ok {
		return nil
	}
	t, err := time.Parse("02.01.2006", s)
	if err != nil {
		return nil
	}
	return &t
}
