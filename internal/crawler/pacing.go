package crawler

import (
	"context"
	"time"
)

// Pacing holds the timeouts and pauses between renderer steps. The zero value
// never pauses, which is what tests use.
type Pacing struct {
	NavigateTimeout time.Duration
	IdleTimeout     time.Duration

	Settle        time.Duration
	ListingScroll time.Duration
	SearchScroll  time.Duration
	FirstNudge    time.Duration
	SecondNudge   time.Duration
}

// DefaultPacing returns the pauses used against the live site
func DefaultPacing() Pacing {
	return Pacing{
		NavigateTimeout: 30 * time.Second,
		IdleTimeout:     8 * time.Second,
		Settle:          1 * time.Second,
		ListingScroll:   250 * time.Millisecond,
		SearchScroll:    350 * time.Millisecond,
		FirstNudge:      400 * time.Millisecond,
		SecondNudge:     500 * time.Millisecond,
	}
}

// pause sleeps for d unless ctx is done first
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
