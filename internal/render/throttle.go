package render

import (
	"context"
	"errors"
	"time"

	"sjsage522/prisagent/logger"
	apperrors "sjsage522/prisagent/pkg/errors"
	"sjsage522/prisagent/services/cache"

	"golang.org/x/time/rate"
)

// BlockKey is the cache key set while the site is rate limiting us
const BlockKey = "prisjakt_rate_limited"

// Throttled paces navigations and holds the next navigation until BlockTime has
// passed once the site answers with a rate limit. All other calls pass through.
type Throttled struct {
	Renderer
	limiter   *rate.Limiter
	cache     cache.CacheService
	blockTime time.Duration
	log       *logger.Logger
}

// NewThrottled wraps r with a navigation rate of rps per second. rps <= 0 disables pacing.
func NewThrottled(r Renderer, rps float64, c cache.CacheService, blockTime time.Duration) *Throttled {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Throttled{
		Renderer:  r,
		limiter:   rate.NewLimiter(limit, 1),
		cache:     c,
		blockTime: blockTime,
		log:       logger.ForComponent("throttle"),
	}
}

// Navigate waits out an active block, then the limiter
func (t *Throttled) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := t.waitBlock(ctx, url); err != nil {
		return err
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return apperrors.NewRenderer(url, "throttle wait", err)
	}

	err := t.Renderer.Navigate(ctx, url, timeout)
	if err != nil && apperrors.IsType(err, apperrors.ErrorTypeRateLimit) {
		t.block(url)
	}
	return err
}

func (t *Throttled) waitBlock(ctx context.Context, url string) error {
	remaining, ok := t.blocked()
	if !ok {
		return nil
	}

	if remaining > 0 {
		t.log.Info().Str("url", url).Dur("remaining", remaining).Msg("waiting out rate limit block")
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return apperrors.NewRenderer(url, "wait out rate limit block", ctx.Err())
		case <-timer.C:
		}
	}

	if err := t.cache.Delete(BlockKey); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		t.log.Warn().Err(err).Msg("failed to clear rate limit block")
	}
	return nil
}

// blocked reports whether a block is stored and how long it still holds, capped at blockTime
func (t *Throttled) blocked() (time.Duration, bool) {
	if t.cache == nil {
		return 0, false
	}
	value, err := t.cache.Get(BlockKey)
	if err != nil {
		return 0, false
	}

	until, err := time.Parse(time.RFC3339Nano, string(value))
	if err != nil {
		return t.blockTime, true
	}
	remaining := time.Until(until)
	if remaining > t.blockTime {
		remaining = t.blockTime
	}
	return remaining, true
}

func (t *Throttled) block(url string) {
	if t.cache == nil || t.blockTime <= 0 {
		return
	}
	until := time.Now().Add(t.blockTime).Format(time.RFC3339Nano)
	if err := t.cache.Set(BlockKey, []byte(until), t.blockTime); err != nil {
		t.log.Warn().Err(err).Msg("failed to store rate limit block")
		return
	}
	t.log.Warn().Str("url", url).Dur("block_time", t.blockTime).Msg("rate limited, pausing navigation")
}
