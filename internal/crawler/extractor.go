package crawler

import (
	"context"
	"time"

	"sjsage522/prisagent/internal/pricing"
	"sjsage522/prisagent/internal/render"
	"sjsage522/prisagent/logger"
	apperrors "sjsage522/prisagent/pkg/errors"
)

// Lazy-loaded price widgets appear after these two scrolls
const (
	firstNudge  = 800
	secondNudge = 1200
)

// Extractor reads the price history fields of a product page
type Extractor struct {
	renderer render.Renderer
	site     Site
	grammar  pricing.Grammar
	pacing   Pacing
	log      *logger.Logger
}

// NewExtractor creates an extractor over a renderer session
func NewExtractor(r render.Renderer, site Site, grammar pricing.Grammar, pacing Pacing) *Extractor {
	return &Extractor{
		renderer: r,
		site:     site,
		grammar:  grammar,
		pacing:   pacing,
		log:      logger.ForExtractor(),
	}
}

// Extract visits url and builds its result. Missing fields are absent values, not errors;
// a failed navigation or scroll fails the whole product.
func (e *Extractor) Extract(ctx context.Context, url string) (pricing.ProductResult, error) {
	if err := e.renderer.Navigate(ctx, url, e.pacing.NavigateTimeout); err != nil {
		return pricing.ProductResult{}, apperrors.NewExtraction(url, "navigate", err)
	}
	if err := pause(ctx, e.pacing.Settle); err != nil {
		return pricing.ProductResult{}, apperrors.NewExtraction(url, "interrupted", err)
	}
	e.renderer.DismissConsent(ctx)
	e.renderer.WaitForIdle(ctx, e.pacing.IdleTimeout)

	if err := e.nudge(ctx, firstNudge, e.pacing.FirstNudge); err != nil {
		return pricing.ProductResult{}, apperrors.NewExtraction(url, "scroll", err)
	}
	if err := e.nudge(ctx, secondNudge, e.pacing.SecondNudge); err != nil {
		return pricing.ProductResult{}, apperrors.NewExtraction(url, "scroll", err)
	}

	title, err := e.renderer.Title(ctx)
	if err != nil {
		e.log.Debug().Err(err).Str("url", url).Msg("no title")
	}
	text := e.renderer.VisibleText(ctx)

	result := pricing.NewProductResult(url, e.site.CleanTitle(title), e.grammar.Match(text))
	e.log.Debug().
		Str("url", url).
		Bool("suspicious", result.Suspicious).
		Str("notes", result.Notes).
		Msg("product extracted")
	return result, nil
}

// nudge scrolls once and gives the page a moment to react
func (e *Extractor) nudge(ctx context.Context, pixels int, wait time.Duration) error {
	if err := e.renderer.ScrollBy(ctx, pixels); err != nil {
		return err
	}
	return pause(ctx, wait)
}
