package crawler

import (
	"context"
	"time"

	"sjsage522/prisagent/internal/render"
	"sjsage522/prisagent/logger"
)

const (
	listingRounds = 24
	searchRounds  = 18
	scrollStep    = 1600
)

// Discoverer collects product URLs from category listings, falling back to keyword search
type Discoverer struct {
	renderer render.Renderer
	site     Site
	pacing   Pacing
}

// NewDiscoverer creates a discoverer over a renderer session
func NewDiscoverer(r render.Renderer, site Site, pacing Pacing) *Discoverer {
	return &Discoverer{
		renderer: r,
		site:     site,
		pacing:   pacing,
	}
}

// DiscoverForCategory returns up to maxLinks unique product URLs for a category.
// The listing page is tried first; search runs only when the listing yields nothing.
// Failures end the current strategy and keep whatever was collected.
func (d *Discoverer) DiscoverForCategory(ctx context.Context, category string, maxLinks int) []string {
	log := logger.ForDiscovery(category)
	if maxLinks <= 0 {
		return nil
	}
	links := newLinkSet(maxLinks)

	if listingURL, ok := d.site.ListingURL(category); ok {
		if err := d.harvest(ctx, listingURL, listingRounds, d.pacing.ListingScroll, links); err != nil {
			log.Warn().Err(err).Str("url", listingURL).Msg("category page discovery failed")
		}
		if links.Len() > 0 {
			log.Info().Int("links", links.Len()).Msg("found product links on category page")
			return links.Slice()
		}
	} else {
		log.Debug().Msg("no category page known, using search")
	}

	for _, searchURL := range d.site.SearchURLs(category) {
		if links.Full() || ctx.Err() != nil {
			break
		}
		if err := d.harvest(ctx, searchURL, searchRounds, d.pacing.SearchScroll, links); err != nil {
			log.Warn().Err(err).Str("url", searchURL).Msg("search discovery failed")
		}
	}

	log.Info().Int("links", links.Len()).Msg("found product links via search")
	return links.Slice()
}

// harvest loads one page and scrolls it for a bounded number of rounds,
// collecting links after every scroll until the set is full.
func (d *Discoverer) harvest(ctx context.Context, pageURL string, rounds int, scrollPause time.Duration, links *linkSet) error {
	if err := d.renderer.Navigate(ctx, pageURL, d.pacing.NavigateTimeout); err != nil {
		return err
	}
	if err := pause(ctx, d.pacing.Settle); err != nil {
		return err
	}
	d.renderer.DismissConsent(ctx)
	d.renderer.WaitForIdle(ctx, d.pacing.IdleTimeout)

	for round := 0; round < rounds && !links.Full() && ctx.Err() == nil; round++ {
		if err := d.renderer.ScrollBy(ctx, scrollStep); err != nil {
			return err
		}
		if err := pause(ctx, scrollPause); err != nil {
			return err
		}
		d.collect(ctx, links)
	}
	return ctx.Err()
}

// collect reads product anchors first, then scans the raw markup for product URLs
// that are not clickable links.
func (d *Discoverer) collect(ctx context.Context, links *linkSet) {
	hrefs, err := d.renderer.QueryAttribute(ctx, d.site.Selectors.ProductLink, d.site.Selectors.ProductLinkAttr)
	if err == nil {
		for _, href := range hrefs {
			if u, ok := d.site.CanonicalProductURL(href); ok {
				links.Add(u)
			}
			if links.Full() {
				return
			}
		}
	}

	markup, err := d.renderer.RawMarkup(ctx)
	if err != nil {
		return
	}
	for _, u := range d.site.ProductURLRe.FindAllString(markup, -1) {
		links.Add(u)
		if links.Full() {
			return
		}
	}
}

// linkSet is an insertion-ordered set with a fixed capacity
type linkSet struct {
	max   int
	seen  map[string]struct{}
	order []string
}

func newLinkSet(max int) *linkSet {
	return &linkSet{
		max:  max,
		seen: make(map[string]struct{}, max),
	}
}

// Add inserts u unless it is a duplicate or the set is full
func (s *linkSet) Add(u string) bool {
	if s.Full() {
		return false
	}
	if _, ok := s.seen[u]; ok {
		return false
	}
	s.seen[u] = struct{}{}
	s.order = append(s.order, u)
	return true
}

func (s *linkSet) Full() bool {
	return len(s.order) >= s.max
}

func (s *linkSet) Len() int {
	return len(s.order)
}

func (s *linkSet) Slice() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
