package render

import (
	"context"
	"fmt"
	"time"

	"sjsage522/prisagent/helpers"
	"sjsage522/prisagent/logger"
	apperrors "sjsage522/prisagent/pkg/errors"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// consentSelectors are tried in order; the first visible one is clicked
var consentSelectors = []string{
	"#onetrust-accept-btn-handler",
	"[data-testid='onetrust-accept-btn-handler']",
}

// consentLabels are button texts matched when no selector is present
var consentLabels = []string{
	"Godta",
	"Aksepter alle",
	"Accept all",
	"^OK$",
}

const (
	viewportWidth  = 1366
	viewportHeight = 900

	bodyTextTimeout = 3 * time.Second
	consentTimeout  = 2 * time.Second
	consentSettle   = 400 * time.Millisecond
)

// RodRenderer drives one headless Chromium tab through go-rod
type RodRenderer struct {
	browser *rod.Browser
	page    *rod.Page
	log     *logger.Logger
}

// NewRodRenderer launches (or connects to) a browser and opens a stealth tab
// with the Norwegian locale, timezone and a desktop viewport.
func NewRodRenderer(opts Options) (*RodRenderer, error) {
	log := logger.ForRenderer(BackendRod)

	controlURL, err := resolveControlURL(opts, log)
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, apperrors.NewRenderer(controlURL, "connect browser", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		_ = browser.Close()
		return nil, apperrors.NewRenderer(controlURL, "open page", err)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = helpers.DesktopUserAgent()
	}
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      ua,
		AcceptLanguage: opts.Locale,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to set user agent")
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to set viewport")
	}
	if opts.Timezone != "" {
		if err := (proto.EmulationSetTimezoneOverride{TimezoneID: opts.Timezone}).Call(page); err != nil {
			log.Warn().Err(err).Str("timezone", opts.Timezone).Msg("failed to set timezone")
		}
	}

	log.Info().Str("control_url", controlURL).Msg("browser session ready")
	return &RodRenderer{browser: browser, page: page, log: log}, nil
}

func resolveControlURL(opts Options, log *logger.Logger) (string, error) {
	if opts.ControlURL != "" {
		u, err := launcher.ResolveURL(opts.ControlURL)
		if err != nil {
			return "", apperrors.NewRenderer(opts.ControlURL, "resolve remote browser", err)
		}
		return u, nil
	}

	bin := opts.BinPath
	if bin == "" {
		if path, found := launcher.LookPath(); found {
			bin = path
		} else {
			log.Info().Msg("no browser binary found, downloading default")
			path, err := launcher.NewBrowser().Get()
			if err != nil {
				return "", apperrors.NewRenderer("", "download browser", err)
			}
			bin = path
		}
	}

	l := launcher.New().
		Headless(opts.Headless).
		Bin(bin).
		NoSandbox(true)
	if opts.Locale != "" {
		l = l.Set("lang", opts.Locale)
	}

	u, err := l.Launch()
	if err != nil {
		return "", apperrors.NewRenderer(bin, "launch browser", err)
	}
	return u, nil
}

// Navigate loads url and waits for the load event
func (r *RodRenderer) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	p := r.page.Context(ctx).Timeout(timeout)
	if err := p.Navigate(url); err != nil {
		return apperrors.NewRenderer(url, "navigate", err)
	}
	if err := p.WaitLoad(); err != nil {
		return apperrors.NewRenderer(url, "wait for load", err)
	}
	return nil
}

// WaitForIdle waits until the page is idle or timeout passes
func (r *RodRenderer) WaitForIdle(ctx context.Context, timeout time.Duration) {
	if err := r.page.Context(ctx).WaitIdle(timeout); err != nil {
		r.log.Debug().Err(err).Msg("page did not settle")
	}
}

// ScrollBy scrolls the window down by pixels
func (r *RodRenderer) ScrollBy(ctx context.Context, pixels int) error {
	if _, err := r.page.Context(ctx).Eval(`(px) => window.scrollBy(0, px)`, pixels); err != nil {
		return apperrors.NewRenderer("", fmt.Sprintf("scroll by %d", pixels), err)
	}
	return nil
}

// DismissConsent clicks the first visible consent button
func (r *RodRenderer) DismissConsent(ctx context.Context) {
	p := r.page.Context(ctx).Timeout(consentTimeout)

	for _, sel := range consentSelectors {
		has, el, err := p.Has(sel)
		if err != nil || !has {
			continue
		}
		if r.clickIfVisible(el) {
			r.log.Debug().Str("selector", sel).Msg("consent dismissed")
			settle(ctx, consentSettle)
			return
		}
	}

	for _, label := range consentLabels {
		has, el, err := p.HasR("button", label)
		if err != nil || !has {
			continue
		}
		if r.clickIfVisible(el) {
			r.log.Debug().Str("label", label).Msg("consent dismissed")
			settle(ctx, consentSettle)
			return
		}
	}
}

// settle gives the page d to react to a click, returning early when ctx ends
func settle(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (r *RodRenderer) clickIfVisible(el *rod.Element) bool {
	visible, err := el.Visible()
	if err != nil || !visible {
		return false
	}
	return el.Click(proto.InputMouseButtonLeft, 1) == nil
}

// VisibleText returns the body's rendered text, falling back to raw markup
func (r *RodRenderer) VisibleText(ctx context.Context) string {
	body, err := r.page.Context(ctx).Timeout(bodyTextTimeout).Element("body")
	if err == nil {
		if text, err := body.Text(); err == nil {
			return text
		}
	}

	markup, err := r.RawMarkup(ctx)
	if err != nil {
		return ""
	}
	return markup
}

// RawMarkup returns the document's outer HTML
func (r *RodRenderer) RawMarkup(ctx context.Context) (string, error) {
	markup, err := r.page.Context(ctx).HTML()
	if err != nil {
		return "", apperrors.NewRenderer("", "read markup", err)
	}
	return markup, nil
}

// QueryAttribute collects attr from all elements matching selector
func (r *RodRenderer) QueryAttribute(ctx context.Context, selector, attr string) ([]string, error) {
	elements, err := r.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, apperrors.NewRenderer(selector, "query elements", err)
	}

	values := make([]string, 0, len(elements))
	for _, el := range elements {
		value, err := el.Attribute(attr)
		if err != nil || value == nil {
			continue
		}
		values = append(values, *value)
	}
	return values, nil
}

// Title returns the current page title
func (r *RodRenderer) Title(ctx context.Context) (string, error) {
	info, err := r.page.Context(ctx).Info()
	if err != nil {
		return "", apperrors.NewRenderer("", "read title", err)
	}
	return info.Title, nil
}

// Close closes the tab and the browser
func (r *RodRenderer) Close() error {
	if err := r.page.Close(); err != nil {
		r.log.Debug().Err(err).Msg("failed to close page")
	}
	return r.browser.Close()
}
