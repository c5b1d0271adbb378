package render

import (
	"context"
	"fmt"
	"time"

	apperrors "sjsage522/prisagent/pkg/errors"
)

// Backend names accepted by New
const (
	BackendRod  = "rod"
	BackendHTTP = "http"
)

// Renderer is the page capability the discovery and extraction steps depend on.
// Every call may fail; callers substitute empty results instead of aborting the run.
type Renderer interface {
	// Navigate loads url into the session, giving up after timeout
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// WaitForIdle waits for network activity to settle. Failures are swallowed.
	WaitForIdle(ctx context.Context, timeout time.Duration)

	// ScrollBy scrolls the viewport down by pixels to trigger lazy loading
	ScrollBy(ctx context.Context, pixels int) error

	// DismissConsent clicks the first visible cookie consent button, if any
	DismissConsent(ctx context.Context)

	// VisibleText returns the rendered text of the page, or the raw markup when text is unavailable
	VisibleText(ctx context.Context) string

	// RawMarkup returns the current document markup
	RawMarkup(ctx context.Context) (string, error)

	// QueryAttribute collects attr from every element matching selector
	QueryAttribute(ctx context.Context, selector, attr string) ([]string, error)

	// Title returns the document title
	Title(ctx context.Context) (string, error)

	// Close releases the session
	Close() error
}

// Options configures a renderer session
type Options struct {
	Backend    string
	BinPath    string
	ControlURL string
	Headless   bool
	UserAgent  string
	Locale     string
	Timezone   string
}

// DefaultOptions returns a Norwegian desktop browser profile
func DefaultOptions() Options {
	return Options{
		Backend:  BackendRod,
		Headless: true,
		Locale:   "nb-NO",
		Timezone: "Europe/Oslo",
	}
}

// New opens a renderer session for the configured backend
func New(opts Options) (Renderer, error) {
	switch opts.Backend {
	case BackendRod, "":
		return NewRodRenderer(opts)
	case BackendHTTP:
		return NewHTTPRenderer(), nil
	default:
		return nil, apperrors.NewConfiguration(fmt.Sprintf("unknown renderer backend %q", opts.Backend), nil)
	}
}
