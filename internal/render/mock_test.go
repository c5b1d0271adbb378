package render

import (
	"context"
	"time"
)

// fakeRenderer records navigations and returns a canned error
type fakeRenderer struct {
	navigations []string
	navigateErr error
}

func (f *fakeRenderer) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	f.navigations = append(f.navigations, url)
	return f.navigateErr
}

func (f *fakeRenderer) WaitForIdle(ctx context.Context, timeout time.Duration) {}

func (f *fakeRenderer) ScrollBy(ctx context.Context, pixels int) error { return nil }

func (f *fakeRenderer) DismissConsent(ctx context.Context) {}

func (f *fakeRenderer) VisibleText(ctx context.Context) string { return "" }

func (f *fakeRenderer) RawMarkup(ctx context.Context) (string, error) { return "", nil }

func (f *fakeRenderer) QueryAttribute(ctx context.Context, selector, attr string) ([]string, error) {
	return nil, nil
}

func (f *fakeRenderer) Title(ctx context.Context) (string, error) { return "fake", nil }

func (f *fakeRenderer) Close() error { return nil }
