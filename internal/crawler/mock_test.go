package crawler

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// mockPage is a page served by MockRenderer. Each scroll reveals the next batch of links.
type mockPage struct {
	title   string
	text    string
	markup  string
	batches [][]string
}

// MockRenderer serves canned pages and records every call
type MockRenderer struct {
	pages       map[string]*mockPage
	navigateErr map[string]error
	scrollErr   error

	current    *mockPage
	scrolls    int
	visited    []string
	scrolledBy []int
	consents   int
}

func NewMockRenderer() *MockRenderer {
	return &MockRenderer{
		pages:       make(map[string]*mockPage),
		navigateErr: make(map[string]error),
	}
}

func (m *MockRenderer) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	m.visited = append(m.visited, url)
	if err, ok := m.navigateErr[url]; ok {
		return err
	}
	page, ok := m.pages[url]
	if !ok {
		return errors.New("404 not found: " + url)
	}
	m.current = page
	m.scrolls = 0
	return nil
}

func (m *MockRenderer) WaitForIdle(ctx context.Context, timeout time.Duration) {}

func (m *MockRenderer) ScrollBy(ctx context.Context, pixels int) error {
	if m.scrollErr != nil {
		return m.scrollErr
	}
	m.scrolls++
	m.scrolledBy = append(m.scrolledBy, pixels)
	return nil
}

func (m *MockRenderer) DismissConsent(ctx context.Context) {
	m.consents++
}

func (m *MockRenderer) VisibleText(ctx context.Context) string {
	if m.current == nil {
		return ""
	}
	return m.current.text
}

func (m *MockRenderer) RawMarkup(ctx context.Context) (string, error) {
	if m.current == nil {
		return "", errors.New("no page")
	}
	return m.current.markup, nil
}

func (m *MockRenderer) QueryAttribute(ctx context.Context, selector, attr string) ([]string, error) {
	if m.current == nil {
		return nil, errors.New("no page")
	}
	var hrefs []string
	for i := 0; i < m.scrolls && i < len(m.current.batches); i++ {
		hrefs = append(hrefs, m.current.batches[i]...)
	}
	return hrefs, nil
}

func (m *MockRenderer) Title(ctx context.Context) (string, error) {
	if m.current == nil {
		return "", errors.New("no page")
	}
	return m.current.title, nil
}

func (m *MockRenderer) Close() error { return nil }

// productLinks returns relative product links p=from..to
func productLinks(from, to int) []string {
	links := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		links = append(links, "/product.php?p="+strconv.Itoa(i))
	}
	return links
}
