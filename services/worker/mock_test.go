package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"sjsage522/prisagent/helpers"
	"sjsage522/prisagent/internal/crawler"
	"sjsage522/prisagent/internal/pricing"
	"sjsage522/prisagent/services/archive"
	"sjsage522/prisagent/services/publisher"
)

// MockDiscovery returns fixed links per category and records the categories asked for
type MockDiscovery struct {
	links map[string][]string
	calls []string
}

var _ crawler.Discovery = (*MockDiscovery)(nil)

func (m *MockDiscovery) DiscoverForCategory(ctx context.Context, category string, maxLinks int) []string {
	m.calls = append(m.calls, category)
	links := m.links[category]
	if len(links) > maxLinks {
		links = links[:maxLinks]
	}
	return links
}

// MockExtractor serves page texts by URL. URLs without a page fail.
type MockExtractor struct {
	pages   map[string]string
	visited []string
	onVisit func(url string)
}

var _ crawler.ProductExtractor = (*MockExtractor)(nil)

func (m *MockExtractor) Extract(ctx context.Context, url string) (pricing.ProductResult, error) {
	m.visited = append(m.visited, url)
	if m.onVisit != nil {
		m.onVisit(url)
	}

	text, ok := m.pages[url]
	if !ok {
		return pricing.ProductResult{}, fmt.Errorf("no page for %s", url)
	}
	return pricing.NewProductResult(url, "Produkt "+url, pricing.DefaultGrammar().Match(text)), nil
}

// MockPublisher implements the publisher.Publisher interface for testing.
// Like a network client it refuses to publish on a finished context.
type MockPublisher struct {
	mu         sync.Mutex
	messages   [][]byte
	keys       []string
	trimmed    int
	publishErr error
}

var _ publisher.Publisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, key string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if m.publishErr != nil {
		return m.publishErr
	}

	messageCopy := make([]byte, len(message))
	copy(messageCopy, message)

	m.keys = append(m.keys, key)
	m.messages = append(m.messages, messageCopy)
	return nil
}

func (m *MockPublisher) TrimStreams(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.trimmed++
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// MockArchive records saved rows
type MockArchive struct {
	rows   []archive.Row
	ctxErr error
	err    error
}

var _ archive.Archive = (*MockArchive)(nil)

func (m *MockArchive) Save(ctx context.Context, rows []archive.Row) (int, error) {
	m.ctxErr = ctx.Err()
	if m.err != nil {
		return 0, m.err
	}
	m.rows = append(m.rows, rows...)
	return len(rows), nil
}

func (m *MockArchive) Close() error {
	return nil
}

// MockLogger implements the helpers.LoggerInterface for testing
type MockLogger struct {
	mu     sync.Mutex
	errors []string
	infos  []string
}

var _ helpers.LoggerInterface = (*MockLogger)(nil)

func (m *MockLogger) LogError(target string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, target+": "+err.Error())
}

func (m *MockLogger) LogInfo(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, fmt.Sprintf(format, args...))
}

var errSinkDown = errors.New("sink down")

func productURL(id int) string {
	return fmt.Sprintf("https://www.prisjakt.no/product.php?p=%d", id)
}
