package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"sjsage522/prisagent/helpers"
	"sjsage522/prisagent/internal/crawler"
	"sjsage522/prisagent/internal/pricing"
	"sjsage522/prisagent/internal/render"
	"sjsage522/prisagent/internal/report"
	"sjsage522/prisagent/services/archive"
	"sjsage522/prisagent/services/cache"
	"sjsage522/prisagent/services/publisher"
	"sjsage522/prisagent/services/worker"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listingHTML mimics a category page with two anchors and one product id only present in markup
const listingHTML = `<!DOCTYPE html>
<html>
<head><title>TV - Prisjakt</title></head>
<body>
    <div class="list">
        <a href="/product.php?p=1&amp;ref=list">Blender</a>
        <a href="/product.php?p=2">Kaffetrakter</a>
        <script>var next = "%s/product.php?p=3";</script>
    </div>
</body>
</html>`

// productPages are the visible price history blocks per product id
var productPages = map[string]string{
	"1": `<title>Blender – Prisjakt</title>
<div>Laveste pris 3 mnd 1 000 (1. aug 2025)</div>
<div>Laveste pris nå 1 250</div>`,
	"2": `<title>Kaffetrakter – Prisjakt</title>
<div>Laveste pris 3 mnd 2 000</div>
<div>Laveste pris 30 dager 2 050</div>
<div>Laveste pris nå 2 100</div>`,
}

// newTestSite serves a category listing and product pages. Unknown products answer 429.
func newTestSite(t *testing.T) (*httptest.Server, crawler.Site) {
	t.Helper()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		switch r.URL.Path {
		case "/c/tv":
			io.WriteString(w, fmt.Sprintf(listingHTML, server.URL))
		case "/product.php":
			page, ok := productPages[r.URL.Query().Get("p")]
			if !ok {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			io.WriteString(w, "<html><head>"+page+"</html>")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	site := crawler.Prisjakt()
	site.BaseURL = server.URL
	site.Categories = map[string]string{"tv": server.URL + "/c/tv"}
	site.SearchTemplates = []string{server.URL + "/search?q=%s"}
	site.ProductURLRe = regexp.MustCompile(regexp.QuoteMeta(server.URL) + `/product\.php\?p=\d+`)
	return server, site
}

// TestIntegration runs a whole batch against the local site with the static renderer
func TestIntegration(t *testing.T) {
	server, site := newTestSite(t)
	ctx := context.Background()
	dir := t.TempDir()

	blockCache := cache.NewMemoryCache()
	r := render.NewThrottled(render.NewHTTPRenderer(), 0, blockCache, time.Minute)
	defer r.Close()

	pacing := crawler.Pacing{NavigateTimeout: 5 * time.Second}

	sqlite, err := archive.NewSQLiteArchive(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer sqlite.Close()

	var pub publisher.Publisher
	var redisClient *redis.Client
	stream := fmt.Sprintf("prisagent:test:%d", time.Now().UnixNano())
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisPublisher := publisher.NewRedisPublisher(addr, 0, stream, 100)
		if err := redisPublisher.Ping(ctx); err == nil {
			pub = redisPublisher
			defer redisPublisher.Close()

			redisClient = redis.NewClient(&redis.Options{Addr: addr})
			defer redisClient.Close()
			defer redisClient.Del(ctx, stream)
		}
	}

	errorLog := helpers.NewLogger(filepath.Join(dir, "out.errors.log"))
	w := worker.NewWorker(
		crawler.NewDiscoverer(r, site, pacing),
		crawler.NewExtractor(r, site, pricing.DefaultGrammar(), pacing),
		pub,
		[]archive.Archive{sqlite},
		errorLog,
	)

	summary, err := w.Run(ctx, worker.Options{
		Categories:     []string{"TV"},
		MaxPerCategory: 20,
		MinPrice:       500,
		OutPrefix:      filepath.Join(dir, "out"),
		TopN:           20,
	})
	require.NoError(t, err)

	// Anchors first, then the markup-only product
	assert.Equal(t, 3, summary.Candidates)
	assert.Equal(t, 2, summary.Extracted)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, errorLog.ErrorCount())

	// The 429 leaves the block key behind
	_, err = blockCache.Get(render.BlockKey)
	assert.NoError(t, err)

	require.Len(t, summary.Results, 2)
	first := summary.Results[0]
	assert.Equal(t, server.URL+"/product.php?p=1", first.URL)
	assert.Equal(t, "Blender", first.Title)
	assert.True(t, first.Suspicious)
	assert.Equal(t, "01.08.2025", first.Min3MDate.OrElse(""))

	second := summary.Results[1]
	assert.Equal(t, "Kaffetrakter", second.Title)
	assert.False(t, second.Suspicious)
	assert.InDelta(t, 100.0, second.Delta3M.OrElse(0), 0.001)

	md, err := os.ReadFile(summary.Paths.Markdown)
	require.NoError(t, err)
	assert.Contains(t, string(md), report.TopPercentHeading)
	assert.Contains(t, string(md), "[Blender]("+server.URL+"/product.php?p=1)")

	trail, err := os.ReadFile(filepath.Join(dir, "out.errors.log"))
	require.NoError(t, err)
	assert.Contains(t, string(trail), "/product.php?p=3")

	// Saving the same run again adds nothing
	n, err := sqlite.Save(ctx, archive.Rows(summary.RunID, time.Now(), summary.Results))
	require.NoError(t, err)
	assert.Zero(t, n)

	if redisClient == nil {
		t.Log("REDIS_ADDR not reachable, stream publishing not checked")
		return
	}

	entries, err := redisClient.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	encoded, ok := entries[0].Values[worker.PublishKey].(string)
	require.True(t, ok)
	data, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, summary.RunID, msg["run_id"])
	assert.Equal(t, float64(1), msg["rank"])
	assert.True(t, strings.HasSuffix(msg["url"].(string), "p=1"))
}
