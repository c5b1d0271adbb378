package worker

import (
	"context"
	"encoding/json"
	"time"

	"sjsage522/prisagent/helpers"
	"sjsage522/prisagent/internal/crawler"
	"sjsage522/prisagent/internal/pricing"
	"sjsage522/prisagent/internal/report"
	"sjsage522/prisagent/logger"
	"sjsage522/prisagent/services/archive"
	"sjsage522/prisagent/services/publisher"

	"github.com/google/uuid"
)

// PublishKey is the stream field ranked results are published under
const PublishKey = "b64_result"

// sinkTimeout bounds the publish and archive steps, which still run after an interrupt
const sinkTimeout = 30 * time.Second

// Options configures one batch run
type Options struct {
	Categories     []string
	MaxPerCategory int
	ProductURLs    []string
	MinPrice       float64
	OutPrefix      string
	TopN           int
}

// URLCap is the global bound on candidate URLs
func (o Options) URLCap() int {
	return o.MaxPerCategory * max(1, len(o.Categories))
}

// Summary describes a finished run
type Summary struct {
	RunID       string
	Candidates  int
	Extracted   int
	Failed      int
	Suspicious  int
	Interrupted bool
	Paths       report.Paths
	Results     []pricing.ProductResult
}

// Worker drives one batch: discovery, extraction, ranking and the sinks
type Worker struct {
	discovery crawler.Discovery
	extractor crawler.ProductExtractor
	publisher publisher.Publisher
	archives  []archive.Archive
	logger    helpers.LoggerInterface
	now       func() time.Time
	newRunID  func() string
}

// NewWorker creates a new worker. pub may be nil and archives may be empty.
func NewWorker(
	discovery crawler.Discovery,
	extractor crawler.ProductExtractor,
	pub publisher.Publisher,
	archives []archive.Archive,
	logger helpers.LoggerInterface,
) *Worker {
	return &Worker{
		discovery: discovery,
		extractor: extractor,
		publisher: pub,
		archives:  archives,
		logger:    logger,
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
}

// Run executes the batch. Reports are written even when ctx is cancelled midway,
// so the only error returned is a failure to write them.
func (w *Worker) Run(ctx context.Context, opts Options) (Summary, error) {
	start := w.now()
	summary := Summary{RunID: w.newRunID()}
	log := logger.ForWorker().WithField("run_id", summary.RunID)

	urls := w.collectURLs(ctx, opts)
	summary.Candidates = len(urls)
	log.Info().Int("candidates", len(urls)).Msg("total candidate product URLs")

	results := make([]pricing.ProductResult, 0, len(urls))
	for i, url := range urls {
		if ctx.Err() != nil {
			summary.Interrupted = true
			log.Warn().Int("remaining", len(urls)-i).Msg("run interrupted, writing partial results")
			break
		}

		w.logger.LogInfo("(%d/%d) Scraping: %s", i+1, len(urls), url)
		r, err := w.extractor.Extract(ctx, url)
		if err != nil {
			summary.Failed++
			w.logger.LogError(url, err)
			continue
		}
		results = append(results, r)
	}
	summary.Extracted = len(results)

	ranked := report.Aggregate(results, opts.MinPrice)
	summary.Results = ranked
	for _, r := range ranked {
		if r.Suspicious {
			summary.Suspicious++
		}
	}

	paths, err := report.WriteFiles(opts.OutPrefix, ranked, opts.TopN)
	summary.Paths = paths
	if err != nil {
		return summary, err
	}
	log.Info().Str("csv", paths.CSV).Str("markdown", paths.Markdown).Msg("reports written")

	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
	defer cancel()
	w.publish(sinkCtx, summary.RunID, ranked)
	w.archive(sinkCtx, summary.RunID, start, ranked)

	log.Info().
		Int("extracted", summary.Extracted).
		Int("failed", summary.Failed).
		Int("suspicious", summary.Suspicious).
		Dur("elapsed", time.Since(start)).
		Msg("run finished")
	return summary, nil
}

// collectURLs merges the explicit URLs with per-category discovery, bounded by the URL cap.
// Remaining categories are skipped once the cap is reached.
func (w *Worker) collectURLs(ctx context.Context, opts Options) []string {
	limit := opts.URLCap()
	seen := make(map[string]struct{})
	var urls []string

	add := func(u string) {
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	for _, u := range opts.ProductURLs {
		add(u)
	}

	for _, category := range opts.Categories {
		if len(urls) >= limit || ctx.Err() != nil {
			break
		}
		links := w.discovery.DiscoverForCategory(ctx, category, opts.MaxPerCategory)
		logger.ForDiscovery(category).Info().Int("links", len(links)).Msg("category discovered")
		for _, u := range links {
			add(u)
		}
	}

	if len(urls) > limit {
		urls = urls[:limit]
	}
	return urls
}

// resultMessage is the stream payload for one ranked result
type resultMessage struct {
	RunID string `json:"run_id"`
	Rank  int    `json:"rank"`
	pricing.ProductResult
}

// publish streams every ranked result and then trims the stream
func (w *Worker) publish(ctx context.Context, runID string, ranked []pricing.ProductResult) {
	if w.publisher == nil {
		return
	}

	for i, r := range ranked {
		data, err := json.Marshal(resultMessage{RunID: runID, Rank: i + 1, ProductResult: r})
		if err != nil {
			w.logger.LogError("Publisher", err)
			return
		}
		if err := w.publisher.Publish(ctx, PublishKey, data); err != nil {
			w.logger.LogError("Publisher", err)
			return
		}
	}

	if err := w.publisher.TrimStreams(ctx); err != nil {
		w.logger.LogError("StreamTrimming", err)
	}
}

// archive stores the ranked results in every configured archive
func (w *Worker) archive(ctx context.Context, runID string, collectedAt time.Time, ranked []pricing.ProductResult) {
	if len(w.archives) == 0 {
		return
	}

	rows := archive.Rows(runID, collectedAt, ranked)
	for _, a := range w.archives {
		n, err := a.Save(ctx, rows)
		if err != nil {
			w.logger.LogError("Archive", err)
			continue
		}
		logger.ForArchive().Info().Str("run_id", runID).Int("rows", n).Msg("results archived")
	}
}
