package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sjsage522/prisagent/config"
	"sjsage522/prisagent/helpers"
	"sjsage522/prisagent/internal/crawler"
	"sjsage522/prisagent/internal/pricing"
	"sjsage522/prisagent/internal/render"
	"sjsage522/prisagent/logger"
	"sjsage522/prisagent/services/archive"
	"sjsage522/prisagent/services/cache"
	"sjsage522/prisagent/services/publisher"
	"sjsage522/prisagent/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := config.ParseFlags(cfg, os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("Invalid command line")
		return 1
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return 1
	}

	site := crawler.Prisjakt()

	var productURLs []string
	if cfg.ProductURLsFile != "" {
		urls, err := crawler.LoadProductURLs(cfg.ProductURLsFile, site)
		if err != nil {
			log.Error().Err(err).Msg("Failed to read product URLs")
			return 1
		}
		productURLs = urls
	}

	log.Info().
		Str("environment", cfg.Environment).
		Strs("categories", cfg.Categories).
		Int("max_per_category", cfg.MaxPerCategory).
		Int("product_urls", len(productURLs)).
		Str("renderer", cfg.Renderer).
		Msg("Starting run")

	// Stop between steps on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize services")
		return 1
	}
	defer services.Cleanup()

	pacing := crawler.DefaultPacing()
	pacing.NavigateTimeout = cfg.NavigateTimeout
	pacing.IdleTimeout = cfg.IdleTimeout

	errorLog := helpers.NewLogger(cfg.OutPrefix + ".errors.log")
	w := worker.NewWorker(
		crawler.NewDiscoverer(services.Renderer, site, pacing),
		crawler.NewExtractor(services.Renderer, site, pricing.DefaultGrammar(), pacing),
		services.Publisher,
		services.Archives,
		errorLog,
	)

	summary, err := w.Run(ctx, worker.Options{
		Categories:     cfg.Categories,
		MaxPerCategory: cfg.MaxPerCategory,
		ProductURLs:    productURLs,
		MinPrice:       cfg.MinPrice,
		OutPrefix:      cfg.OutPrefix,
		TopN:           cfg.TopN,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to write reports")
		return 1
	}

	log.Info().
		Str("run_id", summary.RunID).
		Str("csv", summary.Paths.CSV).
		Str("markdown", summary.Paths.Markdown).
		Int("failed", errorLog.ErrorCount()).
		Bool("interrupted", summary.Interrupted).
		Msg("Wrote reports")
	return 0
}

// Services holds all the initialized services
type Services struct {
	Renderer  render.Renderer
	Publisher publisher.Publisher
	Archives  []archive.Archive
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Renderer != nil {
		if err := s.Renderer.Close(); err != nil {
			logger.Warn("Failed to close renderer: %v", err)
		}
	}
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	for _, a := range s.Archives {
		a.Close()
	}
}

// initializeServices opens the renderer session and the optional sinks.
// Sinks that cannot be reached are skipped.
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	// The cache only holds the rate limit block key
	cacheService := cache.New(cfg.MemcacheAddr)
	if mc, ok := cacheService.(*cache.MemcacheService); ok {
		if err := mc.Ping(); err != nil {
			logger.Warn("Memcache at %s unreachable, using in-process cache: %v", cfg.MemcacheAddr, err)
			cacheService = cache.NewMemoryCache()
		} else {
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	r, err := render.New(cfg.RendererOptions())
	if err != nil {
		return nil, err
	}
	services.Renderer = render.NewThrottled(r, cfg.RequestsPerSecond, cacheService, cfg.BlockTime)

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		if err := redisPublisher.Ping(ctx); err != nil {
			logger.Warn("Redis at %s unreachable, results will not be published: %v", cfg.RedisAddr, err)
			redisPublisher.Close()
		} else {
			services.Publisher = redisPublisher
			logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
				cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	}

	if cfg.SQLitePath != "" {
		a, err := archive.NewSQLiteArchive(cfg.SQLitePath)
		if err != nil {
			logger.Warn("SQLite archive disabled: %v", err)
		} else {
			services.Archives = append(services.Archives, a)
		}
	}

	if cfg.PGDSN != "" {
		a, err := archive.NewPostgresArchive(ctx, cfg.PGDSN, cfg.PGTable)
		if err != nil {
			logger.Warn("Postgres archive disabled: %v", err)
		} else {
			services.Archives = append(services.Archives, a)
		}
	}

	return services, nil
}
