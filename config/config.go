package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sjsage522/prisagent/internal/crawler"
	"sjsage522/prisagent/internal/render"
	apperrors "sjsage522/prisagent/pkg/errors"

	"github.com/spf13/pflag"
)

// Config represents the application configuration
type Config struct {
	// Run configuration
	Categories      []string
	MaxPerCategory  int
	ProductURLsFile string
	MinPrice        float64
	OutPrefix       string
	TopN            int

	// Renderer configuration
	Renderer          string
	BrowserBin        string
	BrowserControlURL string
	Headless          bool
	NavigateTimeout   time.Duration
	IdleTimeout       time.Duration

	// Politeness
	RequestsPerSecond float64
	BlockTime         time.Duration

	// Memcache configuration
	MemcacheAddr string

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Archive configuration
	SQLitePath string
	PGDSN      string
	PGTable    string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	maxPerCategory, _ := strconv.Atoi(getEnv("MAX_PER_CATEGORY", "20"))
	minPrice, _ := strconv.ParseFloat(getEnv("MIN_PRICE", "500"), 64)
	topN, _ := strconv.Atoi(getEnv("TOP_N", "20"))
	headless, _ := strconv.ParseBool(getEnv("HEADLESS", "true"))
	navigateTimeout, _ := strconv.Atoi(getEnv("NAVIGATE_TIMEOUT_SECONDS", "30"))
	idleTimeout, _ := strconv.Atoi(getEnv("IDLE_TIMEOUT_SECONDS", "8"))
	rps, _ := strconv.ParseFloat(getEnv("REQUESTS_PER_SECOND", "0.5"), 64)
	blockTime, _ := strconv.Atoi(getEnv("BLOCK_TIME_SECONDS", "300"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "10000"))

	categories := crawler.DefaultCategories
	if raw := os.Getenv("CATEGORIES"); raw != "" {
		categories = splitList(raw)
	}

	return &Config{
		Categories:           categories,
		MaxPerCategory:       maxPerCategory,
		ProductURLsFile:      getEnv("PRODUCT_URLS_FILE", ""),
		MinPrice:             minPrice,
		OutPrefix:            getEnv("OUT_PREFIX", "prisjakt_output"),
		TopN:                 topN,
		Renderer:             getEnv("RENDERER", render.BackendRod),
		BrowserBin:           getEnv("BROWSER_BIN", ""),
		BrowserControlURL:    getEnv("BROWSER_CONTROL_URL", ""),
		Headless:             headless,
		NavigateTimeout:      time.Duration(navigateTimeout) * time.Second,
		IdleTimeout:          time.Duration(idleTimeout) * time.Second,
		RequestsPerSecond:    rps,
		BlockTime:            time.Duration(blockTime) * time.Second,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "prisagent:results"),
		RedisStreamMaxLength: streamMaxLength,
		SQLitePath:           getEnv("SQLITE_PATH", ""),
		PGDSN:                getEnv("PG_DSN", ""),
		PGTable:              getEnv("PG_TABLE", "product_results"),
		Environment:          getEnv("AGENT_ENVIRONMENT", "development"),
	}
}

// ParseFlags applies command line overrides on top of the environment defaults
func ParseFlags(cfg *Config, args []string) error {
	fs := pflag.NewFlagSet("prisagent", pflag.ContinueOnError)
	fs.SortFlags = false

	categories := fs.StringSlice("categories", cfg.Categories, "categories to search (repeatable or comma separated)")
	fs.IntVar(&cfg.MaxPerCategory, "max-per-category", cfg.MaxPerCategory, "product links to collect per category")
	fs.StringVar(&cfg.ProductURLsFile, "product-urls", cfg.ProductURLsFile, "file with product URLs, one per line")
	fs.Float64Var(&cfg.MinPrice, "min-price", cfg.MinPrice, "annotate products cheaper than this (0 disables)")
	fs.StringVar(&cfg.OutPrefix, "out-prefix", cfg.OutPrefix, "prefix of the .csv and .md reports")
	fs.IntVar(&cfg.TopN, "top-n", cfg.TopN, "entries per leaderboard")
	fs.StringVar(&cfg.Renderer, "renderer", cfg.Renderer, "page renderer: rod or http")
	fs.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "archive results into this SQLite file")

	if err := fs.Parse(args); err != nil {
		return apperrors.NewConfiguration("invalid command line", err)
	}

	// "--categories TV Mobiltelefoner" leaves the later names as positional args
	names := append([]string(nil), *categories...)
	if fs.NArg() > 0 {
		if !fs.Changed("categories") {
			names = nil
		}
		names = append(names, fs.Args()...)
	}

	var cleaned []string
	for _, c := range names {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	cfg.Categories = cleaned
	return nil
}

// Validate checks the configuration for values the run cannot work with
func (c *Config) Validate() error {
	if c.MaxPerCategory <= 0 {
		return apperrors.NewConfiguration(fmt.Sprintf("max per category must be positive, got %d", c.MaxPerCategory), nil)
	}
	if c.MinPrice < 0 {
		return apperrors.NewConfiguration(fmt.Sprintf("min price must not be negative, got %v", c.MinPrice), nil)
	}
	if c.TopN < 0 {
		return apperrors.NewConfiguration(fmt.Sprintf("top n must not be negative, got %d", c.TopN), nil)
	}
	if strings.TrimSpace(c.OutPrefix) == "" {
		return apperrors.NewConfiguration("out prefix is required", nil)
	}
	if c.Renderer != render.BackendRod && c.Renderer != render.BackendHTTP {
		return apperrors.NewConfiguration(fmt.Sprintf("unknown renderer %q", c.Renderer), nil)
	}
	if len(c.Categories) == 0 && c.ProductURLsFile == "" {
		return apperrors.NewConfiguration("no categories and no product URL file given", nil)
	}
	if c.NavigateTimeout <= 0 {
		return apperrors.NewConfiguration("navigate timeout must be positive", nil)
	}
	return nil
}

// RendererOptions builds the renderer session options
func (c *Config) RendererOptions() render.Options {
	opts := render.DefaultOptions()
	opts.Backend = c.Renderer
	opts.BinPath = c.BrowserBin
	opts.ControlURL = c.BrowserControlURL
	opts.Headless = c.Headless
	return opts
}

// splitList splits a comma separated list, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
