package crawler

import (
	"bufio"
	"os"
	"strings"

	"sjsage522/prisagent/logger"
	apperrors "sjsage522/prisagent/pkg/errors"
)

// LoadProductURLs reads one product URL per line. Blank lines, "#" comments and
// lines that are not product URLs are skipped; duplicates are dropped.
func LoadProductURLs(path string, site Site) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewParsing(path, "open product URL file", err)
	}
	defer f.Close()

	var urls []string
	seen := make(map[string]struct{})
	skipped := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		u, ok := site.CanonicalProductURL(line)
		if !ok || !strings.HasPrefix(line, "http") {
			skipped++
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewParsing(path, "read product URL file", err)
	}

	if skipped > 0 {
		logger.Warn("skipped %d lines in %s that are not product URLs", skipped, path)
	}
	return urls, nil
}
