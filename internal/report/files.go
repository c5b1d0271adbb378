package report

import (
	"fmt"
	"io"
	"os"

	"sjsage522/prisagent/internal/pricing"
	apperrors "sjsage522/prisagent/pkg/errors"
)

// Paths are the files written for one run
type Paths struct {
	CSV      string
	Markdown string
}

// PathsFor derives the report file names from an output prefix
func PathsFor(prefix string) Paths {
	return Paths{
		CSV:      prefix + ".csv",
		Markdown: prefix + ".md",
	}
}

// WriteFiles writes both reports for the ranked results
func WriteFiles(prefix string, results []pricing.ProductResult, topN int) (Paths, error) {
	paths := PathsFor(prefix)

	if err := writeFile(paths.CSV, func(w io.Writer) error {
		return WriteCSV(w, results)
	}); err != nil {
		return paths, err
	}
	if err := writeFile(paths.Markdown, func(w io.Writer) error {
		return WriteMarkdown(w, results, topN)
	}); err != nil {
		return paths, err
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewSink(path, "create report", err)
	}

	if err := write(f); err != nil {
		f.Close()
		return apperrors.NewSink(path, "write report", err)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewSink(path, "close report", fmt.Errorf("flush: %w", err))
	}
	return nil
}
