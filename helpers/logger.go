package helpers

import (
	"fmt"
	"os"
	"sync"
	"time"

	"sjsage522/prisagent/logger"
)

// LoggerInterface defines the interface for logger implementations
type LoggerInterface interface {
	LogError(target string, err error)
	LogInfo(format string, args ...interface{})
}

// Logger writes per-item failures to an error trail file and to the structured log
type Logger struct {
	errorFile string
	mu        sync.Mutex
	count     int
}

// NewLogger creates a new logger instance
func NewLogger(errorFile string) *Logger {
	return &Logger{
		errorFile: errorFile,
	}
}

// LogError logs an error to a file with target name and timestamp.
// The file is created lazily so successful runs leave no trail behind.
func (l *Logger) LogError(target string, err error) {
	logger.LogError("worker", err, "skipped %s", target)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.count++

	if l.errorFile == "" {
		return
	}

	f, fileErr := os.OpenFile(l.errorFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if fileErr != nil {
		logger.Warn("failed to open error trail %s: %v", l.errorFile, fileErr)
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "[%s] [%s] %s\n", timestamp, target, err.Error())
}

// LogInfo logs an informational message
func (l *Logger) LogInfo(format string, args ...interface{}) {
	logger.Info(format, args...)
}

// ErrorCount returns how many errors were logged so far
func (l *Logger) ErrorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
