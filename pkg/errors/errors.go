package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeRenderer represents navigation, scroll, wait or DOM access failures
	ErrorTypeRenderer ErrorType = "renderer"
	// ErrorTypeRateLimit represents rate limiting by the upstream site
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeExtraction represents a failed extraction of a single product page
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeParsing represents malformed input such as URL files
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeSink represents publisher or archive errors
	ErrorTypeSink ErrorType = "sink"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// AgentError represents an error raised while collecting or reporting prices
type AgentError struct {
	Type    ErrorType
	Target  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *AgentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Target, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Target, e.Message)
}

// Unwrap returns the underlying error
func (e *AgentError) Unwrap() error {
	return e.Err
}

// New creates a new AgentError
func New(errType ErrorType, target, message string, err error) *AgentError {
	return &AgentError{
		Type:    errType,
		Target:  target,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewRenderer creates a new renderer error
func NewRenderer(target, message string, err error) *AgentError {
	return New(ErrorTypeRenderer, target, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(target string, duration time.Duration) *AgentError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, target, message, nil)
}

// NewExtraction creates a new extraction error
func NewExtraction(target, message string, err error) *AgentError {
	return New(ErrorTypeExtraction, target, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(target, message string, err error) *AgentError {
	return New(ErrorTypeParsing, target, message, err)
}

// NewSink creates a new sink error
func NewSink(target, message string, err error) *AgentError {
	return New(ErrorTypeSink, target, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *AgentError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsType reports whether any error in err's chain is an AgentError of the given type
func IsType(err error, errType ErrorType) bool {
	var agentErr *AgentError
	if !stderrors.As(err, &agentErr) {
		return false
	}
	if agentErr.Type == errType {
		return true
	}
	// Nested agent errors, e.g. a rate limit wrapped into an extraction failure
	return agentErr.Err != nil && IsType(agentErr.Err, errType)
}
