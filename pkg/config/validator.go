package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validFormats = map[string]bool{
	"default": true,
	"simple":  true,
	"json":    true,
	"list":    true,
	"domains": true,
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate HTTP config
	if c.HTTP.MaxRetries < 0 {
		errors = append(errors, ValidationError{
			Field:   "http.max_retries",
			Message: "max_retries must be non-negative",
		})
	}

	if c.HTTP.RetryBackoffMillis < 0 {
		errors = append(errors, ValidationError{
			Field:   "http.retry_backoff_ms",
			Message: "retry_backoff_ms must be non-negative",
		})
	}

	if c.HTTP.RateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "http.rate_limit",
			Message: "rate_limit must be non-negative",
		})
	}

	if c.HTTP.PageTimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "http.page_timeout_seconds",
			Message: "page_timeout_seconds must be positive",
		})
	}

	if c.HTTP.PDFTimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "http.pdf_timeout_seconds",
			Message: "pdf_timeout_seconds must be positive",
		})
	}

	// Validate header names
	for name := range c.HTTP.Headers {
		if strings.TrimSpace(name) == "" {
			errors = append(errors, ValidationError{
				Field:   "http.headers",
				Message: "header names must be non-empty",
			})
		}
	}

	// Validate Pipeline config
	if c.Pipeline.Workers < 1 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.workers",
			Message: "workers must be positive",
		})
	}

	// Validate Output config
	if !validFormats[c.Output.Format] {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Message: fmt.Sprintf("unknown output format: %s", c.Output.Format),
		})
	}

	return errors
}
