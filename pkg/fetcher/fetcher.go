// Package fetcher retrieves HTML pages for the CLI. Implement Fetcher to
// plug in authenticated or browser-based fetching.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Fetcher abstracts page fetching strategies.
type Fetcher interface {
	// Fetch retrieves the page at url.
	Fetch(ctx context.Context, url string, opts Options) (Page, error)

	// Close releases any resources.
	Close() error

	// Type returns a string identifying the fetcher type (e.g., "static").
	Type() string
}

// Options controls a single fetch.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// Accept overrides the Accept request header, e.g. "text/markdown" to
	// probe for server-side Markdown negotiation.
	Accept  string
	Headers map[string]string
}

// Page is a fetched document.
type Page struct {
	URL         string
	Body        string
	Title       string
	StatusCode  int
	ContentType string
	Header      http.Header
	FetchedAt   time.Time
	Duration    time.Duration
}

// Mode selects a Fetcher implementation.
type Mode string

const (
	ModeStatic  Mode = "static"
	ModeDynamic Mode = "dynamic"
)

// New returns the fetcher for mode. An empty mode is static.
func New(mode Mode, userAgent string, timeout time.Duration) (Fetcher, error) {
	switch mode {
	case ModeStatic, "":
		return NewStatic(StaticConfig{UserAgent: userAgent, Timeout: timeout}), nil
	case ModeDynamic:
		return NewDynamic(DynamicConfig{UserAgent: userAgent, Timeout: timeout})
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s (use 'static' or 'dynamic')", mode)
	}
}
