package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/agentmd/internal/logger"
	"github.com/jmylchreest/agentmd/internal/version"
)

// StaticConfig holds configuration for the static fetcher.
type StaticConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// DefaultStaticConfig returns sensible defaults.
func DefaultStaticConfig() StaticConfig {
	return StaticConfig{
		UserAgent: version.UserAgent(),
		Timeout:   30 * time.Second,
	}
}

// StaticFetcher fetches pages over plain HTTP with Colly.
type StaticFetcher struct {
	config StaticConfig
}

// NewStatic creates a new static fetcher.
func NewStatic(cfg StaticConfig) *StaticFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultStaticConfig().UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultStaticConfig().Timeout
	}
	return &StaticFetcher{config: cfg}
}

// Fetch retrieves targetURL. Non-2xx responses are returned as errors with
// the status code recorded on the page.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (Page, error) {
	start := time.Now()
	page := Page{
		URL:       targetURL,
		FetchedAt: start,
	}

	userAgent := coalesce(opts.UserAgent, f.config.UserAgent)
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.StdlibContext(ctx),
	)

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	c.SetRequestTimeout(timeout)
	logger.Debug("static fetch configured", "url", targetURL, "user_agent", userAgent, "timeout", timeout)

	c.OnRequest(func(r *colly.Request) {
		if opts.Accept != "" {
			r.Headers.Set("Accept", opts.Accept)
		}
		for k, v := range opts.Headers {
			r.Headers.Set(k, v)
		}
	})

	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		page.URL = r.Request.URL.String()
		page.StatusCode = r.StatusCode
		page.ContentType = r.Headers.Get("Content-Type")
		page.Header = *r.Headers
		page.Body = string(r.Body)
		logger.Debug("static fetch response received",
			"status", r.StatusCode,
			"content_type", page.ContentType,
			"body_size", len(r.Body))
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			page.StatusCode = r.StatusCode
		}
		fetchErr = fmt.Errorf("fetch %s: %w", targetURL, err)
		logger.Debug("static fetch error", "status", page.StatusCode, "error", err)
	})

	if err := c.Visit(targetURL); err != nil {
		return page, fmt.Errorf("visit %s: %w", targetURL, err)
	}
	page.Duration = time.Since(start)

	if fetchErr != nil {
		return page, fetchErr
	}

	if isHTML(page.ContentType) && page.Body != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body)); err == nil {
			page.Title = strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
		}
	}

	logger.Debug("static fetch complete", "url", page.URL, "duration", page.Duration)
	return page, nil
}

// Close releases resources.
func (f *StaticFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return "static"
}

func isHTML(contentType string) bool {
	return contentType == "" || strings.Contains(strings.ToLower(contentType), "html")
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
