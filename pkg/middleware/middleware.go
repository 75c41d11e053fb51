// Package middleware serves Markdown to clients that ask for it. It wraps
// any http.Handler that produces HTML; requests whose Accept header prefers
// text/markdown get the converted document, everything else passes through.
package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jmylchreest/agentmd/internal/logger"
	"github.com/jmylchreest/agentmd/pkg/agentmd"
)

// DefaultMaxBodySize bounds the HTML buffered for conversion.
const DefaultMaxBodySize = 10 << 20

// Response headers set on converted responses.
const (
	HeaderTokens = "X-Markdown-Tokens"
	ContentType  = "text/markdown; charset=utf-8"
)

// Config configures the middleware.
type Config struct {
	// Options are passed to agentmd.Convert. When BaseURL is empty it is
	// derived from each request so relative links resolve to the origin.
	Options *agentmd.Options

	// MaxBodySize bounds buffered HTML. Larger responses are served as HTML.
	// Default DefaultMaxBodySize.
	MaxBodySize int
}

// New returns middleware converting HTML responses to Markdown. The options
// are validated once here so a misconfiguration fails at startup.
func New(cfg Config) (func(http.Handler) http.Handler, error) {
	if err := agentmd.Validate(cfg.Options); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Accept")

			if r.Method != http.MethodGet || !WantsMarkdown(r) {
				next.ServeHTTP(w, r)
				return
			}

			// The inner response must be plain HTML, and validators on
			// the request refer to the Markdown representation.
			inner := r.Clone(r.Context())
			inner.Header.Del("Accept-Encoding")
			inner.Header.Del("If-None-Match")
			inner.Header.Del("If-Modified-Since")

			bw := newBufferedWriter(w, cfg.MaxBodySize)
			next.ServeHTTP(bw, inner)

			if !bw.buffered() {
				bw.startPassthrough()
				return
			}

			res, err := convert(bw.buf.String(), requestOptions(cfg.Options, r))
			if err != nil {
				logger.Warn("markdown conversion failed, serving html",
					"path", r.URL.Path,
					"error", err)
				bw.startPassthrough()
				return
			}

			etag := `"` + res.ContentHash + `"`
			h := w.Header()
			h.Set("Content-Type", ContentType)
			h.Set("ETag", etag)
			h.Set(HeaderTokens, strconv.Itoa(res.TokenEstimate.Tokens))
			h.Del("Content-Length")

			if inm := r.Header.Get("If-None-Match"); inm != "" && etagMatches(inm, etag) {
				w.WriteHeader(http.StatusNotModified)
				return
			}

			h.Set("Content-Length", strconv.Itoa(len(res.Markdown)))
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte(res.Markdown)); err != nil {
				logger.Debug("write markdown response", "path", r.URL.Path, "error", err)
			}
			logger.Debug("served markdown",
				"path", r.URL.Path,
				"html_bytes", bw.buf.Len(),
				"markdown_bytes", len(res.Markdown),
				"tokens", res.TokenEstimate.Tokens)
		})
	}, nil
}

// convert isolates a panicking user rule to the request that hit it.
func convert(src string, opts *agentmd.Options) (res *agentmd.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("convert panicked: %v", p)
		}
	}()
	return agentmd.Convert(src, opts)
}

// requestOptions fills BaseURL from r when the configured options leave it
// empty.
func requestOptions(opts *agentmd.Options, r *http.Request) *agentmd.Options {
	var o agentmd.Options
	if opts != nil {
		o = *opts
	}
	if o.BaseURL == "" {
		o.BaseURL = requestURL(r)
	}
	return &o
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host + r.URL.EscapedPath()
}
