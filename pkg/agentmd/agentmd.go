// Package agentmd converts HTML pages into compact Markdown for LLM
// context windows.
//
// Convert runs the full pipeline: parse, optional boilerplate extraction,
// rule-driven Markdown conversion, normalization, optional block
// deduplication and optional YAML frontmatter. Every call owns its
// document tree, so Convert is safe for concurrent use.
package agentmd

import (
	"fmt"
	"hash/fnv"
	"strings"

	"golang.org/x/net/html"

	"github.com/jmylchreest/agentmd/internal/logger"
	"github.com/jmylchreest/agentmd/pkg/dedup"
	"github.com/jmylchreest/agentmd/pkg/extract"
	"github.com/jmylchreest/agentmd/pkg/frontmatter"
	"github.com/jmylchreest/agentmd/pkg/markdown"
	"github.com/jmylchreest/agentmd/pkg/render"
	"github.com/jmylchreest/agentmd/pkg/tokens"
)

// Result is the output of Convert.
type Result struct {
	// Markdown is the final document, ending in a single newline.
	Markdown string `json:"markdown" yaml:"markdown"`

	// TokenEstimate is computed on Markdown.
	TokenEstimate tokens.Estimate `json:"token_estimate" yaml:"token_estimate"`

	// ContentHash is ContentHash(Markdown).
	ContentHash string `json:"content_hash" yaml:"content_hash"`

	// ExtractStats is set when extraction ran.
	ExtractStats *extract.Stats `json:"extract_stats,omitempty" yaml:"extract_stats,omitempty"`
}

// Convert turns an HTML document into Markdown. A nil opts uses defaults.
//
// Malformed HTML is repaired by the parser. Errors are returned for invalid
// options and for documents the parser rejects, which in practice means
// more than 512 nested open elements. Panics raised by user-supplied rules
// are not recovered.
func Convert(src string, opts *Options) (*Result, error) {
	if err := Validate(opts); err != nil {
		return nil, err
	}
	r := resolve(opts)

	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var fields map[string]string
	if r.opts.frontmatterEnabled() {
		fields = frontmatter.Merge(frontmatter.Extract(doc, r.opts.BaseURL), r.opts.FrontmatterFields)
	}

	var stats *extract.Stats
	if r.opts.Extract != nil {
		stats = extract.Extract(doc, r.opts.Extract)
		logger.Debug("extracted content", "removed", stats.TotalRemoved(), "kept", stats.ElementsKept)
	}

	md := render.Normalize(r.converter.Convert(doc))
	if r.opts.Deduplicate != nil {
		before := len(md)
		md = dedup.Deduplicate(md, r.opts.Deduplicate)
		logger.Debug("deduplicated", "bytes_before", before, "bytes_after", len(md))
	}

	fm, err := frontmatter.Render(fields)
	if err != nil {
		return nil, err
	}
	md = fm + md

	res := &Result{
		Markdown:      md,
		TokenEstimate: r.counter(md),
		ContentHash:   ContentHash(md),
		ExtractStats:  stats,
	}
	logger.Debug("converted html",
		"html_bytes", len(src),
		"markdown_bytes", len(md),
		"tokens", res.TokenEstimate.Tokens,
		"hash", res.ContentHash,
	)
	return res, nil
}

// ExtractContent prunes boilerplate from doc in place. A nil opts uses the
// default strip sets.
func ExtractContent(doc *html.Node, opts *extract.Options) *extract.Stats {
	return extract.Extract(doc, opts)
}

// CreateRule returns a rule at the given priority, or markdown.UserPriority
// when none is passed, which is tried before any built-in rule. Only the
// first priority is used.
func CreateRule(filter markdown.Filter, replacement markdown.Replacement, priority ...int) markdown.Rule {
	r := markdown.NewRule(filter, replacement)
	if len(priority) > 0 {
		r = r.WithPriority(priority[0])
	}
	return r
}

// ContentHash returns the FNV-1a 32-bit hash of md as 8 lowercase hex
// characters. It is stable across runs and suitable as an ETag, not as a
// security checksum.
func ContentHash(md string) string {
	h := fnv.New32a()
	h.Write([]byte(md))
	return fmt.Sprintf("%08x", h.Sum32())
}
