package cleaner

import (
	"bytes"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	"github.com/yosssi/gohtml"
	"golang.org/x/net/html"

	"github.com/jmylchreest/agentmd/internal/logger"
)

// ReadabilityOutput selects what the Readability cleaner emits.
type ReadabilityOutput string

const (
	// ReadabilityHTML emits the article as HTML, ready for another cleaner.
	ReadabilityHTML ReadabilityOutput = "html"
	// ReadabilityText emits the article as plain text.
	ReadabilityText ReadabilityOutput = "text"
)

// ReadabilityConfig configures the Readability cleaner.
type ReadabilityConfig struct {
	// Output is ReadabilityHTML (default) or ReadabilityText.
	Output ReadabilityOutput
	// MaxElemsToParse limits the number of nodes to parse (0 = no limit).
	MaxElemsToParse int
	// CharThreshold is the minimum character count for valid content (default: 500).
	CharThreshold int
	// BaseURL resolves relative URLs in the article.
	BaseURL string
}

// ReadabilityCleaner isolates the main article with go-readability, a port
// of Mozilla's Readability.js. It is an alternative to agentmd's
// rule-based extraction and is usually chained in front of an
// AgentMarkdownCleaner.
type ReadabilityCleaner struct {
	cfg    ReadabilityConfig
	parser readability.Parser
}

// NewReadability creates a new Readability cleaner.
// Pass nil for default configuration.
func NewReadability(cfg *ReadabilityConfig) *ReadabilityCleaner {
	if cfg == nil {
		cfg = &ReadabilityConfig{}
	}

	parser := readability.NewParser()
	if cfg.MaxElemsToParse > 0 {
		parser.MaxElemsToParse = cfg.MaxElemsToParse
	}
	if cfg.CharThreshold > 0 {
		parser.CharThresholds = cfg.CharThreshold
	}

	return &ReadabilityCleaner{
		cfg:    *cfg,
		parser: parser,
	}
}

// Clean extracts the main content. When no article is found the input is
// returned unchanged.
func (c *ReadabilityCleaner) Clean(htmlContent string) (string, error) {
	var baseURL *url.URL
	if c.cfg.BaseURL != "" {
		if u, err := url.Parse(c.cfg.BaseURL); err == nil {
			baseURL = u
		}
	}

	article, err := c.parser.Parse(strings.NewReader(htmlContent), baseURL)
	if err != nil {
		return "", err
	}
	if article.Node == nil {
		logger.Debug("readability found no article, passing input through")
		return htmlContent, nil
	}

	var buf bytes.Buffer
	if c.cfg.Output == ReadabilityText {
		if err := article.RenderText(&buf); err != nil || buf.Len() == 0 {
			return htmlContent, nil
		}
		return buf.String(), nil
	}

	if err := article.RenderHTML(&buf); err != nil {
		buf.Reset()
		if err := html.Render(&buf, article.Node); err != nil {
			return htmlContent, nil
		}
	}
	if buf.Len() == 0 {
		return htmlContent, nil
	}
	return gohtml.Format(buf.String()), nil
}

// Name returns the cleaner type.
func (c *ReadabilityCleaner) Name() string {
	return "readability"
}
