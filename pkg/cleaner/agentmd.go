package cleaner

import (
	"github.com/jmylchreest/agentmd/pkg/agentmd"
)

// AgentMarkdownCleaner converts HTML with agentmd.Convert.
type AgentMarkdownCleaner struct {
	opts *agentmd.Options
}

// NewAgentMarkdown creates a cleaner that converts with opts. Pass nil for
// defaults.
func NewAgentMarkdown(opts *agentmd.Options) *AgentMarkdownCleaner {
	return &AgentMarkdownCleaner{opts: opts}
}

// Clean converts HTML to Markdown.
func (c *AgentMarkdownCleaner) Clean(html string) (string, error) {
	res, err := c.Convert(html)
	if err != nil {
		return "", err
	}
	return res.Markdown, nil
}

// Convert returns the full conversion result, including the token estimate
// and content hash.
func (c *AgentMarkdownCleaner) Convert(html string) (*agentmd.Result, error) {
	return agentmd.Convert(html, c.opts)
}

// Name returns the cleaner type.
func (c *AgentMarkdownCleaner) Name() string {
	return "agentmd"
}
