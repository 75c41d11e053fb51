package agentmd

import (
	"github.com/jmylchreest/agentmd/pkg/dedup"
	"github.com/jmylchreest/agentmd/pkg/extract"
	"github.com/jmylchreest/agentmd/pkg/markdown"
	"github.com/jmylchreest/agentmd/pkg/tokens"
)

// Options configures Convert. The zero value converts the whole document
// with default formatting, no extraction, no deduplication and no
// frontmatter.
type Options struct {
	// Formatting options, inlined so callers write opts.BaseURL.
	markdown.Options `yaml:",inline"`

	// Extract prunes boilerplate before conversion when non-nil.
	// &extract.Options{} enables extraction with the default strip sets.
	Extract *extract.Options `json:"extract,omitempty" yaml:"extract,omitempty"`

	// Rules are merged ahead of the built-in rules by priority.
	Rules []markdown.Rule `json:"-" yaml:"-"`

	// Deduplicate removes repeated blocks when non-nil.
	// &dedup.Options{} uses the default minimum length.
	Deduplicate *dedup.Options `json:"deduplicate,omitempty" yaml:"deduplicate,omitempty"`

	// Frontmatter prepends a YAML block with metadata read from <head>.
	Frontmatter bool `json:"frontmatter,omitempty" yaml:"frontmatter,omitempty"`

	// FrontmatterFields are added to the extracted metadata, replacing
	// fields of the same name. A non-nil map enables frontmatter.
	FrontmatterFields map[string]string `json:"frontmatter_fields,omitempty" yaml:"frontmatter_fields,omitempty"`

	// TokenCounter replaces tokens.Heuristic.
	TokenCounter tokens.Counter `json:"-" yaml:"-"`
}

func (o *Options) frontmatterEnabled() bool {
	return o.Frontmatter || o.FrontmatterFields != nil
}

// resolved is Options after defaults are applied. It is built once per
// Convert call and not modified afterwards.
type resolved struct {
	opts      Options
	converter *markdown.Converter
	counter   tokens.Counter
}

func resolve(opts *Options) *resolved {
	var o Options
	if opts != nil {
		o = *opts
	}

	var rules []markdown.Rule
	if len(o.Rules) > 0 {
		rules = markdown.MergeRules(o.Rules, markdown.DefaultRules())
	}

	counter := o.TokenCounter
	if counter == nil {
		counter = tokens.Heuristic
	}

	conv := markdown.NewConverter(o.Options, rules)
	o.Options = conv.Options()

	return &resolved{opts: o, converter: conv, counter: counter}
}
