package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/agentmd/pkg/agentmd"
	"github.com/jmylchreest/agentmd/pkg/dedup"
	"github.com/jmylchreest/agentmd/pkg/extract"
	"github.com/jmylchreest/agentmd/pkg/markdown"
	"github.com/jmylchreest/agentmd/pkg/tokens"
)

// tokenizerHeuristic selects tokens.Heuristic.
const tokenizerHeuristic = "heuristic"

// addConversionFlags registers the flags shared by every command that
// converts HTML. Flag names map onto viper keys with dashes replaced by
// underscores, so each flag can also be set in the config file or as an
// AGENTMD_ environment variable.
func addConversionFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	// Formatting
	flags.String("heading-style", "", "heading style: atx, setext")
	flags.String("bullet-char", "", "bullet character: -, *, +")
	flags.String("code-block-style", "", "code block style: fenced, indented")
	flags.String("fence-char", "", "code fence character: ` or ~")
	flags.String("strong-delimiter", "", "strong delimiter: ** or __")
	flags.String("em-delimiter", "", "emphasis delimiter: * or _")
	flags.String("link-style", "", "link style: inlined, referenced")
	flags.String("base-url", "", "base URL for relative links (default: the fetched URL)")
	flags.Int("max-depth", 0, "maximum element nesting converted with formatting (0 = default)")

	// Extraction
	flags.Bool("extract", false, "strip navigation, sidebars and other page chrome")
	flags.Bool("keep-header", false, "keep <header> elements when extracting")
	flags.Bool("keep-footer", false, "keep <footer> elements when extracting")
	flags.Bool("keep-nav", false, "keep <nav> elements when extracting")
	flags.StringSlice("strip-tags", nil, "additional tags to strip")
	flags.StringSlice("strip-roles", nil, "additional ARIA roles to strip")
	flags.StringSlice("strip-classes", nil, "additional class patterns to strip (/regexp/ or substring)")
	flags.StringSlice("strip-ids", nil, "additional id patterns to strip (/regexp/ or substring)")

	// Post-processing
	flags.Bool("deduplicate", false, "remove repeated blocks")
	flags.Int("min-length", 0, "shortest block considered for deduplication (0 = default)")
	flags.Bool("frontmatter", false, "prepend YAML frontmatter with page metadata")
	flags.StringToString("frontmatter-field", nil, "set a frontmatter field (key=value, repeatable)")
	flags.String("tokenizer", tokenizerHeuristic, "token counter: heuristic or a tiktoken encoding such as cl100k_base")
}

// addFetchFlags registers the flags used when the input is a URL.
func addFetchFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("fetch-mode", "static", "fetch mode: static, dynamic (headless Chrome)")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.String("user-agent", "", "User-Agent header (default: agentmd/<version>)")
}

// bindFlags binds cmd's flags to viper at run time. Commands share flag
// names, so binding in init would let the last registered command win.
func bindFlags(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr := viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); bindErr != nil && err == nil {
			err = bindErr
		}
	})
	return err
}

// optionsFromConfig builds conversion options from v. baseURL is used when
// base_url is not configured.
func optionsFromConfig(v *viper.Viper, baseURL string) (*agentmd.Options, error) {
	opts := &agentmd.Options{
		Options: markdown.Options{
			HeadingStyle:    markdown.HeadingStyle(v.GetString("heading_style")),
			BulletChar:      v.GetString("bullet_char"),
			CodeBlockStyle:  markdown.CodeBlockStyle(v.GetString("code_block_style")),
			FenceChar:       v.GetString("fence_char"),
			StrongDelimiter: v.GetString("strong_delimiter"),
			EmDelimiter:     v.GetString("em_delimiter"),
			LinkStyle:       markdown.LinkStyle(v.GetString("link_style")),
			BaseURL:         v.GetString("base_url"),
			MaxDepth:        v.GetInt("max_depth"),
		},
		Frontmatter: v.GetBool("frontmatter"),
	}
	if opts.BaseURL == "" {
		opts.BaseURL = baseURL
	}

	ext, err := extractFromConfig(v)
	if err != nil {
		return nil, err
	}
	opts.Extract = ext

	if v.GetBool("deduplicate") || v.GetInt("min_length") > 0 {
		opts.Deduplicate = &dedup.Options{MinLength: v.GetInt("min_length")}
	}

	if fields := v.GetStringMapString("frontmatter_field"); len(fields) > 0 {
		opts.FrontmatterFields = fields
	}

	counter, err := counterFromConfig(v.GetString("tokenizer"))
	if err != nil {
		return nil, err
	}
	opts.TokenCounter = counter

	if err := agentmd.Validate(opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// extractFromConfig returns nil when extraction is off. Any strip or keep
// setting turns it on, since those only make sense with extraction.
func extractFromConfig(v *viper.Viper) (*extract.Options, error) {
	ext := &extract.Options{
		StripTags:  v.GetStringSlice("strip_tags"),
		StripRoles: v.GetStringSlice("strip_roles"),
		KeepHeader: v.GetBool("keep_header"),
		KeepFooter: v.GetBool("keep_footer"),
		KeepNav:    v.GetBool("keep_nav"),
	}

	var err error
	if ext.StripClasses, err = parsePatterns("strip_classes", v.GetStringSlice("strip_classes")); err != nil {
		return nil, err
	}
	if ext.StripIDs, err = parsePatterns("strip_ids", v.GetStringSlice("strip_ids")); err != nil {
		return nil, err
	}

	configured := len(ext.StripTags) > 0 || len(ext.StripRoles) > 0 ||
		len(ext.StripClasses) > 0 || len(ext.StripIDs) > 0 ||
		ext.KeepHeader || ext.KeepFooter || ext.KeepNav
	if !v.GetBool("extract") && !configured {
		return nil, nil
	}
	return ext, nil
}

func parsePatterns(key string, values []string) ([]extract.Pattern, error) {
	var patterns []extract.Pattern
	for _, s := range values {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		p, err := extract.ParsePattern(s)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid pattern %q: %w", key, s, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func counterFromConfig(name string) (tokens.Counter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", tokenizerHeuristic:
		return tokens.Heuristic, nil
	default:
		return tokens.NewTiktoken(name)
	}
}
