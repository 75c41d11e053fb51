package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/agentmd/internal/logger"
	"github.com/jmylchreest/agentmd/pkg/agentmd"
	"github.com/jmylchreest/agentmd/pkg/cleaner"
	"github.com/jmylchreest/agentmd/pkg/dedup"
	"github.com/jmylchreest/agentmd/pkg/extract"
	"github.com/jmylchreest/agentmd/pkg/tokens"
)

var compareCmd = &cobra.Command{
	Use:   "compare [file | url | -]",
	Short: "Compare agentmd with other HTML converters on one input",
	Long: `Compare runs the same HTML through agentmd and a set of baselines
(raw HTML, html-to-markdown, readability) and reports output size, token
estimate and time for each.

The agentmd rows use the conversion flags; the extract and dedup rows add
extraction and deduplication on top of them.

Examples:
  agentmd compare page.html
  agentmd compare https://example.com/post --format yaml`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindFlags(cmd) },
	RunE:    runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	addConversionFlags(compareCmd)
	addFetchFlags(compareCmd)

	compareCmd.Flags().String("format", "text", "report format: text, json, jsonl, yaml")
}

// compareCleaners returns the converters compared for opts.
func compareCleaners(opts *agentmd.Options) []cleaner.Cleaner {
	extracted := *opts
	if extracted.Extract == nil {
		extracted.Extract = &extract.Options{}
	}
	full := extracted
	if full.Deduplicate == nil {
		full.Deduplicate = &dedup.Options{}
	}

	return []cleaner.Cleaner{
		cleaner.NewNoop(),
		cleaner.NewAgentMarkdown(opts),
		named("agentmd+extract", cleaner.NewAgentMarkdown(&extracted)),
		named("agentmd+extract+dedup", cleaner.NewAgentMarkdown(&full)),
		cleaner.NewHTMLToMarkdown(),
		cleaner.NewChain(
			cleaner.NewReadability(&cleaner.ReadabilityConfig{BaseURL: opts.BaseURL}),
			cleaner.NewAgentMarkdown(opts),
		),
		cleaner.NewReadability(&cleaner.ReadabilityConfig{
			Output:  cleaner.ReadabilityText,
			BaseURL: opts.BaseURL,
		}),
	}
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var arg string
	if len(args) > 0 {
		arg = args[0]
	}
	in, err := readInput(ctx, arg, cmd.InOrStdin())
	if err != nil {
		logger.Error("failed to read input", "source", arg, "error", err)
		return err
	}

	opts, err := optionsFromConfig(viper.GetViper(), in.BaseURL)
	if err != nil {
		return err
	}

	report := runCleaners(in, compareCleaners(opts), opts.TokenCounter)
	return writeReport(cmd.OutOrStdout(), report)
}

func runCleaners(in *input, cleaners []cleaner.Cleaner, count tokens.Counter) compareReport {
	report := compareReport{
		Source:      in.Source,
		InputBytes:  len(in.HTML),
		InputTokens: count(in.HTML).Tokens,
	}

	for _, c := range cleaners {
		start := time.Now()
		out, err := c.Clean(in.HTML)
		elapsed := time.Since(start)

		row := compareRow{
			Converter:  c.Name(),
			DurationMs: float64(elapsed.Microseconds()) / 1000,
		}
		if err != nil {
			logger.Warn("converter failed", "converter", c.Name(), "error", err)
			row.Error = err.Error()
			report.Results = append(report.Results, row)
			continue
		}

		row.Bytes = len(out)
		row.Tokens = count(out).Tokens
		row.Reduction = reduction(report.InputTokens, row.Tokens)
		report.Results = append(report.Results, row)
	}
	return report
}

// namedCleaner overrides a cleaner's report name.
type namedCleaner struct {
	cleaner.Cleaner
	name string
}

func named(name string, c cleaner.Cleaner) cleaner.Cleaner {
	return namedCleaner{Cleaner: c, name: name}
}

func (c namedCleaner) Name() string {
	return c.name
}
