package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/agentmd/internal/logger"
	"github.com/jmylchreest/agentmd/pkg/agentmd"
	"github.com/jmylchreest/agentmd/pkg/fetcher"
	"github.com/jmylchreest/agentmd/pkg/tokens"
)

var auditCmd = &cobra.Command{
	Use:   "audit <url>",
	Short: "Report how much a page shrinks when converted",
	Long: `Audit fetches a page, converts it, and reports HTML and Markdown sizes
with token estimates for both.

It also requests the page with Accept: text/markdown to see whether the
server already negotiates Markdown.

Examples:
  agentmd audit https://example.com/docs
  agentmd audit https://example.com/docs --extract --format json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindFlags(cmd) },
	RunE:    runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	addConversionFlags(auditCmd)
	addFetchFlags(auditCmd)

	flags := auditCmd.Flags()
	flags.String("format", "text", "report format: text, json, jsonl, yaml")
	flags.Bool("probe", true, "probe for server-side Markdown negotiation")
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	target := args[0]
	if !isURL(target) {
		return fmt.Errorf("audit needs an http(s) URL, got %q", target)
	}

	f, err := newFetcher()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	page, err := f.Fetch(ctx, target, fetcher.Options{})
	if err != nil {
		logger.Error("fetch failed", "url", target, "error", err)
		return err
	}

	opts, err := optionsFromConfig(viper.GetViper(), page.URL)
	if err != nil {
		return err
	}
	res, err := agentmd.Convert(page.Body, opts)
	if err != nil {
		return err
	}

	count := opts.TokenCounter
	htmlTokens := count(page.Body).Tokens
	report := auditReport{
		URL:             page.URL,
		StatusCode:      page.StatusCode,
		FetchDurationMs: page.Duration.Milliseconds(),
		HTMLBytes:       len(page.Body),
		HTMLTokens:      htmlTokens,
		MarkdownBytes:   len(res.Markdown),
		MarkdownTokens:  res.TokenEstimate.Tokens,
		TokenReduction:  reduction(htmlTokens, res.TokenEstimate.Tokens),
		ContentHash:     res.ContentHash,
		ExtractStats:    res.ExtractStats,
	}

	if viper.GetBool("probe") {
		report.Negotiation = probeMarkdown(ctx, f, target, count)
	}

	logger.Debug("audit complete", "url", page.URL, "reduction", report.TokenReduction)
	return writeReport(cmd.OutOrStdout(), report)
}

// probeMarkdown requests target with Accept: text/markdown.
func probeMarkdown(ctx context.Context, f fetcher.Fetcher, target string, count tokens.Counter) *negotiation {
	page, err := f.Fetch(ctx, target, fetcher.Options{Accept: "text/markdown, text/html;q=0.5"})
	if err != nil {
		return &negotiation{Error: err.Error()}
	}
	n := &negotiation{ContentType: page.ContentType}
	if strings.HasPrefix(strings.ToLower(page.ContentType), "text/markdown") {
		n.ServesMarkdown = true
		n.Bytes = len(page.Body)
		n.Tokens = count(page.Body).Tokens
	}
	return n
}
