package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/agentmd/internal/logger"
	"github.com/jmylchreest/agentmd/internal/output"
	"github.com/jmylchreest/agentmd/pkg/agentmd"
)

// formatMarkdown writes the converted document as is.
const formatMarkdown = "markdown"

// convertResult is the structured form of a conversion.
type convertResult struct {
	Source         string `json:"source" yaml:"source"`
	agentmd.Result `yaml:",inline"`
}

// Text summarizes the conversion without the document itself.
func (r convertResult) Text() string {
	t := output.Table{}
	t.AddRow("source", r.Source)
	t.AddRow("markdown", output.Bytes(len(r.Markdown)))
	t.AddRow("tokens", output.Count(r.TokenEstimate.Tokens))
	t.AddRow("words", output.Count(r.TokenEstimate.Words))
	t.AddRow("hash", r.ContentHash)
	if r.ExtractStats != nil {
		t.AddRow("extract", r.ExtractStats.String())
	}
	return t.String()
}

var convertCmd = &cobra.Command{
	Use:   "convert [file | url | -]",
	Short: "Convert an HTML document to Markdown",
	Long: `Convert reads HTML from a file, a URL or stdin and writes Markdown.

With --format json, jsonl or yaml the output also carries the token
estimate, content hash and extraction statistics.

Examples:
  agentmd convert page.html
  curl -s https://example.com | agentmd convert --extract
  agentmd convert https://example.com --extract --deduplicate --frontmatter
  agentmd convert page.html --format json --tokenizer cl100k_base`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindFlags(cmd) },
	RunE:    runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	addConversionFlags(convertCmd)
	addFetchFlags(convertCmd)

	flags := convertCmd.Flags()
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", formatMarkdown, "output format: markdown, text (summary), json, jsonl, yaml")
}

func runConvert(cmd *cobra.Command, args []string) error {
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

	res, err := agentmd.Convert(in.HTML, opts)
	if err != nil {
		return err
	}
	logger.Info("converted",
		"source", in.Source,
		"html_bytes", len(in.HTML),
		"markdown_bytes", len(res.Markdown),
		"tokens", res.TokenEstimate.Tokens)

	out := cmd.OutOrStdout()
	if outPath := viper.GetString("output"); outPath != "" {
		f, err := os.Create(outPath) //#nosec G304 -- CLI tool writes to user-specified output file
		if err != nil {
			logger.Error("failed to create output file", "path", outPath, "error", err)
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	formatStr := viper.GetString("format")
	if formatStr == "" || formatStr == formatMarkdown {
		_, err := fmt.Fprint(out, res.Markdown)
		return err
	}

	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	writer, err := output.NewWriter(out, format)
	if err != nil {
		return err
	}
	if err := writer.Write(convertResult{Source: in.Source, Result: *res}); err != nil {
		return err
	}
	return writer.Close()
}
