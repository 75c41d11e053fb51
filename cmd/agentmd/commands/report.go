package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"

	"github.com/jmylchreest/agentmd/internal/output"
	"github.com/jmylchreest/agentmd/pkg/extract"
)

// auditReport compares a page's HTML with its Markdown conversion.
type auditReport struct {
	URL             string         `json:"url" yaml:"url"`
	StatusCode      int            `json:"status_code" yaml:"status_code"`
	FetchDurationMs int64          `json:"fetch_duration_ms" yaml:"fetch_duration_ms"`
	HTMLBytes       int            `json:"html_bytes" yaml:"html_bytes"`
	HTMLTokens      int            `json:"html_tokens" yaml:"html_tokens"`
	MarkdownBytes   int            `json:"markdown_bytes" yaml:"markdown_bytes"`
	MarkdownTokens  int            `json:"markdown_tokens" yaml:"markdown_tokens"`
	TokenReduction  float64        `json:"token_reduction_percent" yaml:"token_reduction_percent"`
	ContentHash     string         `json:"content_hash" yaml:"content_hash"`
	Negotiation     *negotiation   `json:"negotiation,omitempty" yaml:"negotiation,omitempty"`
	ExtractStats    *extract.Stats `json:"extract_stats,omitempty" yaml:"extract_stats,omitempty"`
}

// negotiation records how the server answered Accept: text/markdown.
type negotiation struct {
	ContentType    string `json:"content_type" yaml:"content_type"`
	ServesMarkdown bool   `json:"serves_markdown" yaml:"serves_markdown"`
	Bytes          int    `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	Tokens         int    `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Error          string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (r auditReport) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (status %d, fetched in %dms)\n\n", r.URL, r.StatusCode, r.FetchDurationMs)

	t := output.Table{Header: []string{"", "BYTES", "TOKENS"}}
	t.AddRow("html", output.Bytes(r.HTMLBytes), output.Count(r.HTMLTokens))
	t.AddRow("markdown", output.Bytes(r.MarkdownBytes), output.Count(r.MarkdownTokens))
	if n := r.Negotiation; n != nil && n.ServesMarkdown {
		t.AddRow("server markdown", output.Bytes(n.Bytes), output.Count(n.Tokens))
	}
	sb.WriteString(t.String())

	fmt.Fprintf(&sb, "\ntoken reduction: %s\n", output.Percent(r.HTMLTokens-r.MarkdownTokens, r.HTMLTokens))
	fmt.Fprintf(&sb, "content hash:    %s\n", r.ContentHash)
	if n := r.Negotiation; n != nil {
		switch {
		case n.Error != "":
			fmt.Fprintf(&sb, "negotiation:     failed (%s)\n", n.Error)
		case n.ServesMarkdown:
			sb.WriteString("negotiation:     server answers Accept: text/markdown\n")
		default:
			fmt.Fprintf(&sb, "negotiation:     not supported (got %s)\n", n.ContentType)
		}
	}
	if r.ExtractStats != nil {
		fmt.Fprintf(&sb, "extraction:      %s\n", r.ExtractStats)
	}
	return sb.String()
}

// compareRow is one converter's result in a compare report.
type compareRow struct {
	Converter  string  `json:"converter" yaml:"converter"`
	Bytes      int     `json:"bytes" yaml:"bytes"`
	Tokens     int     `json:"tokens" yaml:"tokens"`
	Reduction  float64 `json:"token_reduction_percent" yaml:"token_reduction_percent"`
	DurationMs float64 `json:"duration_ms" yaml:"duration_ms"`
	Error      string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// compareReport runs several converters over the same input.
type compareReport struct {
	Source      string       `json:"source" yaml:"source"`
	InputBytes  int          `json:"input_bytes" yaml:"input_bytes"`
	InputTokens int          `json:"input_tokens" yaml:"input_tokens"`
	Results     []compareRow `json:"results" yaml:"results"`
}

func (r compareReport) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s, %s tokens\n\n", r.Source, output.Bytes(r.InputBytes), output.Count(r.InputTokens))

	t := output.Table{Header: []string{"CONVERTER", "OUTPUT", "TOKENS", "REDUCTION", "TIME"}}
	for _, row := range r.Results {
		if row.Error != "" {
			t.AddRow(row.Converter, "ERROR", "-", "-", row.Error)
			continue
		}
		t.AddRow(row.Converter,
			output.Bytes(row.Bytes),
			output.Count(row.Tokens),
			output.Percent(r.InputTokens-row.Tokens, r.InputTokens),
			fmt.Sprintf("%.1fms", row.DurationMs))
	}
	sb.WriteString(t.String())
	return sb.String()
}

// reduction is the share of before saved by after, in percent.
func reduction(before, after int) float64 {
	if before == 0 {
		return 0
	}
	return float64(before-after) * 100 / float64(before)
}

// writeReport writes report in the --format selected on the command.
func writeReport(w io.Writer, report any) error {
	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}
	writer, err := output.NewWriter(w, format)
	if err != nil {
		return err
	}
	if err := writer.Write(report); err != nil {
		return err
	}
	return writer.Close()
}
