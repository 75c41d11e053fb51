package cleaner

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// HTMLToMarkdownCleaner converts HTML with JohannesKaufmann/html-to-markdown.
// It is the third-party reference point in compare reports.
type HTMLToMarkdownCleaner struct {
	conv *converter.Converter
}

// NewHTMLToMarkdown creates the baseline converter with ATX headings, "-"
// bullets and GFM tables, matching agentmd's defaults.
func NewHTMLToMarkdown() *HTMLToMarkdownCleaner {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle("atx"),
				commonmark.WithBulletListMarker("-"),
			),
			table.NewTablePlugin(),
		),
	)
	return &HTMLToMarkdownCleaner{conv: conv}
}

// Clean converts HTML to Markdown.
func (c *HTMLToMarkdownCleaner) Clean(html string) (string, error) {
	md, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}
	return cleanWhitespace(md) + "\n", nil
}

// Name returns the cleaner type.
func (c *HTMLToMarkdownCleaner) Name() string {
	return "html-to-markdown"
}

// cleanWhitespace allows at most one blank line between blocks.
func cleanWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	var result []string
	blankCount := 0

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blankCount++
			if blankCount <= 1 {
				result = append(result, "")
			}
		} else {
			blankCount = 0
			result = append(result, line)
		}
	}

	return strings.TrimSpace(strings.Join(result, "\n"))
}
