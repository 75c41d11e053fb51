package output

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Texter is implemented by reports with a human-readable rendering.
type Texter interface {
	Text() string
}

// TextWriter writes each item as it arrives. Items implementing Texter use
// their own rendering; anything else falls back to YAML.
type TextWriter struct {
	w     *bufio.Writer
	count int
}

// NewTextWriter creates a text writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w)}
}

// Write renders one item, separated from the previous one by a blank line.
func (w *TextWriter) Write(data any) error {
	var text string
	switch v := data.(type) {
	case Texter:
		text = v.Text()
	case string:
		text = v
	default:
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		text = string(out)
	}

	if w.count > 0 {
		if _, err := w.w.WriteString("\n"); err != nil {
			return err
		}
	}
	w.count++

	if _, err := w.w.WriteString(text); err != nil {
		return err
	}
	if !strings.HasSuffix(text, "\n") {
		if _, err := w.w.WriteString("\n"); err != nil {
			return err
		}
	}
	return w.w.Flush()
}

// WriteAll writes each item in order.
func (w *TextWriter) WriteAll(data []any) error {
	for _, item := range data {
		if err := w.Write(item); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the buffer.
func (w *TextWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *TextWriter) Close() error {
	return w.Flush()
}

// Table is a simple aligned text table.
type Table struct {
	Header []string
	Rows   [][]string
}

// AddRow appends a row. Values are formatted with %v.
func (t *Table) AddRow(values ...any) {
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = fmt.Sprint(v)
	}
	t.Rows = append(t.Rows, row)
}

// String renders the table with columns padded by two spaces.
func (t *Table) String() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	if len(t.Header) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
	return sb.String()
}

// Bytes formats n as a human-readable size, e.g. "12 kB".
func Bytes(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Count formats n with thousands separators, e.g. "12,345".
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Percent formats part/whole as a percentage with one decimal, e.g. "42.5%".
// A zero whole reports "-".
func Percent(part, whole int) string {
	if whole == 0 {
		return "-"
	}
	pct := math.Round(float64(part)*1000/float64(whole)) / 10
	return humanize.FtoaWithDigits(pct, 1) + "%"
}
