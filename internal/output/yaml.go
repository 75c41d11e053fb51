package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes YAML output.
type YAMLWriter struct {
	buffer
	w       *bufio.Writer
	indent  int
	flushed bool
}

// NewYAMLWriter creates a YAML writer. indent below 2 uses 2 spaces.
func NewYAMLWriter(w io.Writer, indent int) *YAMLWriter {
	if indent < 2 {
		indent = 2
	}
	return &YAMLWriter{
		w:      bufio.NewWriter(w),
		indent: indent,
	}
}

// Flush writes the buffered items as one YAML document.
func (w *YAMLWriter) Flush() error {
	doc, ok := w.document()
	if !ok && w.flushed {
		return nil
	}
	w.flushed = true

	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(w.indent)
	if err := encoder.Encode(doc); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes and closes the writer.
func (w *YAMLWriter) Close() error {
	return w.Flush()
}
