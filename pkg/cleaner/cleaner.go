// Package cleaner provides interchangeable HTML-to-text transforms.
// The agentmd cleaner is the production path; the others are baselines and
// pre-processing stages used by the compare command.
package cleaner

// Cleaner transforms an HTML document into another representation,
// usually Markdown.
type Cleaner interface {
	// Clean transforms the input HTML.
	Clean(html string) (string, error)

	// Name identifies the cleaner in logs and reports.
	Name() string
}
