package commands

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// parseSize parses a human-readable byte size such as "512KB" or "10MB".
// An empty string or "0" means no explicit limit and returns 0.
func parseSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
