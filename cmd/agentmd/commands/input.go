package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/jmylchreest/agentmd/internal/logger"
	"github.com/jmylchreest/agentmd/pkg/fetcher"
)

// input is an HTML document read from a file, stdin or a URL.
type input struct {
	HTML   string
	Source string
	// BaseURL is the final URL for fetched pages and empty otherwise.
	BaseURL string
	// Page is set for fetched inputs.
	Page *fetcher.Page
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// newFetcher builds the fetcher selected by --fetch-mode.
func newFetcher() (fetcher.Fetcher, error) {
	return fetcher.New(
		fetcher.Mode(viper.GetString("fetch_mode")),
		viper.GetString("user_agent"),
		viper.GetDuration("timeout"),
	)
}

// readInput loads arg: a URL is fetched, "-" or "" reads stdin, anything
// else is a file path.
func readInput(ctx context.Context, arg string, stdin io.Reader) (*input, error) {
	switch {
	case arg == "" || arg == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return &input{HTML: string(data), Source: "stdin"}, nil

	case isURL(arg):
		f, err := newFetcher()
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()

		logger.Debug("fetching input", "url", arg, "fetcher", f.Type())
		page, err := f.Fetch(ctx, arg, fetcher.Options{})
		if err != nil {
			return nil, err
		}
		return &input{HTML: page.Body, Source: arg, BaseURL: page.URL, Page: &page}, nil

	default:
		data, err := os.ReadFile(arg) //#nosec G304 -- CLI tool reads a user-specified file
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", arg, err)
		}
		return &input{HTML: string(data), Source: arg}, nil
	}
}
