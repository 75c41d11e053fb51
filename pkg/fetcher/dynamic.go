package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/agentmd/internal/logger"
)

// chromeBinaryNames are tried in order when no ExecPath is configured.
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"/snap/bin/chromium",
}

// FindChromePath returns the first Chrome or Chromium binary found, or "".
func FindChromePath() string {
	for _, name := range chromeBinaryNames {
		if path, err := exec.LookPath(name); err == nil {
			logger.Debug("found Chrome binary", "name", name, "path", path)
			return path
		}
	}
	return ""
}

// DynamicConfig holds configuration for the headless browser fetcher.
type DynamicConfig struct {
	UserAgent string
	Timeout   time.Duration
	// ExecPath overrides browser discovery.
	ExecPath string
	// WaitSelector is waited on before the DOM is captured (default "body").
	WaitSelector string
}

// DynamicFetcher renders pages in headless Chrome before capturing the DOM,
// for sites that build their content with JavaScript.
type DynamicFetcher struct {
	config    DynamicConfig
	allocCtx  context.Context
	cancelCtx context.CancelFunc
}

// NewDynamic starts a browser allocator. The browser process itself is
// launched lazily by the first Fetch.
func NewDynamic(cfg DynamicConfig) (*DynamicFetcher, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultStaticConfig().UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultStaticConfig().Timeout
	}
	if cfg.WaitSelector == "" {
		cfg.WaitSelector = "body"
	}
	if cfg.ExecPath == "" {
		cfg.ExecPath = FindChromePath()
	}
	if cfg.ExecPath == "" {
		return nil, fmt.Errorf("no Chrome or Chromium binary found")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.ExecPath(cfg.ExecPath),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	logger.Debug("dynamic fetcher created", "exec_path", cfg.ExecPath, "timeout", cfg.Timeout)
	return &DynamicFetcher{config: cfg, allocCtx: allocCtx, cancelCtx: cancel}, nil
}

// Fetch navigates to targetURL and returns the rendered outer HTML. The status
// code and headers come from the main document response.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (Page, error) {
	start := time.Now()
	page := Page{URL: targetURL, FetchedAt: start}

	browserCtx, cancelBrowser := chromedp.NewContext(f.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)
	defer cancelBrowser()

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	runCtx, cancelRun := context.WithTimeout(browserCtx, timeout)
	defer cancelRun()

	// Stop when the caller gives up, not only on our own deadline.
	stop := context.AfterFunc(ctx, cancelRun)
	defer stop()

	var (
		mu       sync.Mutex
		document *network.Response
	)
	chromedp.ListenTarget(runCtx, func(ev any) {
		if resp, ok := ev.(*network.EventResponseReceived); ok && resp.Type == network.ResourceTypeDocument {
			mu.Lock()
			if document == nil {
				document = resp.Response
			}
			mu.Unlock()
		}
	})

	headers := network.Headers{}
	if opts.Accept != "" {
		headers["Accept"] = opts.Accept
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	var body, title string
	actions := []chromedp.Action{network.Enable()}
	if len(headers) > 0 {
		actions = append(actions, network.SetExtraHTTPHeaders(headers))
	}
	if opts.UserAgent != "" {
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetUserAgentOverride(opts.UserAgent).Do(ctx)
		}))
	}
	actions = append(actions,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady(f.config.WaitSelector),
		chromedp.OuterHTML("html", &body),
		chromedp.Title(&title),
	)

	if err := chromedp.Run(runCtx, actions...); err != nil {
		page.Duration = time.Since(start)
		return page, fmt.Errorf("browser fetch %s: %w", targetURL, err)
	}

	page.Body = body
	page.Title = strings.TrimSpace(title)
	page.Duration = time.Since(start)
	page.StatusCode = http.StatusOK

	mu.Lock()
	if document != nil {
		page.StatusCode = int(document.Status)
		page.URL = coalesce(document.URL, targetURL)
		page.Header = make(http.Header, len(document.Headers))
		for k, v := range document.Headers {
			page.Header.Set(k, fmt.Sprint(v))
		}
		page.ContentType = page.Header.Get("Content-Type")
	}
	mu.Unlock()

	logger.Debug("dynamic fetch complete",
		"url", page.URL,
		"status", page.StatusCode,
		"bytes", len(page.Body),
		"duration", page.Duration)

	if page.StatusCode >= 400 {
		return page, fmt.Errorf("fetch %s: status %d", targetURL, page.StatusCode)
	}
	return page, nil
}

// Close shuts down the browser.
func (f *DynamicFetcher) Close() error {
	if f.cancelCtx != nil {
		f.cancelCtx()
	}
	return nil
}

// Type returns "dynamic".
func (f *DynamicFetcher) Type() string {
	return "dynamic"
}
