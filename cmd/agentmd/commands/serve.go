package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/agentmd/internal/logger"
	"github.com/jmylchreest/agentmd/internal/version"
	"github.com/jmylchreest/agentmd/pkg/agentmd"
	"github.com/jmylchreest/agentmd/pkg/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve HTML with Markdown content negotiation",
	Long: `Serve answers requests whose Accept header prefers text/markdown with
converted Markdown and everything else with the original HTML.

Content comes from a static directory (--dir) or an upstream server
(--upstream). Converted responses carry an ETag derived from the content
hash and an X-Markdown-Tokens header.

Examples:
  agentmd serve --dir ./public
  agentmd serve --upstream http://localhost:3000 --extract --addr :8081
  curl -H 'Accept: text/markdown' http://localhost:8080/guide.html`,
	Args:    cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindFlags(cmd) },
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addConversionFlags(serveCmd)

	flags := serveCmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.String("dir", "", "serve files from this directory")
	flags.String("upstream", "", "proxy requests to this URL")
	flags.String("max-body-size", "10MB", "largest HTML response converted (e.g. 512KB, 10MB)")
	flags.StringSlice("cors-origins", []string{"*"}, "allowed CORS origins")
}

// serveConfig is the resolved configuration of the serve command.
type serveConfig struct {
	Dir         string
	Upstream    string
	MaxBodySize int
	CORSOrigins []string
	Options     *agentmd.Options
}

// newServer builds the router: health check, CORS, then Markdown
// negotiation in front of the content handler.
func newServer(cfg serveConfig) (http.Handler, error) {
	content, err := contentHandler(cfg)
	if err != nil {
		return nil, err
	}

	negotiate, err := middleware.New(middleware.Config{
		Options:     cfg.Options,
		MaxBodySize: cfg.MaxBodySize,
	})
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "If-None-Match"},
		ExposedHeaders: []string{"ETag", middleware.HeaderTokens},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "ok %s\n", version.String())
	})
	r.With(negotiate).Handle("/*", content)

	return r, nil
}

func contentHandler(cfg serveConfig) (http.Handler, error) {
	switch {
	case cfg.Dir != "" && cfg.Upstream != "":
		return nil, errors.New("use either --dir or --upstream, not both")
	case cfg.Dir != "":
		return http.FileServer(http.Dir(cfg.Dir)), nil
	case cfg.Upstream != "":
		target, err := url.Parse(cfg.Upstream)
		if err != nil || target.Host == "" {
			return nil, fmt.Errorf("invalid upstream URL %q", cfg.Upstream)
		}
		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("upstream request failed", "path", r.URL.Path, "error", err)
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}
		return proxy, nil
	default:
		return nil, errors.New("one of --dir or --upstream is required")
	}
}

// requestLogger logs each request through the package logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"content_type", ww.Header().Get("Content-Type"),
			"request_id", chimw.GetReqID(r.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	maxBody, err := parseSize(viper.GetString("max_body_size"))
	if err != nil {
		return fmt.Errorf("invalid --max-body-size: %w", err)
	}

	opts, err := optionsFromConfig(viper.GetViper(), "")
	if err != nil {
		return err
	}

	handler, err := newServer(serveConfig{
		Dir:         viper.GetString("dir"),
		Upstream:    viper.GetString("upstream"),
		MaxBodySize: maxBody,
		CORSOrigins: viper.GetStringSlice("cors_origins"),
		Options:     opts,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              viper.GetString("addr"),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "version", version.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}
