package application

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kreinecke/moneyfmt/internal/api"
	"github.com/kreinecke/moneyfmt/internal/config"
	"github.com/kreinecke/moneyfmt/internal/currency"
	"github.com/kreinecke/moneyfmt/internal/filters"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	formatter currency.Formatter
	filters   *filters.Registry
	handler   *api.Handler
	router    http.Handler
	logger    *zap.Logger
	server    *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	var opts []currency.Option
	if cfg.NormalizeCurrencyCase {
		opts = append(opts, currency.WithCaseInsensitiveCodes())
	}
	formatter := currency.New(opts...)
	registry := filters.NewRegistry(formatter)

	handler := api.NewHandler(formatter, api.WithMaxBatchSize(cfg.MaxBatchSize))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	rootHandler, err := BuildRootHandler(apiRouter, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP handler: %w", err)
	}

	logger.Info("formatter configured",
		zap.Bool("normalize_currency_case", cfg.NormalizeCurrencyCase),
		zap.Strings("filters", registry.Names()),
	)

	return &App{
		formatter: formatter,
		filters:   registry,
		handler:   handler,
		router:    apiRouter,
		logger:    logger,
		server:    NewServer(cfg, rootHandler),
	}, nil
}

// samplePrice is a row on the index page preview table.
type samplePrice struct {
	Label    string
	Amount   decimal.Decimal
	Currency string
}

var indexSamples = []samplePrice{
	{Label: "Groceries", Amount: decimal.RequireFromString("1234.5"), Currency: "GBP"},
	{Label: "Rent", Amount: decimal.RequireFromString("8500"), Currency: "DKK"},
	{Label: "Refund", Amount: decimal.RequireFromString("-42.1"), Currency: "USD"},
	{Label: "Travel", Amount: decimal.RequireFromString("99.999"), Currency: "EUR"},
}

// BuildRootHandler constructs the root HTTP handler that serves static files,
// renders the index page through the filter registry and routes API requests.
func BuildRootHandler(apiHandler http.Handler, registry *filters.Registry) (http.Handler, error) {
	mux := http.NewServeMux()

	staticPath, err := resolveProjectPath(filepath.Join("web", "static"))
	if err != nil {
		return nil, err
	}
	staticDir := http.Dir(staticPath)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(staticDir)))
	mux.Handle("/api/", apiHandler)

	indexPath, err := resolveProjectPath(filepath.Join("web", "templates", "index.html"))
	if err != nil {
		return nil, err
	}
	index, err := template.New(filepath.Base(indexPath)).Funcs(registry.FuncMap()).ParseFiles(indexPath)
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}

	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		var buf bytes.Buffer
		data := map[string]any{
			"Samples":    indexSamples,
			"Currencies": currency.Known(),
		}
		if err := index.Execute(&buf, data); err != nil {
			http.Error(w, "failed to render page", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	}))

	return mux, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Filters returns the filter registry handed to the rendering layer.
func (a *App) Filters() *filters.Registry {
	return a.filters
}

// resolveProjectPath locates a file or directory relative to the project root by walking up the directory tree.
func resolveProjectPath(relative string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, relative)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", relative)
}
