package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/kreinecke/moneyfmt/internal/application"
	"github.com/kreinecke/moneyfmt/internal/config"
	"github.com/kreinecke/moneyfmt/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("moneyfmt-server", "Currency formatting service - renders monetary amounts for display")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()
	maxBatchSizeFlag := kingpinApp.Flag("max-batch-size", "Maximum number of items in a batch format request").Default("0").Int()
	var normalizeSet bool
	normalizeFlag := kingpinApp.Flag("normalize-currency-case", "Match GBP, DKK and USD case-insensitively").
		IsSetByUser(&normalizeSet).Bool()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := buildOverrides(*configFile, *port, *rateLimitRPSFlag, *rateLimitBurstFlag, *maxBatchSizeFlag)
	if normalizeSet {
		overrides.NormalizeCurrencyCase = normalizeFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// buildOverrides keeps only flags that were given; negative rate limits and a
// zero batch size mean "not set".
func buildOverrides(configFile, port string, rps float64, burst, maxBatch int) *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile: configFile,
	}
	if port != "" {
		overrides.Port = &port
	}
	if rps >= 0 {
		overrides.RateLimitRPS = &rps
	}
	if burst >= 0 {
		overrides.RateLimitBurst = &burst
	}
	if maxBatch > 0 {
		overrides.MaxBatchSize = &maxBatch
	}
	return overrides
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
