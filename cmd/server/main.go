// Package main runs the holder analysis HTTP service: a JSON API for
// sampling token holder distributions, plus a Prometheus scrape endpoint
// on a separate port.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"solana-holder-sampler/internal/analyzer"
	"solana-holder-sampler/internal/api"
	"solana-holder-sampler/internal/config"
	"solana-holder-sampler/internal/holders"
	"solana-holder-sampler/internal/logger"
	"solana-holder-sampler/internal/observability"
	"solana-holder-sampler/internal/solana"
)

func main() {
	// Load .env file if it exists; system env vars take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	log := logger.New("holder-sampler", cfg.LogLevel)
	defer log.Sync()

	metrics := observability.NewMetrics("holder_sampler")

	rpc := solana.NewHTTPClient(cfg.Endpoint(), solana.WithTimeout(cfg.RPCTimeout))

	an := analyzer.New(analyzer.Options{
		Fetcher: holders.NewFetcher(rpc, log,
			holders.WithPageInterval(cfg.PageInterval),
			holders.WithMetrics(metrics),
		),
		Resolver:  holders.NewResolver(rpc, log),
		Processor: holders.NewProcessor(),
		Timeout:   cfg.AnalyzeTimeout,
		Logger:    log,
		Metrics:   metrics,
	})

	server := api.New(an, log, cfg.ListenPort)

	go serveMetrics(cfg.MetricsPort, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("API server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Info("shutting down", zap.String("signal", sig.String()))
	if err := server.Shutdown(); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	log.Info("shutdown complete")
}

// serveMetrics exposes /metrics and /health on the scrape port.
func serveMetrics(port string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("starting metrics server", zap.String("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("metrics server failed", zap.Error(err))
	}
}
