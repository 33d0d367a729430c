package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohitdas13595/sitesage/internal/analyzer"
	"github.com/rohitdas13595/sitesage/internal/llm"
	"github.com/rohitdas13595/sitesage/internal/platform/config"
	"github.com/rohitdas13595/sitesage/internal/platform/logger"
	"github.com/rohitdas13595/sitesage/internal/platform/middleware"
	"github.com/rohitdas13595/sitesage/internal/seo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("sitesage analyzer started", "port", cfg.Port)

	thresholds, err := seo.LoadThresholds(cfg.ScoringProfilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	fetcher := seo.NewHTTPFetcher(cfg.FetchTimeout, cfg.MaxResponseBytes)

	var prober *seo.LinkProber
	if cfg.LinkCheckEnabled {
		prober = seo.NewLinkProber(cfg.LinkCheckConcurrency, cfg.LinkProbeSample, cfg.LinkProbeTimeout, cfg.LinkProbeBudget)
	}

	var summarizer seo.Summarizer
	if cfg.LLMBaseURL != "" {
		summarizer = llm.NewClient(llm.Config{
			BaseURL:           cfg.LLMBaseURL,
			APIKey:            cfg.LLMAPIKey,
			Model:             cfg.LLMModel,
			RequestsPerMinute: cfg.LLMRequestsPerMinute,
		})
	} else {
		log.Warn("no summarization endpoint configured, using rule-based insights")
	}

	insights := seo.NewInsightGenerator(summarizer, cfg.SummarizeTimeout, log)
	engine := newEngine(fetcher, prober, thresholds, insights)
	coordinator := seo.NewCoordinator(engine, cfg.MaxBatchSize, cfg.MaxConcurrency, log)

	service := analyzer.NewService(coordinator, nil, log)
	transport := analyzer.NewTransport(service, log)

	mux := http.NewServeMux()
	transport.RegisterRoutes(mux)

	handler := middleware.RequestID(middleware.Logging(log)(mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

// newEngine keeps the nil-prober case a true nil interface.
func newEngine(fetcher seo.Fetcher, prober *seo.LinkProber, thresholds seo.Thresholds, insights *seo.InsightGenerator) *seo.Engine {
	scorer := seo.NewScorer(thresholds)
	if prober == nil {
		return seo.NewEngine(fetcher, nil, scorer, insights)
	}
	return seo.NewEngine(fetcher, prober, scorer, insights)
}
