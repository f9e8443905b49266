package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"arrival-benchmark/internal/benchmark"
	"arrival-benchmark/internal/config"
	"arrival-benchmark/internal/dataset"
	"arrival-benchmark/internal/db"
	"arrival-benchmark/internal/extract"
	"arrival-benchmark/internal/logging"
	"arrival-benchmark/internal/metrics"
	"arrival-benchmark/internal/publisher"
)

func main() {
	// Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}
	log, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("benchmark failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	// Metrics setup
	var mcol *metrics.Collector
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector(cfg.DayConcurrency)
		srv := mcol.Serve(cfg.MetricsAddr, log.Named("metrics"))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	sinks := []benchmark.Sink{&dataset.CSVSink{Path: cfg.OutputPath}}

	if cfg.DatabaseURL != "" {
		dsn, err := db.WithApplicationName(cfg.DatabaseURL, "arrival-benchmark")
		if err != nil {
			return fmt.Errorf("invalid DSN: %w", err)
		}
		sqlDB, err := db.Open(dsn)
		if err != nil {
			return fmt.Errorf("db open: %w", err)
		}
		defer sqlDB.Close()
		if err := db.Ping(ctx, sqlDB); err != nil {
			return fmt.Errorf("db ping: %w", err)
		}
		if err := db.EnsureSchema(ctx, sqlDB); err != nil {
			return err
		}
		sinks = append(sinks, &db.PredictionSink{DB: sqlDB, RunID: cfg.RunID})
		log.Info("postgres sink enabled", zap.String("run_id", cfg.RunID))
	}

	if cfg.NATSURL != "" {
		pub, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, cfg.RunID, log, wrapPublisherMetrics(mcol))
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer pub.Close()
		sinks = append(sinks, pub)
		log.Info("nats sink enabled", zap.String("subject_prefix", cfg.NATSSubjectPrefix))
	}

	r := &benchmark.Runner{
		Source:      dataset.NewStore(cfg.ReleasePath, log),
		Extractor:   extract.NewPattern(),
		Sinks:       sinks,
		Concurrency: cfg.DayConcurrency,
		Log:         log.Named("benchmark"),
		Metrics:     mcol,
	}
	start := time.Now()
	preds, err := r.Run(ctx)
	if err != nil {
		return err
	}
	log.Info("benchmark complete",
		zap.Int("predictions", len(preds)),
		zap.String("output", cfg.OutputPath),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// wrapPublisherMetrics adapts our Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) NATSPublishedInc()              { p.c.NATSPublished.Inc() }
func (p *pubMetrics) NATSPublishErrInc()             { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *pubMetrics) NATSSetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}
