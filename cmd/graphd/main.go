// Command graphd serves named graphs over HTTP.
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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/persistorai/docgraph/internal/api"
	"github.com/persistorai/docgraph/internal/config"
	"github.com/persistorai/docgraph/internal/graph"
	"github.com/persistorai/docgraph/internal/service"
)

const (
	shutdownTimeout   = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
	retentionInterval = 6 * time.Hour
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("graphd exited")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := graph.NewRegistry(st, log,
		graph.WithGraphCollection(cfg.GraphCollection),
		graph.WithBatchSize(cfg.CursorBatchSize),
		graph.WithCacheSize(cfg.ElementCacheSize),
	)

	g, ctx := errgroup.WithContext(ctx)

	var enqueuer service.AuditEnqueuer
	if cfg.AuditEnabled {
		auditor := service.NewDocumentAuditor(st, service.DefaultAuditCollection, log)
		worker := service.NewAuditWorker(auditor, log, 0)
		enqueuer = worker

		g.Go(func() error {
			worker.Run(ctx)
			return nil
		})
		g.Go(func() error {
			auditor.RunRetention(ctx, retentionInterval, cfg.AuditRetentionDays)
			return nil
		})
	}

	svc := service.NewGraphService(registry, enqueuer, log)

	apiServer := &http.Server{
		Addr: cfg.Addr(),
		Handler: api.NewRouter(ctx, &api.RouterDeps{
			Log:         log,
			Store:       st,
			Graphs:      svc,
			Elements:    svc,
			Traversal:   svc,
			CORSOrigins: cfg.CORSOrigins,
			Version:     config.Version,
			StoreDriver: cfg.StoreDriver,
			RateLimit:   cfg.RateLimitRPS,
			RateBurst:   cfg.RateLimitBurst,
		}),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           metricsMux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serve(g, log, "api", apiServer)
	serve(g, log, "metrics", metricsServer)

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(apiServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	log.WithFields(logrus.Fields{
		"addr":         cfg.Addr(),
		"metrics_addr": cfg.MetricsAddr(),
		"store_driver": cfg.StoreDriver,
		"version":      config.Version,
	}).Info("graphd started")

	return g.Wait()
}

// serve runs srv in the group. A listener failure cancels the group.
func serve(g *errgroup.Group, log *logrus.Logger, name string, srv *http.Server) {
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).WithField("server", name).Error("listener failed")
			return fmt.Errorf("%s server: %w", name, err)
		}
		return nil
	})
}
