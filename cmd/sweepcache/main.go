// Command sweepcache serves an in-memory TTL cache over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/karupanerura/sweepcache/evictor"
	promrecorder "github.com/karupanerura/sweepcache/metrics/prometheus"
	"github.com/karupanerura/sweepcache/router"
	"github.com/karupanerura/sweepcache/store"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		logrus.WithError(err).Fatal("failed to parse configuration")
	}

	logger := logrus.StandardLogger()
	logger.SetLevel(cfg.logLevel)
	logger.SetFormatter(cfg.formatter())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("sweepcache stopped")
	}
	logger.Info("sweepcache stopped")
}

func run(ctx context.Context, cfg config, logger *logrus.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := promrecorder.New(reg)

	s := store.New(store.WithShards[string, string](cfg.shards))
	ev, err := evictor.New(s, cfg.cache,
		evictor.WithRecorder(recorder),
		evictor.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: cfg.addr,
		Handler: router.New(s,
			router.WithRecorder(recorder),
			router.WithLogger(logger),
			router.WithMaxBodyBytes(cfg.maxBodyBytes),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return ev.Run(ctx)
	})
	eg.Go(func() error {
		logger.WithFields(logrus.Fields{
			"addr":     cfg.addr,
			"ttl":      cfg.cache.TTL,
			"interval": ev.Interval(),
			"shards":   cfg.shards,
		}).Info("sweepcache listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}
