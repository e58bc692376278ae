package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/portsync/backend"
	"github.com/s0up4200/portsync/metrics"
	"github.com/s0up4200/portsync/monitor"
)

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	guard, err := newGuard()
	if err != nil {
		return err
	}

	client, err := backend.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", cfg.Backend, err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close torrent client session")
		}
	}()

	var recorder *metrics.Recorder
	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewRecorder(registry)
	}

	opts := []monitor.Option{
		monitor.WithInterval(cfg.Monitor.Interval),
		monitor.WithGuard(guard),
	}
	if recorder != nil {
		opts = append(opts, monitor.WithRecorder(recorder))
	}

	if cfg.Monitor.Watch {
		watcher, err := monitor.NewDirWatcher(cfg.LogDir, logger)
		if err != nil {
			return err
		}
		defer watcher.Close()
		opts = append(opts, monitor.WithWake(watcher.Wake()))
	}

	mon := monitor.New(newLocator(), newExtractor(), client, newExecutor(recorder), logger, opts...)

	logger.Info().
		Str("log_dir", cfg.LogDir).
		Str("backend", client.Name()).
		Bool("watch", cfg.Monitor.Watch).
		Msg("Starting portsync")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mon.Run(gctx)
	})
	if cfg.Metrics.Enabled {
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.Metrics.Listen, registry, logger)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info().Msg("Shutting down")
	return nil
}
