// cmd/slot-assistant/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"cowin-slot-assistant/internal/common/config"
	"cowin-slot-assistant/internal/common/errors"
	"cowin-slot-assistant/internal/common/logger"
	"cowin-slot-assistant/internal/common/metrics"
	"cowin-slot-assistant/internal/common/observability"
	"cowin-slot-assistant/internal/notify"
	"cowin-slot-assistant/internal/prompt"
	"cowin-slot-assistant/internal/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to config file (default: configs/config.yaml)")
	mode := flag.String("mode", "", "Search mode: district or pincode (overrides config)")
	strict := flag.Bool("strict", false, "Reject beneficiary selections that cannot be booked together")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :9102")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		return errors.ExitCode(errors.NewConfigInvalidError(err))
	}
	if *mode != "" {
		cfg.Search.Mode = *mode
	}
	if *strict {
		cfg.Search.StrictSelection = true
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Address = *metricsAddr
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return errors.ExitCode(errors.NewConfigInvalidError(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting slot assistant",
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.Search.Mode),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("Poll cycle metrics disabled", zap.Error(err))
	}
	defer obs.Shutdown()

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Address); err != nil {
				zapLog.Error("Metrics server failed", zap.Error(err))
			}
		}()
		zapLog.Info("Metrics server started", zap.String("address", cfg.Metrics.Address))
	}

	handler := errors.NewErrorHandler(log, os.Stdout)

	notifier, err := notify.FromConfig(ctx, cfg, log)
	if err != nil {
		return handler.Report(err)
	}

	s := session.New(session.Options{
		Config:        cfg,
		Prompter:      prompt.NewConsole(os.Stdin, os.Stdout),
		Out:           os.Stdout,
		Notifier:      notifier,
		Observability: obs,
		Logger:        log,
	})

	if _, err := s.Run(ctx); err != nil {
		if ctx.Err() != nil {
			zapLog.Info("Interrupted, stopping", zap.String("sessionId", s.ID))
			return 130
		}
		return handler.Report(err)
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
