package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/newthinker/trendpulse/internal/api"
	"github.com/newthinker/trendpulse/internal/app"
	"github.com/newthinker/trendpulse/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TrendPulse API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	boot := logger.Must(debug, "")
	cfg, err := loadConfig(boot)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := app.New(cfg, nil, log)
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := a.Reload(ctx)
	for _, w := range res.Warnings {
		log.Warn("startup load", zap.String("warning", w))
	}

	go func() {
		if err := a.Start(ctx); err != nil {
			log.Error("data refresh stopped", zap.Error(err))
		}
	}()

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	log.Info("starting TrendPulse server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("data", a.Source().Describe()),
	)

	server, err := api.NewServer(api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		APIKey:       cfg.Server.APIKey,
		CORSOrigins:  cfg.Server.CORSOrigins,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		MetricsPath:  metricsPath,
	}, api.Dependencies{App: a}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("shutting down TrendPulse server")
	a.Stop()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
