package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonny/edudiag/internal/adapter/inbound/httpapi"
	"github.com/jonny/edudiag/internal/adapter/inbound/httpapi/middleware"
	"github.com/jonny/edudiag/internal/validation"
	"github.com/jonny/edudiag/pkg/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the diagnosis HTTP API and the metrics server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, logger := opts.cfg, opts.logger

	a, err := buildApp(ctx, cfg, logger, appOptions{withMetrics: true, withProbe: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing history store", "error", err)
		}
	}()

	handler := httpapi.NewHandler(a.diagnoser,
		validation.Whitelist{
			Browsers:    cfg.Validation.AllowedBrowsers,
			Connections: cfg.Validation.AllowedConnections,
		},
		logger,
	)
	var observer middleware.HTTPObserver
	if a.metrics != nil {
		observer = a.metrics
	}
	router := httpapi.NewRouter(handler, a.checker, httpapi.RouterConfig{
		AllowedOrigins:    cfg.Server.CORS.AllowedOrigins,
		RateLimitEnabled:  cfg.Server.RateLimit.Enabled,
		RequestsPerMinute: cfg.Server.RateLimit.RequestsPerMinute,
		MaxBodyBytes:      cfg.Server.MaxBodyBytes,
		TrustProxy:        cfg.Server.TrustProxy,
	}, logger, observer)

	apiServer := httpapi.NewServer(httpapi.ServerConfig{
		Name:            "api",
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return apiServer.Start(gCtx)
	})

	if cfg.Server.MetricsPort != 0 {
		metricsServer := httpapi.NewServer(httpapi.ServerConfig{
			Name:            "metrics",
			Port:            cfg.Server.MetricsPort,
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		}, httpapi.NewMetricsRouter(a.checker, a.metrics.Handler()), logger)
		g.Go(func() error {
			return metricsServer.Start(gCtx)
		})
	} else {
		logger.Info("metrics server disabled")
	}

	logger.Info("edudiag started",
		"version", version.String(),
		"port", cfg.Server.Port,
		"history", cfg.History.Driver,
		"slack", cfg.Slack.Enabled,
		"status_probe", cfg.StatusProbe.Kubernetes.Enabled,
	)

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", "error", err)
		return err
	}
	logger.Info("edudiag stopped")
	return nil
}
