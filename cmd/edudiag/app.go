package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonny/edudiag/internal/adapter/outbound/kubernetes"
	"github.com/jonny/edudiag/internal/adapter/outbound/metrics"
	"github.com/jonny/edudiag/internal/adapter/outbound/notification"
	slacknotifier "github.com/jonny/edudiag/internal/adapter/outbound/notification/slack"
	"github.com/jonny/edudiag/internal/adapter/outbound/persistence/jsonfile"
	"github.com/jonny/edudiag/internal/adapter/outbound/persistence/postgres"
	"github.com/jonny/edudiag/internal/adapter/outbound/persistence/sqlite"
	"github.com/jonny/edudiag/internal/config"
	"github.com/jonny/edudiag/internal/domain/model"
	"github.com/jonny/edudiag/internal/domain/port/outbound"
	"github.com/jonny/edudiag/internal/domain/rules"
	"github.com/jonny/edudiag/internal/domain/service"
	"github.com/jonny/edudiag/pkg/health"
	"github.com/jonny/edudiag/pkg/version"
)

// app holds the wired domain service and its collaborators.
type app struct {
	diagnoser *service.Diagnoser
	checker   *health.Checker
	metrics   *metrics.Metrics
	closers   []func() error
}

type appOptions struct {
	withMetrics bool
	withProbe   bool
}

// buildApp wires history, notifier, status probe and metrics into a Diagnoser.
func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts appOptions) (*app, error) {
	a := &app{checker: health.NewChecker(version.Version)}

	history, err := a.openHistory(ctx, cfg.History, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	var notifier outbound.Notifier
	if cfg.Slack.Enabled {
		notifier = slacknotifier.NewNotifier(slacknotifier.Config{
			BotToken: cfg.Slack.BotToken,
			Channel:  cfg.Slack.Channel,
		})
	} else {
		notifier = notification.NewNoopNotifier(logger)
	}

	svcOpts := []service.Option{
		service.WithEscalationPolicy(service.EscalationPolicy{
			Causes:      cfg.Escalation.Causes,
			MinSeverity: model.Severity(cfg.Escalation.MinSeverity),
		}),
	}

	if k := cfg.StatusProbe.Kubernetes; opts.withProbe && k.Enabled {
		clientset, err := kubernetes.NewClientset(kubernetes.ClientConfig{
			InCluster:  k.InCluster,
			Kubeconfig: k.Kubeconfig,
			Timeout:    k.Timeout,
		})
		if err != nil {
			logger.Warn("kubernetes status probe unavailable, using request server status only", "error", err)
		} else {
			probe := kubernetes.NewProbe(clientset, kubernetes.ProbeConfig{
				Namespace:         k.Namespace,
				Deployment:        k.Deployment,
				Timeout:           k.Timeout,
				MaintenanceWindow: k.MaintenanceWindow,
				EventWindow:       k.EventWindow,
			})
			a.checker.Register("kubernetes", probe.HealthCheck)
			svcOpts = append(svcOpts, service.WithStatusProbe(probe))
		}
	}

	if opts.withMetrics {
		a.metrics = metrics.New()
		svcOpts = append(svcOpts, service.WithRecorder(a.metrics))
	}

	a.diagnoser = service.NewDiagnoser(rules.Catalog(), history, notifier, logger, svcOpts...)
	return a, nil
}

func (a *app) openHistory(ctx context.Context, cfg config.HistoryConfig, logger *slog.Logger) (outbound.HistoryRepository, error) {
	var repo outbound.HistoryRepository
	switch cfg.Driver {
	case "json":
		repo = jsonfile.NewHistoryRepo(cfg.JSON.Path)
	case "sqlite":
		store, err := sqlite.NewStore(sqlite.Config{
			Path:              cfg.SQLite.Path,
			MaxOpenConns:      cfg.SQLite.MaxOpenConns,
			PragmaJournalMode: cfg.SQLite.PragmaJournalMode,
			PragmaBusyTimeout: cfg.SQLite.PragmaBusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("opening sqlite history: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		repo = sqlite.NewHistoryRepo(store)
	case "postgres":
		db, err := postgres.Open(ctx, postgres.Config{
			DSN:             cfg.Postgres.DSN(),
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("opening postgres history: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		repo = postgres.NewHistoryRepo(db)
	case "none":
		logger.Info("diagnosis history disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown history driver %q", cfg.Driver)
	}

	a.checker.Register("history", repo.Ping)
	logger.Debug("diagnosis history enabled", "driver", cfg.Driver)
	return repo, nil
}

// Close releases database handles.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
