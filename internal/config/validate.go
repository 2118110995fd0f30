package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for errors.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if cfg.Server.MetricsPort < 0 || cfg.Server.MetricsPort > 65535 {
		errs = append(errs, "server.metricsPort must be between 0 and 65535")
	}
	if cfg.Server.MetricsPort != 0 && cfg.Server.MetricsPort == cfg.Server.Port {
		errs = append(errs, "server.metricsPort must differ from server.port")
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		errs = append(errs, "server.maxBodyBytes must be positive")
	}
	if cfg.Server.RateLimit.Enabled && cfg.Server.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, "server.rateLimit.requestsPerMinute must be positive when rate limiting is enabled")
	}

	if len(cfg.Validation.AllowedBrowsers) == 0 {
		errs = append(errs, "validation.allowedBrowsers must not be empty")
	}
	if len(cfg.Validation.AllowedConnections) == 0 {
		errs = append(errs, "validation.allowedConnections must not be empty")
	}

	validDrivers := map[string]bool{"json": true, "sqlite": true, "postgres": true, "none": true}
	if !validDrivers[cfg.History.Driver] {
		errs = append(errs, fmt.Sprintf("history.driver must be json, sqlite, postgres or none (got %q)", cfg.History.Driver))
	}

	switch cfg.History.Driver {
	case "json":
		if cfg.History.JSON.Path == "" {
			errs = append(errs, "history.json.path is required when driver is json")
		}
	case "sqlite":
		if cfg.History.SQLite.Path == "" {
			errs = append(errs, "history.sqlite.path is required when driver is sqlite")
		}
	case "postgres":
		if cfg.History.Postgres.Host == "" {
			errs = append(errs, "history.postgres.host is required when driver is postgres")
		}
		if cfg.History.Postgres.Database == "" {
			errs = append(errs, "history.postgres.database is required when driver is postgres")
		}
	}

	if cfg.Slack.Enabled {
		if cfg.Slack.BotToken == "" {
			errs = append(errs, "slack.botToken is required when slack is enabled")
		}
		if cfg.Slack.Channel == "" {
			errs = append(errs, "slack.channel is required when slack is enabled")
		}
	}

	validSeverities := map[string]bool{"": true, "low": true, "medium": true, "high": true}
	if !validSeverities[cfg.Escalation.MinSeverity] {
		errs = append(errs, fmt.Sprintf("escalation.minSeverity must be low, medium or high (got %q)", cfg.Escalation.MinSeverity))
	}

	if k := cfg.StatusProbe.Kubernetes; k.Enabled {
		if k.Deployment == "" {
			errs = append(errs, "statusProbe.kubernetes.deployment is required when the probe is enabled")
		}
		if k.Namespace == "" {
			errs = append(errs, "statusProbe.kubernetes.namespace is required when the probe is enabled")
		}
		if !k.InCluster && k.Kubeconfig == "" {
			errs = append(errs, "statusProbe.kubernetes.kubeconfig is required outside the cluster")
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be debug, info, warn or error (got %q)", cfg.Logging.Level))
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		errs = append(errs, fmt.Sprintf("logging.format must be json or text (got %q)", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
