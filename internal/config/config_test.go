package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Server defaults
	if cfg.Server.Port != 5000 {
		t.Errorf("expected server.port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("expected server.readTimeout 15s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected server.shutdownTimeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.MetricsPort != 9090 {
		t.Errorf("expected server.metricsPort 9090, got %d", cfg.Server.MetricsPort)
	}
	if !cfg.Server.RateLimit.Enabled || cfg.Server.RateLimit.RequestsPerMinute != 120 {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.Server.RateLimit)
	}

	// Validation whitelists
	if len(cfg.Validation.AllowedBrowsers) != 6 {
		t.Errorf("expected 6 allowed browsers, got %v", cfg.Validation.AllowedBrowsers)
	}
	if len(cfg.Validation.AllowedConnections) != 4 {
		t.Errorf("expected 4 allowed connections, got %v", cfg.Validation.AllowedConnections)
	}

	// History defaults
	if cfg.History.Driver != "json" {
		t.Errorf("expected history.driver json, got %q", cfg.History.Driver)
	}
	if cfg.History.JSON.Path != "data/responses.json" {
		t.Errorf("expected history.json.path data/responses.json, got %q", cfg.History.JSON.Path)
	}
	if cfg.History.SQLite.PragmaJournalMode != "wal" {
		t.Errorf("expected sqlite journal mode wal, got %q", cfg.History.SQLite.PragmaJournalMode)
	}

	// Escalation defaults
	if len(cfg.Escalation.Causes) != 1 || cfg.Escalation.Causes[0] != "server" {
		t.Errorf("expected escalation causes [server], got %v", cfg.Escalation.Causes)
	}
	if cfg.Escalation.MinSeverity != "high" {
		t.Errorf("expected escalation.minSeverity high, got %q", cfg.Escalation.MinSeverity)
	}

	if cfg.Slack.Enabled {
		t.Error("expected slack disabled by default")
	}
	if cfg.StatusProbe.Kubernetes.Enabled {
		t.Error("expected kubernetes probe disabled by default")
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging.level info, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected logging.format json, got %q", cfg.Logging.Format)
	}
}

func TestLoad(t *testing.T) {
	yaml := `
server:
  port: 9000
  metricsPort: 9091
  cors:
    allowedOrigins: ["https://campus.example.edu"]
history:
  driver: sqlite
  sqlite:
    path: "/tmp/test.db"
escalation:
  causes: [server, permissions]
statusProbe:
  kubernetes:
    enabled: true
    namespace: campus
    deployment: lms-web
`
	f := writeTempYAML(t, yaml)

	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 9091 {
		t.Errorf("expected metricsPort 9091, got %d", cfg.Server.MetricsPort)
	}
	if got := cfg.Server.CORS.AllowedOrigins; len(got) != 1 || got[0] != "https://campus.example.edu" {
		t.Errorf("unexpected allowed origins: %v", got)
	}
	if cfg.History.Driver != "sqlite" || cfg.History.SQLite.Path != "/tmp/test.db" {
		t.Errorf("unexpected history config: %+v", cfg.History)
	}
	if len(cfg.Escalation.Causes) != 2 {
		t.Errorf("expected 2 escalation causes, got %v", cfg.Escalation.Causes)
	}
	if cfg.StatusProbe.Kubernetes.Deployment != "lms-web" {
		t.Errorf("expected deployment lms-web, got %q", cfg.StatusProbe.Kubernetes.Deployment)
	}
	// Verify defaults still apply to unset fields
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("expected default readTimeout 15s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.StatusProbe.Kubernetes.EventWindow != 15*time.Minute {
		t.Errorf("expected default event window 15m, got %v", cfg.StatusProbe.Kubernetes.EventWindow)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	f := writeTempYAML(t, ":::invalid yaml:::")
	_, err := Load(f)
	if err == nil {
		t.Error("expected error for invalid YAML, got nil")
	}
}

func TestLoad_NonMappingRoot(t *testing.T) {
	for _, content := range []string{"just a string", "- server\n- history\n"} {
		if _, err := Load(writeTempYAML(t, content)); err == nil {
			t.Errorf("expected error for %q, got nil", content)
		}
	}
}

func TestLoad_UnknownKeys(t *testing.T) {
	tests := map[string]string{
		"nested": "server:\n  prot: 1234\n",
		"top":    "histroy:\n  driver: sqlite\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeTempYAML(t, content))
			if err == nil {
				t.Fatal("expected error for misspelled key, got nil")
			}
			if !strings.Contains(err.Error(), "not found") {
				t.Errorf("expected unknown field error, got %v", err)
			}
		})
	}
}

func TestLoad_TrustProxy(t *testing.T) {
	cfg, err := Load(writeTempYAML(t, "server:\n  trustProxy: true\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Server.TrustProxy {
		t.Error("expected server.trustProxy to be set")
	}
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Load(writeTempYAML(t, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 5000 || cfg.History.Driver != "json" {
		t.Errorf("expected defaults, got port %d driver %q", cfg.Server.Port, cfg.History.Driver)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_TOKEN", "secret-token-123")
	t.Setenv("TEST_PORT", "9999")

	input := "token: ${TEST_TOKEN}\nport: ${TEST_PORT}\nmissing: ${MISSING_VAR}"
	result := expandEnvVars(input)

	if result != "token: secret-token-123\nport: 9999\nmissing: ${MISSING_VAR}" {
		t.Errorf("unexpected expansion result:\n%s", result)
	}
}

func TestExpandEnvVars_InLoad(t *testing.T) {
	t.Setenv("EDUDIAG_HISTORY_PATH", "/tmp/envtest.json")
	t.Setenv("EDUDIAG_SLACK_TOKEN", "xoxb-test")

	yaml := `
history:
  driver: json
  json:
    path: "${EDUDIAG_HISTORY_PATH}"
slack:
  enabled: true
  botToken: "${EDUDIAG_SLACK_TOKEN}"
`
	f := writeTempYAML(t, yaml)

	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.History.JSON.Path != "/tmp/envtest.json" {
		t.Errorf("expected env-expanded path /tmp/envtest.json, got %q", cfg.History.JSON.Path)
	}
	if cfg.Slack.BotToken != "xoxb-test" {
		t.Errorf("expected env-expanded token, got %q", cfg.Slack.BotToken)
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Errorf("expected valid config to pass validation, got: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 99999 }, "server.port"},
		{"metrics port clash", func(c *Config) { c.Server.MetricsPort = c.Server.Port }, "server.metricsPort"},
		{"rate limit", func(c *Config) { c.Server.RateLimit.RequestsPerMinute = 0 }, "requestsPerMinute"},
		{"browsers", func(c *Config) { c.Validation.AllowedBrowsers = nil }, "allowedBrowsers"},
		{"driver", func(c *Config) { c.History.Driver = "mongo" }, "history.driver"},
		{"json path", func(c *Config) { c.History.JSON.Path = "" }, "history.json.path"},
		{"sqlite path", func(c *Config) { c.History.Driver = "sqlite"; c.History.SQLite.Path = "" }, "history.sqlite.path"},
		{"postgres db", func(c *Config) { c.History.Driver = "postgres"; c.History.Postgres.Database = "" }, "history.postgres.database"},
		{"slack token", func(c *Config) { c.Slack.Enabled = true }, "slack.botToken"},
		{"severity", func(c *Config) { c.Escalation.MinSeverity = "critical" }, "escalation.minSeverity"},
		{"probe deployment", func(c *Config) { c.StatusProbe.Kubernetes.Enabled = true }, "statusProbe.kubernetes.deployment"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0
	cfg.History.Driver = "mongo"
	cfg.Logging.Level = "trace"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if n := strings.Count(err.Error(), "\n  - "); n != 3 {
		t.Errorf("expected 3 problems, got %d: %v", n, err)
	}
}

func TestPostgresConfig_DSN(t *testing.T) {
	p := DefaultConfig().History.Postgres
	p.User = "edu"
	p.Password = "pw"

	want := "host=localhost port=5432 user=edu password=pw dbname=edudiag sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	f := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(f, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return f
}

func TestLoad_ExampleConfig(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-example")

	cfg, err := Load(filepath.Join("..", "..", "configs", "config.example.yaml"))
	if err != nil {
		t.Fatalf("loading example config: %v", err)
	}
	if cfg.Slack.BotToken != "xoxb-example" {
		t.Errorf("expected expanded bot token, got %q", cfg.Slack.BotToken)
	}
	if cfg.StatusProbe.Kubernetes.Deployment != "edu-platform" {
		t.Errorf("unexpected deployment: %q", cfg.StatusProbe.Kubernetes.Deployment)
	}
	if cfg.Server.TrustProxy {
		t.Error("expected trustProxy off in the example config")
	}
	if cfg.History.Postgres.ConnMaxLifetime != 30*time.Minute {
		t.Errorf("unexpected connMaxLifetime: %v", cfg.History.Postgres.ConnMaxLifetime)
	}
}
