package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Validation  ValidationConfig  `yaml:"validation"`
	History     HistoryConfig     `yaml:"history"`
	Slack       SlackConfig       `yaml:"slack"`
	Escalation  EscalationConfig  `yaml:"escalation"`
	StatusProbe StatusProbeConfig `yaml:"statusProbe"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type ServerConfig struct {
	Port            int             `yaml:"port"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	MetricsPort     int             `yaml:"metricsPort"`
	MaxBodyBytes    int64           `yaml:"maxBodyBytes"`
	CORS            CORSConfig      `yaml:"cors"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
	TrustProxy      bool            `yaml:"trustProxy"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
}

// ValidationConfig holds the whitelists applied to request system info.
type ValidationConfig struct {
	AllowedBrowsers    []string `yaml:"allowedBrowsers"`
	AllowedConnections []string `yaml:"allowedConnections"`
}

type HistoryConfig struct {
	Driver   string         `yaml:"driver"`
	JSON     JSONFileConfig `yaml:"json"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type JSONFileConfig struct {
	Path string `yaml:"path"`
}

type SQLiteConfig struct {
	Path              string `yaml:"path"`
	MaxOpenConns      int    `yaml:"maxOpenConns"`
	PragmaJournalMode string `yaml:"pragmaJournalMode"`
	PragmaBusyTimeout int    `yaml:"pragmaBusyTimeout"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN builds a lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

type SlackConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"botToken"`
	Channel  string `yaml:"channel"`
}

type EscalationConfig struct {
	Causes      []string `yaml:"causes"`
	MinSeverity string   `yaml:"minSeverity"`
}

type StatusProbeConfig struct {
	Kubernetes KubernetesProbeConfig `yaml:"kubernetes"`
}

type KubernetesProbeConfig struct {
	Enabled           bool          `yaml:"enabled"`
	InCluster         bool          `yaml:"inCluster"`
	Kubeconfig        string        `yaml:"kubeconfig"`
	Namespace         string        `yaml:"namespace"`
	Deployment        string        `yaml:"deployment"`
	Timeout           time.Duration `yaml:"timeout"`
	MaintenanceWindow time.Duration `yaml:"maintenanceWindow"`
	EventWindow       time.Duration `yaml:"eventWindow"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads a YAML config file and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := DefaultConfig()
	if err := decodeStrict([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// decodeStrict decodes a YAML mapping into cfg, rejecting unknown keys.
// An empty document leaves cfg unchanged.
func decodeStrict(data []byte, cfg *Config) error {
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if len(root.Content) == 1 && root.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: top level must be a mapping of config sections", root.Content[0].Line)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MetricsPort:     9090,
			MaxBodyBytes:    1 << 20,
			CORS:            CORSConfig{AllowedOrigins: []string{"*"}},
			RateLimit:       RateLimitConfig{Enabled: true, RequestsPerMinute: 120},
		},
		Validation: ValidationConfig{
			AllowedBrowsers:    []string{"Chrome", "Firefox", "Edge", "Safari", "IE", "Other"},
			AllowedConnections: []string{"wifi", "ethernet", "cellular", "slow_wifi"},
		},
		History: HistoryConfig{
			Driver: "json",
			JSON:   JSONFileConfig{Path: "data/responses.json"},
			SQLite: SQLiteConfig{
				Path:              "data/edudiag.db",
				MaxOpenConns:      1,
				PragmaJournalMode: "wal",
				PragmaBusyTimeout: 5000,
			},
			Postgres: PostgresConfig{
				Host:            "localhost",
				Port:            5432,
				Database:        "edudiag",
				SSLMode:         "disable",
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: 30 * time.Minute,
			},
		},
		Slack: SlackConfig{
			Enabled: false,
			Channel: "#edu-support",
		},
		Escalation: EscalationConfig{
			Causes:      []string{"server"},
			MinSeverity: "high",
		},
		StatusProbe: StatusProbeConfig{
			Kubernetes: KubernetesProbeConfig{
				Enabled:           false,
				InCluster:         true,
				Namespace:         "default",
				Timeout:           3 * time.Second,
				MaintenanceWindow: 24 * time.Hour,
				EventWindow:       15 * time.Minute,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// expandEnvVars replaces ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "${" + key + "}"
	})
}
