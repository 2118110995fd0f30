package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonny/edudiag/internal/config"
)

// rootOptions carries state shared by all subcommands.
type rootOptions struct {
	configPath string
	envFile    string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "edudiag",
		Short: "Rule-based diagnosis of learning platform problems",
		Long: `edudiag recommends a probable cause and remedy for technical problems
reported on the learning platform (login, video, chat, content), based on the
reported symptoms, the user's browser and connection, and server health.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newDiagnoseCmd(opts),
		newSymptomsCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// load reads the dotenv file, the config and builds the logger. Only serve
// logs to the configured output; other commands log to stderr so their
// stdout stays machine-readable.
func (o *rootOptions) load(cmd *cobra.Command) error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", o.envFile, err)
		}
	}

	if o.configPath == "" {
		o.cfg = config.DefaultConfig()
		if err := config.Validate(o.cfg); err != nil {
			return err
		}
	} else {
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		o.cfg = cfg
	}

	out := cmd.ErrOrStderr()
	if cmd.Name() == "serve" {
		out = logOutput(o.cfg.Logging.Output, cmd)
	}
	o.logger = buildLogger(o.cfg.Logging, out)
	slog.SetDefault(o.logger)
	return nil
}

func logOutput(name string, cmd *cobra.Command) io.Writer {
	if name == "stderr" {
		return cmd.ErrOrStderr()
	}
	return os.Stdout
}

// buildLogger constructs a slog.Logger based on config.
func buildLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
