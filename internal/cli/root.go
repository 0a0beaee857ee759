package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verttool/vert/internal/archive"
	"github.com/verttool/vert/internal/config"
	"github.com/verttool/vert/internal/version"
)

func Execute() error {
	rootCmd := &cobra.Command{
		Use:          "vert",
		Short:        "Vert - Sane way to extract/view archived contents",
		Version:      version.Version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringP("log-level", "L", "",
		"Set log level. Options: DEBUG, INFO (default), WARNING, ERROR, CRITICAL")
	rootCmd.AddCommand(
		newExtractCmd(),
		newListCmd(),
		newVersionCmd(),
	)
	return rootCmd.Execute()
}

// newEngineConfig builds the engine configuration for one command run:
// config file values, overridden by the --log-level flag and the
// external-tools environment toggle.
func newEngineConfig(cmd *cobra.Command) (*archive.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if flag, _ := cmd.Flags().GetString("log-level"); flag != "" {
		level = flag
	}

	return &archive.Config{
		Logger:           newLogger(level),
		UseExternalTools: cfg.ExternalToolsEnabled(),
	}, nil
}

// levelCritical sits above slog's error level; used for per-file failures
// that abort processing of that file.
const levelCritical = slog.LevelError + 4

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		l = slog.LevelDebug
	case "", "INFO":
		l = slog.LevelInfo
	case "WARNING", "WARN":
		l = slog.LevelWarn
	case "ERROR":
		l = slog.LevelError
	case "CRITICAL":
		l = levelCritical
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: l,
	}))
}
