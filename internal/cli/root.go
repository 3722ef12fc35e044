package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ppiankov/trustwatch/internal/config"
	"github.com/ppiankov/trustwatch/internal/logging"
)

var (
	configPath string
	logLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (default ~/.trustwatch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
}

var rootCmd = &cobra.Command{
	Use:   "trustwatch",
	Short: "Employee trust scoring and escalation",
	Long: "Samples presence, inbox, login identity, sensitive-file access and time of day,\n" +
		"turns them into a trust score, and escalates CLEAN -> WARNED -> BLOCKED with admin alerts.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadDotEnv()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadDotEnv reads .env from the working directory and the config
// directory. Variables already set in the environment win.
func loadDotEnv() error {
	for _, p := range []string{".env", filepath.Join(config.DefaultDir(), ".env")} {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format)
}
