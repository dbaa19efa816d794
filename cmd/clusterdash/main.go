// Package main provides the clusterdash command-line tool.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"clusterdash/internal/config"
	"clusterdash/internal/dataset"
	"clusterdash/internal/logger"
)

var version = "0.1.0"

// defaultConfigPath is tried when --config is not given.
const defaultConfigPath = "configs/clusterdash.yaml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	dataPath   string
	logLevel   string

	cfg *config.Config
	log *logger.Logger
}

// newRootCmd creates the root command for the clusterdash CLI.
func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "clusterdash",
		Short:        "Explore weekly news clusters by media collection",
		Long:         "Clusterdash serves a dashboard of weekly news clusters and summarizes, validates and exports the underlying dataset.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.SetVersionTemplate("clusterdash version {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to YAML configuration file")
	flags.StringVarP(&a.dataPath, "data", "d", "", "Dataset file (overrides dataset.path)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newSummaryCmd(a))
	rootCmd.AddCommand(newValidateCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newFmtCmd())

	return rootCmd
}

// setup loads .env, the configuration and the logger.
func (a *app) setup(cmd *cobra.Command) error {
	// A missing .env file is normal.
	_ = godotenv.Load()

	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}

	if a.dataPath != "" {
		cfg.Dataset.Path = a.dataPath
	}

	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	a.cfg = cfg
	a.log = logger.New(logger.Options{
		Writer: cmd.ErrOrStderr(),
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	return nil
}

// loadConfig reads path, or the default location when it exists, or falls
// back to built-in defaults. Environment overrides apply in every case.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}

	if path != "" {
		return config.LoadConfig(path)
	}

	cfg := config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDataset reads the configured dataset once, without watching.
func (a *app) loadDataset() (*dataset.Context, error) {
	dc, err := dataset.NewLoader(a.log).LoadFile(a.cfg.Dataset.Path)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	return dc, nil
}

// isTerminal reports whether w is a terminal, including Cygwin/MSYS ptys.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var errInvalidDataset = errors.New("dataset failed validation")
