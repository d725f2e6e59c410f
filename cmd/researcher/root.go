package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"researcher/internal/app"
	"researcher/internal/config"
	"researcher/internal/logging"
	"researcher/internal/tui"
)

const version = "0.1.0"

var (
	flagConfig  string
	flagLogFile string
	flagDataDir string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "researcher",
	Short:         "Multi-document research agent over local files and Wikipedia",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(nil)
		if err != nil {
			return err
		}
		defer logging.Close()
		summary, err := a.Service.EnsureIndex(cmd.Context(), a.Config.DataDir)
		if err != nil {
			return err
		}
		return tui.Run(a.Service, tui.Options{
			TopK:       a.Config.Retriever.TopK,
			ExportPath: a.Config.Report.ExportPath,
			Summary:    summary.String(),
		})
	},
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file (default ./config.yaml or ~/.config/researcher/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "append log output to this file")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory of documents to index (overrides data_dir)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log to stderr")
}

func loadConfig() (*config.AppConfig, string, error) {
	if flagConfig != "" {
		cfg, err := config.Load(flagConfig)
		return cfg, flagConfig, err
	}
	return config.LoadDefault()
}

// setup loads configuration, starts logging and assembles the service.
// console receives log lines in addition to the log file; nil keeps them
// off the terminal.
func setup(console io.Writer) (*app.App, error) {
	cfg, path, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	logPath := cfg.Log.File
	if flagLogFile != "" {
		logPath = flagLogFile
	}
	if console == nil && flagVerbose {
		console = os.Stderr
	}
	if err := logging.Init(logPath, console); err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	logging.Event("config loaded from %s", path)
	a, err := app.New(cfg)
	if err != nil {
		_ = logging.Close()
		return nil, err
	}
	return a, nil
}
