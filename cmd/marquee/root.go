// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
)

var (
	configPath string
	logLevel   string

	// cfg is loaded by the persistent pre-run of every command that needs it.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "marquee",
	Short:         "Content-based movie similarity pipeline and recommendation API",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (overrides CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override: trace, debug, info, warn, error")
}

// loadConfig reads the layered configuration and initializes logging from it.
func loadConfig(*cobra.Command, []string) error {
	if configPath != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, configPath); err != nil {
			return fmt.Errorf("set %s: %w", config.ConfigPathEnvVar, err)
		}
	}

	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}

	logging.Init(logging.Config{
		Level:     loaded.Logging.Level,
		Format:    loaded.Logging.Format,
		Caller:    loaded.Logging.Caller,
		Timestamp: true,
	})
	cfg = loaded
	return nil
}
