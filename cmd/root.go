// Package cmd provides the folio command-line interface.
//
// Configuration is read, highest priority first, from:
//
//  1. Command-line flags (--config, --port, ...)
//  2. FOLIO_<SECTION>_<KEY> environment variables (FOLIO_SERVER_PORT=9000)
//  3. The config file: --config, else FOLIO_CONFIG_FILE, else ./.folio.yml
//  4. Built-in defaults
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/conneroisu/folio/internal/config"
	"github.com/conneroisu/folio/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "A personal portfolio site with a live contact form",
	Long: `Folio serves a single-page portfolio rendered from a content file.

Pages keep a websocket open to the server, which validates the contact form
as you type, tracks the visible section, and reloads open pages when the
content file changes.

Quick Start:
  folio validate                  Check the content file
  folio serve                     Start the site
  folio inbox                     Read messages sent through the form`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .folio.yml, can also use FOLIO_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format (console, json)")
	bindFlag(rootCmd.PersistentFlags(), "log.level", "log-level")
	bindFlag(rootCmd.PersistentFlags(), "log.format", "log-format")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("FOLIO_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".folio")
	}

	if err := config.BindEnv(viper.GetViper()); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to bind environment:", err)
	}

	// A missing file is fine; defaults and the environment still apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if notFound := (viper.ConfigFileNotFoundError{}); !errors.As(err, &notFound) {
		fmt.Fprintln(os.Stderr, "Failed to read config file:", err)
	}
}

// loadConfig loads the configuration and builds the logger it describes.
func loadConfig() (*config.Config, *logging.FolioLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	return cfg, logger, nil
}
