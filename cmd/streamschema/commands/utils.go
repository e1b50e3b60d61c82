/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the StreamSchema commands. Provides common
configuration loading, logging setup, and config assembly used across all
command implementations.
*/

package commands

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/kleascm/streamschema/pkg/config"
	"github.com/kleascm/streamschema/pkg/logging"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	// Set config file if specified
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("STREAMSCHEMA")
	viper.AutomaticEnv()

	return nil
}

// SetupLogging builds the pipeline logging system from viper state
func SetupLogging() (*logging.Logger, error) {
	logCfg := &logging.LoggerConfig{
		Level:     logging.LogLevel(viper.GetString("log_level")),
		Format:    logging.LogFormatCustom,
		OutputDir: viper.GetString("log_dir"),
		MaxFiles:  10,
		MaxSize:   100 * 1024 * 1024,
		Timestamp: true,
		Colors:    true,
	}
	if logCfg.OutputDir == "" {
		logCfg.OutputDir = "./logs"
	}
	if err := logCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}
	return logging.NewLogger(logCfg)
}

// createConfig assembles the pipeline configuration from viper state layered
// over the defaults.
func createConfig() *config.Config {
	cfg := config.Default()

	if viper.IsSet("confidence_threshold") {
		cfg.Inference.ConfidenceThreshold = viper.GetFloat64("confidence_threshold")
	}
	if viper.IsSet("sample_size") {
		cfg.Inference.SampleSize = viper.GetInt("sample_size")
	}
	if viper.IsSet("max_messages") {
		cfg.Inference.MaxMessages = viper.GetInt("max_messages")
	}
	if viper.IsSet("max_depth") {
		cfg.Inference.MaxDepth = viper.GetInt("max_depth")
	}
	if viper.IsSet("array_handling") {
		cfg.Inference.ArrayHandling = viper.GetString("array_handling")
	}
	if viper.IsSet("null_handling") {
		cfg.Inference.NullHandling = viper.GetString("null_handling")
	}
	if forced := viper.GetString("input_format"); forced != "" && forced != "auto" {
		cfg.Inference.AutoDetectFormat = false
		cfg.Inference.ForcedFormat = forced
	}
	if viper.IsSet("workers") {
		cfg.Performance.MaxWorkers = viper.GetInt("workers")
	}
	if viper.IsSet("batch_size") {
		cfg.Performance.BatchSize = viper.GetInt("batch_size")
	}

	return cfg
}
