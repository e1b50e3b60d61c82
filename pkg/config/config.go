/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Configuration management for the StreamSchema pipeline. Defines the
inference, performance, and registry configuration sections with validation, defaults,
and viper-backed loading from files and environment variables.
*/

package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/kleascm/streamschema/pkg/formats"
	"github.com/kleascm/streamschema/pkg/schema"
)

// InferenceConfig controls sampling, detection and schema unification
type InferenceConfig struct {
	// ConfidenceThreshold applies to both format detection acceptance and
	// field type unification.
	ConfidenceThreshold float64 `json:"confidence_threshold" mapstructure:"confidence_threshold"`

	// SampleSize is how many messages the detector inspects per topic
	SampleSize int `json:"sample_size" mapstructure:"sample_size"`

	// MaxMessages caps how many messages are parsed per topic (0 = all)
	MaxMessages int `json:"max_messages" mapstructure:"max_messages"`

	// MaxDepth is the nesting ceiling for record analysis
	MaxDepth int `json:"max_depth" mapstructure:"max_depth"`

	// ArrayHandling selects the array element unification policy
	ArrayHandling string `json:"array_handling" mapstructure:"array_handling"`

	// NullHandling is accepted for configuration compatibility
	NullHandling string `json:"null_handling" mapstructure:"null_handling"`

	// AutoDetectFormat enables format detection; when false ForcedFormat
	// must name the input format.
	AutoDetectFormat bool `json:"auto_detect_format" mapstructure:"auto_detect_format"`

	// ForcedFormat bypasses detection when non-empty
	ForcedFormat string `json:"forced_format" mapstructure:"forced_format"`
}

// Validate checks the InferenceConfig for invalid or missing values.
// Returns an error if the config is invalid, or nil if valid.
func (c *InferenceConfig) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in [0, 1]")
	}
	if c.SampleSize <= 0 {
		return fmt.Errorf("sample_size must be positive")
	}
	if c.MaxMessages < 0 {
		return fmt.Errorf("max_messages must not be negative")
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive")
	}
	switch c.ArrayHandling {
	case schema.ArrayHandlingUnion, schema.ArrayHandlingFirst, schema.ArrayHandlingAll:
		// ok
	default:
		return fmt.Errorf("unsupported array_handling: %s", c.ArrayHandling)
	}
	switch c.NullHandling {
	case schema.NullHandlingOptional, schema.NullHandlingRequired, schema.NullHandlingIgnore:
		// ok
	default:
		return fmt.Errorf("unsupported null_handling: %s", c.NullHandling)
	}
	if !c.AutoDetectFormat && c.ForcedFormat == "" {
		return fmt.Errorf("forced_format is required when auto_detect_format is disabled")
	}
	if c.ForcedFormat != "" && !validInputFormat(c.ForcedFormat) {
		return fmt.Errorf("unsupported forced_format: %s", c.ForcedFormat)
	}
	return nil
}

// validInputFormat reports whether name is a parseable input format
func validInputFormat(name string) bool {
	switch name {
	case formats.FormatJSON, formats.FormatCSV, formats.FormatTSV, formats.FormatKeyValue, formats.FormatRawText:
		return true
	}
	return false
}

// PerformanceConfig controls parallel topic processing
type PerformanceConfig struct {
	// MaxWorkers bounds concurrent topic pipelines (0 = one per topic)
	MaxWorkers int `json:"max_workers" mapstructure:"max_workers"`

	// BatchSize is how many messages are read from a source at a time
	BatchSize int `json:"batch_size" mapstructure:"batch_size"`

	// ShowProgress enables per-topic progress output
	ShowProgress bool `json:"show_progress" mapstructure:"show_progress"`
}

// Validate checks the PerformanceConfig for invalid values
func (c *PerformanceConfig) Validate() error {
	if c.MaxWorkers < 0 {
		return fmt.Errorf("max_workers must not be negative")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	return nil
}

// RegistryConfig points at a schema registry for publication
type RegistryConfig struct {
	// URL is the registry endpoint; empty disables publication
	URL string `json:"url" mapstructure:"url"`

	// Compatibility is the subject compatibility level requested on
	// registration.
	Compatibility string `json:"compatibility" mapstructure:"compatibility"`
}

// Validate checks the RegistryConfig for invalid values
func (c *RegistryConfig) Validate() error {
	if c.URL == "" {
		return nil
	}
	switch c.Compatibility {
	case "", "BACKWARD", "FORWARD", "FULL", "NONE":
		// ok
	default:
		return fmt.Errorf("unsupported compatibility level: %s", c.Compatibility)
	}
	return nil
}

// Config is the top-level StreamSchema configuration
type Config struct {
	Inference   InferenceConfig   `json:"inference" mapstructure:"inference"`
	Performance PerformanceConfig `json:"performance" mapstructure:"performance"`
	Registry    RegistryConfig    `json:"registry" mapstructure:"registry"`
}

// Validate checks every configuration section
func (c *Config) Validate() error {
	if err := c.Inference.Validate(); err != nil {
		return fmt.Errorf("inference: %w", err)
	}
	if err := c.Performance.Validate(); err != nil {
		return fmt.Errorf("performance: %w", err)
	}
	if err := c.Registry.Validate(); err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	return nil
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Inference: InferenceConfig{
			ConfidenceThreshold: 0.8,
			SampleSize:          100,
			MaxMessages:         0,
			MaxDepth:            10,
			ArrayHandling:       schema.ArrayHandlingUnion,
			NullHandling:        schema.NullHandlingOptional,
			AutoDetectFormat:    true,
		},
		Performance: PerformanceConfig{
			MaxWorkers:   4,
			BatchSize:    1000,
			ShowProgress: true,
		},
		Registry: RegistryConfig{
			Compatibility: "BACKWARD",
		},
	}
}

// Load reads configuration from the optional file path and the environment,
// layered over the defaults. Environment variables use the STREAMSCHEMA
// prefix with underscores (e.g. STREAMSCHEMA_INFERENCE_SAMPLE_SIZE).
func Load(configFile string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("inference.confidence_threshold", defaults.Inference.ConfidenceThreshold)
	v.SetDefault("inference.sample_size", defaults.Inference.SampleSize)
	v.SetDefault("inference.max_messages", defaults.Inference.MaxMessages)
	v.SetDefault("inference.max_depth", defaults.Inference.MaxDepth)
	v.SetDefault("inference.array_handling", defaults.Inference.ArrayHandling)
	v.SetDefault("inference.null_handling", defaults.Inference.NullHandling)
	v.SetDefault("inference.auto_detect_format", defaults.Inference.AutoDetectFormat)
	v.SetDefault("inference.forced_format", defaults.Inference.ForcedFormat)
	v.SetDefault("performance.max_workers", defaults.Performance.MaxWorkers)
	v.SetDefault("performance.batch_size", defaults.Performance.BatchSize)
	v.SetDefault("performance.show_progress", defaults.Performance.ShowProgress)
	v.SetDefault("registry.url", defaults.Registry.URL)
	v.SetDefault("registry.compatibility", defaults.Registry.Compatibility)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("STREAMSCHEMA")
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
