/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for StreamSchema. Provides comprehensive
command-line options, configuration management, and beautiful user interface for
inferring schemas from raw message samples with advanced logging capabilities.
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/streamschema/cmd/streamschema/commands"
)

var (
	// Configuration
	configFile string
	logLevel   string
	logDir     string

	// Input configuration
	inputPath   string
	inputFormat string
	topics      []string

	// Inference configuration
	confidenceThreshold float64
	sampleSize          int
	maxMessages         int
	maxDepth            int
	arrayHandling       string
	nullHandling        string

	// Output configuration
	outputDir    string
	schemaFormat string

	// Performance configuration
	workers   int
	batchSize int
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "streamschema",
		Short: "StreamSchema - Schema inference engine for raw message streams",
		Long: `StreamSchema is a production-grade schema inference engine that samples raw
byte messages, detects their format, parses them into semi-structured records, and
unifies heterogeneous samples into a single schema. Generated schemas can be emitted
as Avro, Protocol Buffers, or JSON Schema.`,
		Version: "1.0.0",
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "./logs", "Directory for timestamped log files")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))

	// Add infer command
	inferCmd := &cobra.Command{
		Use:   "infer",
		Short: "Infer schemas from message samples",
		Long: `Infer schemas from raw message samples. A directory input treats each
subdirectory as a topic with one message per file; a file input is a single topic
with one message per line. The detected format, parsed records, and unified schema
are reported per topic.`,
		RunE: commands.RunInfer,
	}

	// Add infer command flags
	inferCmd.Flags().StringVar(&inputPath, "input", "", "Input file or directory (required)")
	inferCmd.Flags().StringVar(&inputFormat, "format", "auto", "Input format (auto, json, csv, tsv, key-value, raw-text)")
	inferCmd.Flags().StringSliceVar(&topics, "topics", []string{}, "Topics to process (default: all)")

	inferCmd.Flags().Float64Var(&confidenceThreshold, "confidence", 0.8, "Confidence threshold for detection and type unification")
	inferCmd.Flags().IntVar(&sampleSize, "sample-size", 100, "Messages inspected per topic for format detection")
	inferCmd.Flags().IntVar(&maxMessages, "max-messages", 0, "Maximum messages parsed per topic (0 = all)")
	inferCmd.Flags().IntVar(&maxDepth, "max-depth", 10, "Maximum nesting depth for record analysis")
	inferCmd.Flags().StringVar(&arrayHandling, "array-handling", "union", "Array element unification policy (union, first, all)")
	inferCmd.Flags().StringVar(&nullHandling, "null-handling", "optional", "Null handling policy (optional, required, ignore)")

	inferCmd.Flags().StringVar(&outputDir, "output", "./schemas", "Directory for generated schema files")
	inferCmd.Flags().StringVar(&schemaFormat, "schema-format", "avro", "Schema format (avro, protobuf, json-schema)")

	inferCmd.Flags().IntVar(&workers, "workers", 4, "Number of parallel topic workers (0 = one per topic)")
	inferCmd.Flags().IntVar(&batchSize, "batch-size", 1000, "Messages read from a source at a time")

	// Mark required flags
	inferCmd.MarkFlagRequired("input")

	// Bind flags to viper
	viper.BindPFlag("input", inferCmd.Flags().Lookup("input"))
	viper.BindPFlag("input_format", inferCmd.Flags().Lookup("format"))
	viper.BindPFlag("topics", inferCmd.Flags().Lookup("topics"))
	viper.BindPFlag("confidence_threshold", inferCmd.Flags().Lookup("confidence"))
	viper.BindPFlag("sample_size", inferCmd.Flags().Lookup("sample-size"))
	viper.BindPFlag("max_messages", inferCmd.Flags().Lookup("max-messages"))
	viper.BindPFlag("max_depth", inferCmd.Flags().Lookup("max-depth"))
	viper.BindPFlag("array_handling", inferCmd.Flags().Lookup("array-handling"))
	viper.BindPFlag("null_handling", inferCmd.Flags().Lookup("null-handling"))
	viper.BindPFlag("output", inferCmd.Flags().Lookup("output"))
	viper.BindPFlag("schema_format", inferCmd.Flags().Lookup("schema-format"))
	viper.BindPFlag("workers", inferCmd.Flags().Lookup("workers"))
	viper.BindPFlag("batch_size", inferCmd.Flags().Lookup("batch-size"))

	rootCmd.AddCommand(inferCmd)

	// Add list-formats command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "list-formats",
		Short: "List supported input and schema formats",
		Long: `List all input formats the pipeline can detect and parse, and all schema
formats it can generate, with descriptions and examples.`,
		Run: func(cmd *cobra.Command, args []string) {
			commands.ListFormats(cmd, args)
		},
	})

	// Add check command for built-in self-checks
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Perform built-in self-checks for system validation",
		Long: `Perform comprehensive system checks to validate configuration, input
accessibility, output writability, and a full pipeline round trip. Very useful for
CI/CD integration.`,
		RunE: commands.PerformSelfCheck,
	})

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
