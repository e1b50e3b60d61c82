/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: infer.go
Description: Infer command implementation for StreamSchema. Samples messages from a
file or directory, runs the full inference pipeline per topic, writes the generated
schema files, and prints a per-topic summary.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/streamschema/pkg/generators"
	"github.com/kleascm/streamschema/pkg/interfaces"
	"github.com/kleascm/streamschema/pkg/pipeline"
)

// RunInfer executes the schema inference process
func RunInfer(cmd *cobra.Command, args []string) error {
	fmt.Println("🔍 StreamSchema - Starting Schema Inference")
	fmt.Println("===========================================")
	fmt.Println()

	// Load configuration first
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup logging
	logger, err := SetupLogging()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	// Create pipeline configuration
	cfg := createConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	schemaFormat := viper.GetString("schema_format")
	if _, err := generators.NewGenerator(schemaFormat); err != nil {
		return err
	}

	// Resolve the message source from the input path
	input := viper.GetString("input")
	source, err := newSource(input)
	if err != nil {
		return err
	}

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\n🛑 Received shutdown signal, stopping inference...")
		cancel()
	}()

	// Run the pipeline over all topics
	p := pipeline.New(cfg.Inference, logger.GetLogger())
	results, err := p.ProcessTopics(ctx, source, nil, viper.GetStringSlice("topics"), schemaFormat, cfg.Performance)
	if err != nil {
		return fmt.Errorf("topic processing failed: %w", err)
	}

	// Write schema files and print the summary
	outputDir := viper.GetString("output")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	failures := 0
	for _, result := range results {
		if result.Err != nil {
			failures++
			fmt.Printf("❌ %s: %v\n", result.Topic, result.Err)
			continue
		}

		outPath := filepath.Join(outputDir, fmt.Sprintf("%s.%s", result.Topic, result.Extension))
		if err := os.WriteFile(outPath, []byte(result.SchemaText), 0644); err != nil {
			return fmt.Errorf("failed to write schema file: %w", err)
		}

		fmt.Printf("✅ %s: %d fields from %d/%d messages (%s, confidence %.2f) -> %s\n",
			result.Topic, len(result.Schema.Fields), result.Metadata.ParsedCount,
			result.Metadata.MessageCount, result.Metadata.Format,
			result.Metadata.Confidence, outPath)
	}

	fmt.Println()
	fmt.Printf("📊 Processed %d topics, %d failed\n", len(results), failures)
	if failures == len(results) {
		return fmt.Errorf("all %d topics failed", failures)
	}

	fmt.Println("\n✨ Schema inference completed!")
	return nil
}

// newSource maps the input path to a message source: directories sample one
// file per message, files one line per message.
func newSource(input string) (interfaces.MessageSource, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input path: %w", err)
	}
	if info.IsDir() {
		return pipeline.NewDirSource(input), nil
	}
	return pipeline.NewFileSource(input), nil
}
