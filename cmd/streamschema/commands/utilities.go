/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utilities.go
Description: Utility commands for StreamSchema. Provides list-formats and self-check
functionality for format discovery and system validation.
*/

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/streamschema/pkg/pipeline"
)

// ListFormats lists the supported input and schema formats
func ListFormats(cmd *cobra.Command, args []string) {
	fmt.Println("📋 StreamSchema - Supported Formats")
	fmt.Println("===================================")
	fmt.Println()

	inputFormats := []struct {
		name        string
		description string
		example     string
	}{
		{
			name:        "json",
			description: "JSON objects, arrays, and scalars; arrays of objects are merged",
			example:     `{"user_id": 42, "name": "Alice"}`,
		},
		{
			name:        "csv",
			description: "Comma-separated values with a header row; delimiter auto-detected",
			example:     "name,age,city",
		},
		{
			name:        "tsv",
			description: "Tab-separated values with a header row",
			example:     "name\tage\tcity",
		},
		{
			name:        "key-value",
			description: "Pair-separated key/value text using = or : separators",
			example:     "host=db1,port=5432",
		},
		{
			name:        "raw-text",
			description: "Total fallback; wraps each message as raw content",
			example:     "any text or binary payload",
		},
	}

	fmt.Println("Input formats:")
	for i, format := range inputFormats {
		fmt.Printf("%d. %s\n", i+1, format.name)
		fmt.Printf("   Description: %s\n", format.description)
		fmt.Printf("   Example: %s\n", format.example)
		fmt.Println()
	}

	fmt.Println("Schema formats:")
	for i, format := range pipeline.SupportedSchemaFormats() {
		fmt.Printf("%d. %s\n", i+1, format)
	}
	fmt.Println()

	fmt.Println("✨ Use --format to force an input format and --schema-format to pick the output")
}

// PerformSelfCheck performs comprehensive system validation
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("🔍 StreamSchema - System Self-Check")
	fmt.Println("===================================")
	fmt.Println()

	checks := []struct {
		name     string
		function func() error
	}{
		{"Configuration Validation", checkConfigurationValidation},
		{"Input Accessibility", checkInputAccessibility},
		{"Output Writability", checkOutputWritability},
		{"Pipeline Round Trip", checkPipelineRoundTrip},
	}

	passed := 0
	total := len(checks)

	for _, check := range checks {
		fmt.Printf("🔍 %s... ", check.name)
		if err := check.function(); err != nil {
			fmt.Printf("❌ FAILED: %v\n", err)
		} else {
			fmt.Println("✅ PASSED")
			passed++
		}
	}

	fmt.Println()
	fmt.Printf("📊 Results: %d/%d checks passed\n", passed, total)

	if passed == total {
		fmt.Println("✨ All checks passed! System is ready for inference.")
		return nil
	}
	fmt.Println("⚠️  Some checks failed. Please address the issues before running inference.")
	return fmt.Errorf("%d/%d checks failed", total-passed, total)
}

// checkConfigurationValidation validates the assembled configuration
func checkConfigurationValidation() error {
	if err := LoadConfig(); err != nil {
		return err
	}
	return createConfig().Validate()
}

// checkInputAccessibility verifies the input path exists and is readable
func checkInputAccessibility() error {
	input := viper.GetString("input")
	if input == "" {
		return nil // input is optional for the check command
	}
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("input path not accessible: %w", err)
	}
	return nil
}

// checkOutputWritability verifies the output directory can be written
func checkOutputWritability() error {
	outputDir := viper.GetString("output")
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	probe := filepath.Join(outputDir, ".streamschema_check")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("output directory not writable: %w", err)
	}
	return os.Remove(probe)
}

// checkPipelineRoundTrip runs a tiny sample through the full chain
func checkPipelineRoundTrip() error {
	cfg := createConfig()
	p := pipeline.New(cfg.Inference, nil)

	messages := [][]byte{
		[]byte(`{"id": 1, "name": "probe"}`),
		[]byte(`{"id": 2, "name": "check"}`),
	}
	inferred, _, err := p.InferSchema(messages, "self_check")
	if err != nil {
		return err
	}
	for _, format := range pipeline.SupportedSchemaFormats() {
		if _, _, err := pipeline.Generate(inferred, format); err != nil {
			return fmt.Errorf("generation failed for %s: %w", format, err)
		}
	}
	return nil
}
