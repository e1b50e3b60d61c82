/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger_test.go
Description: Unit tests for the logging system. Covers config validation, log file
creation, pipeline-stage log methods, and the custom formatters.
*/

package logging_test

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/streamschema/pkg/logging"
)

func testConfig(dir string) *logging.LoggerConfig {
	return &logging.LoggerConfig{
		Level:     logging.LogLevelInfo,
		Format:    logging.LogFormatCustom,
		OutputDir: dir,
		MaxFiles:  3,
		MaxSize:   1024 * 1024,
		Timestamp: true,
	}
}

func TestLoggerConfigValidate(t *testing.T) {
	cfg := testConfig(t.TempDir())
	assert.NoError(t, cfg.Validate())

	cfg = testConfig(t.TempDir())
	cfg.OutputDir = ""
	assert.Error(t, cfg.Validate())

	cfg = testConfig(t.TempDir())
	cfg.MaxFiles = 0
	assert.Error(t, cfg.Validate())

	cfg = testConfig(t.TempDir())
	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = testConfig(t.TempDir())
	cfg.Level = "loud"
	assert.Error(t, cfg.Validate())
}

func TestNewLoggerCreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := logging.NewLogger(testConfig(dir))
	require.NoError(t, err)
	defer logger.Close()

	files, err := filepath.Glob(filepath.Join(dir, "streamschema_*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestPipelineLogMethods(t *testing.T) {
	logger, err := logging.NewLogger(testConfig(t.TempDir()))
	require.NoError(t, err)
	defer logger.Close()

	var buf bytes.Buffer
	logger.GetLogger().SetOutput(&buf)

	logger.LogDetection("orders", "json", 0.873, nil)
	logger.LogParse("orders", "json", 100, 98, nil)
	logger.LogInference("orders", 7, 12*time.Millisecond, nil)
	logger.LogGeneration("orders", "avro", 512, nil)
	logger.LogPublish("orders-value", 3, nil)
	logger.LogTopicResult("orders", true, 30*time.Millisecond, nil)
	logger.LogTopicResult("users", false, 5*time.Millisecond, nil)

	out := buf.String()
	assert.Contains(t, out, "[DETECT] Format detected")
	assert.Contains(t, out, "[PARSE] Messages parsed")
	assert.Contains(t, out, "[INFER] Schema inferred")
	assert.Contains(t, out, "[GENERATE] Schema generated")
	assert.Contains(t, out, "[PUBLISH] Schema published")
	assert.Contains(t, out, "[PIPELINE] Topic processed")
	assert.Contains(t, out, "[PIPELINE] Topic failed")
	// Pipeline-specific value formatting
	assert.Contains(t, out, "confidence=0.87")
}

func TestCustomFormatter(t *testing.T) {
	formatter := &logging.CustomFormatter{Timestamp: false}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Now(),
		Level:   logrus.WarnLevel,
		Message: "something odd",
		Data:    logrus.Fields{"count": 3},
	}

	out, err := formatter.Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "WARNING something odd")
	assert.Contains(t, string(out), "count=3")
}

func TestCustomFormatterTruncatesLongValues(t *testing.T) {
	formatter := &logging.CustomFormatter{}
	long := make([]byte, 60)
	for i := range long {
		long[i] = 'x'
	}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "m",
		Data:    logrus.Fields{"text": string(long), "blob": long},
	}

	out, err := formatter.Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "...")
	assert.Contains(t, string(out), "[60 bytes]")
}

func TestPipelineFormatterStagePrefix(t *testing.T) {
	formatter := &logging.PipelineFormatter{}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "Format detected",
		Data:    logrus.Fields{"duration": 42 * time.Millisecond},
	}

	out, err := formatter.Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "[DETECT] Format detected")
	assert.Contains(t, string(out), "duration=42ms")
}
