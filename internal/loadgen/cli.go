package loadgen

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/appraise/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging initializes the logger to write to stdout and a log file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		logFile = "loadgen_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return file, nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Appraise load tool

Submits generated answer sets to a running service, waits for the queue to
drain and compares stored reports with local scoring.

Usage:
  loadgen [options]

Options:
  -url string            Base URL of the service (default "http://localhost:9080")
  -submissions int       Number of submissions (default 1000)
  -workers int           Concurrent HTTP workers (default CPU cores * 2)
  -timeout duration      HTTP request timeout (default 30s)
  -settle duration       Max wait for the queue to drain (default 1m)
  -verify int            Reports to compare, 0 for all (default 200)
  -taxonomy string       Taxonomy version, empty to ask the service
  -taxonomy-dir string   Extra taxonomy versions
  -malformed float       Share of malformed rating answers (default 0.02)
  -seed int              Generator seed, 0 for time based
  -output string         Write generated submissions as JSON
  -log string            Log file (default loadgen_TIMESTAMP.log)
  -verbose               Debug logging
  -help                  Show this help message
`)
}
