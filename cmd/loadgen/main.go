package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/appraise/internal/domain/scoring"
	"github.com/okian/appraise/internal/domain/taxonomy"
	"github.com/okian/appraise/internal/loadgen"
	"github.com/okian/appraise/pkg/logger"
)

const (
	defaultSubmissions   = 1000
	defaultWorkers       = 2 // multiplier for runtime.NumCPU()
	defaultVerify        = 200
	defaultMalformedRate = 0.02
	defaultTimeout       = 30 * time.Second
	defaultSettle        = time.Minute
	defaultRunTimeout    = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		submissions = flag.Int("submissions", defaultSubmissions, "Number of submissions to generate")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle      = flag.Duration("settle", defaultSettle, "Max wait for the queue to drain")
		verifyN     = flag.Int("verify", defaultVerify, "Reports to compare, 0 for all")
		version     = flag.String("taxonomy", "", "Taxonomy version, empty to ask the service")
		taxDir      = flag.String("taxonomy-dir", "", "Directory of extra taxonomy versions")
		malformed   = flag.Float64("malformed", defaultMalformedRate, "Share of malformed rating answers")
		seed        = flag.Int64("seed", 0, "Generator seed, 0 for time based")
		outputFile  = flag.String("output", "", "Write generated submissions as JSON")
		logFile     = flag.String("log", "", "Log file (default loadgen_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	closer, err := loadgen.SetupLogging(*logFile, *verbose)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	reg, err := taxonomy.NewRegistry()
	if err == nil && *taxDir != "" {
		err = reg.LoadDir(*taxDir)
	}
	if err != nil {
		logger.Get().Error(ctx, "failed to load taxonomies", logger.Error(err))
		return
	}

	cfg := &loadgen.Config{
		BaseURL:         *baseURL,
		Submissions:     *submissions,
		Workers:         *workers,
		Timeout:         *timeout,
		Settle:          *settle,
		Verify:          *verifyN,
		TaxonomyVersion: *version,
		MalformedRate:   *malformed,
		Seed:            *seed,
		OutputFile:      *outputFile,
		Verbose:         *verbose,
	}
	if _, err := loadgen.Run(ctx, cfg, reg, scoring.NewEngine()); err != nil {
		logger.Get().Error(ctx, "load run failed", logger.Error(err))
		return
	}
}
