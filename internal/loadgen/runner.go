package loadgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/appraise/internal/domain/catalog"
	"github.com/okian/appraise/internal/domain/model"
	"github.com/okian/appraise/internal/domain/scoring"
	"github.com/okian/appraise/internal/domain/taxonomy"
	"github.com/okian/appraise/pkg/logger"
)

const (
	directoryPermission = 0o750
	filePermission      = 0o600
	settlePoll          = 200 * time.Millisecond
	percentMultiplier   = 100
)

// Sentinel kinds for run failures.
var (
	ErrUnhealthy = errors.New("service unhealthy")
	ErrMismatch  = errors.New("stored reports differ from local scoring")
)

// Run executes a complete load run against cfg.BaseURL. Reports are
// checked with engine, which must be configured like the service's.
func Run(ctx context.Context, cfg *Config, reg *taxonomy.Registry, engine *scoring.Engine) (*Stats, error) {
	log := logger.Get().Named("loadgen")
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting load run",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("submissions", cfg.Submissions),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
	)

	var health map[string]string
	if err := client.getJSON(ctx, "/healthz", &health); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	var remote serviceStats
	if err := client.getJSON(ctx, "/stats", &remote); err != nil {
		return stats, fmt.Errorf("read service stats: %w", err)
	}
	version := cfg.TaxonomyVersion
	if version == "" {
		version = remote.TaxonomyVersion
	}
	tax, err := reg.Get(version)
	if err != nil {
		return stats, fmt.Errorf("local taxonomy: %w", err)
	}

	var qs questionsResponse
	if err := client.getJSON(ctx, "/questions", &qs); err != nil {
		return stats, fmt.Errorf("read questions: %w", err)
	}
	snap, err := catalog.NewSnapshot(qs.Questions)
	if err != nil {
		return stats, fmt.Errorf("build catalog: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	subs := NewGenerator(snap.All(), cfg.MalformedRate, seed).Generate(cfg.Submissions)
	stats.Generated = len(subs)
	log.Info(ctx, "generated submissions", logger.Int("count", len(subs)), logger.Int("questions", snap.Len()))

	accepted := submitAll(ctx, client, cfg, subs, stats)

	settle(ctx, client, cfg.Settle)

	if err := verify(ctx, client, cfg, accepted, snap, tax, engine, stats); err != nil {
		return stats, err
	}

	if cfg.OutputFile != "" {
		if err := saveSubmissions(cfg.OutputFile, subs); err != nil {
			log.Warn(ctx, "failed to save submissions", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if stats.Mismatched > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrMismatch, stats.Mismatched, stats.Verified+stats.Mismatched)
	}
	return stats, nil
}

// submitAll posts subs concurrently and returns the accepted ones.
func submitAll(ctx context.Context, client *httpClient, cfg *Config, subs []model.Submission, stats *Stats) []model.Submission {
	log := logger.Get().Named("loadgen")
	var (
		submitted, acceptedN, duplicate, refused, failed atomic.Int64

		mu       sync.Mutex
		accepted = make([]model.Submission, 0, len(subs))
	)

	work := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup
	for range max(cfg.Workers, 1) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				status, body, err := client.postJSON(ctx, "/submissions", subs[i])
				submitted.Add(1)
				switch {
				case err != nil:
					failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "submission failed", logger.Error(err))
					}
				case status == http.StatusAccepted:
					acceptedN.Add(1)
					mu.Lock()
					accepted = append(accepted, subs[i])
					mu.Unlock()
				case status == http.StatusOK:
					var r Receipt
					if json.Unmarshal(body, &r) == nil && r.Duplicate {
						duplicate.Add(1)
					}
				case status == http.StatusTooManyRequests:
					refused.Add(1)
				default:
					failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "submission rejected",
							logger.Int("status", status),
							logger.String("body", string(body)),
						)
					}
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range subs {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Accepted = int(acceptedN.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Refused = int(refused.Load())
	stats.Failed = int(failed.Load())
	log.Info(ctx, "submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("refused", stats.Refused),
		logger.Int("failed", stats.Failed),
	)
	return accepted
}

// settle waits until the service queue is empty and no worker is busy.
func settle(ctx context.Context, client *httpClient, limit time.Duration) {
	deadline := time.Now().Add(limit)
	for time.Now().Before(deadline) {
		var st serviceStats
		if err := client.getJSON(ctx, "/stats", &st); err == nil && st.QueueLength == 0 && st.Workers.Active == 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(settlePoll):
		}
	}
}

func saveSubmissions(path string, subs []model.Submission) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal submissions: %w", err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("write submissions: %w", err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var acceptRate, perSecond float64
	if stats.Submitted > 0 {
		acceptRate = float64(stats.Accepted) / float64(stats.Submitted) * percentMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("refused", stats.Refused),
		logger.Int("failed", stats.Failed),
		logger.Int("verified", stats.Verified),
		logger.Int("mismatched", stats.Mismatched),
		logger.Int("unavailable", stats.Unavailable),
		logger.Duration("duration", stats.Duration),
		logger.Float64("accept_rate", acceptRate),
		logger.Float64("submissions_per_second", perSecond),
	)
}
