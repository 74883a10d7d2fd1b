// Package worker scores queued submissions and saves the resulting reports.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/appraise/internal/domain/model"
	"github.com/okian/appraise/pkg/logger"
	"github.com/okian/appraise/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Scorer builds a report for one submission.
type Scorer interface {
	Score(ctx context.Context, sub model.Submission) (model.Report, error)
}

// Saver persists a report.
type Saver interface {
	Save(ctx context.Context, r model.Report) error
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Submission
}

// Worker processes submissions until its queue is drained or ctx is done.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// counters is shared by the workers of a pool.
type counters struct {
	active    atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue  Queue
	scorer Scorer
	saver  Saver
	name   string
	stats  *counters

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, scorer Scorer, saver Saver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:  queue,
		scorer: scorer,
		saver:  saver,
		name:   "worker",
		stats:  &counters{},
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run consumes submissions until the queue channel closes, ctx is done, or
// Shutdown is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	ch := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case sub, ok := <-ch:
			if !ok {
				return
			}
			if err := w.process(ctx, sub); err != nil {
				w.logger.Error(ctx, "error processing submission", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after its current submission.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stop) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process scores one submission and saves its report.
func (w *InMemoryWorker) process(ctx context.Context, sub model.Submission) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	w.stats.active.Add(1)
	metrics.UpdateWorkerActiveCount(int(w.stats.active.Load()))
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.stats.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	report, err := w.scorer.Score(ctx, sub)
	if err != nil {
		w.stats.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "scoring_error")
		return fmt.Errorf("score submission %s: %w", sub.ID, err)
	}

	if err := w.saver.Save(ctx, report); err != nil {
		w.stats.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("save report for submission %s: %w", sub.ID, err)
	}

	w.stats.processed.Add(1)
	w.logger.Debug(ctx, "submission scored",
		logger.String("submission_id", sub.ID),
		logger.String("respondent_id", sub.RespondentID),
		logger.Int("scored", report.Diagnostics.Scored),
	)
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	stats   *counters
	logger  logger.Logger
}

// Stats is a point-in-time view of pool activity.
type Stats struct {
	Workers   int   `json:"workers"`
	Active    int64 `json:"active"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}

// NewPool creates a worker pool. workerCount < 1 selects a CPU-based default.
func NewPool(workerCount int, queue Queue, scorer Scorer, saver Saver) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		stats:   &counters{},
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range workerCount {
		name := "worker-" + strconv.Itoa(i)
		p.workers[i] = NewInMemoryWorker(queue, scorer, saver,
			WithName(name),
			withCounters(p.stats),
		)
	}
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stats returns pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   len(p.workers),
		Active:    p.stats.active.Load(),
		Processed: p.stats.processed.Load(),
		Failed:    p.stats.failed.Load(),
	}
}

// Shutdown closes the queue and lets workers drain it. Workers still busy
// when ctx (capped at 30s) expires are told to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-drainCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			w.stopOnce.Do(func() { close(w.stop) })
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool drain: %w", drainCtx.Err())
	}
	p.logger.Info(ctx, "worker pool stopped", logger.Int("processed", int(p.stats.processed.Load())))
	return nil
}
