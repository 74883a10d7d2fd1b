// Package service wires the scoring engine to the submission queue, worker
// pool and report store, and implements the dependencies of the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/appraise/internal/adapters/mq/queue"
	"github.com/okian/appraise/internal/adapters/mq/worker"
	"github.com/okian/appraise/internal/adapters/repository"
	"github.com/okian/appraise/internal/domain/catalog"
	"github.com/okian/appraise/internal/domain/dedupe"
	"github.com/okian/appraise/internal/domain/model"
	"github.com/okian/appraise/internal/domain/scoring"
	"github.com/okian/appraise/internal/domain/taxonomy"
	"github.com/okian/appraise/pkg/logger"
	"github.com/okian/appraise/pkg/metrics"
)

// Submission statuses reported by Submit.
const (
	StatusQueued    = "queued"
	StatusDuplicate = "duplicate"
)

// Receipt acknowledges an asynchronous submission.
type Receipt struct {
	SubmissionID string `json:"submission_id"`
	RespondentID string `json:"respondent_id"`
	Status       string `json:"status"`
	Duplicate    bool   `json:"duplicate"`
}

// QuestionView is a question as presented to respondents.
type QuestionView struct {
	model.Question
	Category     string `json:"category"`
	SubDimension string `json:"sub_dimension"`
}

// Stats is a monitoring snapshot.
type Stats struct {
	Started         bool         `json:"started"`
	TaxonomyVersion string       `json:"taxonomy_version"`
	Questions       int          `json:"questions"`
	QueueLength     int          `json:"queue_length"`
	QueueCapacity   int          `json:"queue_capacity"`
	DedupeSize      int64        `json:"dedupe_size"`
	Reports         int          `json:"reports"`
	Workers         worker.Stats `json:"workers"`
}

// Service implements the API dependencies for the scoring system.
type Service struct {
	mu sync.RWMutex

	taxonomy *taxonomy.Taxonomy
	catalog  *catalog.Snapshot
	engine   *scoring.Engine
	store    repository.Store

	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	cancel  context.CancelFunc

	workerCount int
	queueSize   int
	dedupeSize  int

	started bool
	now     func() time.Time
	logger  logger.Logger
}

// New constructs a Service scoring against tax with question metadata from cat.
func New(tax *taxonomy.Taxonomy, cat *catalog.Snapshot, opts ...Option) *Service {
	s := &Service{
		taxonomy:    tax,
		catalog:     cat,
		engine:      scoring.NewEngine(),
		store:       repository.NewMemoryStore(),
		workerCount: runtime.NumCPU() * 2,
		queueSize:   10_000,
		dedupeSize:  100_000,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, scorerFunc(s.build), s.store)

	// Workers outlive the request context that started them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.String("taxonomy_version", s.taxonomy.Version),
		logger.Int("questions", s.catalog.Len()),
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop drains queued submissions and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping scoring service")
	err := s.pool.Shutdown(ctx)
	s.cancel()
	s.started = false
	if err != nil {
		return fmt.Errorf("stop worker pool: %w", err)
	}
	s.logger.Info(ctx, "scoring service stopped")
	return nil
}

// Submit validates sub and queues it for scoring. A submission id seen
// before is acknowledged as a duplicate without rescoring. When the queue
// is full ErrBackpressure is returned and the id is forgotten so the
// client can retry.
func (s *Service) Submit(ctx context.Context, sub model.Submission) (Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return Receipt{}, ErrNotStarted
	}

	if err := sub.Validate(); err != nil {
		s.reject(ctx, err)
		return Receipt{}, err
	}
	sub.ID = strings.TrimSpace(sub.ID)
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.ReceivedAt.IsZero() {
		sub.ReceivedAt = s.now()
	}
	receipt := Receipt{SubmissionID: sub.ID, RespondentID: sub.RespondentID, Status: StatusQueued}

	if s.deduper.SeenAndRecord(ctx, sub.ID) {
		metrics.RecordSubmissionDuplicate()
		s.logger.Debug(ctx, "duplicate submission", logger.String("submission_id", sub.ID))
		receipt.Status, receipt.Duplicate = StatusDuplicate, true
		return receipt, nil
	}

	if !s.queue.Enqueue(ctx, sub) {
		s.deduper.Unrecord(ctx, sub.ID)
		s.logger.Warn(ctx, "submission refused by queue",
			logger.String("submission_id", sub.ID),
			logger.Int("queue_length", s.queue.Len(ctx)),
		)
		return Receipt{}, ErrBackpressure
	}
	metrics.RecordSubmissionAccepted()
	return receipt, nil
}

// Score builds the report synchronously, stores it and returns it.
func (s *Service) Score(ctx context.Context, sub model.Submission) (model.Report, error) {
	if sub.ReceivedAt.IsZero() {
		sub.ReceivedAt = s.now()
	}
	r, err := s.build(ctx, sub)
	if err != nil {
		s.reject(ctx, err)
		return model.Report{}, err
	}
	if err := s.store.Save(ctx, r); err != nil {
		metrics.RecordErrorByComponent("service", "store_error")
		return model.Report{}, fmt.Errorf("save report: %w", err)
	}
	return r, nil
}

// build runs the engine. It is the worker pool's scorer.
func (s *Service) build(_ context.Context, sub model.Submission) (model.Report, error) {
	start := time.Now()
	r, err := s.engine.BuildReport(sub, s.catalog, s.taxonomy)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordScoringError()
		return model.Report{}, err
	}
	d := r.Diagnostics
	metrics.RecordDegradedAnswers("malformed", d.Malformed)
	metrics.RecordDegradedAnswers("unknown", d.Unknown)
	metrics.RecordDegradedAnswers("duplicate", d.Duplicates)
	return r, nil
}

func (s *Service) reject(ctx context.Context, err error) {
	var pe *model.PreconditionError
	if !errors.As(err, &pe) {
		return
	}
	metrics.RecordSubmissionRejected(pe.Precondition())
	if s.logger != nil {
		s.logger.Info(ctx, "submission rejected",
			logger.String("respondent_id", pe.RespondentID),
			logger.String("reason", pe.Precondition()),
		)
	}
}

// Report returns the respondent's latest report.
func (s *Service) Report(ctx context.Context, respondentID string) (model.Report, error) {
	return s.store.Get(ctx, respondentID)
}

// ReportText returns the flattened text of the respondent's latest report.
func (s *Service) ReportText(ctx context.Context, respondentID string) (string, error) {
	r, err := s.store.Get(ctx, respondentID)
	if err != nil {
		return "", err
	}
	return r.Text(), nil
}

// Questions lists the scored questions in id order. Reverse-keyed rating
// items carry mirrored option labels.
func (s *Service) Questions(_ context.Context) []QuestionView {
	all := s.catalog.All()
	out := make([]QuestionView, 0, len(all))
	for _, q := range all {
		loc, ok := s.taxonomy.Locate(q.ID)
		if !ok {
			continue
		}
		q.Options = catalog.PresentOptions(q, s.taxonomy.IsReverse(q.ID))
		out = append(out, QuestionView{Question: q, Category: loc.Category, SubDimension: loc.SubDimension})
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	st := Stats{
		Started:         s.started,
		TaxonomyVersion: s.taxonomy.Version,
		Questions:       s.catalog.Len(),
		Reports:         s.store.Count(ctx),
	}
	if s.queue != nil {
		st.QueueLength = s.queue.Len(ctx)
		st.QueueCapacity = s.queue.Cap()
	}
	if s.deduper != nil {
		st.DedupeSize = s.deduper.Size()
	}
	if s.pool != nil {
		st.Workers = s.pool.Stats()
	}
	metrics.UpdateReportsTotal(st.Reports)
	return st
}

// scorerFunc adapts a function to worker.Scorer.
type scorerFunc func(ctx context.Context, sub model.Submission) (model.Report, error)

func (f scorerFunc) Score(ctx context.Context, sub model.Submission) (model.Report, error) {
	return f(ctx, sub)
}
