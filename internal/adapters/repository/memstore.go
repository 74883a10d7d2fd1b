package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/okian/appraise/internal/domain/model"
	"github.com/okian/appraise/pkg/metrics"
)

type entry struct {
	report  model.Report
	savedAt time.Time
	// revision counts saves for this respondent.
	revision int
}

// MemoryStore is an in-memory Store. Reports are copied on the way in and
// out so callers cannot mutate stored state.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]entry
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		reports: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateReportsTotal(0)
	return s
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, r model.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.RespondentID == "" {
		return ErrMissingRespondent
	}

	s.mu.Lock()
	prev, ok := s.reports[r.RespondentID]
	if ok && r.ReceivedAt.Before(prev.report.ReceivedAt) && !r.ReceivedAt.IsZero() {
		s.mu.Unlock()
		metrics.RecordStaleReport()
		return nil
	}
	s.reports[r.RespondentID] = entry{report: clone(r), savedAt: s.now(), revision: prev.revision + 1}
	n := len(s.reports)
	s.mu.Unlock()

	metrics.RecordReportStored()
	metrics.UpdateReportsTotal(n)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, respondentID string) (model.Report, error) {
	if err := ctx.Err(); err != nil {
		return model.Report{}, err
	}
	s.mu.RLock()
	e, ok := s.reports[respondentID]
	s.mu.RUnlock()
	if !ok {
		return model.Report{}, fmt.Errorf("%w: %q", ErrNotFound, respondentID)
	}
	return clone(e.report), nil
}

// Meta describes a stored report without its scores.
type Meta struct {
	RespondentID string    `json:"respondent_id"`
	SavedAt      time.Time `json:"saved_at"`
	Revision     int       `json:"revision"`
}

// List returns metadata for every stored report ordered by respondent id.
func (s *MemoryStore) List(_ context.Context) []Meta {
	s.mu.RLock()
	out := make([]Meta, 0, len(s.reports))
	for id, e := range s.reports {
		out = append(out, Meta{RespondentID: id, SavedAt: e.savedAt, Revision: e.revision})
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b Meta) int { return strings.Compare(a.RespondentID, b.RespondentID) })
	return out
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}

func clone(r model.Report) model.Report {
	cats := make([]model.CategoryScore, len(r.Categories))
	for i, c := range r.Categories {
		c.SubDimensions = slices.Clone(c.SubDimensions)
		cats[i] = c
	}
	r.Categories = cats
	return r
}
