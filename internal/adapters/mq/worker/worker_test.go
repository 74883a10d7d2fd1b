package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/appraise/internal/adapters/mq/queue"
	"github.com/okian/appraise/internal/adapters/mq/worker"
	"github.com/okian/appraise/internal/domain/model"
	logging "github.com/okian/appraise/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	ch chan model.Submission
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan model.Submission, 16)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan model.Submission { return mq.ch }

func (mq *mockQueue) Close() error {
	close(mq.ch)
	return nil
}

type mockScorer struct {
	mu   sync.Mutex
	fail map[string]error
}

func (ms *mockScorer) Score(_ context.Context, sub model.Submission) (model.Report, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err := ms.fail[sub.RespondentID]; err != nil {
		return model.Report{}, err
	}
	return model.Report{
		RespondentID: sub.RespondentID,
		Diagnostics:  model.Diagnostics{Answered: len(sub.Answers), Scored: len(sub.Answers)},
	}, nil
}

type mockSaver struct {
	mu      sync.Mutex
	reports map[string]model.Report
	err     error
}

func newMockSaver() *mockSaver { return &mockSaver{reports: make(map[string]model.Report)} }

func (ms *mockSaver) Save(_ context.Context, r model.Report) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.err != nil {
		return ms.err
	}
	ms.reports[r.RespondentID] = r
	return nil
}

func (ms *mockSaver) get(id string) (model.Report, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	r, ok := ms.reports[id]
	return r, ok
}

func sub(respondent string) model.Submission {
	return model.Submission{
		ID:           "sub-" + respondent,
		RespondentID: respondent,
		Answers:      []model.Answer{{QuestionID: 1, Value: "5"}, {QuestionID: 2, Value: "3"}},
	}
}

// eventually polls cond for up to a second.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		scorer := &mockScorer{fail: map[string]error{"bad": errors.New("taxonomy missing")}}
		saver := newMockSaver()
		w := worker.NewInMemoryWorker(q, scorer, saver, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a submission arrives", func() {
			q.ch <- sub("emp-1")

			convey.Convey("Then its report is saved", func() {
				convey.So(eventually(func() bool { _, ok := saver.get("emp-1"); return ok }), convey.ShouldBeTrue)
				r, _ := saver.get("emp-1")
				convey.So(r.Diagnostics.Scored, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When scoring fails", func() {
			q.ch <- sub("bad")
			q.ch <- sub("emp-2")

			convey.Convey("Then the worker keeps going", func() {
				convey.So(eventually(func() bool { _, ok := saver.get("emp-2"); return ok }), convey.ShouldBeTrue)
				_, saved := saver.get("bad")
				convey.So(saved, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When it is shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()

			convey.Convey("Then it stops promptly and tolerates a second call", func() {
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		scorer := &mockScorer{fail: map[string]error{"emp-3": errors.New("boom")}}
		saver := newMockSaver()
		pool := worker.NewPool(4, q, scorer, saver)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When submissions are enqueued and the pool shuts down", func() {
			for i := range 10 {
				convey.So(q.Enqueue(ctx, sub(fmt.Sprintf("emp-%d", i))), convey.ShouldBeTrue)
			}
			err := pool.Shutdown(context.Background())

			convey.Convey("Then every queued submission is drained first", func() {
				convey.So(err, convey.ShouldBeNil)
				stats := pool.Stats()
				convey.So(stats.Workers, convey.ShouldEqual, 4)
				convey.So(stats.Processed, convey.ShouldEqual, 9)
				convey.So(stats.Failed, convey.ShouldEqual, 1)
				convey.So(stats.Active, convey.ShouldEqual, 0)
				_, ok := saver.get("emp-9")
				convey.So(ok, convey.ShouldBeTrue)
			})

			convey.Convey("Then the queue refuses new work", func() {
				convey.So(q.Enqueue(ctx, sub("late")), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the store rejects reports", func() {
			saver.mu.Lock()
			saver.err = errors.New("disk full")
			saver.mu.Unlock()
			convey.So(q.Enqueue(ctx, sub("emp-x")), convey.ShouldBeTrue)

			convey.Convey("Then the failure is counted", func() {
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
				convey.So(pool.Stats().Failed, convey.ShouldEqual, 1)
			})
		})
	})
}
