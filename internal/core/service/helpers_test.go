package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/yndnr/jobboard-go/internal/core/domain"
	"github.com/yndnr/jobboard-go/internal/storage/memory"
)

// spyStore wraps the in-memory store, counts calls and lets a test
// override individual operations.
type spyStore struct {
	*memory.Store

	calls sync.Map // op name -> *atomic.Int64

	insertFn       func(ctx context.Context, collection string, doc domain.Document) (string, error)
	insertWithIDFn func(ctx context.Context, collection, id string, doc domain.Document) error
	findFn         func(ctx context.Context, collection string, filter domain.Filter) ([]domain.Document, error)
	incrementFn    func(ctx context.Context, collection, id, field string, delta int64) (int64, error)
	deleteFn       func(ctx context.Context, collection, id string) error
}

func newSpyStore() *spyStore {
	return &spyStore{Store: memory.New()}
}

func (s *spyStore) count(op string) {
	c, _ := s.calls.LoadOrStore(op, new(atomic.Int64))
	c.(*atomic.Int64).Add(1)
}

func (s *spyStore) Calls(op string) int64 {
	c, ok := s.calls.Load(op)
	if !ok {
		return 0
	}
	return c.(*atomic.Int64).Load()
}

func (s *spyStore) TotalCalls() int64 {
	var n int64
	s.calls.Range(func(_, v any) bool {
		n += v.(*atomic.Int64).Load()
		return true
	})
	return n
}

func (s *spyStore) Insert(ctx context.Context, collection string, doc domain.Document) (string, error) {
	s.count("Insert")
	if s.insertFn != nil {
		return s.insertFn(ctx, collection, doc)
	}
	return s.Store.Insert(ctx, collection, doc)
}

func (s *spyStore) InsertWithID(ctx context.Context, collection, id string, doc domain.Document) error {
	s.count("InsertWithID")
	if s.insertWithIDFn != nil {
		return s.insertWithIDFn(ctx, collection, id, doc)
	}
	return s.Store.InsertWithID(ctx, collection, id, doc)
}

func (s *spyStore) FindByID(ctx context.Context, collection, id string) (domain.Document, error) {
	s.count("FindByID")
	return s.Store.FindByID(ctx, collection, id)
}

func (s *spyStore) Find(ctx context.Context, collection string, filter domain.Filter) ([]domain.Document, error) {
	s.count("Find")
	if s.findFn != nil {
		return s.findFn(ctx, collection, filter)
	}
	return s.Store.Find(ctx, collection, filter)
}

func (s *spyStore) SetFields(ctx context.Context, collection, id string, fields domain.Document) error {
	s.count("SetFields")
	return s.Store.SetFields(ctx, collection, id, fields)
}

func (s *spyStore) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	s.count("Increment")
	if s.incrementFn != nil {
		return s.incrementFn(ctx, collection, id, field, delta)
	}
	return s.Store.Increment(ctx, collection, id, field, delta)
}

func (s *spyStore) Delete(ctx context.Context, collection, id string) error {
	s.count("Delete")
	if s.deleteFn != nil {
		return s.deleteFn(ctx, collection, id)
	}
	return s.Store.Delete(ctx, collection, id)
}

// recordingObserver implements LedgerObserver and SessionObserver.
type recordingObserver struct {
	mu            sync.Mutex
	submitted     int
	compensations []string
	issued        int
}

func (o *recordingObserver) ApplicationSubmitted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.submitted++
}

func (o *recordingObserver) ApplicationCompensated(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.compensations = append(o.compensations, reason)
}

func (o *recordingObserver) SessionIssued() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.issued++
}

func mustCreateJob(t testing.TB, jobs *JobService, doc domain.Document) string {
	t.Helper()
	id, err := jobs.Create(context.Background(), doc)
	if err != nil {
		t.Fatalf("Create job: %v", err)
	}
	return id
}
