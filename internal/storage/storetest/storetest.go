// Package storetest is a behavioural test suite shared by every document
// store implementation.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/yndnr/jobboard-go/internal/core/domain"
)

// Store is the method set under test.
type Store interface {
	Insert(ctx context.Context, collection string, doc domain.Document) (string, error)
	InsertWithID(ctx context.Context, collection, id string, doc domain.Document) error
	FindByID(ctx context.Context, collection, id string) (domain.Document, error)
	Find(ctx context.Context, collection string, filter domain.Filter) ([]domain.Document, error)
	SetFields(ctx context.Context, collection, id string, fields domain.Document) error
	Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error)
	Delete(ctx context.Context, collection, id string) error
}

// Run executes the suite. newStore must return an empty store; it is called
// once per subtest.
func Run(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("InsertAndFindByID", func(t *testing.T) { testInsertAndFindByID(t, newStore(t)) })
	t.Run("InsertWithID", func(t *testing.T) { testInsertWithID(t, newStore(t)) })
	t.Run("FindByIDMissing", func(t *testing.T) { testFindByIDMissing(t, newStore(t)) })
	t.Run("FindFilterAndOrder", func(t *testing.T) { testFindFilterAndOrder(t, newStore(t)) })
	t.Run("SetFields", func(t *testing.T) { testSetFields(t, newStore(t)) })
	t.Run("Increment", func(t *testing.T) { testIncrement(t, newStore(t)) })
	t.Run("IncrementConcurrent", func(t *testing.T) { testIncrementConcurrent(t, newStore(t)) })
	t.Run("IncrementHighContention", func(t *testing.T) { testIncrementHighContention(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("CollectionsAreIsolated", func(t *testing.T) { testCollectionsIsolated(t, newStore(t)) })
}

func testInsertAndFindByID(t *testing.T, s Store) {
	ctx := context.Background()
	doc := domain.Document{
		"title":  "Engineer",
		"salary": int64(1200),
		"remote": true,
		"tags":   []any{"go", "redis"},
		"_id":    "caller-chosen",
	}

	id, err := s.Insert(ctx, "jobs", doc)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if id == "" || id == "caller-chosen" {
		t.Fatalf("Insert() id = %q, want a store-assigned id", id)
	}

	got, err := s.FindByID(ctx, "jobs", id)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.ID() != id {
		t.Errorf("_id = %q, want %q", got.ID(), id)
	}
	if got.String("title") != "Engineer" {
		t.Errorf("title = %q", got.String("title"))
	}
	if n, ok := got.Int("salary"); !ok || n != 1200 {
		t.Errorf("salary = (%d, %v)", n, ok)
	}
	if got["remote"] != true {
		t.Errorf("remote = %v", got["remote"])
	}
	if tags, ok := got["tags"].([]any); !ok || len(tags) != 2 {
		t.Errorf("tags = %#v", got["tags"])
	}

	got["title"] = "mutated"
	again, _ := s.FindByID(ctx, "jobs", id)
	if again.String("title") != "Engineer" {
		t.Error("mutating a returned document must not change the store")
	}
	if doc.ID() != "caller-chosen" {
		t.Error("Insert must not mutate its argument")
	}
}

func testInsertWithID(t *testing.T, s Store) {
	ctx := context.Background()
	id := domain.NewDocumentID()

	if err := s.InsertWithID(ctx, "jobApplications", id, domain.Document{"job_id": "J", "_id": "ignored"}); err != nil {
		t.Fatalf("InsertWithID() error = %v", err)
	}
	got, err := s.FindByID(ctx, "jobApplications", id)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.ID() != id || got.String("job_id") != "J" {
		t.Errorf("stored document = %v", got)
	}

	err = s.InsertWithID(ctx, "jobApplications", id, domain.Document{"job_id": "other"})
	if !errors.Is(err, domain.ErrDocumentConflict) {
		t.Errorf("second InsertWithID() error = %v, want ErrDocumentConflict", err)
	}
	again, _ := s.FindByID(ctx, "jobApplications", id)
	if again.String("job_id") != "J" {
		t.Error("a conflicting insert must not overwrite the document")
	}
	if docs, _ := s.Find(ctx, "jobApplications", nil); len(docs) != 1 {
		t.Errorf("Find() = %d docs, want 1", len(docs))
	}

	if err := s.InsertWithID(ctx, "jobApplications", "", domain.Document{}); err == nil {
		t.Error("InsertWithID() with an empty id should fail")
	}
}

func testFindByIDMissing(t *testing.T, s Store) {
	_, err := s.FindByID(context.Background(), "jobs", "nope")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("FindByID() error = %v, want ErrDocumentNotFound", err)
	}
}

func testFindFilterAndOrder(t *testing.T, s Store) {
	ctx := context.Background()

	empty, err := s.Find(ctx, "jobApplications", nil)
	if err != nil {
		t.Fatalf("Find() on empty collection error = %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("Find() on empty collection = %d docs", len(empty))
	}

	var ids []string
	for i, email := range []string{"a@x.com", "b@x.com", "a@x.com"} {
		id, err := s.Insert(ctx, "jobApplications", domain.Document{
			"application_email": email,
			"seq":               int64(i),
		})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	all, err := s.Find(ctx, "jobApplications", domain.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("Find(all) = %d docs, want 3", len(all))
	}
	for i, doc := range all {
		if doc.ID() != ids[i] {
			t.Errorf("Find(all)[%d] = %s, want %s (insertion order)", i, doc.ID(), ids[i])
		}
	}

	mine, err := s.Find(ctx, "jobApplications", domain.Filter{"application_email": "a@x.com"})
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 || mine[0].ID() != ids[0] || mine[1].ID() != ids[2] {
		t.Errorf("Find(a@x.com) = %v", mine)
	}

	none, _ := s.Find(ctx, "jobApplications", domain.Filter{"application_email": "c@x.com"})
	if len(none) != 0 {
		t.Errorf("Find(c@x.com) = %d docs, want 0", len(none))
	}
}

func testSetFields(t *testing.T, s Store) {
	ctx := context.Background()
	id, _ := s.Insert(ctx, "jobApplications", domain.Document{"status": "pending", "job_id": "J"})

	if err := s.SetFields(ctx, "jobApplications", id, domain.Document{"status": "Hired", "_id": "other"}); err != nil {
		t.Fatalf("SetFields() error = %v", err)
	}

	got, _ := s.FindByID(ctx, "jobApplications", id)
	if got.String("status") != "Hired" {
		t.Errorf("status = %q, want Hired", got.String("status"))
	}
	if got.String("job_id") != "J" {
		t.Error("untouched fields must survive")
	}
	if got.ID() != id {
		t.Errorf("_id changed to %q", got.ID())
	}

	err := s.SetFields(ctx, "jobApplications", "missing", domain.Document{"status": "x"})
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("SetFields(missing) error = %v, want ErrDocumentNotFound", err)
	}
	if _, err := s.FindByID(ctx, "jobApplications", "missing"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Error("SetFields must not create documents")
	}
}

func testIncrement(t *testing.T, s Store) {
	ctx := context.Background()
	id, _ := s.Insert(ctx, "jobs", domain.Document{"title": "Engineer", "flag": true})

	n, err := s.Increment(ctx, "jobs", id, "applicationCount", 1)
	if err != nil || n != 1 {
		t.Fatalf("Increment() on absent field = (%d, %v), want (1, nil)", n, err)
	}
	n, err = s.Increment(ctx, "jobs", id, "applicationCount", 2)
	if err != nil || n != 3 {
		t.Fatalf("Increment() = (%d, %v), want (3, nil)", n, err)
	}

	got, _ := s.FindByID(ctx, "jobs", id)
	if c, ok := got.Int("applicationCount"); !ok || c != 3 {
		t.Errorf("stored counter = (%d, %v), want 3", c, ok)
	}
	if got.String("title") != "Engineer" {
		t.Error("increment must not disturb other fields")
	}

	if _, err := s.Increment(ctx, "jobs", "missing", "applicationCount", 1); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("Increment(missing) error = %v, want ErrDocumentNotFound", err)
	}
	if _, err := s.FindByID(ctx, "jobs", "missing"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Error("Increment must not create documents")
	}

	if _, err := s.Increment(ctx, "jobs", id, "flag", 1); !errors.Is(err, domain.ErrFieldNotNumeric) {
		t.Errorf("Increment(non-numeric) error = %v, want ErrFieldNotNumeric", err)
	}
}

func testIncrementConcurrent(t *testing.T, s Store) {
	ctx := context.Background()
	id, _ := s.Insert(ctx, "jobs", domain.Document{"applicationCount": int64(0)})

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Increment(ctx, "jobs", id, "applicationCount", 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Increment() error = %v", err)
	}

	got, _ := s.FindByID(ctx, "jobs", id)
	if c, _ := got.Int("applicationCount"); c != n {
		t.Errorf("counter = %d, want %d", c, n)
	}
}

// testIncrementHighContention releases many more writers than any retry
// bound at once; every increment must still land.
func testIncrementHighContention(t *testing.T, s Store) {
	ctx := context.Background()
	id, _ := s.Insert(ctx, "jobs", domain.Document{})

	const n = 600
	start := make(chan struct{})
	var wg sync.WaitGroup
	var failed atomic.Int64
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := s.Increment(ctx, "jobs", id, "applicationCount", 1); err != nil {
				failed.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if f := failed.Load(); f != 0 {
		t.Errorf("%d of %d increments failed", f, n)
	}
	got, _ := s.FindByID(ctx, "jobs", id)
	if c, _ := got.Int("applicationCount"); c != n {
		t.Errorf("counter = %d, want %d", c, n)
	}
}

func testDelete(t *testing.T, s Store) {
	ctx := context.Background()
	id, _ := s.Insert(ctx, "jobApplications", domain.Document{"job_id": "J"})

	if err := s.Delete(ctx, "jobApplications", id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.FindByID(ctx, "jobApplications", id); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("FindByID after Delete error = %v", err)
	}
	if docs, _ := s.Find(ctx, "jobApplications", nil); len(docs) != 0 {
		t.Errorf("Find after Delete = %d docs", len(docs))
	}
	if err := s.Delete(ctx, "jobApplications", id); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("second Delete() error = %v, want ErrDocumentNotFound", err)
	}
}

func testCollectionsIsolated(t *testing.T, s Store) {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := s.Insert(ctx, "jobs", domain.Document{"n": fmt.Sprint(i)}); err != nil {
			t.Fatal(err)
		}
	}
	id, _ := s.Insert(ctx, "jobApplications", domain.Document{"job_id": "J"})

	if _, err := s.FindByID(ctx, "jobs", id); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Error("ids must be scoped to their collection")
	}
	apps, _ := s.Find(ctx, "jobApplications", nil)
	if len(apps) != 1 {
		t.Errorf("jobApplications = %d docs, want 1", len(apps))
	}
}
