package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yndnr/jobboard-go/internal/core/domain"
)

func TestJobService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	jobs := NewJobService(newSpyStore(), 0)

	id, err := jobs.Create(ctx, domain.Document{
		"_id":              "chosen",
		"title":            "Engineer",
		"applicationCount": 40,
		"hr_email":         "hr@x.com",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == "chosen" {
		t.Error("client id must be ignored")
	}

	job, err := jobs.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if job.ApplicationCount() != 0 {
		t.Errorf("applicationCount = %d, want 0", job.ApplicationCount())
	}
	if job.String("title") != "Engineer" || job.PosterEmail() != "hr@x.com" {
		t.Errorf("unexpected job %v", job.Document)
	}
}

func TestJobService_GetMissing(t *testing.T) {
	jobs := NewJobService(newSpyStore(), 0)

	if _, err := jobs.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("Get() error = %v, want ErrJobNotFound", err)
	}
	if _, err := jobs.Get(context.Background(), ""); !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("Get(\"\") error = %v, want ErrMissingArgument", err)
	}
}

func TestJobService_List(t *testing.T) {
	ctx := context.Background()
	jobs := NewJobService(newSpyStore(), 0)

	mustCreateJob(t, jobs, domain.Document{"title": "A", "hr_email": "hr1@x.com"})
	mustCreateJob(t, jobs, domain.Document{"title": "B", "hr_email": "hr2@x.com"})
	mustCreateJob(t, jobs, domain.Document{"title": "C", "hr_email": "hr1@x.com"})

	all, err := jobs.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("List(\"\") = %d jobs, want 3", len(all))
	}

	mine, _ := jobs.List(ctx, "hr1@x.com")
	if len(mine) != 2 || mine[0].String("title") != "A" || mine[1].String("title") != "C" {
		t.Errorf("List(hr1) = %v", mine)
	}
}

func TestJobService_ReadRetriesOnceOnTimeout(t *testing.T) {
	store := newSpyStore()
	jobs := NewJobService(store, 20*time.Millisecond)

	attempts := 0
	store.findFn = func(ctx context.Context, collection string, filter domain.Filter) ([]domain.Document, error) {
		attempts++
		if attempts == 1 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return store.Store.Find(ctx, collection, filter)
	}

	if _, err := jobs.List(context.Background(), ""); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestJobService_ReadGivesUpAfterSecondTimeout(t *testing.T) {
	store := newSpyStore()
	jobs := NewJobService(store, 10*time.Millisecond)

	store.findFn = func(ctx context.Context, _ string, _ domain.Filter) ([]domain.Document, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, err := jobs.List(context.Background(), "")
	if !errors.Is(err, domain.ErrStorageError) {
		t.Errorf("List() error = %v, want ErrStorageError", err)
	}
	if n := store.Calls("Find"); n != 2 {
		t.Errorf("Find calls = %d, want 2", n)
	}
}

func TestJobService_NoRetryWhenCallerCancels(t *testing.T) {
	store := newSpyStore()
	jobs := NewJobService(store, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := jobs.List(ctx, ""); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if n := store.Calls("Find"); n != 1 {
		t.Errorf("Find calls = %d, want 1", n)
	}
}

func TestJobService_CreateIsNotRetried(t *testing.T) {
	store := newSpyStore()
	jobs := NewJobService(store, 10*time.Millisecond)

	store.insertFn = func(ctx context.Context, _ string, _ domain.Document) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	if _, err := jobs.Create(context.Background(), domain.Document{}); !errors.Is(err, domain.ErrStorageError) {
		t.Errorf("Create() error = %v, want ErrStorageError", err)
	}
	if n := store.Calls("Insert"); n != 1 {
		t.Errorf("Insert calls = %d, want 1", n)
	}
}
