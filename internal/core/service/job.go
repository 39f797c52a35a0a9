package service

import (
	"context"
	"errors"
	"time"

	"github.com/yndnr/jobboard-go/internal/core/domain"
)

// JobService is the job catalogue. Job payloads are stored as given; only
// the id and the derived applicationCount are controlled here.
type JobService struct {
	store DocumentStore
	calls storeCaller
}

// NewJobService creates a JobService. storeTimeout bounds each store call.
func NewJobService(store DocumentStore, storeTimeout time.Duration) *JobService {
	return &JobService{store: store, calls: newStoreCaller(storeTimeout)}
}

// List returns all jobs, or only those posted by posterEmail when it is
// non-empty.
func (s *JobService) List(ctx context.Context, posterEmail string) ([]*domain.Job, error) {
	filter := domain.Filter{}
	if posterEmail != "" {
		filter[domain.FieldHREmail] = posterEmail
	}

	var docs []domain.Document
	err := s.calls.read(ctx, func(ctx context.Context) error {
		var err error
		docs, err = s.store.Find(ctx, domain.CollectionJobs, filter)
		return err
	})
	if err != nil {
		return nil, storeFailure(err)
	}

	jobs := make([]*domain.Job, len(docs))
	for i, doc := range docs {
		jobs[i] = domain.NewJob(doc)
	}
	return jobs, nil
}

// Create stores a new job and returns its id. A client-supplied
// applicationCount is ignored; every job starts at 0.
func (s *JobService) Create(ctx context.Context, payload domain.Document) (string, error) {
	doc := domain.PrepareJob(payload)

	var id string
	err := s.calls.write(ctx, func(ctx context.Context) error {
		var err error
		id, err = s.store.Insert(ctx, domain.CollectionJobs, doc)
		return err
	})
	if err != nil {
		return "", storeFailure(err)
	}
	return id, nil
}

// Get returns one job.
func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	if id == "" {
		return nil, domain.ErrMissingArgument.WithDetails("id")
	}

	var doc domain.Document
	err := s.calls.read(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.store.FindByID(ctx, domain.CollectionJobs, id)
		return err
	})
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return nil, domain.ErrJobNotFound.WithDetails(id)
	}
	if err != nil {
		return nil, storeFailure(err)
	}
	return domain.NewJob(doc), nil
}

// lookup is Get without the not-found error: a missing job yields nil.
func (s *JobService) lookup(ctx context.Context, id string) (*domain.Job, error) {
	if id == "" {
		return nil, nil
	}
	job, err := s.Get(ctx, id)
	if errors.Is(err, domain.ErrJobNotFound) {
		return nil, nil
	}
	return job, err
}
