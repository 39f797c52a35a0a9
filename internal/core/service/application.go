package service

import (
	"context"
	"errors"
	"time"

	"github.com/yndnr/jobboard-go/internal/core/domain"
	"github.com/yndnr/jobboard-go/internal/telemetry/logger"
)

// Compensation reasons reported to the LedgerObserver.
const (
	ReasonJobNotFound  = "job_not_found"
	ReasonStoreError   = "store_error"
	ReasonInsertFailed = "insert_failed"
)

// compensationTimeout bounds the delete that undoes a failed submission.
// It runs detached from the request so a client disconnect cannot leave
// an uncounted application behind.
const compensationTimeout = 10 * time.Second

// LedgerObserver is notified of ledger outcomes.
type LedgerObserver interface {
	ApplicationSubmitted()
	ApplicationCompensated(reason string)
}

// ApplicationServiceConfig holds configuration for ApplicationService.
type ApplicationServiceConfig struct {
	// StoreTimeout bounds each store call (default: 5s).
	StoreTimeout time.Duration

	// GateStatusUpdates restricts UpdateStatus to the applicant and the
	// job poster. Off by default: status updates are public.
	GateStatusUpdates bool

	Observer LedgerObserver
}

// ApplicationService owns the application ledger.
type ApplicationService struct {
	store    DocumentStore
	jobs     *JobService
	calls    storeCaller
	gated    bool
	observer LedgerObserver
}

// NewApplicationService creates an ApplicationService.
func NewApplicationService(store DocumentStore, jobs *JobService, cfg *ApplicationServiceConfig) *ApplicationService {
	if cfg == nil {
		cfg = &ApplicationServiceConfig{}
	}
	return &ApplicationService{
		store:    store,
		jobs:     jobs,
		calls:    newStoreCaller(cfg.StoreTimeout),
		gated:    cfg.GateStatusUpdates,
		observer: cfg.Observer,
	}
}

// StatusUpdatesGated reports whether UpdateStatus checks ownership.
func (s *ApplicationService) StatusUpdatesGated() bool {
	return s.gated
}

// Submit records an application and counts it against its job.
//
// The application is inserted under an id chosen up front, then the job's
// applicationCount is incremented with the store's atomic increment. If
// either step fails the id is deleted again, so no application ever exists
// without having been counted, including an insert that committed after
// its deadline fired. A missing job yields domain.ErrJobNotFound, any other
// failure domain.ErrStorageError. Nothing here is retried.
func (s *ApplicationService) Submit(ctx context.Context, payload domain.Document) (string, error) {
	app, err := domain.NewApplication(payload)
	if err != nil {
		return "", err
	}
	jobID := app.JobID()

	id := domain.NewDocumentID()
	err = s.calls.write(ctx, func(ctx context.Context) error {
		return s.store.InsertWithID(ctx, domain.CollectionApplications, id, app.Document)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrDocumentConflict) {
			s.compensate(ctx, id, jobID, ReasonInsertFailed, err)
		}
		return "", domain.ErrStorageError.WithCause(err)
	}

	err = s.calls.write(ctx, func(ctx context.Context) error {
		_, err := s.store.Increment(ctx, domain.CollectionJobs, jobID, domain.FieldApplicationCount, 1)
		return err
	})
	if err != nil {
		reason, result := ReasonStoreError, error(domain.ErrStorageError.WithCause(err))
		if errors.Is(err, domain.ErrDocumentNotFound) {
			reason, result = ReasonJobNotFound, domain.ErrJobNotFound.WithDetails(jobID)
		}
		s.compensate(ctx, id, jobID, reason, err)
		return "", result
	}

	if s.observer != nil {
		s.observer.ApplicationSubmitted()
	}
	logger.L(ctx).Info("application submitted", "application_id", id, "job_id", jobID)
	return id, nil
}

func (s *ApplicationService) compensate(ctx context.Context, id, jobID, reason string, cause error) {
	log := logger.L(ctx).With("application_id", id, "job_id", jobID, "reason", reason)

	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	switch err := s.store.Delete(delCtx, domain.CollectionApplications, id); {
	case err == nil:
		log.Warn("application rolled back", "cause", cause)
	case errors.Is(err, domain.ErrDocumentNotFound):
		log.Warn("application not stored; nothing to roll back", "cause", cause)
	default:
		log.Error("compensation failed; application is not counted", "error", err, "cause", cause)
	}
	if s.observer != nil {
		s.observer.ApplicationCompensated(reason)
	}
}

// ListForPrincipal returns the applications submitted by email, enriched
// with display fields of their jobs.
//
// The caller (identity) may only list its own applications. An empty
// email is rejected rather than treated as "all", and both checks happen
// before the store is touched.
func (s *ApplicationService) ListForPrincipal(ctx context.Context, identity, email string) ([]*domain.Application, error) {
	if email == "" {
		return nil, domain.ErrMissingArgument.WithDetails("email")
	}
	if identity == "" {
		return nil, domain.ErrUnauthenticated
	}
	if identity != email {
		return nil, domain.ErrForbidden
	}

	apps, err := s.find(ctx, domain.Filter{domain.FieldApplicationEmail: email})
	if err != nil {
		return nil, err
	}
	if err := s.enrich(ctx, apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// ListForJob returns the applications referencing jobID.
func (s *ApplicationService) ListForJob(ctx context.Context, jobID string) ([]*domain.Application, error) {
	if jobID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("job_id")
	}
	return s.find(ctx, domain.Filter{domain.FieldJobID: jobID})
}

func (s *ApplicationService) find(ctx context.Context, filter domain.Filter) ([]*domain.Application, error) {
	var docs []domain.Document
	err := s.calls.read(ctx, func(ctx context.Context) error {
		var err error
		docs, err = s.store.Find(ctx, domain.CollectionApplications, filter)
		return err
	})
	if err != nil {
		return nil, storeFailure(err)
	}

	apps := make([]*domain.Application, len(docs))
	for i, doc := range docs {
		apps[i] = domain.WrapApplication(doc)
	}
	return apps, nil
}

// enrich copies job display fields onto apps, fetching each distinct job
// once. Applications whose job no longer exists are left as they are.
func (s *ApplicationService) enrich(ctx context.Context, apps []*domain.Application) error {
	jobs := make(map[string]*domain.Job)
	for _, app := range apps {
		jobID := app.JobID()
		job, seen := jobs[jobID]
		if !seen {
			var err error
			if job, err = s.jobs.lookup(ctx, jobID); err != nil {
				return err
			}
			jobs[jobID] = job
		}
		app.Enrich(job)
	}
	return nil
}

// UpdateStatus replaces the status of an application.
//
// principal is the verified caller, or "" on an ungated route. With
// GateStatusUpdates set the caller must be the applicant or the poster of
// the referenced job.
func (s *ApplicationService) UpdateStatus(ctx context.Context, principal, id, status string) error {
	if id == "" {
		return domain.ErrMissingArgument.WithDetails("id")
	}
	if err := domain.ValidateStatus(status); err != nil {
		return err
	}

	if s.gated {
		if err := s.authorizeUpdate(ctx, principal, id); err != nil {
			return err
		}
	}

	err := s.calls.write(ctx, func(ctx context.Context) error {
		return s.store.SetFields(ctx, domain.CollectionApplications, id, domain.Document{domain.FieldStatus: status})
	})
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return domain.ErrApplicationNotFound.WithDetails(id)
	}
	if err != nil {
		return storeFailure(err)
	}

	logger.L(ctx).Info("application status updated", "application_id", id, "status", status)
	return nil
}

func (s *ApplicationService) authorizeUpdate(ctx context.Context, principal, id string) error {
	if principal == "" {
		return domain.ErrUnauthenticated
	}

	var doc domain.Document
	err := s.calls.read(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.store.FindByID(ctx, domain.CollectionApplications, id)
		return err
	})
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return domain.ErrApplicationNotFound.WithDetails(id)
	}
	if err != nil {
		return storeFailure(err)
	}

	app := domain.WrapApplication(doc)
	job, err := s.jobs.lookup(ctx, app.JobID())
	if err != nil {
		return err
	}
	if !app.OwnedBy(principal, job) {
		return domain.ErrForbidden
	}
	return nil
}
