package service

import (
	"context"
	"errors"
	"time"

	"github.com/yndnr/jobboard-go/internal/core/domain"
)

// DefaultStoreTimeout bounds a single store call when none is configured.
const DefaultStoreTimeout = 5 * time.Second

// DocumentStore is the persistence contract the services need.
//
// Implementations return domain.ErrDocumentNotFound for a missing id and
// must make Increment atomic for a single document. InsertWithID returns
// domain.ErrDocumentConflict for an id that is taken.
type DocumentStore interface {
	Insert(ctx context.Context, collection string, doc domain.Document) (string, error)
	InsertWithID(ctx context.Context, collection, id string, doc domain.Document) error
	FindByID(ctx context.Context, collection, id string) (domain.Document, error)
	Find(ctx context.Context, collection string, filter domain.Filter) ([]domain.Document, error)
	SetFields(ctx context.Context, collection, id string, fields domain.Document) error
	Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error)
	Delete(ctx context.Context, collection, id string) error
}

// storeCaller runs store calls under a per-call deadline.
type storeCaller struct {
	timeout time.Duration
}

func newStoreCaller(timeout time.Duration) storeCaller {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return storeCaller{timeout: timeout}
}

// call runs fn once. timedOut reports whether the per-call deadline, not
// the caller's context, ended the call.
func (c storeCaller) call(ctx context.Context, fn func(context.Context) error) (timedOut bool, err error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err = fn(callCtx)
	timedOut = err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	return timedOut, err
}

// read runs an idempotent call, retrying once if the per-call deadline
// fired while the caller was still waiting.
func (c storeCaller) read(ctx context.Context, fn func(context.Context) error) error {
	timedOut, err := c.call(ctx, fn)
	if timedOut {
		_, err = c.call(ctx, fn)
	}
	return err
}

// write runs a call exactly once.
func (c storeCaller) write(ctx context.Context, fn func(context.Context) error) error {
	_, err := c.call(ctx, fn)
	return err
}

// storeFailure passes domain.ErrDocumentNotFound through and turns every
// other store error into ErrStorageError carrying the cause.
func storeFailure(err error) error {
	if err == nil || errors.Is(err, domain.ErrDocumentNotFound) {
		return err
	}
	return domain.ErrStorageError.WithCause(err)
}
