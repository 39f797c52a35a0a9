package memory

import (
	"context"
	"sort"

	"github.com/yndnr/jobboard-go/internal/core/domain"
	"github.com/yndnr/jobboard-go/pkg/cmap"
)

// Store is an in-memory document store. Each collection is a sharded map
// keyed by document id; documents are cloned on the way in and out so
// callers never share state with the store.
type Store struct {
	collections *cmap.Map[string, *cmap.Map[string, domain.Document]]
	shardCount  int
}

// Option configures the Store.
type Option func(*Store)

// WithShardCount sets the shard count of every collection map.
func WithShardCount(n int) Option {
	return func(s *Store) {
		s.shardCount = n
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		collections: cmap.New[string, *cmap.Map[string, domain.Document]](),
		shardCount:  cmap.DefaultShardCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) collection(name string) *cmap.Map[string, domain.Document] {
	if c, ok := s.collections.Get(name); ok {
		return c
	}
	s.collections.SetIfAbsent(name, cmap.NewWithShards[string, domain.Document](s.shardCount))
	c, _ := s.collections.Get(name)
	return c
}

// Insert stores a copy of doc under a fresh id and returns the id.
func (s *Store) Insert(ctx context.Context, collection string, doc domain.Document) (string, error) {
	id := domain.NewDocumentID()
	if err := s.InsertWithID(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

// InsertWithID stores a copy of doc under id, which must not exist yet.
func (s *Store) InsertWithID(ctx context.Context, collection, id string, doc domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return domain.ErrMissingArgument.WithDetails("id")
	}

	stored := doc.Clone()
	if stored == nil {
		stored = domain.Document{}
	}
	stored[domain.FieldID] = id

	if !s.collection(collection).SetIfAbsent(id, stored) {
		return domain.ErrDocumentConflict.WithDetails(id)
	}
	return nil
}

// FindByID returns a copy of the document with the given id.
func (s *Store) FindByID(ctx context.Context, collection, id string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, ok := s.collection(collection).Get(id)
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

// Find returns copies of all documents matching filter, ordered by id.
func (s *Store) Find(ctx context.Context, collection string, filter domain.Filter) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []domain.Document{}
	s.collection(collection).Range(func(_ string, doc domain.Document) bool {
		if filter.Matches(doc) {
			out = append(out, doc.Clone())
		}
		return true
	})

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// SetFields overwrites the given fields of an existing document.
// The id field cannot be changed.
func (s *Store) SetFields(ctx context.Context, collection, id string, fields domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, ok, err := s.collection(collection).Modify(id, func(cur domain.Document) (domain.Document, error) {
		next := cur.Clone()
		for k, v := range fields.Clone() {
			if k == domain.FieldID {
				continue
			}
			next[k] = v
		}
		return next, nil
	})
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// Increment adds delta to an integer field of an existing document under
// the owning shard's write lock and returns the new value. An absent field
// counts as 0.
func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var result int64
	_, ok, err := s.collection(collection).Modify(id, func(cur domain.Document) (domain.Document, error) {
		var n int64
		if _, present := cur[field]; present {
			v, isInt := cur.Int(field)
			if !isInt {
				return nil, domain.ErrFieldNotNumeric.WithDetails(field)
			}
			n = v
		}
		result = n + delta

		next := cur.Clone()
		next[field] = result
		return next, nil
	})
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, domain.ErrDocumentNotFound
	}
	return result, nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, ok := s.collection(collection).Pop(id); !ok {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// Count returns the number of documents in a collection.
func (s *Store) Count(collection string) int {
	return s.collection(collection).Count()
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Close is a no-op; the store lives as long as the process.
func (s *Store) Close() error {
	return nil
}
