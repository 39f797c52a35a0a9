package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/maphash"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/jobboard-go/internal/core/domain"
)

// Read-modify-write transactions on one key are serialized in process by
// a striped lock, so badger.ErrConflict only remains possible against
// writers that bypass the lock. The retry loop backs off with jitter.
const (
	lockStripes        = 256
	maxConflictRetries = 128
	conflictBackoff    = 100 * time.Microsecond
	maxConflictBackoff = 10 * time.Millisecond
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("storage: badger store closed")

// BadgerStore keeps JSON documents in Badger under "<collection>/<id>".
// Read-modify-write operations hold the key's stripe lock and run in
// conflict-detecting transactions, retried on badger.ErrConflict.
type BadgerStore struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger *slog.Logger

	locks    [lockStripes]sync.Mutex
	lockSeed maphash.Seed

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBadgerStore opens (or creates) a Badger database in dir.
func NewBadgerStore(dir string, cfg BadgerConfig, logger *slog.Logger) (*BadgerStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = cfg.SyncWrites
	opts.DetectConflicts = true
	if cfg.CacheSize > 0 {
		opts.BlockCacheSize = cfg.CacheSize
	}
	if cfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	s := &BadgerStore{
		db:     db,
		cfg:    cfg,
		logger: logger,

		lockSeed: maphash.MakeSeed(),

		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go s.gcLoop()

	logger.Info("badger store opened", "dir", dir, "gc_interval", cfg.GCInterval)
	return s, nil
}

func docKey(collection, id string) []byte {
	return []byte(collection + "/" + id)
}

func collectionPrefix(collection string) []byte {
	return []byte(collection + "/")
}

func decodeDocument(raw []byte) (domain.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc domain.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("badger: decode document: %w", err)
	}
	return doc, nil
}

func getDocument(txn *badger.Txn, key []byte) (domain.Document, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return decodeDocument(raw)
}

func putDocument(txn *badger.Txn, key []byte, doc domain.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("badger: encode document: %w", err)
	}
	return txn.Set(key, raw)
}

func (s *BadgerStore) lockKey(key []byte) *sync.Mutex {
	return &s.locks[maphash.Bytes(s.lockSeed, key)%lockStripes]
}

// update runs fn in a read-write transaction on key, holding the key's
// stripe lock and retrying on conflict.
func (s *BadgerStore) update(ctx context.Context, key []byte, fn func(txn *badger.Txn) error) error {
	mu := s.lockKey(key)
	mu.Lock()
	defer mu.Unlock()

	backoff := conflictBackoff
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}

		wait := backoff/2 + rand.N(backoff/2+1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		backoff = min(2*backoff, maxConflictBackoff)
	}
	return fmt.Errorf("badger: gave up after %d conflicting attempts: %w", maxConflictRetries, badger.ErrConflict)
}

// Insert stores doc under a fresh id and returns the id.
func (s *BadgerStore) Insert(ctx context.Context, collection string, doc domain.Document) (string, error) {
	id := domain.NewDocumentID()
	if err := s.InsertWithID(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

// InsertWithID stores doc under id, which must not exist yet.
func (s *BadgerStore) InsertWithID(ctx context.Context, collection, id string, doc domain.Document) error {
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
	key := docKey(collection, id)

	return s.update(ctx, key, func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return domain.ErrDocumentConflict.WithDetails(id)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return putDocument(txn, key, stored)
	})
}

// FindByID returns the document with the given id.
func (s *BadgerStore) FindByID(ctx context.Context, collection, id string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc domain.Document
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		doc, err = getDocument(txn, docKey(collection, id))
		return err
	})
	return doc, err
}

// Find scans the collection and returns the documents matching filter,
// ordered by id.
func (s *BadgerStore) Find(ctx context.Context, collection string, filter domain.Filter) ([]domain.Document, error) {
	out := []domain.Document{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = collectionPrefix(collection)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			doc, err := decodeDocument(raw)
			if err != nil {
				return err
			}
			if filter.Matches(doc) {
				out = append(out, doc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// SetFields overwrites the given fields of an existing document.
func (s *BadgerStore) SetFields(ctx context.Context, collection, id string, fields domain.Document) error {
	key := docKey(collection, id)
	return s.update(ctx, key, func(txn *badger.Txn) error {
		doc, err := getDocument(txn, key)
		if err != nil {
			return err
		}
		for k, v := range fields {
			if k == domain.FieldID {
				continue
			}
			doc[k] = v
		}
		return putDocument(txn, key, doc)
	})
}

// Increment adds delta to an integer field inside a conflict-detecting
// transaction and returns the new value. An absent field counts as 0.
func (s *BadgerStore) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	key := docKey(collection, id)

	var result int64
	err := s.update(ctx, key, func(txn *badger.Txn) error {
		doc, err := getDocument(txn, key)
		if err != nil {
			return err
		}
		var n int64
		if _, present := doc[field]; present {
			v, ok := doc.Int(field)
			if !ok {
				return domain.ErrFieldNotNumeric.WithDetails(field)
			}
			n = v
		}
		result = n + delta
		doc[field] = result
		return putDocument(txn, key, doc)
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// Delete removes a document.
func (s *BadgerStore) Delete(ctx context.Context, collection, id string) error {
	key := docKey(collection, id)
	return s.update(ctx, key, func(txn *badger.Txn) error {
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return domain.ErrDocumentNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// Ping reports whether the database is open.
func (s *BadgerStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// GC runs value log garbage collection until Badger reports nothing left
// to rewrite.
func (s *BadgerStore) GC() error {
	for {
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("badger: gc: %w", err)
		}
	}
}

// Close stops the GC loop and closes the database.
func (s *BadgerStore) Close() error {
	close(s.stopCh)
	<-s.doneCh

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}
	s.logger.Info("badger store closed")
	return nil
}

// RegisterMetrics exposes Badger's on-disk size on registry.
func (s *BadgerStore) RegisterMetrics(registry prometheus.Registerer) {
	registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "jobboard",
			Subsystem: "badger",
			Name:      "lsm_size_bytes",
			Help:      "Badger LSM tree size in bytes.",
		}, func() float64 {
			lsm, _ := s.db.Size()
			return float64(lsm)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "jobboard",
			Subsystem: "badger",
			Name:      "value_log_size_bytes",
			Help:      "Badger value log size in bytes.",
		}, func() float64 {
			_, vlog := s.db.Size()
			return float64(vlog)
		}),
	)
}

func (s *BadgerStore) gcLoop() {
	defer close(s.doneCh)

	interval := s.cfg.GCInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.GC(); err != nil {
				s.logger.Error("badger gc failed", "error", err)
			}
		case <-s.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
