package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/yndnr/jobboard-go/internal/core/domain"
)

// Each document is a hash whose fields hold JSON-encoded values, so an
// integer field is stored as its decimal literal and HINCRBY works on it.
// A sorted set with all scores 0 lists the ids of a collection in lexical
// (creation) order.

// incrementScript refuses to create the document or touch a non-integer
// field. Reply: {1, value} on success, {0} for a missing document, {-1}
// for a non-integer field.
var incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {0}
end
local cur = redis.call('HGET', KEYS[1], ARGV[1])
if cur and not string.match(cur, '^%-?%d+$') then
  return {-1}
end
return {1, redis.call('HINCRBY', KEYS[1], ARGV[1], ARGV[2])}
`)

// insertScript creates the hash and indexes its id unless the document
// already exists. KEYS: doc, index. ARGV: id, then field/value pairs.
// Reply: 1 when created, 0 when the id is taken.
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
for i = 2, #ARGV, 2 do
  redis.call('HSET', KEYS[1], ARGV[i], ARGV[i + 1])
end
redis.call('ZADD', KEYS[2], 0, ARGV[1])
return 1
`)

// setFieldsScript writes ARGV as field/value pairs only when the document
// exists. Reply: 1 when written, 0 for a missing document.
var setFieldsScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
for i = 1, #ARGV, 2 do
  redis.call('HSET', KEYS[1], ARGV[i], ARGV[i + 1])
end
return 1
`)

// RedisStore keeps documents in Redis hashes.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a store from cfg. URL, when set, takes precedence
// over Addr, Password and DB.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("redis: parse url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "jobboard"
	}
	return &RedisStore{client: redis.NewClient(opts), prefix: prefix}, nil
}

func (s *RedisStore) docKey(collection, id string) string {
	return s.prefix + ":" + collection + ":" + id
}

func (s *RedisStore) indexKey(collection string) string {
	return s.prefix + ":" + collection + ":_ids"
}

func encodeFields(doc domain.Document, skipID bool) (map[string]any, error) {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if skipID && k == domain.FieldID {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("redis: encode field %q: %w", k, err)
		}
		out[k] = string(raw)
	}
	return out, nil
}

func decodeFields(fields map[string]string) (domain.Document, error) {
	doc := make(domain.Document, len(fields))
	for k, raw := range fields {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("redis: decode field %q: %w", k, err)
		}
		doc[k] = v
	}
	return doc, nil
}

// Insert stores doc under a fresh id and returns the id.
func (s *RedisStore) Insert(ctx context.Context, collection string, doc domain.Document) (string, error) {
	id := domain.NewDocumentID()
	if err := s.InsertWithID(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

// InsertWithID writes the hash and indexes its id in one script, refusing
// an id that is already taken.
func (s *RedisStore) InsertWithID(ctx context.Context, collection, id string, doc domain.Document) error {
	if id == "" {
		return domain.ErrMissingArgument.WithDetails("id")
	}
	stored := doc.Clone()
	if stored == nil {
		stored = domain.Document{}
	}
	stored[domain.FieldID] = id

	fields, err := encodeFields(stored, false)
	if err != nil {
		return err
	}
	args := make([]any, 0, 1+2*len(fields))
	args = append(args, id)
	for k, v := range fields {
		args = append(args, k, v)
	}

	created, err := insertScript.Run(ctx, s.client,
		[]string{s.docKey(collection, id), s.indexKey(collection)}, args...).Int64()
	if err != nil {
		return fmt.Errorf("redis: insert: %w", err)
	}
	if created == 0 {
		return domain.ErrDocumentConflict.WithDetails(id)
	}
	return nil
}

// FindByID returns the document with the given id.
func (s *RedisStore) FindByID(ctx context.Context, collection, id string) (domain.Document, error) {
	fields, err := s.client.HGetAll(ctx, s.docKey(collection, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: find: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrDocumentNotFound
	}
	return decodeFields(fields)
}

// Find loads every document of the collection in one pipeline and returns
// those matching filter, ordered by id.
func (s *RedisStore) Find(ctx context.Context, collection string, filter domain.Filter) ([]domain.Document, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(collection), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list ids: %w", err)
	}

	out := []domain.Document{}
	if len(ids) == 0 {
		return out, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.docKey(collection, id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis: find: %w", err)
	}

	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		doc, err := decodeFields(fields)
		if err != nil {
			return nil, err
		}
		if filter.Matches(doc) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// SetFields overwrites the given fields of an existing document atomically.
func (s *RedisStore) SetFields(ctx context.Context, collection, id string, fields domain.Document) error {
	encoded, err := encodeFields(fields, true)
	if err != nil {
		return err
	}
	if len(encoded) == 0 {
		_, err := s.FindByID(ctx, collection, id)
		return err
	}

	args := make([]any, 0, 2*len(encoded))
	for k, v := range encoded {
		args = append(args, k, v)
	}

	written, err := setFieldsScript.Run(ctx, s.client, []string{s.docKey(collection, id)}, args...).Int64()
	if err != nil {
		return fmt.Errorf("redis: set fields: %w", err)
	}
	if written == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// Increment runs EXISTS + HINCRBY as one script, so the counter update is
// a single atomic server-side step.
func (s *RedisStore) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	reply, err := incrementScript.Run(ctx, s.client, []string{s.docKey(collection, id)}, field, delta).Slice()
	if err != nil {
		return 0, fmt.Errorf("redis: increment: %w", err)
	}
	if len(reply) == 0 {
		return 0, fmt.Errorf("redis: increment: empty reply")
	}

	switch status, _ := reply[0].(int64); status {
	case 0:
		return 0, domain.ErrDocumentNotFound
	case -1:
		return 0, domain.ErrFieldNotNumeric.WithDetails(field)
	}
	if len(reply) < 2 {
		return 0, fmt.Errorf("redis: increment: malformed reply %v", reply)
	}
	n, ok := reply[1].(int64)
	if !ok {
		return 0, fmt.Errorf("redis: increment: unexpected value %T", reply[1])
	}
	return n, nil
}

// Delete removes the hash and its index entry in one MULTI/EXEC.
func (s *RedisStore) Delete(ctx context.Context, collection, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.docKey(collection, id))
		pipe.ZRem(ctx, s.indexKey(collection), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: delete: %w", err)
	}
	if del.Val() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client's connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
