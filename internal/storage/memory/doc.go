// Package memory provides the in-memory document store.
//
// Collections are sharded concurrent maps. Increment runs its
// read-modify-write under the shard's write lock, so concurrent increments
// of the same document never lose updates. Nothing is persisted; the store
// is meant for development and tests.
package memory
