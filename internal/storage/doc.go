// Package storage provides the document stores behind the job board.
//
// Three engines implement Store:
//
//   - memory: sharded in-process maps (development, tests)
//   - badger: embedded Badger database, JSON values, conflict-detecting
//     transactions for read-modify-write
//   - redis: one hash per document, Lua scripts for conditional updates
//
// All engines assign ULID ids on insert, return domain.ErrDocumentNotFound
// for missing ids and list documents in id order. Increment is atomic per
// document in every engine; it is what keeps a job's applicationCount
// exact under concurrent submissions.
package storage
