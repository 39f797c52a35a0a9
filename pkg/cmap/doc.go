// Package cmap provides a generic concurrent map split into shards.
//
// Each shard has its own RWMutex, so writers to different keys rarely
// contend. Modify gives read-modify-write atomicity for a single key, which
// is what the in-memory document store builds its counters on.
//
//	m := cmap.New[string, int64]()
//	m.Set("jobs/1", 0)
//	m.Modify("jobs/1", func(n int64) (int64, error) { return n + 1, nil })
package cmap
