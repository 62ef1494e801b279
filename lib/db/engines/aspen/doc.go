// Package aspen provides an in-memory implementation of the db.CounterDB
// interface, optimized for highly concurrent access.
//
// Architecture:
//
//   - Sharding: Counters are partitioned across multiple shards (by default one
//     per CPU core) to reduce contention. A seeded FNV-1a hash maps counter
//     names to shards.
//
//   - Lock-free maps: Each shard stores its entries in a xsync.MapOf, whose
//     Compute method provides the atomic read-modify-write primitive that backs
//     Put, PutIfAbsent and IncrementAndGet. No shard-wide or database-wide lock
//     is ever taken, concurrent operations on different keys never contend.
//
//   - Write indexes: Every write carries a logical timestamp. Writes that are
//     older than the stored entry are ignored, and increments that are not
//     newer than the stored entry are treated as replays and not applied again.
//     This makes the engine safe to use underneath a raft state machine, where
//     log entries can be re-applied after a snapshot restore.
//
//   - Persistence: Save and Load implement a compact binary snapshot format
//     (magic number, version, hash seed, and one fixed-size record per counter).
//     Save produces a fuzzy snapshot and may run concurrently with other
//     operations; Load replaces the entire database state and must not.
//
// Tradeoffs:
//
//   - Counter names are stored hashed, not verbatim. Two names that collide in
//     the seeded 64-bit hash space would share an entry; with FNV-1a over a
//     per-instance random seed this is considered acceptable for realistic
//     counter cardinalities.
//
// Usage:
//
//	database := aspen.NewAspenDB(nil) // default options
//	database.Put("orders", 1, 1)
//	value, found := database.IncrementAndGet("orders", 1, 2)
package aspen
