// Package sqlstore implements a durable, single-node counter store backed by an
// embedded SQLite database (modernc.org/sqlite, a pure Go driver). It provides
// an implementation of the store.ICounterStore interface where counters survive
// process restarts without any snapshot management.
//
// Implementation Details:
//
//   - Schema: Counters live in a single table mapping a TEXT primary key to an
//     INTEGER value. The primary key constraint provides the insert-if-absent
//     semantics for UpsertIfAbsent via ON CONFLICT DO NOTHING.
//
//   - Atomic Increments: IncrementAndGet is a single UPDATE ... RETURNING
//     statement. SQLite serializes writers, so concurrent increments each
//     observe a distinct post-increment value. A missing counter yields no row
//     and is reported as not found rather than created.
//
//   - Journal Mode: The database is opened in WAL mode so reads do not block
//     behind writes.
//
// Unlike lstore and dstore, this store does not use write indexes: SQLite's own
// transaction ordering provides the required serialization of writes.
//
// Suitable Use Cases:
//
//	The sql store is ideal for:
//	- Single-node deployments that must survive restarts
//	- Embedding sequence generation into applications that already ship SQLite
//	- Modest throughput requirements where consensus overhead is unwanted
//
// For ephemeral single-node setups consider the lstore package; for multi-node
// fault tolerance consider the dstore package.
package sqlstore
