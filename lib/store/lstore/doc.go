// Package lstore implements a local, in-memory, single-node counter store based
// on the store.ICounterStore interface. It provides a thin wrapper around any
// db.CounterDB implementation with automatic write index management. Counters
// are stored entirely in memory and are not persisted between process restarts.
//
// Key Features:
//   - Pure in-memory storage without persistence
//   - Direct integration with db.CounterDB implementations
//   - Automatic write index progression using atomic operations
//   - Feature detection to handle unsupported operations gracefully
//   - Thread-safe operations for concurrent access
//
// Implementation Details:
//
//   - Write Index Management: The store maintains an atomic counter that automatically
//     increments with each write operation. This provides a monotonically increasing
//     logical timestamp that ensures consistent ordering of operations.
//
//   - Feature Detection: Before executing operations, the store checks if the underlying
//     db.CounterDB implementation supports the requested feature through the
//     SupportsFeature method. Unsupported operations return appropriate error codes
//     rather than failing silently or producing undefined behavior.
//
//   - Composition Architecture: The store follows a composition pattern where the
//     store.DBFactory factory function injects the underlying db.CounterDB
//     implementation. This allows the store to work with any db.CounterDB-compatible
//     engine without modification.
//
// Thread Safety:
//
//	All operations in the local store are thread-safe. The write index is managed
//	using atomic operations that guarantee correct behavior even under concurrent access.
//	The underlying db.CounterDB implementation is expected to provide its own thread
//	safety guarantees for the actual storage operations.
//
// Usage Example:
//
//	// Create a store with an aspen database backend
//	factory := func() db.CounterDB { return aspen.NewAspenDB(nil) }
//	store := lstore.NewLocalStore(factory)
//
//	// Create a counter starting at 1
//	err := store.UpsertIfAbsent("orders", 1)
//
//	// Draw the next value
//	value, found, err := store.IncrementAndGet("orders", 1)
//
// Suitable Use Cases:
//
//	The local store is ideal for:
//	- Ephemeral sequences that don't need to survive process restarts
//	- Single-node applications where distributed consensus is not required
//	- Testing and development environments
//
// For durable single-node storage consider the sqlstore package. For distributed
// scenarios requiring consensus across multiple nodes, consider using the dstore
// package instead, which provides a RAFT-based implementation of the same
// interface with strong consistency guarantees.
package lstore
