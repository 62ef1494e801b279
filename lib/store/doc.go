// Package store provides a high-level interface for named-counter storage
// operations with atomic increments and unified error handling. It serves as an
// abstraction layer over the lower-level db.CounterDB implementations, adding
// functionality such as write index management and standardized error reporting.
//
// The package focuses on:
//   - A unified interface (ICounterStore) for counter operations across different backends
//   - Pluggable storage backend architecture through DBFactory pattern
//
// Key Components:
//
//   - ICounterStore Interface: The core abstraction defining operations for
//     interacting with a counter store. All implementations share this common
//     interface, allowing applications to switch between different storage backends
//     without code changes. The interface methods return custom Error types that
//     provide detailed information about operation results.
//
//   - Error System: A structured error reporting mechanism using typed error codes
//     and descriptive messages. This system allows applications to make informed
//     decisions based on specific error conditions rather than generic errors.
//
//   - DBFactory: A function type that abstracts the creation of underlying
//     db.CounterDB instances, providing dependency injection and flexible
//     configuration of storage backends.
//
// Implementations:
//
//	The package includes three implementations of the ICounterStore interface:
//
//	- Local Store (lstore): A simple, non-distributed implementation that directly
//	  utilizes a db.CounterDB instance. It manages write index progression internally
//	  using atomic operations to ensure thread safety. This implementation is suitable
//	  for single-node applications where distributed consensus is not required.
//	  Available in the "github.com/ValentinKolb/dSEQ/lib/store/lstore" package.
//
//	- Distributed Store (dstore): A implementation built on the Dragonboat
//	  RAFT consensus library. It distributes counter operations across multiple nodes
//	  with strong consistency guarantees. This implementation is appropriate for
//	  multi-node deployments requiring fault tolerance and high availability.
//	  Available in the "github.com/ValentinKolb/dSEQ/lib/store/dstore" package.
//
//	- SQL Store (sqlstore): A durable single-node implementation backed by an
//	  embedded SQLite database. Counters survive process restarts without snapshot
//	  management. Available in the "github.com/ValentinKolb/dSEQ/lib/store/sqlstore"
//	  package.
//
// This interface-driven approach allows applications to:
//   - Switch between local, durable and distributed storage depending on deployment requirements
//   - Handle errors in a consistent and type-safe manner across implementations
//   - Abstract storage implementation details from application logic
package store
