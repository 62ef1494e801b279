// Package db provides a standardized interface for counter database implementations.
// It defines the CounterDB interface that allows for consistent interaction with
// various counter storage backends while abstracting implementation details.
//
// The package focuses on:
//   - A unified interface for named-counter operations
//   - An atomic increment primitive as the core mutator
//   - Feature discovery through capability flags
//   - Standardized persistence operations
//
// Key Components:
//
//   - CounterDB Interface: The core interface that all database implementations must
//     satisfy. It provides methods for write operations (Put, PutIfAbsent,
//     IncrementAndGet, Delete), read operations (Get, Has), metadata retrieval
//     (GetInfo), and persistence operations (Save, Load).
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method. This allows clients to
//     discover supported operations at runtime.
//
//   - Implementation Identifiers: The Implementation type provides string constants
//     for different database backends (currently "aspen").
//
//   - Database Information: The DatabaseInfo structure provides standardized
//     reporting on database state, including the counter count, implementation
//     type, and implementation-specific metadata.
//
// Note on Atomicity:
//   - IncrementAndGet is the only read-modify-write operation of the interface and
//     must be atomic with respect to all other operations on the same key: no
//     concurrent caller may observe or produce an intermediate state, and no two
//     concurrent increments of the same key may return the same value.
//   - PutIfAbsent must likewise be atomic so that two racing initializations of the
//     same key cannot overwrite each other.
//
// Note on Write Indexes:
//   - All write operations require a write-index parameter that serves as a logical
//     timestamp. Writes with an index older than the stored entry are ignored; this
//     makes replayed writes (e.g. raft log entries applied after a snapshot
//     restore) harmless.
//   - Read operations do not accept an index parameter, they always operate against
//     the most recent state.
//   - Implementations must ensure that the write index only increases monotonically.
//
// Related Packages:
//
// The engines/aspen package (github.com/ValentinKolb/dSEQ/lib/db/engines/aspen)
// provides an implementation of the CounterDB interface using a sharded in-memory
// architecture with lock-free data structures and binary snapshot persistence.
//
// The util package (github.com/ValentinKolb/dSEQ/lib/db/util) provides hash
// functions and distribution statistics used by implementations.
//
// The testing package (github.com/ValentinKolb/dSEQ/lib/db/testing) provides
// standardized tests and benchmarks for database implementations that satisfy the
// db.CounterDB interface:
//   - RunCounterDBTests: Runs a standardized test suite to validate implementations
//   - RunCounterDBBenchmarks: Provides performance benchmarks for comparing implementations
package db
