// Package testing provides standardised tests and benchmarks for
// database implementations that satisfy the db.CounterDB interface.
//
// The package contains:
//   - testing: A comprehensive test suite for validating conformance to the CounterDB interface contract
//   - benchmark: Performance tests for measuring throughput of common counter operations
//
// This package is particularly useful for:
//   - Applications that need to select the most appropriate database implementation
//     based on performance characteristics
//   - Database developers implementing the CounterDB interface
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() db.CounterDB {
//		return NewMyDatabase()
//	}
//
//	// Running the standard test suite
//	testing.RunCounterDBTests(t, "MyDatabase", factory)
//
//	// Running performance benchmarks
//	testing.RunCounterDBBenchmarks(b, "MyDatabase", factory)
package testing
