// Package util provides utility components for
// database implementations that satisfy the db.CounterDB interface.
//
// The package contains:
//   - statistics: Utility tools for analyzing database characteristics like the distribution of counters across shards
//   - functions: Hash functions and other utility functions
//
// This package is particularly useful for:
//   - Database developers implementing the CounterDB interface
//   - Monitoring systems that need to track database size and distribution metrics
//
// Each component is designed to work with any implementation of the db.CounterDB interface,
// allowing for consistent validation and measurement across different storage backends.
package util
