// Package testing provides a standardised conformance test suite for
// implementations of the store.ICounterStore interface.
//
// The suite validates the full interface contract, with particular focus on the
// atomicity guarantee that sequence generation depends on: concurrent increments
// on the same counter must yield distinct values forming an exact, gapless
// arithmetic progression.
//
// Example usage:
//
//	factory := func(t *testing.T) store.ICounterStore {
//		return lstore.NewLocalStore(func() db.CounterDB { return aspen.NewAspenDB(nil) })
//	}
//	testing.RunCounterStoreTests(t, "LocalStore", factory)
package testing
