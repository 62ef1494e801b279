// Package counter implements a monotonic sequence-number generator using
// counter stores that implement the store.ICounterStore interface. It provides
// a simple yet robust way to draw unique, strictly increasing identifiers
// across multiple processes or nodes.
//
// The counter only ever stores in the provided ICounterStore and has no other
// internal state. Therefor it is safe to be created multiple times on the same
// store. It is even possible to create a new counter for every generate
// operation. As long as the same store is used every time, all sequences will
// work as expected.
//
// Core Functionality:
//   - Unique, strictly increasing ID generation per named sequence
//   - Atomic creation of sequences on first use
//   - Explicit sequence creation and reset with a chosen starting value
//   - Existence checks without modifying the sequence
//
// Implementation Approach:
//
//	Sequences are implemented by leveraging the atomic conditional operations
//	of the underlying store. Specifically:
//
//	- First Use: GenerateID first issues an UpsertIfAbsent with the configured
//	  initial value, which guarantees that of any number of racing processes
//	  exactly one creates the sequence and none overwrites an existing value.
//	  The first generated ID is therefore always initial value + step.
//
//	- Drawing IDs: The subsequent IncrementAndGet atomically advances the
//	  sequence by the configured step and returns the post-increment value.
//	  Because the store applies increments atomically, concurrent callers
//	  always receive distinct values and no value is ever skipped or repeated.
//
//	- Reset: SetInitialValue unconditionally writes the given value, creating
//	  the sequence if necessary. Arguments are validated before the store is
//	  contacted, so a rejected call never changes stored state.
//
// Error Handling:
//
//	The package reports failures through a small typed taxonomy instead of
//	generic errors:
//
//	- InvalidArgumentError: the caller violated the contract (empty name,
//	  negative initial value, nil store). The store was not contacted.
//	- CounterMissingError: the operation needed a sequence that does not exist.
//	- StoreUnavailableError: the backing store failed; wraps the store error
//	  and supports errors.Unwrap.
//
// Thread Safety:
//
//	The counter is as thread-safe as the underlying store.ICounterStore
//	implementation. All operations are performed through the store interface,
//	which typically provides thread safety guarantees.
//
// Distributed Considerations:
//
//	When used with a distributed store implementation like dstore, the counter
//	provides cluster-wide unique sequences with consensus-based guarantees:
//	every node draws from the same sequence and monotonicity holds across the
//	whole cluster. Note that monotonicity is per sequence, not across
//	sequences, and that a crashed client may have drawn IDs it never used
//	(sequences are gapless in the store, not in the application).
//
// Usage Example:
//
//	// Create a counter with a store backend
//	seq, err := counter.NewSequenceCounter(store, counter.DefaultOptions())
//	if err != nil {
//	    // Handle error
//	}
//
//	// Draw IDs (the sequence is created on first use)
//	id, err := seq.GenerateID("orders") // 2 with default options
//	id, err = seq.GenerateID("orders")  // 3
//
//	// Start a sequence at a chosen value
//	err = seq.SetInitialValue("invoices", 1000)
//	id, err = seq.GenerateID("invoices") // 1001
//
// Performance Impact:
//
//	GenerateID requires two store operations (UpsertIfAbsent + IncrementAndGet),
//	SetInitialValue and Exists one each. The performance characteristics
//	therefore depend primarily on the underlying store implementation.
package counter
