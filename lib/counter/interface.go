package counter

// ISequenceCounter defines the interface for a monotonic sequence provider.
// All processes sharing the same backing store draw from the same sequences.
type ISequenceCounter interface {
	// GenerateID returns the next value of the named sequence and advances it
	// by the configured step. If the sequence does not exist yet, it is created
	// atomically with the configured initial value before the first draw, so
	// the first call returns initial value + step.
	GenerateID(name string) (id int64, err error)

	// SetInitialValue creates the named sequence with the given value or
	// resets an existing one to it. The value must not be negative.
	SetInitialValue(name string, initialValue int64) (err error)

	// Exists reports whether the named sequence has been created.
	Exists(name string) (found bool, err error)
}
