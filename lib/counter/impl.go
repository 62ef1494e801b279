package counter

import (
	"fmt"

	"github.com/ValentinKolb/dSEQ/lib/store"
)

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures a sequence counter.
type Options struct {
	// Step is the amount each GenerateID call advances a sequence by.
	Step int64
	// Namespace prefixes all sequence keys in the backing store, isolating
	// counters from other data sharing the store.
	Namespace string
	// InitialValue is the value a sequence is created with when GenerateID
	// encounters a sequence that does not exist yet.
	InitialValue int64
}

// DefaultOptions returns the default counter configuration:
// step 1, namespace "collection.ids", initial value 1.
func DefaultOptions() Options {
	return Options{
		Step:         1,
		Namespace:    "collection.ids",
		InitialValue: 1,
	}
}

// --------------------------------------------------------------------------
// Implementation
// --------------------------------------------------------------------------

type counterImpl struct {
	store store.ICounterStore
	opts  Options
}

// NewSequenceCounter creates a sequence counter on top of the given store.
// Passing the zero Options value is not supported; use DefaultOptions as a
// starting point. The store must not be nil, the step must not be zero and
// the initial value must not be negative.
func NewSequenceCounter(s store.ICounterStore, opts Options) (ISequenceCounter, error) {
	if s == nil {
		return nil, &InvalidArgumentError{Reason: "store must not be nil"}
	}
	if opts.Step == 0 {
		return nil, &InvalidArgumentError{Reason: "step must not be zero"}
	}
	if opts.InitialValue < 0 {
		return nil, &InvalidArgumentError{Reason: fmt.Sprintf("initial value must not be negative, got %d", opts.InitialValue)}
	}
	if opts.Namespace == "" {
		opts.Namespace = DefaultOptions().Namespace
	}
	return &counterImpl{
		store: s,
		opts:  opts,
	}, nil
}

// storageKey maps a sequence name to its key in the backing store.
func (c *counterImpl) storageKey(name string) string {
	return c.opts.Namespace + "/" + name
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (c *counterImpl) GenerateID(name string) (int64, error) {
	if name == "" {
		return 0, &InvalidArgumentError{Reason: "sequence name must not be empty"}
	}
	key := c.storageKey(name)

	// Create the sequence with the initial value if it does not exist yet.
	// This is atomic in the store, so two processes racing here end up with
	// exactly one created sequence and neither overwrites the other.
	if err := c.store.UpsertIfAbsent(key, c.opts.InitialValue); err != nil {
		return 0, &StoreUnavailableError{Op: "UpsertIfAbsent", Err: err}
	}

	value, found, err := c.store.IncrementAndGet(key, c.opts.Step)
	if err != nil {
		return 0, &StoreUnavailableError{Op: "IncrementAndGet", Err: err}
	}
	if !found {
		// Can only happen if the sequence was deleted between the two calls.
		return 0, &CounterMissingError{Name: name}
	}
	return value, nil
}

func (c *counterImpl) SetInitialValue(name string, initialValue int64) error {
	// Validate before touching the store so a rejected call leaves the
	// sequence untouched.
	if name == "" {
		return &InvalidArgumentError{Reason: "sequence name must not be empty"}
	}
	if initialValue < 0 {
		return &InvalidArgumentError{Reason: fmt.Sprintf("initial value must not be negative, got %d", initialValue)}
	}

	if err := c.store.Upsert(c.storageKey(name), initialValue); err != nil {
		return &StoreUnavailableError{Op: "Upsert", Err: err}
	}
	return nil
}

func (c *counterImpl) Exists(name string) (bool, error) {
	if name == "" {
		return false, &InvalidArgumentError{Reason: "sequence name must not be empty"}
	}

	found, err := c.store.Has(c.storageKey(name))
	if err != nil {
		return false, &StoreUnavailableError{Op: "Has", Err: err}
	}
	return found, nil
}
