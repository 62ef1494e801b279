package counter

import "fmt"

// --------------------------------------------------------------------------
// Error Types
// --------------------------------------------------------------------------

// InvalidArgumentError is returned when a caller-supplied argument violates the
// counter contract (empty sequence name, negative initial value, nil store).
// The backing store is never contacted when this error is returned.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Reason)
}

// CounterMissingError is returned when an operation requires a sequence that
// does not exist in the backing store.
type CounterMissingError struct {
	Name string
}

func (e *CounterMissingError) Error() string {
	return fmt.Sprintf("sequence %q does not exist, create it with SetInitialValue", e.Name)
}

// StoreUnavailableError wraps a failure of the backing store. The Op field
// names the store operation that failed.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}
