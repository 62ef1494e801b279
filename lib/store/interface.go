package store

import (
	"fmt"

	"github.com/ValentinKolb/dSEQ/lib/db"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// DBFactory is a function type that creates a new db used by the store.
// This is used to abstract the creation of the db from the store implementation.
type DBFactory func() db.CounterDB

// ICounterStore is the generic interface for interacting with a counter store.
// All write operations return only a *Error (nil on success),
// while read operations return the requested data along with a *Error (nil on success).
type ICounterStore interface {
	// Upsert inserts or updates a counter with the given value.
	Upsert(key string, value int64) (err error)
	// UpsertIfAbsent inserts a counter with the given value if the key does not exist.
	// If the key already exists, the old value is not updated.
	// No error is returned if the key already exists.
	UpsertIfAbsent(key string, value int64) (err error)
	// IncrementAndGet atomically adds delta to the counter and returns the new value.
	// The boolean return value indicates whether the counter was found. A missing
	// counter is not created.
	IncrementAndGet(key string, delta int64) (value int64, found bool, err error)
	// Find returns the current value of a counter. The boolean return value
	// indicates whether a counter for the key was found.
	Find(key string) (value int64, found bool, err error)
	// Has returns whether a counter exists in the store.
	Has(key string) (found bool, err error)
	// Delete removes a counter. The key should be removed from the store.
	Delete(key string) (err error)
	// GetDBInfo returns metadata about the database underlying the store.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	GetDBInfo() (info db.DatabaseInfo, err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInternalError:
		errorCode = "InternalError"
	case RetCUnsupportedOperation:
		errorCode = "UnsupportedOperation"
	case RetCInvalidOperation:
		errorCode = "InvalidOperation"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("CounterStoreError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new CounterStoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by underlying database.
	RetCInvalidOperation                    // 3: Invalid operation.
)
