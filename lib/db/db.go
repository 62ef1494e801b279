package db

import "io"

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplAspen  Implementation = "aspen"
	ImplSQLite Implementation = "sqlite"
)

// Feature represents database features as bit flags
type Feature uint64

const (
	FeaturePut         Feature = 1 << iota // Support for Put operations
	FeaturePutIfAbsent                     // Support for PutIfAbsent operations
	FeatureIncrement                       // Support for IncrementAndGet operations
	FeatureGet                             // Support for Get operations
	FeatureHas                             // Support for Has operations
	FeatureDelete                          // Support for Delete operations
	FeatureSave                            // Support for Save operations
	FeatureLoad                            // Support for Load operations
)

func (f Feature) String() string {
	switch f {
	case FeaturePut:
		return "Put"
	case FeaturePutIfAbsent:
		return "PutIfAbsent"
	case FeatureIncrement:
		return "IncrementAndGet"
	case FeatureGet:
		return "Get"
	case FeatureHas:
		return "Has"
	case FeatureDelete:
		return "Delete"
	case FeatureSave:
		return "Save"
	case FeatureLoad:
		return "Load"
	default:
		return "Unknown"
	}
}

type DatabaseInfo struct {
	Counters          int            `json:"counters"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// CounterDB defines an interface for counter database implementations.
// A counter database maps a string key to a single signed 64-bit value and
// supports an atomic read-modify-write increment on that value.
// Any implementation of this interface must manage keys in a consistent way.
// Implementations can vary in their feature support, which can be queried
// with SupportsFeature.
type CounterDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Put inserts or updates the counter with the given key and value.
	// If the key already exists, the old value is overwritten.
	// The writeIndex parameter is used as a logical timestamp for the entry,
	// writes with an index older than the stored entry are ignored.
	Put(key string, value int64, writeIndex uint64)

	// PutIfAbsent inserts the counter with the given key and value only if no
	// counter for the key exists. If the key already exists, the old value is
	// kept, no matter the value parameter. This operation is atomic with
	// respect to all other write operations on the same key.
	PutIfAbsent(key string, value int64, writeIndex uint64)

	// IncrementAndGet atomically adds delta to the value of the counter with
	// the given key and returns the post-increment value. The boolean return
	// value indicates whether a counter for the key existed; if it did not,
	// no counter is created and the int64 return value is zero.
	IncrementAndGet(key string, delta int64, writeIndex uint64) (int64, bool)

	// Delete removes the counter with the specified key.
	Delete(key string, writeIndex uint64)

	// --------------------------------------------------------------------------
	// Read Operations
	// --------------------------------------------------------------------------

	// Get returns the value of the counter with the given key. The boolean
	// return value indicates whether a counter for the key was found.
	Get(key string) (int64, bool)

	// Has returns whether a counter for the given key exists.
	Has(key string) bool

	// --------------------------------------------------------------------------
	// Persistence Operations
	// --------------------------------------------------------------------------

	// Save persists all counters to the writer (used for raft snapshots).
	Save(w io.Writer) error

	// Load restores all counters from the reader, replacing the current state.
	Load(r io.Reader) error

	// --------------------------------------------------------------------------
	// Features and Metadata
	// --------------------------------------------------------------------------

	// GetInfo returns metadata about the database.
	// It is not guaranteed that all fields are filled in or up-to-date!
	GetInfo() DatabaseInfo

	// SupportsFeature checks if this implementation supports a specific feature
	SupportsFeature(feature Feature) bool

	// SetWriteIdx updates the current logical write index of the database.
	// The index only ever increases, older values are ignored.
	SetWriteIdx(newIdx uint64)

	// WriteIdx returns the current logical write index of the database
	WriteIdx() uint64

	// Close releases all resources held by the database
	Close() error
}
