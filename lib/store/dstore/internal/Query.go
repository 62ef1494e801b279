package internal

// QueryType defines the possible queries for the state machine.
type QueryType uint8

const (
	QueryTFind      QueryType = iota // Retrieve a counter value by key.
	QueryTHas                        // Check if a counter exists.
	QueryTGetDBInfo                  // Retrieve metadata about the database underlying the machine.
)

func (q QueryType) String() string {
	switch q {
	case QueryTFind:
		return "Find"
	case QueryTHas:
		return "Has"
	case QueryTGetDBInfo:
		return "GetDBInfo"
	default:
		return "Unknown"
	}
}

// Query defines the structure for lookup requests (read-only) sent via SyncRead or ReadStale
type Query struct {
	Type QueryType // The type of Query to perform.
	Key  string    // The key for the Query (emtpy for some queries).
}

// QueryResult is the result of a QueryTFind operation.
// All other query results are primitive types or predefined structs (bool, db.DatabaseInfo).
type QueryResult struct {
	Ok    bool
	Value int64
}
