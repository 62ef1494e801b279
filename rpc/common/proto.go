package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ValentinKolb/dSEQ/lib/counter"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key       string `json:"key,omitempty"`       // Counter key or sequence name
	Namespace string `json:"namespace,omitempty"` // Used for: sequence operations
	Value     int64  `json:"value,omitempty"`     // Counter value, initial value or generated id
	Delta     int64  `json:"delta,omitempty"`     // Used for: Increment (request), Next (request, as step)

	// Response only fields
	Ok   bool      `json:"ok,omitempty"`   // Used for: Find, Has, Increment, Exists responses
	Err  string    `json:"err,omitempty"`  // Empty if no error, otherwise contains the error message
	Code ErrorCode `json:"code,omitempty"` // Typed error classification, ErrCodeNone if no error

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Unused, can be used for additional Adapters
}

// --------------------------------------------------------------------------
// Error Codes
// --------------------------------------------------------------------------

// ErrorCode classifies an error so the typed taxonomy of the counter package
// survives the trip over the wire.
type ErrorCode uint64

const (
	ErrCodeNone             ErrorCode = iota // No error
	ErrCodeInternal                          // Unclassified server-side error
	ErrCodeInvalidArgument                   // counter.InvalidArgumentError
	ErrCodeCounterMissing                    // counter.CounterMissingError
	ErrCodeStoreUnavailable                  // counter.StoreUnavailableError
)

// ErrorCodeOf classifies an error into its wire code.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeNone
	}
	var (
		invalidArg  *counter.InvalidArgumentError
		missing     *counter.CounterMissingError
		unavailable *counter.StoreUnavailableError
	)
	switch {
	case errors.As(err, &invalidArg):
		return ErrCodeInvalidArgument
	case errors.As(err, &missing):
		return ErrCodeCounterMissing
	case errors.As(err, &unavailable):
		return ErrCodeStoreUnavailable
	default:
		return ErrCodeInternal
	}
}

// ErrorFromWire reconstructs a typed error from a wire code and message.
// The key parameter names the sequence a CounterMissingError refers to.
func ErrorFromWire(code ErrorCode, msg, key string) error {
	switch code {
	case ErrCodeNone:
		return nil
	case ErrCodeInvalidArgument:
		return &counter.InvalidArgumentError{Reason: msg}
	case ErrCodeCounterMissing:
		return &counter.CounterMissingError{Name: key}
	case ErrCodeStoreUnavailable:
		return &counter.StoreUnavailableError{Op: "rpc", Err: errors.New(msg)}
	default:
		return errors.New(msg)
	}
}

// setErr fills the error fields of a response message.
func (m *Message) setErr(err error) *Message {
	if err != nil {
		m.Err = err.Error()
		m.Code = ErrorCodeOf(err)
	}
	return m
}

// --------------------------------------------------------------------------
// Message Factory Functions (counter store operations)
// --------------------------------------------------------------------------

// NewUpsertRequest creates a new Upsert request
func NewUpsertRequest(key string, value int64) *Message {
	return &Message{
		MsgType: MsgTCTRUpsert,
		Key:     key,
		Value:   value,
	}
}

// NewUpsertResponse creates a new Upsert response
func NewUpsertResponse(err error) *Message {
	return (&Message{MsgType: MsgTCTRUpsert}).setErr(err)
}

// NewUpsertIfAbsentRequest creates a new UpsertIfAbsent request
func NewUpsertIfAbsentRequest(key string, value int64) *Message {
	return &Message{
		MsgType: MsgTCTRUpsertIfAbsent,
		Key:     key,
		Value:   value,
	}
}

// NewUpsertIfAbsentResponse creates a new UpsertIfAbsent response
func NewUpsertIfAbsentResponse(err error) *Message {
	return (&Message{MsgType: MsgTCTRUpsertIfAbsent}).setErr(err)
}

// NewIncrementRequest creates a new Increment request
func NewIncrementRequest(key string, delta int64) *Message {
	return &Message{
		MsgType: MsgTCTRIncrement,
		Key:     key,
		Delta:   delta,
	}
}

// NewIncrementResponse creates a new Increment response
func NewIncrementResponse(value int64, found bool, err error) *Message {
	return (&Message{
		MsgType: MsgTCTRIncrement,
		Value:   value,
		Ok:      found,
	}).setErr(err)
}

// NewFindRequest creates a new Find request
func NewFindRequest(key string) *Message {
	return &Message{
		MsgType: MsgTCTRFind,
		Key:     key,
	}
}

// NewFindResponse creates a new Find response
func NewFindResponse(value int64, found bool, err error) *Message {
	return (&Message{
		MsgType: MsgTCTRFind,
		Value:   value,
		Ok:      found,
	}).setErr(err)
}

// NewHasRequest creates a new Has request
func NewHasRequest(key string) *Message {
	return &Message{
		MsgType: MsgTCTRHas,
		Key:     key,
	}
}

// NewHasResponse creates a new Has response
func NewHasResponse(found bool, err error) *Message {
	return (&Message{
		MsgType: MsgTCTRHas,
		Ok:      found,
	}).setErr(err)
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(key string) *Message {
	return &Message{
		MsgType: MsgTCTRDelete,
		Key:     key,
	}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(err error) *Message {
	return (&Message{MsgType: MsgTCTRDelete}).setErr(err)
}

// --------------------------------------------------------------------------
// Message Factory Functions (sequence operations)
// --------------------------------------------------------------------------

// NewNextRequest creates a new Next request drawing one id from the named
// sequence. The step and namespace configure the server-side counter.
func NewNextRequest(name, namespace string, step int64) *Message {
	return &Message{
		MsgType:   MsgTSEQNext,
		Key:       name,
		Namespace: namespace,
		Delta:     step,
	}
}

// NewNextResponse creates a new Next response
func NewNextResponse(id int64, err error) *Message {
	return (&Message{
		MsgType: MsgTSEQNext,
		Value:   id,
	}).setErr(err)
}

// NewInitRequest creates a new Init request setting the initial value of the
// named sequence.
func NewInitRequest(name, namespace string, initialValue int64) *Message {
	return &Message{
		MsgType:   MsgTSEQInit,
		Key:       name,
		Namespace: namespace,
		Value:     initialValue,
	}
}

// NewInitResponse creates a new Init response
func NewInitResponse(err error) *Message {
	return (&Message{MsgType: MsgTSEQInit}).setErr(err)
}

// NewExistsRequest creates a new Exists request
func NewExistsRequest(name, namespace string) *Message {
	return &Message{
		MsgType:   MsgTSEQExists,
		Key:       name,
		Namespace: namespace,
	}
}

// NewExistsResponse creates a new Exists response
func NewExistsResponse(found bool, err error) *Message {
	return (&Message{
		MsgType: MsgTSEQExists,
		Ok:      found,
	}).setErr(err)
}

// --------------------------------------------------------------------------
// Message Factory Functions (general)
// --------------------------------------------------------------------------

// NewCustomRequest creates a new Custom request
func NewCustomRequest(meta []byte) *Message {
	return &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
}

// NewCustomResponse creates a new Custom response
func NewCustomResponse(meta []byte, err error) *Message {
	return (&Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}).setErr(err)
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
		Code:    ErrCodeInternal,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTCTRUpsert:
		return "upsert"
	case MsgTCTRUpsertIfAbsent:
		return "upsertIfAbsent"
	case MsgTCTRIncrement:
		return "increment"
	case MsgTCTRFind:
		return "find"
	case MsgTCTRHas:
		return "has"
	case MsgTCTRDelete:
		return "delete"
	case MsgTSEQNext:
		return "next"
	case MsgTSEQInit:
		return "init"
	case MsgTSEQExists:
		return "exists"
	case MsgTCustom:
		return "custom"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "upsert":
		*t = MsgTCTRUpsert
	case "upsertIfAbsent":
		*t = MsgTCTRUpsertIfAbsent
	case "increment":
		*t = MsgTCTRIncrement
	case "find":
		*t = MsgTCTRFind
	case "has":
		*t = MsgTCTRHas
	case "delete":
		*t = MsgTCTRDelete
	case "next":
		*t = MsgTSEQNext
	case "init":
		*t = MsgTSEQInit
	case "exists":
		*t = MsgTSEQExists
	case "custom":
		*t = MsgTCustom
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// ICounterStore operations

	MsgTCTRUpsert         // Insert or update a counter
	MsgTCTRUpsertIfAbsent // Insert a counter if it does not exist
	MsgTCTRIncrement      // Atomically add a delta to a counter
	MsgTCTRFind           // Get a counter value by key
	MsgTCTRHas            // Check if a counter exists
	MsgTCTRDelete         // Delete a counter

	// ISequenceCounter operations

	MsgTSEQNext   // Draw the next id from a sequence
	MsgTSEQInit   // Set the initial value of a sequence
	MsgTSEQExists // Check if a sequence exists

	// Custom operations

	MsgTCustom // Custom operation type
)
