package common

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/dSEQ/lib/counter"
)

func TestErrorCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ErrCodeNone},
		{"invalid argument", &counter.InvalidArgumentError{Reason: "bad"}, ErrCodeInvalidArgument},
		{"counter missing", &counter.CounterMissingError{Name: "orders"}, ErrCodeCounterMissing},
		{"store unavailable", &counter.StoreUnavailableError{Op: "Upsert", Err: errors.New("down")}, ErrCodeStoreUnavailable},
		{"unclassified", errors.New("boom"), ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCodeOf(tt.err); got != tt.want {
				t.Errorf("ErrorCodeOf(%v) = %d, expected %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorCodeOfWrapped(t *testing.T) {
	// Classification must see through wrapping
	err := &counter.StoreUnavailableError{Op: "IncrementAndGet", Err: errors.New("down")}
	if got := ErrorCodeOf(err); got != ErrCodeStoreUnavailable {
		t.Errorf("ErrorCodeOf(wrapped) = %d, expected %d", got, ErrCodeStoreUnavailable)
	}
}

func TestErrorFromWire(t *testing.T) {
	// None -> nil
	if err := ErrorFromWire(ErrCodeNone, "", ""); err != nil {
		t.Errorf("expected nil error for ErrCodeNone, got %v", err)
	}

	// Invalid argument
	err := ErrorFromWire(ErrCodeInvalidArgument, "step must not be zero", "")
	var invalidArg *counter.InvalidArgumentError
	if !errors.As(err, &invalidArg) {
		t.Errorf("expected InvalidArgumentError, got %T", err)
	}

	// Counter missing carries the sequence name
	err = ErrorFromWire(ErrCodeCounterMissing, "gone", "orders")
	var missing *counter.CounterMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected CounterMissingError, got %T", err)
	}
	if missing.Name != "orders" {
		t.Errorf("CounterMissingError.Name = %q, expected %q", missing.Name, "orders")
	}

	// Store unavailable
	err = ErrorFromWire(ErrCodeStoreUnavailable, "down", "")
	var unavailable *counter.StoreUnavailableError
	if !errors.As(err, &unavailable) {
		t.Errorf("expected StoreUnavailableError, got %T", err)
	}

	// Internal code yields a plain error
	err = ErrorFromWire(ErrCodeInternal, "boom", "")
	if err == nil || err.Error() != "boom" {
		t.Errorf("expected plain error %q, got %v", "boom", err)
	}
}

func TestErrorRoundTrip(t *testing.T) {
	// A typed error classified on the server and rebuilt on the client must
	// keep its type
	orig := &counter.CounterMissingError{Name: "orders"}

	code := ErrorCodeOf(orig)
	rebuilt := ErrorFromWire(code, orig.Error(), "orders")

	var missing *counter.CounterMissingError
	if !errors.As(rebuilt, &missing) || missing.Name != "orders" {
		t.Errorf("round trip lost error type: got %v", rebuilt)
	}
}

func TestSetErr(t *testing.T) {
	msg := (&Message{MsgType: MsgTSEQNext}).setErr(&counter.InvalidArgumentError{Reason: "bad"})
	if msg.Err == "" || msg.Code != ErrCodeInvalidArgument {
		t.Errorf("setErr produced err=%q code=%d", msg.Err, msg.Code)
	}

	msg = (&Message{MsgType: MsgTSEQNext}).setErr(nil)
	if msg.Err != "" || msg.Code != ErrCodeNone {
		t.Errorf("setErr(nil) produced err=%q code=%d", msg.Err, msg.Code)
	}
}
