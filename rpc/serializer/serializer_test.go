package serializer

import (
	"reflect"
	"testing"

	"github.com/ValentinKolb/dSEQ/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Upsert request
		{
			MsgType: common.MsgTCTRUpsert,
			Key:     "test-key",
			Value:   42,
		},

		// Increment request with a negative delta
		{
			MsgType: common.MsgTCTRIncrement,
			Key:     "test-key",
			Delta:   -5,
		},

		// Increment response
		{
			MsgType: common.MsgTCTRIncrement,
			Value:   43,
			Ok:      true,
		},

		// Next request
		{
			MsgType:   common.MsgTSEQNext,
			Key:       "orders",
			Namespace: "collection.ids",
			Delta:     1,
		},

		// Error response with typed code
		{
			MsgType: common.MsgTError,
			Err:     "test error message",
			Code:    common.ErrCodeStoreUnavailable,
		},

		// Message with all fields filled
		{
			MsgType:   common.MsgTSEQInit,
			Key:       "test-sequence",
			Namespace: "test.ids",
			Value:     1000,
			Delta:     2,
			Ok:        true,
			Err:       "",
			Meta:      []byte("test-meta-data"),
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				// Compare
				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestMessageTypes tests each message type with each serializer
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			// Test each message type (don't test for MsgTUnknown since this should raise an error)
			for msgType := common.MsgTSuccess; msgType <= common.MsgTCustom; msgType++ {
				msg := common.Message{MsgType: msgType}

				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message type %s: %v", msgType.String(), err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message type %s: %v", msgType.String(), err)
					continue
				}

				// Check type
				if result.MsgType != msgType {
					t.Errorf("Message type doesn't match after round trip: Expected %s, got %s",
						msgType.String(), result.MsgType.String())
				}
			}
		})
	}
}

// TestBinarySerializerSpecific tests specific edge cases for the binary serializer
func TestBinarySerializerSpecific(t *testing.T) {
	serializer := NewBinarySerializer()

	// Test cases for empty or zero values
	testCases := []struct {
		name string
		msg  common.Message
	}{
		{
			name: "Empty message",
			msg:  common.Message{},
		},
		{
			name: "Message with empty strings and zero values",
			msg: common.Message{
				MsgType:   common.MsgTCTRUpsert,
				Key:       "",
				Namespace: "",
				Value:     0,
				Delta:     0,
				Ok:        false,
				Err:       "",
				Meta:      []byte{},
			},
		},
		{
			name: "Message with empty strings but Ok=true",
			msg: common.Message{
				MsgType: common.MsgTCTRFind,
				Key:     "",
				Ok:      true,
				Value:   0,
			},
		},
		{
			name: "Message with negative value",
			msg: common.Message{
				MsgType: common.MsgTCTRUpsert,
				Key:     "test",
				Value:   -9223372036854775808,
			},
		},
		{
			name: "Message with empty meta slice but not nil",
			msg: common.Message{
				MsgType: common.MsgTCustom,
				Meta:    []byte{},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Serialize
			data, err := serializer.Serialize(tc.msg)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			// Deserialize
			var result common.Message
			err = serializer.Deserialize(data, &result)
			if err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			// Verify scalar fields
			if tc.msg.Key != result.Key {
				t.Errorf("Key mismatch: expected '%s', got '%s'", tc.msg.Key, result.Key)
			}
			if tc.msg.Namespace != result.Namespace {
				t.Errorf("Namespace mismatch: expected '%s', got '%s'", tc.msg.Namespace, result.Namespace)
			}
			if tc.msg.Value != result.Value {
				t.Errorf("Value mismatch: expected %d, got %d", tc.msg.Value, result.Value)
			}
			if tc.msg.Delta != result.Delta {
				t.Errorf("Delta mismatch: expected %d, got %d", tc.msg.Delta, result.Delta)
			}
			if tc.msg.Ok != result.Ok {
				t.Errorf("Ok mismatch: expected %v, got %v", tc.msg.Ok, result.Ok)
			}
			if tc.msg.Err != result.Err {
				t.Errorf("Err mismatch: expected '%s', got '%s'", tc.msg.Err, result.Err)
			}
			if tc.msg.Code != result.Code {
				t.Errorf("Code mismatch: expected %v, got %v", tc.msg.Code, result.Code)
			}
			if tc.msg.MsgType != result.MsgType {
				t.Errorf("MsgType mismatch: expected %v, got %v", tc.msg.MsgType, result.MsgType)
			}

			// Special handling for byte slices that may be nil or empty
			if (tc.msg.Meta == nil) != (result.Meta == nil) {
				t.Errorf("Meta nil/non-nil mismatch: expected %v, got %v", tc.msg.Meta, result.Meta)
			} else if tc.msg.Meta != nil && !reflect.DeepEqual(tc.msg.Meta, result.Meta) {
				t.Errorf("Meta content mismatch: expected %v, got %v", tc.msg.Meta, result.Meta)
			}
		})
	}
}

// TestBinarySerializerMalformed tests that the binary serializer rejects truncated data
func TestBinarySerializerMalformed(t *testing.T) {
	serializer := NewBinarySerializer()

	// a valid message, then truncate it at every possible offset
	msg := common.Message{
		MsgType:   common.MsgTSEQNext,
		Key:       "orders",
		Namespace: "collection.ids",
		Delta:     1,
		Err:       "some error",
		Code:      common.ErrCodeInternal,
	}
	data, err := serializer.Serialize(msg)
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}

	for cut := 0; cut < len(data); cut++ {
		var result common.Message
		if err := serializer.Deserialize(data[:cut], &result); err == nil && cut < 2 {
			t.Errorf("expected error for truncated header (len=%d)", cut)
		}
	}
}

// TestErrorCodeRoundTrip tests that typed errors survive serialization via the wire code
func TestErrorCodeRoundTrip(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			msg := *common.NewNextResponse(0, common.ErrorFromWire(common.ErrCodeCounterMissing, "", "orders"))

			data, err := serializer.Serialize(msg)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}
			var result common.Message
			if err := serializer.Deserialize(data, &result); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			if result.Code != common.ErrCodeCounterMissing {
				t.Errorf("error code lost in transit: got %v", result.Code)
			}
		})
	}
}
