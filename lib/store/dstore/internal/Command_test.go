package internal

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// TestSizeBytes tests the SizeBytes method
func TestSizeBytes(t *testing.T) {
	tests := []struct {
		name     string
		command  Command
		expected int
	}{
		{
			name: "Command with key",
			command: Command{
				Type:  CommandTUpsert,
				Key:   "testkey",
				Value: 100,
			},
			expected: 1 + 8 + 4 + 7, // Type + Value + KeyLen + Key
		},
		{
			name: "Command with empty key",
			command: Command{
				Type:  CommandTUpsert,
				Key:   "",
				Value: 100,
			},
			expected: 1 + 8 + 4 + 0, // Type + Value + KeyLen + Key
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := tt.command.SizeBytes()
			if size != tt.expected {
				t.Errorf("SizeBytes() = %v, want %v", size, tt.expected)
			}
		})
	}
}

// TestSerializeDeserialize tests both Serialize and Deserialize methods
func TestSerializeDeserialize(t *testing.T) {
	tests := []struct {
		name    string
		command Command
	}{
		{
			name: "Standard upsert command",
			command: Command{
				Type:  CommandTUpsert,
				Key:   "testkey",
				Value: 100,
			},
		},
		{
			name: "Delete command",
			command: Command{
				Type:  CommandTDelete,
				Key:   "testkey",
				Value: 0,
			},
		},
		{
			name: "Command with empty key",
			command: Command{
				Type:  CommandTUpsertIfAbsent,
				Key:   "",
				Value: 1,
			},
		},
		{
			name: "Increment with negative delta",
			command: Command{
				Type:  CommandTIncrement,
				Key:   "testkey",
				Value: -42,
			},
		},
		{
			name: "Command with extreme values",
			command: Command{
				Type:  CommandTUpsert,
				Key:   "testkey",
				Value: -9223372036854775808, // Min int64
			},
		},
		{
			name: "Command with max value",
			command: Command{
				Type:  CommandTUpsert,
				Key:   "testkey",
				Value: 9223372036854775807, // Max int64
			},
		},
		{
			name: "Command with Unicode key",
			command: Command{
				Type:  CommandTIncrement,
				Key:   "你好世界", // Hello World in Chinese
				Value: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Serialize
			data := tt.command.Serialize()

			// Deserialize into a new command
			var newCommand Command
			err := newCommand.Deserialize(data)
			if err != nil {
				t.Fatalf("Deserialize() error = %v", err)
			}

			// Compare original and deserialized command
			if newCommand.Type != tt.command.Type {
				t.Errorf("Type mismatch: got %v, want %v", newCommand.Type, tt.command.Type)
			}
			if newCommand.Key != tt.command.Key {
				t.Errorf("Key mismatch: got %q, want %q", newCommand.Key, tt.command.Key)
			}
			if newCommand.Value != tt.command.Value {
				t.Errorf("Value mismatch: got %v, want %v", newCommand.Value, tt.command.Value)
			}

			// Verify that SizeBytes matches the serialized data length
			if tt.command.SizeBytes() != len(data) {
				t.Errorf("SizeBytes() = %d, but serialized data length = %d",
					tt.command.SizeBytes(), len(data))
			}
		})
	}
}

// TestDeserializeErrors tests error cases in Deserialize
func TestDeserializeErrors(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		expectedErr string
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectedErr: "data too short for command",
		},
		{
			name:        "Data too short (less than header)",
			data:        []byte{1, 2, 3, 4, 5},
			expectedErr: "data too short for command",
		},
		{
			name: "Invalid key length",
			data: func() []byte {
				data := make([]byte, 13) // Just the header
				data[0] = byte(CommandTUpsert)
				// Set key length to a large value that exceeds the data
				binary.BigEndian.PutUint32(data[9:13], 1000)
				return data
			}(),
			expectedErr: "data too short for key of length 1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cmd Command
			err := cmd.Deserialize(tt.data)

			// Check if we got the expected error
			if err == nil {
				t.Fatalf("Expected error but got nil")
			}
			if err.Error() != tt.expectedErr {
				t.Errorf("Expected error %q, got %q", tt.expectedErr, err.Error())
			}
		})
	}
}

// TestBinaryFormat tests the exact binary format of serialized commands
func TestBinaryFormat(t *testing.T) {
	// Create a command
	cmd := Command{
		Type:  CommandTIncrement,
		Key:   "testkey",
		Value: 12345,
	}

	// Manually create the expected byte array
	expected := make([]byte, cmd.SizeBytes())
	// Type
	expected[0] = byte(CommandTIncrement)
	// Value
	binary.BigEndian.PutUint64(expected[1:9], 12345)
	// Key length
	binary.BigEndian.PutUint32(expected[9:13], 7) // "testkey" length
	// Key
	copy(expected[13:20], []byte("testkey"))

	// Serialize and compare
	serialized := cmd.Serialize()
	if !bytes.Equal(serialized, expected) {
		t.Errorf("Binary format does not match:\nGot:      %v\nExpected: %v", serialized, expected)
	}
}
