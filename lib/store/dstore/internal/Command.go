package internal

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/dSEQ/lib/db"
)

// CommandType defines the possible operations for the state machine.
type CommandType uint8

const (
	CommandTUpsert         CommandType = iota // Insert or update a counter.
	CommandTUpsertIfAbsent                    // Insert a counter if it does not exist.
	CommandTIncrement                         // Atomically add a delta to a counter.
	CommandTDelete                            // Delete a counter.
)

func (ct CommandType) String() string {
	switch ct {
	case CommandTUpsert:
		return "Upsert"
	case CommandTUpsertIfAbsent:
		return "UpsertIfAbsent"
	case CommandTIncrement:
		return "Increment"
	case CommandTDelete:
		return "Delete"
	default:
		return fmt.Sprintf("Unknown(%d)", ct)
	}
}

// ToDBFeature converts a CommandType to the corresponding db.Feature.
// This can be used for checking if the database supports a certain operation.
func (ct CommandType) ToDBFeature() (db.Feature, error) {
	switch ct {
	case CommandTUpsert:
		return db.FeaturePut, nil
	case CommandTUpsertIfAbsent:
		return db.FeaturePutIfAbsent, nil
	case CommandTIncrement:
		return db.FeatureIncrement, nil
	case CommandTDelete:
		return db.FeatureDelete, nil
	default:
		return 0, fmt.Errorf("unknown command type %d", ct)
	}
}

// Command represents a command to be executed by the state machine (a single entry in the raft log).
// Value holds the counter value for upsert commands and the delta for increment commands.
type Command struct {
	Type  CommandType
	Key   string
	Value int64
}

// SizeBytes returns the exact number of bytes needed to serialize this command
func (command *Command) SizeBytes() int {
	return 1 + 8 + 4 + len(command.Key) // Type + Value + KeyLen + Key
}

// Serialize serializes a command into a byte array with the format:
// 1 byte for operation type,
// 8 bytes for the value/delta (int64 as two's complement, big endian),
// 4 bytes for key length (big endian),
// N bytes for key data
func (command *Command) Serialize() []byte {
	// Use SizeBytes to calculate the total size needed
	totalSize := command.SizeBytes()

	result := make([]byte, totalSize)

	// Set operation type
	result[0] = byte(command.Type)

	// Set value (two's complement keeps negative deltas intact)
	binary.BigEndian.PutUint64(result[1:9], uint64(command.Value))

	// Set key length (4 bytes, big endian)
	binary.BigEndian.PutUint32(result[9:13], uint32(len(command.Key)))

	// Copy key bytes
	copy(result[13:], command.Key)

	return result
}

// Deserialize extracts all Command fields from a byte array.
func (command *Command) Deserialize(data []byte) error {
	// Minimum size: 1 (Type) + 8 (Value) + 4 (KeyLen) = 13 bytes
	if len(data) < 13 {
		return fmt.Errorf("data too short for command")
	}

	// Extract operation type
	command.Type = CommandType(data[0])

	// Extract value
	command.Value = int64(binary.BigEndian.Uint64(data[1:9]))

	// Extract key length
	keyLen := binary.BigEndian.Uint32(data[9:13])

	// Validate key length
	if len(data) < 13+int(keyLen) {
		return fmt.Errorf("data too short for key of length %d", keyLen)
	}

	// Extract key
	command.Key = string(data[13 : 13+keyLen])

	return nil
}
