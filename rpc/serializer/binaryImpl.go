package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/dSEQ/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey       byte = 1 << 0
	hasNamespace byte = 1 << 1
	hasValue     byte = 1 << 2
	hasDelta     byte = 1 << 3
	hasOk        byte = 1 << 4
	hasErr       byte = 1 << 5
	hasCode      byte = 1 << 6
	hasMeta      byte = 1 << 7
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	totalSize := b.sizeBytes(msg)
	result := make([]byte, totalSize)

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags byte
	var flags byte = 0

	// Set position for writing
	pos := 2 // Start after MsgType and flags

	// Handle Key
	if msg.Key != "" {
		flags |= hasKey
		keyBytes := []byte(msg.Key)
		keyLen := len(keyBytes)

		// Write key length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(keyLen))
		pos += 4

		// Write key data
		copy(result[pos:pos+keyLen], keyBytes)
		pos += keyLen
	}

	// Handle Namespace
	if msg.Namespace != "" {
		flags |= hasNamespace
		nsBytes := []byte(msg.Namespace)
		nsLen := len(nsBytes)

		// Write namespace length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(nsLen))
		pos += 4

		// Write namespace data
		copy(result[pos:pos+nsLen], nsBytes)
		pos += nsLen
	}

	// Handle Value (int64 as two's complement)
	if msg.Value != 0 {
		flags |= hasValue
		binary.BigEndian.PutUint64(result[pos:pos+8], uint64(msg.Value))
		pos += 8
	}

	// Handle Delta (int64 as two's complement)
	if msg.Delta != 0 {
		flags |= hasDelta
		binary.BigEndian.PutUint64(result[pos:pos+8], uint64(msg.Delta))
		pos += 8
	}

	// Handle Ok
	if msg.Ok {
		flags |= hasOk
		result[pos] = 1
		pos += 1
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		errBytes := []byte(msg.Err)
		errLen := len(errBytes)

		// Write error length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(errLen))
		pos += 4

		// Write error data
		copy(result[pos:pos+errLen], errBytes)
		pos += errLen
	}

	// Handle Code
	if msg.Code != common.ErrCodeNone {
		flags |= hasCode
		binary.BigEndian.PutUint64(result[pos:pos+8], uint64(msg.Code))
		pos += 8
	}

	// Handle Meta
	if msg.Meta != nil {
		flags |= hasMeta
		metaLen := len(msg.Meta)

		// Write meta length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(metaLen))
		pos += 4

		// Write meta data
		if metaLen > 0 {
			copy(result[pos:pos+metaLen], msg.Meta)
			pos += metaLen
		}
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	// Read message type
	msg.MsgType = common.MessageType(data[0])

	// Read flags
	flags := data[1]

	// Initialize read position
	pos := 2

	// Read Key if present
	if flags&hasKey != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for key length")
		}

		// Read key length
		keyLen := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		if pos+int(keyLen) > len(data) {
			return fmt.Errorf("data too short for key data")
		}

		// Read key data
		msg.Key = string(data[pos : pos+int(keyLen)])
		pos += int(keyLen)
	} else {
		msg.Key = ""
	}

	// Read Namespace if present
	if flags&hasNamespace != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for namespace length")
		}

		// Read namespace length
		nsLen := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		if pos+int(nsLen) > len(data) {
			return fmt.Errorf("data too short for namespace data")
		}

		// Read namespace data
		msg.Namespace = string(data[pos : pos+int(nsLen)])
		pos += int(nsLen)
	} else {
		msg.Namespace = ""
	}

	// Read Value if present
	if flags&hasValue != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for Value")
		}

		msg.Value = int64(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
	} else {
		msg.Value = 0
	}

	// Read Delta if present
	if flags&hasDelta != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for Delta")
		}

		msg.Delta = int64(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
	} else {
		msg.Delta = 0
	}

	// Read Ok if present
	if flags&hasOk != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for Ok flag")
		}

		msg.Ok = data[pos] != 0
		pos += 1
	} else {
		msg.Ok = false
	}

	// Read Err if present
	if flags&hasErr != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for error length")
		}

		// Read error length
		errLen := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		if pos+int(errLen) > len(data) {
			return fmt.Errorf("data too short for error data")
		}

		// Read error data
		msg.Err = string(data[pos : pos+int(errLen)])
		pos += int(errLen)
	} else {
		msg.Err = ""
	}

	// Read Code if present
	if flags&hasCode != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for Code")
		}

		msg.Code = common.ErrorCode(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
	} else {
		msg.Code = common.ErrCodeNone
	}

	// Read Meta if present
	if flags&hasMeta != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for meta length")
		}

		// Read meta length
		metaLen := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		if pos+int(metaLen) > len(data) {
			return fmt.Errorf("data too short for meta data")
		}

		// Read metadata - create an empty slice (not nil) if length is 0
		// Allocate only if needed
		if msg.Meta == nil || cap(msg.Meta) < int(metaLen) {
			msg.Meta = make([]byte, metaLen)
		} else {
			msg.Meta = msg.Meta[:metaLen]
		}

		if metaLen > 0 {
			copy(msg.Meta, data[pos:pos+int(metaLen)])
		}
		pos += int(metaLen)
	} else {
		msg.Meta = nil
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	// Add sizes for fields that require length encoding
	if msg.Key != "" {
		size += 4 + len(msg.Key) // 4 bytes for length + key string
	}
	if msg.Namespace != "" {
		size += 4 + len(msg.Namespace) // 4 bytes for length + namespace string
	}
	if msg.Value != 0 {
		size += 8 // int64
	}
	if msg.Delta != 0 {
		size += 8 // int64
	}
	if msg.Ok {
		size += 1 // 1 byte for boolean
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err) // 4 bytes for length + error string
	}
	if msg.Code != common.ErrCodeNone {
		size += 8 // uint64
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta) // 4 bytes for length + meta bytes
	}

	return size
}
