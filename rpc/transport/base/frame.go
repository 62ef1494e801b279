package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// Every message on the wire is a frame: a fixed-size header followed by the
// serialized payload. The header carries the shard the message is addressed
// to and the request id used to correlate a response with its request on a
// multiplexed connection.
const (
	frameShardOff   = 0
	frameRequestOff = 8
	frameLengthOff  = 16
	frameHeaderLen  = 20
)

// maxFramePayload caps the payload length accepted from the wire. Sequence
// and counter messages are a few hundred bytes at most, so anything near
// this limit indicates a corrupt header or a peer that does not speak the
// protocol.
const maxFramePayload = 16 << 20

// frameHeader is the decoded form of the fixed frame prefix.
type frameHeader struct {
	shardID   uint64
	requestID uint64
	length    uint32
}

// encode writes the header into dst, which must hold frameHeaderLen bytes.
// All fields are big endian.
func (h frameHeader) encode(dst []byte) {
	binary.BigEndian.PutUint64(dst[frameShardOff:], h.shardID)
	binary.BigEndian.PutUint64(dst[frameRequestOff:], h.requestID)
	binary.BigEndian.PutUint32(dst[frameLengthOff:], h.length)
}

// decodeFrameHeader parses the fixed prefix out of src.
func decodeFrameHeader(src []byte) frameHeader {
	return frameHeader{
		shardID:   binary.BigEndian.Uint64(src[frameShardOff:]),
		requestID: binary.BigEndian.Uint64(src[frameRequestOff:]),
		length:    binary.BigEndian.Uint32(src[frameLengthOff:]),
	}
}

// sendFrame writes one frame to the connection. Header and payload are
// handed to the kernel together via net.Buffers so a frame costs a single
// writev syscall.
func sendFrame(conn net.Conn, shardID, requestID uint64, payload []byte) error {
	var hdr [frameHeaderLen]byte
	frameHeader{
		shardID:   shardID,
		requestID: requestID,
		length:    uint32(len(payload)),
	}.encode(hdr[:])

	bufs := net.Buffers{hdr[:], payload}
	_, err := bufs.WriteTo(conn)
	return err
}

// recvFrame reads one frame from the connection into scratch. The returned
// payload aliases scratch when it fits, otherwise a fresh slice is
// allocated, so callers that pool buffers keep their pooled slice either
// way. Passing nil scratch is allowed.
func recvFrame(conn net.Conn, scratch []byte) (shardID, requestID uint64, payload []byte, err error) {
	if len(scratch) < frameHeaderLen {
		scratch = make([]byte, frameHeaderLen)
	}

	if _, err := io.ReadFull(conn, scratch[:frameHeaderLen]); err != nil {
		return 0, 0, nil, err
	}
	hdr := decodeFrameHeader(scratch)

	if hdr.length > maxFramePayload {
		return 0, 0, nil, fmt.Errorf("frame payload of %d bytes exceeds limit of %d", hdr.length, maxFramePayload)
	}
	if hdr.length == 0 {
		return hdr.shardID, hdr.requestID, []byte{}, nil
	}

	if uint32(len(scratch)) < hdr.length {
		scratch = make([]byte, hdr.length)
	}
	if _, err := io.ReadFull(conn, scratch[:hdr.length]); err != nil {
		return 0, 0, nil, err
	}
	return hdr.shardID, hdr.requestID, scratch[:hdr.length], nil
}
