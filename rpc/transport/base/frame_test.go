package base

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payload := []byte("next-id orders")
	go func() {
		if err := sendFrame(client, 100, 42, payload); err != nil {
			t.Errorf("sendFrame failed: %v", err)
		}
	}()

	shardID, requestID, got, err := recvFrame(server, nil)
	if err != nil {
		t.Fatalf("recvFrame failed: %v", err)
	}
	if shardID != 100 || requestID != 42 {
		t.Errorf("expected shard 100 request 42, got shard %d request %d", shardID, requestID)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload mismatch: got %q", got)
	}
}

func TestFrameEmptyPayload(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		if err := sendFrame(client, 7, 1, nil); err != nil {
			t.Errorf("sendFrame failed: %v", err)
		}
	}()

	shardID, requestID, got, err := recvFrame(server, nil)
	if err != nil {
		t.Fatalf("recvFrame failed: %v", err)
	}
	if shardID != 7 || requestID != 1 {
		t.Errorf("expected shard 7 request 1, got shard %d request %d", shardID, requestID)
	}
	if len(got) != 0 {
		t.Errorf("expected empty payload, got %d bytes", len(got))
	}
}

// TestFrameScratchReuse verifies that a payload fitting into the provided
// scratch buffer does not allocate: the returned slice must alias scratch.
func TestFrameScratchReuse(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_ = sendFrame(client, 1, 2, []byte("small"))
	}()

	scratch := make([]byte, 64)
	_, _, got, err := recvFrame(server, scratch)
	if err != nil {
		t.Fatalf("recvFrame failed: %v", err)
	}
	if &got[0] != &scratch[0] {
		t.Errorf("expected payload to alias the scratch buffer")
	}
}

// TestFrameOversizedPayload sends a header announcing a payload beyond the
// protocol limit. The reader must reject it instead of allocating the
// announced size.
func TestFrameOversizedPayload(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		var hdr [frameHeaderLen]byte
		binary.BigEndian.PutUint64(hdr[frameShardOff:], 1)
		binary.BigEndian.PutUint64(hdr[frameRequestOff:], 1)
		binary.BigEndian.PutUint32(hdr[frameLengthOff:], maxFramePayload+1)
		_, _ = client.Write(hdr[:])
	}()

	if _, _, _, err := recvFrame(server, nil); err == nil {
		t.Errorf("expected error for oversized payload")
	}
}

func TestFrameHeaderEncodeDecode(t *testing.T) {
	in := frameHeader{shardID: 0xDEADBEEF, requestID: 1<<63 + 5, length: 1234}

	var buf [frameHeaderLen]byte
	in.encode(buf[:])
	out := decodeFrameHeader(buf[:])

	if out != in {
		t.Errorf("header did not survive encode/decode: %+v != %+v", out, in)
	}
}
