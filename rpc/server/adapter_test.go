package server

import (
	"testing"

	"github.com/ValentinKolb/dSEQ/lib/db"
	"github.com/ValentinKolb/dSEQ/lib/db/engines/aspen"
	"github.com/ValentinKolb/dSEQ/lib/store"
	"github.com/ValentinKolb/dSEQ/lib/store/lstore"
	"github.com/ValentinKolb/dSEQ/rpc/common"
)

func newTestStore() store.ICounterStore {
	return lstore.NewLocalStore(func() db.CounterDB { return aspen.NewAspenDB(nil) })
}

func TestCounterStoreAdapter(t *testing.T) {
	adapter := NewCounterStoreServerAdapter()
	s := newTestStore()

	// Upsert then Find
	resp := adapter.Handle(common.NewUpsertRequest("ctr", 42), s)
	if resp.Err != "" {
		t.Fatalf("upsert failed: %s", resp.Err)
	}

	resp = adapter.Handle(common.NewFindRequest("ctr"), s)
	if resp.Err != "" || !resp.Ok || resp.Value != 42 {
		t.Errorf("find returned ok=%v value=%d err=%q, expected ok=true value=42", resp.Ok, resp.Value, resp.Err)
	}

	// UpsertIfAbsent must not overwrite
	resp = adapter.Handle(common.NewUpsertIfAbsentRequest("ctr", 99), s)
	if resp.Err != "" {
		t.Fatalf("upsertIfAbsent failed: %s", resp.Err)
	}
	resp = adapter.Handle(common.NewFindRequest("ctr"), s)
	if resp.Value != 42 {
		t.Errorf("upsertIfAbsent overwrote existing counter, got %d", resp.Value)
	}

	// Increment
	resp = adapter.Handle(common.NewIncrementRequest("ctr", 8), s)
	if resp.Err != "" || !resp.Ok || resp.Value != 50 {
		t.Errorf("increment returned ok=%v value=%d err=%q, expected ok=true value=50", resp.Ok, resp.Value, resp.Err)
	}

	// Increment on a missing counter must not create it
	resp = adapter.Handle(common.NewIncrementRequest("missing", 1), s)
	if resp.Err != "" || resp.Ok {
		t.Errorf("increment of missing counter returned ok=%v err=%q, expected ok=false", resp.Ok, resp.Err)
	}

	// Has and Delete
	resp = adapter.Handle(common.NewHasRequest("ctr"), s)
	if !resp.Ok {
		t.Error("has returned false for existing counter")
	}
	resp = adapter.Handle(common.NewDeleteRequest("ctr"), s)
	if resp.Err != "" {
		t.Fatalf("delete failed: %s", resp.Err)
	}
	resp = adapter.Handle(common.NewHasRequest("ctr"), s)
	if resp.Ok {
		t.Error("has returned true after delete")
	}
}

func TestCounterStoreAdapterUnsupportedType(t *testing.T) {
	adapter := NewCounterStoreServerAdapter()

	resp := adapter.Handle(common.NewCustomRequest(nil), newTestStore())
	if resp.MsgType != common.MsgTError || resp.Err == "" {
		t.Errorf("expected error response for custom message, got type=%s err=%q", resp.MsgType, resp.Err)
	}
}

func TestSequenceCounterAdapter(t *testing.T) {
	adapter := NewSequenceCounterServerAdapter()
	s := newTestStore()

	// Fresh sequence starts after the default initial value
	resp := adapter.Handle(common.NewNextRequest("orders", "", 0), s)
	if resp.Err != "" || resp.Value != 2 {
		t.Errorf("first id was %d (err=%q), expected 2", resp.Value, resp.Err)
	}
	resp = adapter.Handle(common.NewNextRequest("orders", "", 0), s)
	if resp.Value != 3 {
		t.Errorf("second id was %d, expected 3", resp.Value)
	}

	// Init resets the sequence
	resp = adapter.Handle(common.NewInitRequest("orders", "", 100), s)
	if resp.Err != "" {
		t.Fatalf("init failed: %s", resp.Err)
	}
	resp = adapter.Handle(common.NewNextRequest("orders", "", 0), s)
	if resp.Value != 101 {
		t.Errorf("id after init was %d, expected 101", resp.Value)
	}

	// Exists
	resp = adapter.Handle(common.NewExistsRequest("orders", ""), s)
	if !resp.Ok {
		t.Error("exists returned false for initialized sequence")
	}
	resp = adapter.Handle(common.NewExistsRequest("unknown", ""), s)
	if resp.Ok {
		t.Error("exists returned true for unknown sequence")
	}
}

func TestSequenceCounterAdapterNamespaces(t *testing.T) {
	adapter := NewSequenceCounterServerAdapter()
	s := newTestStore()

	// Same name in different namespaces must be independent sequences
	respA := adapter.Handle(common.NewNextRequest("orders", "tenant-a", 0), s)
	respB := adapter.Handle(common.NewNextRequest("orders", "tenant-b", 0), s)
	if respA.Value != 2 || respB.Value != 2 {
		t.Errorf("namespaced sequences are not independent: got %d and %d", respA.Value, respB.Value)
	}
}

func TestSequenceCounterAdapterErrors(t *testing.T) {
	adapter := NewSequenceCounterServerAdapter()
	s := newTestStore()

	// Empty sequence name is rejected with a typed code
	resp := adapter.Handle(common.NewNextRequest("", "", 0), s)
	if resp.Code != common.ErrCodeInvalidArgument {
		t.Errorf("expected code %d for empty name, got %d (err=%q)", common.ErrCodeInvalidArgument, resp.Code, resp.Err)
	}

	// Negative initial value is rejected with a typed code
	resp = adapter.Handle(&common.Message{MsgType: common.MsgTSEQInit, Key: "orders", Value: -1}, s)
	if resp.Code != common.ErrCodeInvalidArgument {
		t.Errorf("expected code %d for negative initial value, got %d (err=%q)", common.ErrCodeInvalidArgument, resp.Code, resp.Err)
	}
}

func TestAdapterNilStore(t *testing.T) {
	for _, adapter := range []IRPCServerAdapter{
		NewCounterStoreServerAdapter(),
		NewSequenceCounterServerAdapter(),
	} {
		resp := adapter.Handle(common.NewHasRequest("key"), nil)
		if resp.MsgType != common.MsgTError {
			t.Errorf("expected error response for nil store, got type=%s", resp.MsgType)
		}
	}
}
