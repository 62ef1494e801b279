package sqlstore

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/ValentinKolb/dSEQ/lib/counter"
	"github.com/ValentinKolb/dSEQ/lib/store"
	storetesting "github.com/ValentinKolb/dSEQ/lib/store/testing"
)

func Test(t *testing.T) {
	storetesting.RunCounterStoreTests(t, "SQLStore", func(t *testing.T) store.ICounterStore {
		s, err := NewSQLStore(filepath.Join(t.TempDir(), "counters.db"))
		if err != nil {
			t.Fatalf("failed to create sql store: %v", err)
		}
		return s
	})
}

func TestInvalidDSN(t *testing.T) {
	if _, err := NewSQLStore("   "); err == nil {
		t.Errorf("expected error for empty dsn")
	}
}

// TestConcurrentGenerateID draws ids from multiple goroutines at once. The
// write lock contention must be absorbed by the store (busy timeout plus a
// single-connection pool), every draw must succeed and the drawn ids must
// form an exact gap-free set.
func TestConcurrentGenerateID(t *testing.T) {
	s, err := NewSQLStore(filepath.Join(t.TempDir(), "counters.db"))
	if err != nil {
		t.Fatalf("failed to create sql store: %v", err)
	}
	seq, err := counter.NewSequenceCounter(s, counter.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create sequence counter: %v", err)
	}

	const (
		numWriters    = 8
		drawsPerGroup = 50
	)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[int64]bool)
	)
	for i := 0; i < numWriters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < drawsPerGroup; j++ {
				id, err := seq.GenerateID("orders")
				if err != nil {
					t.Errorf("GenerateID failed: %v", err)
					return
				}
				mu.Lock()
				ids[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// with initial value 1 and step 1 the draws must be exactly 2 .. 401
	total := numWriters * drawsPerGroup
	if len(ids) != total {
		t.Fatalf("expected %d distinct ids, got %d", total, len(ids))
	}
	for id := int64(2); id <= int64(total)+1; id++ {
		if !ids[id] {
			t.Errorf("id %d missing from drawn set", id)
		}
	}
}

func TestPersistence(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "counters.db")

	s, err := NewSQLStore(dsn)
	if err != nil {
		t.Fatalf("failed to create sql store: %v", err)
	}
	if err := s.Upsert("orders", 42); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// a second store on the same file must see the counter
	s2, err := NewSQLStore(dsn)
	if err != nil {
		t.Fatalf("failed to reopen sql store: %v", err)
	}
	value, found, err := s2.Find("orders")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if !found || value != 42 {
		t.Errorf("counter did not survive reopen: got %d (found=%v)", value, found)
	}
}
