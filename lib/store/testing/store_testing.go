package testing

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/dSEQ/lib/store"
)

// StoreFactory is a function that creates a new instance of an ICounterStore implementation
type StoreFactory func(t *testing.T) store.ICounterStore

// RunCounterStoreTests runs a conformance test suite for an ICounterStore implementation.
// The suite exercises the full interface contract including the atomicity guarantees
// that sequence generation depends on.
func RunCounterStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("UpsertAndFind", func(t *testing.T) {
			testUpsertAndFind(t, factory(t))
		})

		t.Run("UpsertIfAbsent", func(t *testing.T) {
			testUpsertIfAbsent(t, factory(t))
		})

		t.Run("IncrementAndGet", func(t *testing.T) {
			testIncrementAndGet(t, factory(t))
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory(t))
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory(t))
		})

		t.Run("ConcurrentIncrements", func(t *testing.T) {
			testConcurrentIncrements(t, factory(t))
		})

		t.Run("GetDBInfo", func(t *testing.T) {
			testGetDBInfo(t, factory(t))
		})
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testUpsertAndFind(t *testing.T, s store.ICounterStore) {
	if err := s.Upsert("orders", 42); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	value, found, err := s.Find("orders")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if !found {
		t.Errorf("Expected counter to exist after Upsert")
	}
	if value != 42 {
		t.Errorf("Expected value 42, got %d", value)
	}

	// overwrite
	if err := s.Upsert("orders", 7); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	value, _, _ = s.Find("orders")
	if value != 7 {
		t.Errorf("Expected value 7 after overwrite, got %d", value)
	}

	// missing counter
	_, found, err = s.Find("unknown")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found {
		t.Errorf("Expected unknown counter to not be found")
	}
}

func testUpsertIfAbsent(t *testing.T, s store.ICounterStore) {
	if err := s.UpsertIfAbsent("invoices", 1); err != nil {
		t.Fatalf("UpsertIfAbsent failed: %v", err)
	}

	value, found, _ := s.Find("invoices")
	if !found || value != 1 {
		t.Errorf("Expected value 1 after first UpsertIfAbsent, got %d (found=%v)", value, found)
	}

	// second call must not overwrite and must not error
	if err := s.UpsertIfAbsent("invoices", 100); err != nil {
		t.Fatalf("UpsertIfAbsent on existing counter returned error: %v", err)
	}
	value, _, _ = s.Find("invoices")
	if value != 1 {
		t.Errorf("UpsertIfAbsent overwrote an existing counter: got %d, want 1", value)
	}
}

func testIncrementAndGet(t *testing.T, s store.ICounterStore) {
	// increment on a missing counter must not create it
	_, found, err := s.IncrementAndGet("missing", 1)
	if err != nil {
		t.Fatalf("IncrementAndGet failed: %v", err)
	}
	if found {
		t.Errorf("IncrementAndGet on a missing counter reported found=true")
	}
	if exists, _ := s.Has("missing"); exists {
		t.Errorf("IncrementAndGet created a counter for a missing key")
	}

	if err := s.Upsert("tickets", 10); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	value, found, err := s.IncrementAndGet("tickets", 5)
	if err != nil {
		t.Fatalf("IncrementAndGet failed: %v", err)
	}
	if !found {
		t.Errorf("IncrementAndGet on an existing counter reported found=false")
	}
	if value != 15 {
		t.Errorf("Expected post-increment value 15, got %d", value)
	}

	// sequential increments yield a strictly increasing sequence with constant step
	prev := value
	for i := 0; i < 10; i++ {
		value, _, err = s.IncrementAndGet("tickets", 3)
		if err != nil {
			t.Fatalf("IncrementAndGet failed: %v", err)
		}
		if value != prev+3 {
			t.Errorf("Expected %d, got %d", prev+3, value)
		}
		prev = value
	}
}

func testHas(t *testing.T, s store.ICounterStore) {
	found, err := s.Has("unknown")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if found {
		t.Errorf("Has returned true for an unknown counter")
	}

	if err := s.Upsert("known", 0); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	found, _ = s.Has("known")
	if !found {
		t.Errorf("Has returned false for a known counter")
	}
}

func testDelete(t *testing.T, s store.ICounterStore) {
	if err := s.Upsert("temp", 1); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := s.Delete("temp"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	found, _ := s.Has("temp")
	if found {
		t.Errorf("Expected counter to be gone after Delete")
	}

	// deleting a missing counter must not error
	if err := s.Delete("never-existed"); err != nil {
		t.Errorf("Delete on a missing counter returned error: %v", err)
	}
}

// testConcurrentIncrements verifies the core guarantee of the store: N concurrent
// increments on the same counter yield N distinct values forming an exact,
// gapless arithmetic progression.
func testConcurrentIncrements(t *testing.T, s store.ICounterStore) {
	const (
		goroutines       = 8
		incsPerGoroutine = 100
		step             = int64(2)
	)

	if err := s.Upsert("concurrent", 0); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		values = make(map[int64]struct{}, goroutines*incsPerGoroutine)
	)
	wg.Add(goroutines)

	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < incsPerGoroutine; i++ {
				value, found, err := s.IncrementAndGet("concurrent", step)
				if err != nil || !found {
					t.Errorf("IncrementAndGet failed: found=%v err=%v", found, err)
					return
				}
				mu.Lock()
				if _, dup := values[value]; dup {
					t.Errorf("duplicate value %d returned by concurrent increments", value)
				}
				values[value] = struct{}{}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	// the values must be exactly {step, 2*step, ..., N*step}
	total := goroutines * incsPerGoroutine
	if len(values) != total {
		t.Fatalf("expected %d distinct values, got %d", total, len(values))
	}
	for i := 1; i <= total; i++ {
		if _, ok := values[int64(i)*step]; !ok {
			t.Errorf("missing value %d in result set", int64(i)*step)
		}
	}
}

func testGetDBInfo(t *testing.T, s store.ICounterStore) {
	for i := 0; i < 10; i++ {
		if err := s.Upsert(fmt.Sprintf("info-%d", i), int64(i)); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	info, err := s.GetDBInfo()
	if err != nil {
		t.Fatalf("GetDBInfo failed: %v", err)
	}
	if info.DbType == "" {
		t.Errorf("GetDBInfo returned empty DbType")
	}
	if len(info.SupportedFeatures) == 0 {
		t.Errorf("GetDBInfo returned no supported features")
	}
}
