package counter

import (
	"errors"
	"sync"
	"testing"

	"github.com/ValentinKolb/dSEQ/lib/db"
	"github.com/ValentinKolb/dSEQ/lib/db/engines/aspen"
	"github.com/ValentinKolb/dSEQ/lib/store"
	"github.com/ValentinKolb/dSEQ/lib/store/lstore"
)

// newTestStore returns a fresh in-memory store for each test.
func newTestStore() store.ICounterStore {
	return lstore.NewLocalStore(func() db.CounterDB {
		return aspen.NewAspenDB(nil)
	})
}

func newTestCounter(t *testing.T, opts Options) ISequenceCounter {
	t.Helper()
	c, err := NewSequenceCounter(newTestStore(), opts)
	if err != nil {
		t.Fatalf("NewSequenceCounter failed: %v", err)
	}
	return c
}

// --------------------------------------------------------------------------
// Constructor validation
// --------------------------------------------------------------------------

func TestNewSequenceCounterValidation(t *testing.T) {
	var invalidArg *InvalidArgumentError

	if _, err := NewSequenceCounter(nil, DefaultOptions()); !errors.As(err, &invalidArg) {
		t.Errorf("expected InvalidArgumentError for nil store, got %v", err)
	}

	opts := DefaultOptions()
	opts.Step = 0
	if _, err := NewSequenceCounter(newTestStore(), opts); !errors.As(err, &invalidArg) {
		t.Errorf("expected InvalidArgumentError for zero step, got %v", err)
	}

	opts = DefaultOptions()
	opts.InitialValue = -1
	if _, err := NewSequenceCounter(newTestStore(), opts); !errors.As(err, &invalidArg) {
		t.Errorf("expected InvalidArgumentError for negative initial value, got %v", err)
	}

	// empty namespace falls back to the default
	opts = DefaultOptions()
	opts.Namespace = ""
	if _, err := NewSequenceCounter(newTestStore(), opts); err != nil {
		t.Errorf("expected empty namespace to be accepted, got %v", err)
	}
}

// --------------------------------------------------------------------------
// GenerateID
// --------------------------------------------------------------------------

func TestGenerateIDFreshSequence(t *testing.T) {
	c := newTestCounter(t, DefaultOptions())

	// a fresh sequence starts at the initial value (1) and the first draw
	// returns initial value + step
	id, err := c.GenerateID("orders")
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if id != 2 {
		t.Errorf("first GenerateID on fresh sequence: got %d, want 2", id)
	}

	id, err = c.GenerateID("orders")
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if id != 3 {
		t.Errorf("second GenerateID: got %d, want 3", id)
	}
}

func TestGenerateIDStrictlyIncreasing(t *testing.T) {
	opts := DefaultOptions()
	opts.Step = 5
	c := newTestCounter(t, opts)

	prev, err := c.GenerateID("jobs")
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	for i := 0; i < 100; i++ {
		id, err := c.GenerateID("jobs")
		if err != nil {
			t.Fatalf("GenerateID failed: %v", err)
		}
		if id != prev+5 {
			t.Errorf("expected %d, got %d", prev+5, id)
		}
		prev = id
	}
}

func TestGenerateIDIndependentSequences(t *testing.T) {
	c := newTestCounter(t, DefaultOptions())

	if _, err := c.GenerateID("orders"); err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if _, err := c.GenerateID("orders"); err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}

	// a different name starts its own sequence
	id, err := c.GenerateID("invoices")
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if id != 2 {
		t.Errorf("independent sequence not fresh: got %d, want 2", id)
	}
}

func TestGenerateIDEmptyName(t *testing.T) {
	c := newTestCounter(t, DefaultOptions())

	var invalidArg *InvalidArgumentError
	if _, err := c.GenerateID(""); !errors.As(err, &invalidArg) {
		t.Errorf("expected InvalidArgumentError for empty name, got %v", err)
	}
}

func TestGenerateIDConcurrent(t *testing.T) {
	const (
		goroutines = 16
		draws      = 200
	)

	c := newTestCounter(t, DefaultOptions())

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		values = make(map[int64]struct{}, goroutines*draws)
	)
	wg.Add(goroutines)

	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < draws; i++ {
				id, err := c.GenerateID("concurrent")
				if err != nil {
					t.Errorf("GenerateID failed: %v", err)
					return
				}
				mu.Lock()
				if _, dup := values[id]; dup {
					t.Errorf("duplicate id %d", id)
				}
				values[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// exactly the set {2, 3, ..., N+1}: no duplicates, no gaps, and the racing
	// lazy initialization happened exactly once
	total := goroutines * draws
	if len(values) != total {
		t.Fatalf("expected %d distinct ids, got %d", total, len(values))
	}
	for i := 2; i <= total+1; i++ {
		if _, ok := values[int64(i)]; !ok {
			t.Errorf("missing id %d", i)
		}
	}
}

// --------------------------------------------------------------------------
// SetInitialValue
// --------------------------------------------------------------------------

func TestSetInitialValue(t *testing.T) {
	c := newTestCounter(t, DefaultOptions())

	if err := c.SetInitialValue("orders", 100); err != nil {
		t.Fatalf("SetInitialValue failed: %v", err)
	}

	id, err := c.GenerateID("orders")
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if id != 101 {
		t.Errorf("after SetInitialValue(100): got %d, want 101", id)
	}
}

func TestSetInitialValueResetsExisting(t *testing.T) {
	c := newTestCounter(t, DefaultOptions())

	for i := 0; i < 10; i++ {
		if _, err := c.GenerateID("orders"); err != nil {
			t.Fatalf("GenerateID failed: %v", err)
		}
	}

	if err := c.SetInitialValue("orders", 1000); err != nil {
		t.Fatalf("SetInitialValue failed: %v", err)
	}
	id, err := c.GenerateID("orders")
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if id != 1001 {
		t.Errorf("after reset: got %d, want 1001", id)
	}
}

func TestSetInitialValueZero(t *testing.T) {
	c := newTestCounter(t, DefaultOptions())

	// zero is a permitted initial value
	if err := c.SetInitialValue("orders", 0); err != nil {
		t.Fatalf("SetInitialValue(0) failed: %v", err)
	}
	id, err := c.GenerateID("orders")
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if id != 1 {
		t.Errorf("after SetInitialValue(0): got %d, want 1", id)
	}
}

func TestSetInitialValueValidation(t *testing.T) {
	c := newTestCounter(t, DefaultOptions())

	if err := c.SetInitialValue("orders", 50); err != nil {
		t.Fatalf("SetInitialValue failed: %v", err)
	}

	var invalidArg *InvalidArgumentError
	if err := c.SetInitialValue("orders", -1); !errors.As(err, &invalidArg) {
		t.Errorf("expected InvalidArgumentError for negative value, got %v", err)
	}
	if err := c.SetInitialValue("", 1); !errors.As(err, &invalidArg) {
		t.Errorf("expected InvalidArgumentError for empty name, got %v", err)
	}

	// the rejected calls must not have touched the stored sequence
	id, err := c.GenerateID("orders")
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if id != 51 {
		t.Errorf("rejected SetInitialValue modified the sequence: got %d, want 51", id)
	}
}

// --------------------------------------------------------------------------
// Exists
// --------------------------------------------------------------------------

func TestExists(t *testing.T) {
	c := newTestCounter(t, DefaultOptions())

	found, err := c.Exists("orders")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if found {
		t.Errorf("Exists returned true for an unused sequence")
	}

	if _, err := c.GenerateID("orders"); err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}

	found, err = c.Exists("orders")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !found {
		t.Errorf("Exists returned false after GenerateID")
	}

	var invalidArg *InvalidArgumentError
	if _, err := c.Exists(""); !errors.As(err, &invalidArg) {
		t.Errorf("expected InvalidArgumentError for empty name, got %v", err)
	}
}

func TestExistsAfterSetInitialValue(t *testing.T) {
	c := newTestCounter(t, DefaultOptions())

	if err := c.SetInitialValue("orders", 7); err != nil {
		t.Fatalf("SetInitialValue failed: %v", err)
	}
	found, err := c.Exists("orders")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !found {
		t.Errorf("Exists returned false after SetInitialValue")
	}
}

// --------------------------------------------------------------------------
// Namespacing
// --------------------------------------------------------------------------

func TestNamespaceIsolation(t *testing.T) {
	s := newTestStore()

	optsA := DefaultOptions()
	optsA.Namespace = "tenant-a.ids"
	a, err := NewSequenceCounter(s, optsA)
	if err != nil {
		t.Fatalf("NewSequenceCounter failed: %v", err)
	}

	optsB := DefaultOptions()
	optsB.Namespace = "tenant-b.ids"
	b, err := NewSequenceCounter(s, optsB)
	if err != nil {
		t.Fatalf("NewSequenceCounter failed: %v", err)
	}

	// the same sequence name in different namespaces is a different sequence
	for i := 0; i < 5; i++ {
		if _, err := a.GenerateID("orders"); err != nil {
			t.Fatalf("GenerateID failed: %v", err)
		}
	}
	id, err := b.GenerateID("orders")
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if id != 2 {
		t.Errorf("namespace leak: got %d, want 2", id)
	}
}

// --------------------------------------------------------------------------
// Error taxonomy with failing stores
// --------------------------------------------------------------------------

// failingStore returns a store error from every operation.
type failingStore struct{}

func (failingStore) Upsert(string, int64) error         { return store.NewError(store.RetCInternalError, "down") }
func (failingStore) UpsertIfAbsent(string, int64) error { return store.NewError(store.RetCInternalError, "down") }
func (failingStore) IncrementAndGet(string, int64) (int64, bool, error) {
	return 0, false, store.NewError(store.RetCInternalError, "down")
}
func (failingStore) Find(string) (int64, bool, error) {
	return 0, false, store.NewError(store.RetCInternalError, "down")
}
func (failingStore) Has(string) (bool, error) {
	return false, store.NewError(store.RetCInternalError, "down")
}
func (failingStore) Delete(string) error { return store.NewError(store.RetCInternalError, "down") }
func (failingStore) GetDBInfo() (db.DatabaseInfo, error) {
	return db.DatabaseInfo{}, store.NewError(store.RetCInternalError, "down")
}

// vanishingStore accepts UpsertIfAbsent but reports the counter missing on
// increment, simulating a concurrent delete between the two calls.
type vanishingStore struct{ failingStore }

func (vanishingStore) UpsertIfAbsent(string, int64) error { return nil }
func (vanishingStore) IncrementAndGet(string, int64) (int64, bool, error) {
	return 0, false, nil
}

func TestStoreUnavailableError(t *testing.T) {
	c, err := NewSequenceCounter(failingStore{}, DefaultOptions())
	if err != nil {
		t.Fatalf("NewSequenceCounter failed: %v", err)
	}

	var unavailable *StoreUnavailableError

	if _, err := c.GenerateID("orders"); !errors.As(err, &unavailable) {
		t.Errorf("expected StoreUnavailableError from GenerateID, got %v", err)
	}
	if err := c.SetInitialValue("orders", 1); !errors.As(err, &unavailable) {
		t.Errorf("expected StoreUnavailableError from SetInitialValue, got %v", err)
	}
	if _, err := c.Exists("orders"); !errors.As(err, &unavailable) {
		t.Errorf("expected StoreUnavailableError from Exists, got %v", err)
	}

	// the wrapped store error stays reachable via errors.As
	_, err = c.GenerateID("orders")
	var storeErr *store.Error
	if !errors.As(err, &storeErr) {
		t.Errorf("expected wrapped store.Error to be unwrappable, got %v", err)
	}
}

func TestCounterMissingError(t *testing.T) {
	c, err := NewSequenceCounter(vanishingStore{}, DefaultOptions())
	if err != nil {
		t.Fatalf("NewSequenceCounter failed: %v", err)
	}

	var missing *CounterMissingError
	if _, err := c.GenerateID("orders"); !errors.As(err, &missing) {
		t.Errorf("expected CounterMissingError, got %v", err)
	}
	if missing.Name != "orders" {
		t.Errorf("CounterMissingError.Name = %q, want %q", missing.Name, "orders")
	}
}
