package testing

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/dSEQ/lib/db"
)

// DBFactory is a function that creates a new instance of a CounterDB implementation
type DBFactory func() db.CounterDB

// RunCounterDBTests runs a comprehensive test suite for a CounterDB implementation.
func RunCounterDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory())
		})

		t.Run("PutIfAbsent", func(t *testing.T) {
			testPutIfAbsent(t, factory())
		})

		t.Run("IncrementAndGet", func(t *testing.T) {
			testIncrementAndGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("StaleWrites", func(t *testing.T) {
			testStaleWrites(t, factory())
		})

		t.Run("ConcurrentIncrements", func(t *testing.T) {
			testConcurrentIncrements(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.CounterDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, database db.CounterDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut)
	requireFeature(t, database, db.FeatureGet)

	testKey := "test-counter"

	database.Put(testKey, 42, 1)

	result, exists := database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Put", testKey)
	}
	if result != 42 {
		t.Errorf("Expected value 42, got %d", result)
	}

	// overwrite
	database.Put(testKey, 7, 2)

	result, exists = database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Put", testKey)
	}
	if result != 7 {
		t.Errorf("Expected value 7, got %d", result)
	}

	_, exists = database.Get("nonexistent-counter")
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}
}

func testPutIfAbsent(t *testing.T, database db.CounterDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePutIfAbsent)
	requireFeature(t, database, db.FeatureGet)

	testKey := "init-counter"

	// first insert wins
	database.PutIfAbsent(testKey, 1, 1)

	result, exists := database.Get(testKey)
	if !exists || result != 1 {
		t.Errorf("Expected value 1 after first PutIfAbsent, got %d (exists=%v)", result, exists)
	}

	// second insert must be a no-op
	database.PutIfAbsent(testKey, 100, 2)

	result, _ = database.Get(testKey)
	if result != 1 {
		t.Errorf("PutIfAbsent overwrote an existing counter: got %d, want 1", result)
	}
}

func testIncrementAndGet(t *testing.T, database db.CounterDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut)
	requireFeature(t, database, db.FeatureIncrement)

	testKey := "inc-counter"

	// increment on a missing key must not create it
	_, found := database.IncrementAndGet(testKey, 1, 1)
	if found {
		t.Errorf("IncrementAndGet on a missing key reported found=true")
	}
	if database.SupportsFeature(db.FeatureHas) && database.Has(testKey) {
		t.Errorf("IncrementAndGet created a counter for a missing key")
	}

	database.Put(testKey, 10, 2)

	value, found := database.IncrementAndGet(testKey, 5, 3)
	if !found {
		t.Errorf("IncrementAndGet on an existing key reported found=false")
	}
	if value != 15 {
		t.Errorf("Expected post-increment value 15, got %d", value)
	}

	// negative delta
	value, _ = database.IncrementAndGet(testKey, -3, 4)
	if value != 12 {
		t.Errorf("Expected post-increment value 12, got %d", value)
	}

	// sequential increments yield a strictly increasing sequence
	prev := value
	for i := uint64(5); i < 15; i++ {
		value, found = database.IncrementAndGet(testKey, 1, i)
		if !found {
			t.Fatalf("counter disappeared during sequential increments")
		}
		if value != prev+1 {
			t.Errorf("Expected %d, got %d", prev+1, value)
		}
		prev = value
	}
}

func testDelete(t *testing.T, database db.CounterDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut)
	requireFeature(t, database, db.FeatureDelete)
	requireFeature(t, database, db.FeatureHas)

	testKey := "delete-counter"

	database.Put(testKey, 1, 1)
	if !database.Has(testKey) {
		t.Errorf("Expected key %s to exist after Put", testKey)
	}

	database.Delete(testKey, 2)
	if database.Has(testKey) {
		t.Errorf("Expected key %s to be gone after Delete", testKey)
	}

	// deleting a nonexistent key must not create it
	database.Delete("nonexistent-counter", 3)
	if database.Has("nonexistent-counter") {
		t.Errorf("Delete created a counter for a missing key")
	}
}

func testHas(t *testing.T, database db.CounterDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut)
	requireFeature(t, database, db.FeatureHas)

	if database.Has("unknown-counter") {
		t.Errorf("Has returned true for an unknown counter")
	}

	database.Put("known-counter", 0, 1)
	if !database.Has("known-counter") {
		t.Errorf("Has returned false for a known counter")
	}
}

func testStaleWrites(t *testing.T, database db.CounterDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut)
	requireFeature(t, database, db.FeatureIncrement)
	requireFeature(t, database, db.FeatureGet)

	testKey := "stale-counter"

	database.Put(testKey, 100, 10)

	// a Put with an older index must be ignored
	database.Put(testKey, 1, 5)
	result, _ := database.Get(testKey)
	if result != 100 {
		t.Errorf("Stale Put was applied: got %d, want 100", result)
	}

	// a replayed increment (index not newer) must not be applied twice
	value, found := database.IncrementAndGet(testKey, 1, 10)
	if !found {
		t.Fatalf("counter not found")
	}
	if value != 100 {
		t.Errorf("Replayed increment was applied: got %d, want 100", value)
	}

	// a newer increment is applied normally
	value, _ = database.IncrementAndGet(testKey, 1, 11)
	if value != 101 {
		t.Errorf("Expected 101, got %d", value)
	}
}

func testConcurrentIncrements(t *testing.T, database db.CounterDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut)
	requireFeature(t, database, db.FeatureIncrement)

	const (
		goroutines       = 16
		incsPerGoroutine = 500
	)

	testKey := "concurrent-counter"
	database.Put(testKey, 0, 1)

	// Each goroutine draws unique write indexes from a shared atomic counter,
	// mirroring how the local store hands out indexes.
	var indexSource sync.Mutex
	nextIndex := uint64(1)
	getIndex := func() uint64 {
		indexSource.Lock()
		defer indexSource.Unlock()
		nextIndex++
		return nextIndex
	}

	var wg sync.WaitGroup
	wg.Add(goroutines)

	seen := make([]map[int64]struct{}, goroutines)
	for g := 0; g < goroutines; g++ {
		seen[g] = make(map[int64]struct{}, incsPerGoroutine)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < incsPerGoroutine; i++ {
				value, found := database.IncrementAndGet(testKey, 1, getIndex())
				if !found {
					t.Errorf("counter disappeared during concurrent increments")
					return
				}
				seen[g][value] = struct{}{}
			}
		}(g)
	}

	wg.Wait()

	// No two increments may have returned the same value
	all := make(map[int64]struct{}, goroutines*incsPerGoroutine)
	for g := 0; g < goroutines; g++ {
		for value := range seen[g] {
			if _, dup := all[value]; dup {
				t.Errorf("duplicate value %d returned by concurrent increments", value)
			}
			all[value] = struct{}{}
		}
	}
	if len(all) != goroutines*incsPerGoroutine {
		t.Errorf("expected %d distinct values, got %d", goroutines*incsPerGoroutine, len(all))
	}

	// The final value must equal the number of increments
	final, _ := database.Get(testKey)
	if final != int64(goroutines*incsPerGoroutine) {
		t.Errorf("expected final value %d, got %d", goroutines*incsPerGoroutine, final)
	}
}

func testSaveLoad(t *testing.T, factory DBFactory) {
	source := factory()
	defer source.Close()

	requireFeature(t, source, db.FeatureSave)
	requireFeature(t, source, db.FeatureLoad)

	// populate
	for i := 0; i < 100; i++ {
		source.Put(fmt.Sprintf("counter-%d", i), int64(i*10), uint64(i+1))
	}

	// save
	var buf bytes.Buffer
	if err := source.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// load into the same instance (Load replaces all state)
	if err := source.Load(&buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// verify
	for i := 0; i < 100; i++ {
		value, exists := source.Get(fmt.Sprintf("counter-%d", i))
		if !exists {
			t.Errorf("counter-%d missing after Save/Load", i)
			continue
		}
		if value != int64(i*10) {
			t.Errorf("counter-%d: expected %d, got %d", i, i*10, value)
		}
	}

	// the write index must survive the round trip
	if source.WriteIdx() != 100 {
		t.Errorf("expected write index 100 after Load, got %d", source.WriteIdx())
	}
}

func testEdgeCases(t *testing.T, database db.CounterDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut)
	requireFeature(t, database, db.FeatureGet)

	// empty key is a valid (if unusual) key at this layer
	database.Put("", 1, 1)
	value, exists := database.Get("")
	if !exists || value != 1 {
		t.Errorf("empty key not handled: got %d (exists=%v)", value, exists)
	}

	// negative values are representable
	database.Put("negative", -100, 2)
	value, _ = database.Get("negative")
	if value != -100 {
		t.Errorf("expected -100, got %d", value)
	}

	// very long keys
	longKey := ""
	for i := 0; i < 1000; i++ {
		longKey += "x"
	}
	database.Put(longKey, 5, 3)
	value, exists = database.Get(longKey)
	if !exists || value != 5 {
		t.Errorf("long key not handled: got %d (exists=%v)", value, exists)
	}
}
