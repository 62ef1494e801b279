package testing

import (
	"bytes"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/dSEQ/lib/db"
)

// RunCounterDBBenchmarks runs all benchmarks for a CounterDB implementation
func RunCounterDBBenchmarks(b *testing.B, name string, factory DBFactory) {

	b.Run("Put", func(b *testing.B) {
		benchmarkPut(b, factory())
	})

	b.Run("PutExisting", func(b *testing.B) {
		benchmarkPutExisting(b, factory())
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory())
	})

	b.Run("IncrementSingleCounter", func(b *testing.B) {
		benchmarkIncrementSingleCounter(b, factory())
	})

	b.Run("IncrementManyCounters", func(b *testing.B) {
		benchmarkIncrementManyCounters(b, factory())
	})

	b.Run("Has", func(b *testing.B) {
		benchmarkHas(b, factory())
	})

	b.Run("Has(not)", func(b *testing.B) {
		benchmarkHasNot(b, factory())
	})

	b.Run("SaveLoad", func(b *testing.B) {
		benchmarkSaveLoad(b, factory)
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory())
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Put operation
func benchmarkPut(b *testing.B, database db.CounterDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut)

	var index uint64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-counter-%d", counter)
			database.Put(key, int64(counter), atomic.AddUint64(&index, 1))
			counter++
		}
	})
}

// Benchmark for Put operation with existing keys
func benchmarkPutExisting(b *testing.B, database db.CounterDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut)

	// Prepare data
	numKeys := b.N
	for i := 0; i < numKeys; i++ {
		database.Put(fmt.Sprintf("test-counter-%d", i), int64(i), uint64(i+1))
	}

	var index = uint64(numKeys)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-counter-%d", counter%numKeys)
			database.Put(key, int64(counter), atomic.AddUint64(&index, 1))
			counter++
		}
	})
}

// Parallel benchmarking for Get operation
func benchmarkGet(b *testing.B, database db.CounterDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut)
	requireFeature(b, database, db.FeatureGet)

	// Prepare data
	numKeys := 10000
	for i := 0; i < numKeys; i++ {
		database.Put(fmt.Sprintf("test-counter-%d", i), int64(i), uint64(i+1))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			database.Get(fmt.Sprintf("test-counter-%d", counter%numKeys))
			counter++
		}
	})
}

// Benchmark for IncrementAndGet with all goroutines contending on one counter.
// This is the hot path of a sequence generator and the worst case for the
// per-shard Compute loop.
func benchmarkIncrementSingleCounter(b *testing.B, database db.CounterDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut)
	requireFeature(b, database, db.FeatureIncrement)

	const key = "hot-counter"
	database.Put(key, 0, 1)

	var index = uint64(1)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			database.IncrementAndGet(key, 1, atomic.AddUint64(&index, 1))
		}
	})
}

// Benchmark for IncrementAndGet spread over many counters
func benchmarkIncrementManyCounters(b *testing.B, database db.CounterDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut)
	requireFeature(b, database, db.FeatureIncrement)

	numKeys := 10000
	for i := 0; i < numKeys; i++ {
		database.Put(fmt.Sprintf("test-counter-%d", i), 0, uint64(i+1))
	}

	var index = uint64(numKeys)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-counter-%d", counter%numKeys)
			database.IncrementAndGet(key, 1, atomic.AddUint64(&index, 1))
			counter++
		}
	})
}

// Parallel benchmarking for Has operation (with key miss)
func benchmarkHasNot(b *testing.B, database db.CounterDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureHas)
	const key = "test-counter"

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			database.Has(key)
		}
	})
}

// Parallel benchmarking for Has operation
func benchmarkHas(b *testing.B, database db.CounterDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut)
	requireFeature(b, database, db.FeatureHas)

	// Prepare data
	numKeys := 10000
	for i := 0; i < numKeys; i++ {
		database.Put(fmt.Sprintf("test-counter-%d", i), int64(i), uint64(i+1))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			database.Has(fmt.Sprintf("test-counter-%d", counter%numKeys))
			counter++
		}
	})
}

// Benchmark for Save and Load operations
// For these operations, parallelization is not meaningful as they typically
// snapshot the entire database
func benchmarkSaveLoad(b *testing.B, factory DBFactory) {

	database := factory()

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut)
	requireFeature(b, database, db.FeatureSave)
	requireFeature(b, database, db.FeatureLoad)

	// Create a database with some data
	numEntries := 10000
	for i := 0; i < numEntries; i++ {
		database.Put(fmt.Sprintf("test-counter-%d", i), int64(i), uint64(i+1))
	}

	b.Run("Save", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			var buf bytes.Buffer
			database.Save(&buf)
		}
	})

	// Prepare a data buffer for Load benchmark
	var loadBuf bytes.Buffer
	database.Save(&loadBuf)
	data := loadBuf.Bytes()

	b.Run("Load", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			loadDB := factory()
			defer loadDB.Close()
			loadDB.Load(bytes.NewReader(data))
		}
	})
}

// Benchmark for mixed usage patterns
func benchmarkMixedUsage(b *testing.B, database db.CounterDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut)
	requireFeature(b, database, db.FeatureGet)
	requireFeature(b, database, db.FeatureIncrement)
	requireFeature(b, database, db.FeatureDelete)
	requireFeature(b, database, db.FeatureHas)

	// Number of pre-populated keys
	numKeys := 100000
	if b.N < numKeys {
		numKeys = b.N
	}

	// Prepare initial data
	keys := make([]string, numKeys)
	for i := 0; i < numKeys; i++ {
		keys[i] = fmt.Sprintf("test-counter-%d", i)
		database.Put(keys[i], int64(i), uint64(i+1))
	}

	// Counters for atomic access
	var counter int64
	var index = uint64(numKeys)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		// Local counter for each goroutine
		localCounter := 0

		for pb.Next() {
			// Get a somewhat random index
			idx := int(atomic.AddInt64(&counter, 1)-1) % numKeys

			// Select operation (0-4: increment, get, put, has, delete)
			op := localCounter % 5

			// For every 10th operation, use a completely new key
			var key string
			if localCounter%10 == 0 {
				key = fmt.Sprintf("new-counter-%d", localCounter)
			} else {
				key = keys[idx]
			}

			// Perform the selected operation
			switch op {
			case 0, 1: // IncrementAndGet (the dominant operation in practice)
				database.IncrementAndGet(key, 1, atomic.AddUint64(&index, 1))
			case 2: // Get
				database.Get(key)
			case 3: // Put
				database.Put(key, int64(localCounter), atomic.AddUint64(&index, 1))
			case 4: // Has
				database.Has(key)
			}

			localCounter++
		}
	})
}
