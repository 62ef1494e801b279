package aspen

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/dSEQ/lib/db"
	"github.com/ValentinKolb/dSEQ/lib/db/engines/aspen/internal"
	"github.com/ValentinKolb/dSEQ/lib/db/util"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// Constants for database behavior and structure
const (
	magicNum     = "ASPENDB\x00" // File format identifier
	aspenVersion = 1             // Database version
)

// --------------------------------------------------------------------------
// Core Aspen database structure
// --------------------------------------------------------------------------

// aspenImpl implements an in-memory counter database with sharded data
type aspenImpl struct {
	numShards int               // Number of shards
	seed      uint64            // Seed for hash function
	shards    []*internal.Shard // Array of shards
	currIndex atomic.Uint64     // Current logical write index
}

// DBOptions configures the aspenImpl behavior during initialization
type DBOptions struct {
	NumShards int // Number of shards (0 = auto)
}

// DefaultOptions returns the default aspenImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		NumShards: runtime.NumCPU(), // Auto-determine based on CPU count
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewAspenDB creates a new AspenDB instance with the specified options (optional)
//
// Thread-safety: This function is not thread-safe and should only be called once
// during initialization.
func NewAspenDB(opts *DBOptions) db.CounterDB {

	// Generate default options if not provided
	if opts == nil || opts.NumShards <= 0 {
		opts = DefaultOptions()
	}

	// Generate a seed for this aspenImpl instance
	seed := util.GenerateSeed()
	hasher := createIdentityHasher()

	// Create shards
	shards := make([]*internal.Shard, opts.NumShards)
	for i := 0; i < opts.NumShards; i++ {
		shards[i] = internal.NewShard(hasher)
	}

	newDB := &aspenImpl{
		numShards: opts.NumShards,
		seed:      seed,
		shards:    shards,
	}

	// Initialize atomic values
	newDB.currIndex.Store(0)

	return newDB
}

// --------------------------------------------------------------------------
// Hash Helper Functions
// --------------------------------------------------------------------------

// StringToUint64 converts a string to a util.UintKey with hashing
// and applies the aspenImpl seed to ensure uniqueness between aspenImpl instances
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (aspen *aspenImpl) StringToUint64(s string) util.UintKey {
	return util.HashString(s, aspen.seed)
}

// createIdentityHasher creates a hash function that combines a key with a seed
func createIdentityHasher() func(util.UintKey, uint64) uint64 {
	return func(key util.UintKey, mapSeed uint64) uint64 {
		return uint64(key) ^ mapSeed
	}
}

// --------------------------------------------------------------------------
// Core CounterDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Put inserts or updates the counter with the given key and value.
// If the key already exists, the old value is overwritten.
// Writes with an index older than the stored entry are ignored.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (aspen *aspenImpl) Put(key string, value int64, writeIndex uint64) {
	aspen.SetWriteIdx(writeIndex)

	intKey := aspen.StringToUint64(key)
	shard := internal.GetShard(intKey, aspen.shards)

	shard.Data.Compute(intKey, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		// Stale writes are ignored
		if loaded && writeIndex < old.Index {
			return old, false
		}
		return internal.Entry{Value: value, Index: writeIndex}, false
	})
}

// PutIfAbsent inserts the counter with the given key and value only if no
// counter for the key exists. The check and the insert are a single atomic
// operation on the shard map, two racing initializations of the same key
// cannot overwrite each other.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (aspen *aspenImpl) PutIfAbsent(key string, value int64, writeIndex uint64) {
	aspen.SetWriteIdx(writeIndex)

	intKey := aspen.StringToUint64(key)
	shard := internal.GetShard(intKey, aspen.shards)

	shard.Data.Compute(intKey, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if loaded {
			return old, false
		}
		return internal.Entry{Value: value, Index: writeIndex}, false
	})
}

// IncrementAndGet atomically adds delta to the counter with the given key and
// returns the post-increment value. If no counter for the key exists, none is
// created and found=false is returned. An increment whose write index is not
// newer than the stored entry is treated as a replayed write: it is not
// applied again and the stored value is returned.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
// The increment is an atomic read-modify-write on the shard map, concurrent
// increments of the same key are totally ordered and never lose an update.
func (aspen *aspenImpl) IncrementAndGet(key string, delta int64, writeIndex uint64) (int64, bool) {
	aspen.SetWriteIdx(writeIndex)

	intKey := aspen.StringToUint64(key)
	shard := internal.GetShard(intKey, aspen.shards)

	var (
		result int64
		found  bool
	)

	shard.Data.Compute(intKey, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		// case the key doesn't exist
		if !loaded {
			return old, true // set delete to true because else the value will be created
		}

		// case replayed write -> don't apply twice
		if writeIndex <= old.Index {
			found = true
			result = old.Value
			return old, false
		}

		// case increment
		found = true
		result = old.Value + delta
		return internal.Entry{Value: result, Index: writeIndex}, false
	})

	return result, found
}

// Delete removes the counter with the specified key. This change is immediate.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (aspen *aspenImpl) Delete(key string, writeIndex uint64) {
	aspen.SetWriteIdx(writeIndex)

	intKey := aspen.StringToUint64(key)
	shard := internal.GetShard(intKey, aspen.shards)

	shard.Data.Compute(intKey, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if loaded && writeIndex < old.Index {
			return old, false
		}
		return old, true
	})
}

// --------------------------------------------------------------------------
// Core CounterDB Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get returns the value of the counter with the given key.
// The boolean indicates whether a counter for the key was found.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (aspen *aspenImpl) Get(key string) (int64, bool) {
	intKey := aspen.StringToUint64(key)
	shard := internal.GetShard(intKey, aspen.shards)

	entry, ok := shard.Data.Load(intKey)
	if !ok {
		return 0, false
	}
	return entry.Value, true
}

// Has checks if a counter for the given key exists.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (aspen *aspenImpl) Has(key string) bool {
	intKey := aspen.StringToUint64(key)
	shard := internal.GetShard(intKey, aspen.shards)

	_, ok := shard.Data.Load(intKey)
	return ok
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Save persists the database to the writer.
// Concurrent reading and writing is allowed during a Save operation, the
// snapshot is fuzzy: it reflects some state between start and end of the call.
//
// Thread-safety: This function allows concurrent operations with all other
// functions except Load.
func (aspen *aspenImpl) Save(w io.Writer) error {
	// Use a buffered writer for better performance
	bw := bufio.NewWriterSize(w, 64*1024)

	// Collect snapshots of all shards
	type entryToSave struct {
		key   util.UintKey
		entry internal.Entry
	}

	var entries []entryToSave
	for _, shard := range aspen.shards {
		shard.Data.Range(func(key util.UintKey, entry internal.Entry) bool {
			entries = append(entries, entryToSave{key, entry})
			return true
		})
	}

	// Write file header
	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}

	// Write aspen version
	if err := binary.Write(bw, binary.LittleEndian, uint8(aspenVersion)); err != nil {
		return err
	}

	// Write seed
	if err := binary.Write(bw, binary.LittleEndian, aspen.seed); err != nil {
		return err
	}

	// Write total entry count
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(entries))); err != nil {
		return err
	}

	// Write entries
	for _, item := range entries {

		// Write key
		if err := binary.Write(bw, binary.LittleEndian, uint64(item.key)); err != nil {
			return err
		}

		// Write counter value
		if err := binary.Write(bw, binary.LittleEndian, item.entry.Value); err != nil {
			return err
		}

		// Write write index
		if err := binary.Write(bw, binary.LittleEndian, item.entry.Index); err != nil {
			return err
		}
	}

	// Flush buffer to ensure all data is written
	return bw.Flush()
}

// Load restores a database from the reader
//
// Thread-safety: This function is not thread-safe and should not be called concurrently
func (aspen *aspenImpl) Load(r io.Reader) error {
	// Use a buffered reader for better performance
	br := bufio.NewReaderSize(r, 64*1024)

	// Read and verify magic number
	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return err
	}

	if string(magicBytes) != magicNum {
		return fmt.Errorf("invalid file format: magic number mismatch")
	}

	// Read and verify version
	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return err
	}

	if int(version) != aspenVersion {
		return fmt.Errorf("unsupported version: %d (expected %d)", version, aspenVersion)
	}

	// Read seed
	var seed uint64
	if err := binary.Read(br, binary.LittleEndian, &seed); err != nil {
		return err
	}

	// Recreate empty shards with the loaded seed
	hasher := createIdentityHasher()
	shards := make([]*internal.Shard, aspen.numShards)
	for i := 0; i < aspen.numShards; i++ {
		shards[i] = internal.NewShard(hasher)
	}

	aspen.shards = shards
	aspen.seed = seed

	// Reset the write index
	aspen.currIndex.Store(0)

	// Read entry count
	var entryCount uint64
	if err := binary.Read(br, binary.LittleEndian, &entryCount); err != nil {
		return err
	}

	// Track the highest index seen during load
	var maxIndex uint64 = 0

	// Read entries
	for i := uint64(0); i < entryCount; i++ {
		// Read key
		var keyUint uint64
		if err := binary.Read(br, binary.LittleEndian, &keyUint); err != nil {
			return err
		}
		key := util.UintKey(keyUint)

		// Read counter value
		var value int64
		if err := binary.Read(br, binary.LittleEndian, &value); err != nil {
			return err
		}

		// Read write index
		var writeIndex uint64
		if err := binary.Read(br, binary.LittleEndian, &writeIndex); err != nil {
			return err
		}

		// Track the highest index
		if writeIndex > maxIndex {
			maxIndex = writeIndex
		}

		// Find the appropriate shard and store the entry
		shard := internal.GetShard(key, aspen.shards)
		shard.Data.Store(key, internal.Entry{
			Value: value,
			Index: writeIndex,
		})
	}

	// Update current index to the highest seen during load
	aspen.SetWriteIdx(maxIndex)

	return nil
}

// --------------------------------------------------------------------------
// CounterDB Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the database
func (aspen *aspenImpl) GetInfo() db.DatabaseInfo {

	// get current index only once to reduce contention
	currentWriteIndex := aspen.currIndex.Load()

	// collect shard sizes concurrently
	wg := sync.WaitGroup{}
	wg.Add(len(aspen.shards))
	shardSizes := make([]float64, len(aspen.shards))

	for shardIndex, shard := range aspen.shards {
		go func(i int, s *internal.Shard) {
			defer wg.Done()
			shardSizes[i] = float64(s.Data.Size())
		}(shardIndex, shard)
	}

	// wait for all shards to finish
	wg.Wait()

	// total counter count
	counters := 0
	for _, size := range shardSizes {
		counters += int(size)
	}

	// Metadata for this specific database implementation
	meta := &struct {
		CurrentWriteIndex uint64                 `json:"current_write_index"`
		ShardCount        int                    `json:"shard_count"`
		ShardDistribution util.DistributionStats `json:"shard_distribution"`
	}{
		CurrentWriteIndex: currentWriteIndex,
		ShardCount:        len(aspen.shards),
		ShardDistribution: util.NewDistributionStats(shardSizes),
	}

	// features
	supportedFeatures := []db.Feature{
		db.FeaturePut, db.FeaturePutIfAbsent, db.FeatureIncrement,
		db.FeatureGet, db.FeatureHas, db.FeatureDelete,
		db.FeatureSave, db.FeatureLoad,
	}

	return db.DatabaseInfo{
		Counters:          counters,
		DbType:            db.ImplAspen,
		SupportedFeatures: supportedFeatures,
		Metadata:          meta,
	}
}

// SupportsFeature checks if this implementation supports a specific CounterDB feature
func (aspen *aspenImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeaturePut |
		db.FeaturePutIfAbsent |
		db.FeatureIncrement |
		db.FeatureGet |
		db.FeatureHas |
		db.FeatureDelete |
		db.FeatureSave |
		db.FeatureLoad
	return supportedFeatures&feature == feature
}

// Close releases all resources. The aspen engine holds no background
// goroutines or file handles, so this is a no-op.
func (aspen *aspenImpl) Close() error {
	return nil
}

// --------------------------------------------------------------------------
// Index Management
// --------------------------------------------------------------------------

// SetWriteIdx safely updates the current index
// It only updates if the new index is greater than the current one
//
// Thread-safety: This method is thread-safe and can be called concurrently.
// It uses atomic operations to ensure that the index only increases.
func (aspen *aspenImpl) SetWriteIdx(newIdx uint64) {
	// Only update if the new index is greater
	for {
		currIdx := aspen.currIndex.Load()
		if newIdx <= currIdx {
			return
		}
		if aspen.currIndex.CompareAndSwap(currIdx, newIdx) {
			return
		}
	}
}

// WriteIdx returns the current index of the database
func (aspen *aspenImpl) WriteIdx() uint64 {
	return aspen.currIndex.Load()
}
