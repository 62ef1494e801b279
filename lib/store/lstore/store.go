package lstore

import (
	"sync/atomic"

	"github.com/ValentinKolb/dSEQ/lib/db"
	"github.com/ValentinKolb/dSEQ/lib/store"
)

type storeImpl struct {
	db    db.CounterDB
	index atomic.Uint64
}

// NewLocalStore creates a new local store instance.
// This store implementation is not distributed and only works on a single node.
// This works by using the aspen engine from the db package directly.
func NewLocalStore(factory store.DBFactory) store.ICounterStore {
	return &storeImpl{
		db:    factory(),
		index: atomic.Uint64{},
	}
}

// incAndGetIndex increments the index and returns the new value.
// It is used to ensure that each write operation has a unique index.
//
// Thread-safety: This method is thread-safe since it uses atomic operations.
func (s *storeImpl) incAndGetIndex() uint64 {
	return s.index.Add(1)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Upsert(key string, value int64) error {
	if !s.db.SupportsFeature(db.FeaturePut) {
		return store.NewError(store.RetCUnsupportedOperation, "Upsert operation is not supported")
	}
	s.db.Put(key, value, s.incAndGetIndex())
	return nil
}

func (s *storeImpl) UpsertIfAbsent(key string, value int64) error {
	if !s.db.SupportsFeature(db.FeaturePutIfAbsent) {
		return store.NewError(store.RetCUnsupportedOperation, "UpsertIfAbsent operation is not supported")
	}
	s.db.PutIfAbsent(key, value, s.incAndGetIndex())
	return nil
}

func (s *storeImpl) IncrementAndGet(key string, delta int64) (int64, bool, error) {
	if !s.db.SupportsFeature(db.FeatureIncrement) {
		return 0, false, store.NewError(store.RetCUnsupportedOperation, "IncrementAndGet operation is not supported")
	}
	value, found := s.db.IncrementAndGet(key, delta, s.incAndGetIndex())
	return value, found, nil
}

func (s *storeImpl) Find(key string) (int64, bool, error) {
	if !s.db.SupportsFeature(db.FeatureGet) {
		return 0, false, store.NewError(store.RetCUnsupportedOperation, "Find operation is not supported")
	}
	value, ok := s.db.Get(key)
	return value, ok, nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	if !s.db.SupportsFeature(db.FeatureHas) {
		return false, store.NewError(store.RetCUnsupportedOperation, "Has operation is not supported")
	}
	return s.db.Has(key), nil
}

func (s *storeImpl) Delete(key string) error {
	if !s.db.SupportsFeature(db.FeatureDelete) {
		return store.NewError(store.RetCUnsupportedOperation, "Delete operation is not supported")
	}
	s.db.Delete(key, s.incAndGetIndex())
	return nil
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	return s.db.GetInfo(), nil
}
