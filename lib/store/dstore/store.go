package dstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/dSEQ/lib/db"
	"github.com/ValentinKolb/dSEQ/lib/store"
	"github.com/ValentinKolb/dSEQ/lib/store/dstore/internal"
	"github.com/lni/dragonboat/v4/logger"
	sm "github.com/lni/dragonboat/v4/statemachine"

	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/client"
)

var (
	retries = 5
	log     = logger.GetLogger("store")
)

// storeImpl is the concrete implementation of the distributed counter store.
// It encapsulates a Dragonboat NodeHost which is used to communicate with the state machine.
type storeImpl struct {
	nh      *dragonboat.NodeHost
	shardID uint64
	cs      *client.Session
	timeout time.Duration
}

// NewDistributedStore creates a new distributed store instance which uses raft consensus to ensure strict linearizability
// across multiple nodes.
func NewDistributedStore(nh *dragonboat.NodeHost, shardID uint64, timeout time.Duration) store.ICounterStore {
	cs := nh.GetNoOPSession(shardID)
	return &storeImpl{
		nh:      nh,
		shardID: shardID,
		cs:      cs,
		timeout: timeout,
	}
}

// --------------------------------------------------------------------------
// Internal write and read operations (used by interface methods)
// --------------------------------------------------------------------------

// propose serializes a Command and sends it via SyncPropose.
// It returns the raw state machine result so callers can extract
// command-specific payloads (e.g. the post-increment value).
func (s *storeImpl) propose(cmd internal.Command) (sm.Result, error) {
	var zero sm.Result
	for i := 0; i < retries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)

		res, err := s.nh.SyncPropose(ctx, s.cs, cmd.Serialize())
		cancel()

		// Check for system busy errors
		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncPropose: System busy, retrying (%d/%d)...", i+1, retries)
			time.Sleep(s.timeout / 10)
			continue
		}

		if err != nil {
			return zero, store.NewError(store.RetCInternalError, err.Error())
		}
		if res.Value != uint64(store.RetCSuccess) {
			return zero, store.NewError(store.RetCode(res.Value), string(res.Data))
		}
		return res, nil
	}
	return zero, store.NewError(store.RetCInternalError, "timeout")
}

// asStoreError maps a raw read error to the store error taxonomy. Errors the
// state machine already typed pass through unchanged, everything else is
// wrapped as an internal error.
func asStoreError(err error) error {
	var rse *store.Error
	if errors.As(err, &rse) {
		return rse
	}
	return store.NewError(store.RetCInternalError, err.Error())
}

// write proposes a Command and discards the result payload.
// It returns a *store.Error if an error occurs, or nil on success.
func (s *storeImpl) write(cmd internal.Command) error {
	_, err := s.propose(cmd)
	return err
}

// read is a generic helper function queries the statemachine
// and attempts to convert the response into the expected type R.
//
// This function uses the SyncRead function (dragenboat) by default to Query the state machine.
// If linearizability is not required, the stale parameter can be set to true to use the faster StaleRead function.
//
// Is the read operation fails due to a system busy error, the function retries up to 5 times.
//
// It returns the response of type R and a error (nil on success).
func read[R any](r *storeImpl, q internal.Query, stale bool) (R, error) {
	var zero R
	for i := 0; i < retries; i++ {

		var res interface{}
		var err error

		// Query the standmaschine, use StaleRead if stale is set otherwise use SyncRead (default)
		if stale {
			res, err = r.nh.StaleRead(r.shardID, q)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
			res, err = r.nh.SyncRead(ctx, r.shardID, q)
			cancel()
		}

		// Check for system busy errors
		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncRead: System busy, retrying (%d/%d)...", i+1, retries)
			time.Sleep(r.timeout / 10)
			continue
		}

		if err != nil {
			return zero, asStoreError(err)
		}

		// The state machine is expected to return the response in the expected type R.
		casted, ok := res.(R)
		if !ok {
			return zero, store.NewError(store.RetCInternalError,
				fmt.Sprintf("unexpected type: received %T, expected %T", res, zero))
		}
		return casted, nil
	}
	return zero, store.NewError(store.RetCInternalError, "timeout")
}

// --------------------------------------------------------------------------
// Interface Methods (docs see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Upsert(key string, value int64) error {
	return s.write(internal.Command{
		Type:  internal.CommandTUpsert,
		Key:   key,
		Value: value,
	})
}

func (s *storeImpl) UpsertIfAbsent(key string, value int64) error {
	return s.write(internal.Command{
		Type:  internal.CommandTUpsertIfAbsent,
		Key:   key,
		Value: value,
	})
}

func (s *storeImpl) IncrementAndGet(key string, delta int64) (int64, bool, error) {
	res, err := s.propose(internal.Command{
		Type:  internal.CommandTIncrement,
		Key:   key,
		Value: delta,
	})
	if err != nil {
		return 0, false, err
	}
	// empty result data means the counter was not found
	if len(res.Data) != 8 {
		return 0, false, nil
	}
	return int64(binary.BigEndian.Uint64(res.Data)), true, nil
}

func (s *storeImpl) Find(key string) (int64, bool, error) {
	res, err := read[internal.QueryResult](s, internal.Query{
		Type: internal.QueryTFind,
		Key:  key,
	}, false)
	if err != nil {
		return 0, false, err
	}
	return res.Value, res.Ok, nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	return read[bool](s, internal.Query{
		Type: internal.QueryTHas,
		Key:  key,
	}, false)
}

func (s *storeImpl) Delete(key string) error {
	return s.write(
		internal.Command{
			Type: internal.CommandTDelete,
			Key:  key,
		},
	)
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	return read[db.DatabaseInfo](
		s,
		internal.Query{
			Type: internal.QueryTGetDBInfo,
		},
		true, // Note: allow for stale reads
	)
}
