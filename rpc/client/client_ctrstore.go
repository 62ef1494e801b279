package client

import (
	"fmt"

	"github.com/ValentinKolb/dSEQ/lib/db"
	"github.com/ValentinKolb/dSEQ/lib/store"
	"github.com/ValentinKolb/dSEQ/rpc/common"
	"github.com/ValentinKolb/dSEQ/rpc/serializer"
	"github.com/ValentinKolb/dSEQ/rpc/transport"
)

// NewRPCCounterStore creates a new RPC counter store
// The function takes a shard ID, a config, a transport and a serializer as parameters
// It returns a store.ICounterStore and an error
func NewRPCCounterStore(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.ICounterStore, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC counter store
	s := rpcCounterStore{
		rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC counter store
	return &s, nil
}

type rpcCounterStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcCounterStore) Upsert(key string, value int64) (err error) {
	req := common.NewUpsertRequest(key, value)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcCounterStore) UpsertIfAbsent(key string, value int64) (err error) {
	req := common.NewUpsertIfAbsentRequest(key, value)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcCounterStore) IncrementAndGet(key string, delta int64) (value int64, found bool, err error) {
	req := common.NewIncrementRequest(key, delta)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return 0, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (i *rpcCounterStore) Find(key string) (value int64, found bool, err error) {
	req := common.NewFindRequest(key)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return 0, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (i *rpcCounterStore) Has(key string) (loaded bool, err error) {
	req := common.NewHasRequest(key)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcCounterStore) Delete(key string) (err error) {
	req := common.NewDeleteRequest(key)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

// GetDBInfo is not implemented for rpc
func (i *rpcCounterStore) GetDBInfo() (info db.DatabaseInfo, err error) {
	return db.DatabaseInfo{}, fmt.Errorf("the GetDBInfo() method is not implemented in the rpc client adapter")
}
