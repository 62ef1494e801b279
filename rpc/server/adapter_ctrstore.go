package server

import (
	"fmt"

	"github.com/ValentinKolb/dSEQ/lib/store"
	"github.com/ValentinKolb/dSEQ/rpc/common"
)

func NewCounterStoreServerAdapter() IRPCServerAdapter {
	return &ctrStoreServerAdapterImpl{}
}

type ctrStoreServerAdapterImpl struct{}

func (adapter *ctrStoreServerAdapterImpl) Handle(req *common.Message, store store.ICounterStore) *common.Message {
	// Check for nil store
	if store == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTCTRUpsert:
		err := store.Upsert(req.Key, req.Value)
		return common.NewUpsertResponse(err)
	case common.MsgTCTRUpsertIfAbsent:
		err := store.UpsertIfAbsent(req.Key, req.Value)
		return common.NewUpsertIfAbsentResponse(err)
	case common.MsgTCTRIncrement:
		val, found, err := store.IncrementAndGet(req.Key, req.Delta)
		return common.NewIncrementResponse(val, found, err)
	case common.MsgTCTRFind:
		val, found, err := store.Find(req.Key)
		return common.NewFindResponse(val, found, err)
	case common.MsgTCTRHas:
		found, err := store.Has(req.Key)
		return common.NewHasResponse(found, err)
	case common.MsgTCTRDelete:
		err := store.Delete(req.Key)
		return common.NewDeleteResponse(err)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC CounterStoreAdapter - Unsuported message type: %s", req.MsgType),
		)
	}
}
