package server

import (
	"fmt"

	"github.com/ValentinKolb/dSEQ/lib/counter"
	"github.com/ValentinKolb/dSEQ/lib/store"
	"github.com/ValentinKolb/dSEQ/rpc/common"
)

func NewSequenceCounterServerAdapter() IRPCServerAdapter {
	return &seqCounterServerAdapterImpl{}
}

type seqCounterServerAdapterImpl struct{}

func (adapter *seqCounterServerAdapterImpl) Handle(req *common.Message, store store.ICounterStore) (resp *common.Message) {

	// Check for nil store
	if store == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	// Create the sequence counter on top of the shard's store. The namespace
	// and step travel with every request so stateless handling stays possible.
	opts := counter.DefaultOptions()
	if req.Namespace != "" {
		opts.Namespace = req.Namespace
	}
	if req.Delta != 0 {
		opts.Step = req.Delta
	}

	seq, err := counter.NewSequenceCounter(store, opts)
	if err != nil {
		return common.NewErrorResponse(fmt.Sprintf("failed to create sequence counter: %v", err))
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTSEQNext:
		id, err := seq.GenerateID(req.Key)
		return common.NewNextResponse(id, err)
	case common.MsgTSEQInit:
		err := seq.SetInitialValue(req.Key, req.Value)
		return common.NewInitResponse(err)
	case common.MsgTSEQExists:
		found, err := seq.Exists(req.Key)
		return common.NewExistsResponse(found, err)
	default:
		return common.NewErrorResponse(fmt.Sprintf("RPC SequenceCounterAdapter - Unsuported message type: %s", req.MsgType))
	}
}
