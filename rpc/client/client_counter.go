package client

import (
	"github.com/ValentinKolb/dSEQ/lib/counter"
	"github.com/ValentinKolb/dSEQ/rpc/common"
	"github.com/ValentinKolb/dSEQ/rpc/serializer"
	"github.com/ValentinKolb/dSEQ/rpc/transport"
)

// NewRPCSequenceCounter creates a new RPC sequence counter
// The function takes a shard ID, counter options, a config, a transport and a
// serializer as parameters. It returns a counter.ISequenceCounter and an error
//
// The namespace and step from the options travel with every request, so the
// server handles each call statelessly. Lazy initialization on the server uses
// the server's default initial value; use SetInitialValue for anything else
func NewRPCSequenceCounter(
	shardId uint64,
	opts counter.Options,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (counter.ISequenceCounter, error) {

	// Validate the options the same way the local counter does
	if opts.Step == 0 {
		return nil, &counter.InvalidArgumentError{Reason: "step must not be zero"}
	}
	if opts.Namespace == "" {
		opts.Namespace = counter.DefaultOptions().Namespace
	}

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC sequence counter
	c := rpcSequenceCounter{
		rpcClientAdapter: rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
		opts: opts,
	}

	// Return the RPC sequence counter
	return &c, nil
}

type rpcSequenceCounter struct {
	rpcClientAdapter
	opts counter.Options
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the counter package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcSequenceCounter) GenerateID(name string) (id int64, err error) {
	req := common.NewNextRequest(name, i.opts.Namespace, i.opts.Step)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return 0, err
	}
	return resp.Value, nil
}

func (i *rpcSequenceCounter) SetInitialValue(name string, initialValue int64) (err error) {
	req := common.NewInitRequest(name, i.opts.Namespace, initialValue)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcSequenceCounter) Exists(name string) (found bool, err error) {
	req := common.NewExistsRequest(name, i.opts.Namespace)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}
