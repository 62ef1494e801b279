package server

import (
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/dSEQ/lib/db"
	"github.com/ValentinKolb/dSEQ/lib/db/engines/aspen"
	"github.com/ValentinKolb/dSEQ/lib/store"
	"github.com/ValentinKolb/dSEQ/lib/store/dstore"
	"github.com/ValentinKolb/dSEQ/lib/store/lstore"
	"github.com/ValentinKolb/dSEQ/lib/store/sqlstore"
	"github.com/ValentinKolb/dSEQ/rpc/common"
	"github.com/ValentinKolb/dSEQ/rpc/serializer"
	"github.com/ValentinKolb/dSEQ/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

// serverShard is a struct that represents a shard in the RPC server
// It contains the store it encapsulates and the adapters that handle
// requests for the store: one for raw counter operations and one for
// the sequence operations layered on top of them
type serverShard struct {
	Store     store.ICounterStore
	Counters  IRPCServerAdapter
	Sequences IRPCServerAdapter
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := rpc.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	// Create shards map
	shardMap := xsync.NewMapOf[uint64, serverShard]()

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	// Create the RPC server
	return rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     shardMap,
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	shards     *xsync.MapOf[uint64, serverShard]
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(shardId uint64, req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		// Get appropriate shard
		shard, ok := s.shards.Load(shardId)

		// Case shard does not exist -> error
		if !ok {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     "shard not found",
				Code:    common.ErrCodeInternal,
			}
		} else {
			// Decode the request
			err := s.serializer.Deserialize(req, &msg)

			if err != nil {
				respMsg = common.Message{
					MsgType: common.MsgTError,
					Err:     fmt.Sprintf("failed to deserialize request: %s", err),
					Code:    common.ErrCodeInternal,
				}
			} else {
				// Count the request per shard and message type
				metrics.GetOrCreateCounter(fmt.Sprintf(
					`dseq_rpc_requests_total{shard=%q,type=%q}`, fmt.Sprint(shardId), msg.MsgType,
				)).Inc()

				// Route to the appropriate adapter
				switch msg.MsgType {
				case common.MsgTSEQNext, common.MsgTSEQInit, common.MsgTSEQExists:
					respMsg = *shard.Sequences.Handle(&msg, shard.Store)
				default:
					respMsg = *shard.Counters.Handle(&msg, shard.Store)
				}
			}
		}

		// Return result
		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			Logger.Errorf("failed to serialize response: %v", err)
			val, _ = s.serializer.Serialize(common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to serialize response: %s", err),
				Code:    common.ErrCodeInternal,
			})
		}
		return val
	})
}

// serveMetrics exposes all collected metrics in Prometheus text format
func (s *rpcServer) serveMetrics() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	Logger.Infof("Starting metrics server on %s", s.config.MetricsEndpoint)
	if err := http.ListenAndServe(s.config.MetricsEndpoint, mux); err != nil {
		Logger.Errorf("metrics server stopped: %v", err)
	}
}

func (s *rpcServer) init() error {

	// Init logger
	common.InitLoggers(s.config)

	// Function to create a new database instance
	dbFactory := func() db.CounterDB { return aspen.NewAspenDB(nil) }

	// Create the Dragonboat NodeHost
	var nodeHost *dragonboat.NodeHost
	var err error
	if s.config.HasRemoteShard() {
		// Only create the NodeHost if we have remote shards
		nodeHost, err = dragonboat.NewNodeHost(s.config.ToNodeHostConfig())
		if err != nil {
			return fmt.Errorf("failed to create node host: %w", err)
		}
	}

	// Configure the timeout for the distributed store
	timeout := time.Duration(s.config.TimeoutSecond) * time.Second

	// CREATE SHARDS

	/*
		Note: A single RPC Server can have any number of local, remote and or
		sql shards. Each shard serves both the raw counter store operations
		and the sequence operations. The following loop creates all the
		shards and stores them for the RPC server.
	*/

	for _, shardConfig := range s.config.Shards {

		// Case local store
		if shardConfig.Type == common.ShardTypeLocalStore {
			s.shards.Store(shardConfig.ShardID, serverShard{
				Store:     lstore.NewLocalStore(dbFactory),
				Counters:  NewCounterStoreServerAdapter(),
				Sequences: NewSequenceCounterServerAdapter(),
			})
			Logger.Infof("created local counter store for shard %d", shardConfig.ShardID)

			// Case sql store
		} else if shardConfig.Type == common.ShardTypeSQLStore {
			sqlStore, err := sqlstore.NewSQLStore(shardConfig.DSN)
			if err != nil {
				return fmt.Errorf("failed to create sql store for shard %d: %w", shardConfig.ShardID, err)
			}
			s.shards.Store(shardConfig.ShardID, serverShard{
				Store:     sqlStore,
				Counters:  NewCounterStoreServerAdapter(),
				Sequences: NewSequenceCounterServerAdapter(),
			})
			Logger.Infof("created sql counter store for shard %d (%s)", shardConfig.ShardID, shardConfig.DSN)

			// Case remote store
		} else if shardConfig.Type == common.ShardTypeRemoteStore {
			if nodeHost == nil {
				return fmt.Errorf("node host is nil, cannot create remote store")
			}

			// Start Raft for the shard
			if err := nodeHost.StartConcurrentReplica(s.config.ClusterMembers, false, dstore.CreateStateMaschineFactory(dbFactory), s.config.ToDragonboatConfig(shardConfig.ShardID)); err != nil {
				Logger.Errorf("failed to start shard %v: %v", shardConfig.ShardID, err)
			}

			s.shards.Store(shardConfig.ShardID, serverShard{
				Store:     dstore.NewDistributedStore(nodeHost, shardConfig.ShardID, timeout),
				Counters:  NewCounterStoreServerAdapter(),
				Sequences: NewSequenceCounterServerAdapter(),
			})
			Logger.Infof("created remote counter store for shard %d", shardConfig.ShardID)

		} else {
			return fmt.Errorf("invalid shard type: %s", shardConfig.Type)
		}
	}

	Logger.Infof("dSEQ setup completed successfully")

	// Configure the transport layer
	s.registerTransportHandler()

	// Start the metrics endpoint if configured
	if s.config.MetricsEndpoint != "" {
		go s.serveMetrics()
	}

	return nil
}

// Serve starts the RPC server
// This function will also initialize the server plus the shards and start the transport layer
func (s *rpcServer) Serve() error {
	err := s.init()
	if err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}
