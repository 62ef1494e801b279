// Package server implements the RPC server for the distributed sequence generator.
// It provides adapters for handling RPC requests to both the counter store and the
// sequence counter services, along with the core server implementation that manages
// shards and request routing.
//
// The package focuses on:
//   - Server-side RPC request handling for counter store and sequence operations
//   - Adapter pattern to decouple application logic from RPC mechanisms
//   - Flexible shard configuration with support for local, distributed and sql stores
//   - Dynamic creation of stores based on shard configuration
//   - Optional Prometheus metrics endpoint for request monitoring
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes incoming requests against a
//     store.ICounterStore.
//
//   - NewCounterStoreServerAdapter: Factory function creating an adapter for raw
//     counter operations, translating RPC requests to store.ICounterStore method
//     calls.
//
//   - NewSequenceCounterServerAdapter: Factory function creating an adapter for
//     sequence operations, creating a counter.ISequenceCounter on top of the store.
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer mechanisms.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  Shards: []common.ServerShard{
//	    {ShardID: 100, Type: common.ShardTypeLocalStore},
//	    {ShardID: 200, Type: common.ShardTypeSQLStore, DSN: "/var/lib/dseq/counters.db"},
//	  },
//	  Endpoint: "0.0.0.0:8080",
//	  TimeoutSecond: 5,
//	  LogLevel: "info",
//	}
//
//	// Create and start the server
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPDefaultServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	// Start the server
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// The server supports three types of shards, which can be mixed within a single server:
//
//   - ShardTypeLocalStore: An in-memory store implementation, suitable for
//     single-node deployments or development environments.
//
//   - ShardTypeRemoteStore: A distributed store implementation using Raft consensus,
//     providing strong consistency across multiple nodes. When using this type,
//     RAFT configuration (RTTMillisecond, SnapshotEntries, CompactionOverhead,
//     DataDir, ReplicaID, and ClusterMembers) must be properly configured.
//
//   - ShardTypeSQLStore: A store backed by an embedded SQLite database, giving
//     single-node deployments durability across restarts without a Raft cluster.
//
// Every shard serves both the raw counter store operations and the sequence
// operations layered on top of them.
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent requests
//	across multiple connections. Each request is processed independently.
//	The Listen method is not thread-safe and should be called only once.
package server
