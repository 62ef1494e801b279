// Package client implements RPC clients for the distributed sequence generator.
// It provides implementations of the store.ICounterStore and counter.ISequenceCounter
// interfaces that communicate with remote servers via RPC.
//
// The package focuses on:
//   - Transparent RPC access to counter store and sequence counter implementations
//   - Integration with the transport and serialization layers
//   - Error handling and conversion between RPC and domain errors
//
// Key Components:
//
//   - NewRPCCounterStore: Factory function that creates a client implementing the
//     store.ICounterStore interface. This client forwards all operations to remote
//     servers via the configured transport layer.
//
//   - NewRPCSequenceCounter: Factory function that creates a client implementing
//     the counter.ISequenceCounter interface for drawing ids from named sequences.
//
// Usage Example:
//
//		// Configure the client
//		config := common.ClientConfig{
//		  Endpoints:              []string{"localhost:5000"},
//		  TimeoutSecond:          5,
//		  RetryCount:             3,
//		  ConnectionsPerEndpoint: 1,
//		}
//
//	 // Create a serializer
//		serializer := serializer.NewBinarySerializer()
//
//		// Create a counter store client
//		store, _ := client.NewRPCCounterStore(1, config, tcp.NewTCPClientTransport(), serializer)
//
//		// Use the store
//		store.Upsert("mycounter", 42)
//		value, exists, _ := store.Find("mycounter")
//
//		// Create and use a sequence counter
//		seq, _ := client.NewRPCSequenceCounter(1, counter.DefaultOptions(), config, tcp.NewTCPClientTransport(), serializer)
//		id, _ := seq.GenerateID("orders")
//
// Error Handling:
//
//	Error responses carry a typed error code over the wire. The client converts
//	them back into the errors of the counter package, so errors.As works the
//	same against an RPC-backed sequence counter as against a local one.
//
// Performance Considerations:
//
//   - Sequence requests are small, so a single connection per endpoint is often
//     more efficient due to reduced connection overhead.
//
//   - The choice of serializer significantly affects performance. The binary
//     serializer provides the best performance and smallest payload size.
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
