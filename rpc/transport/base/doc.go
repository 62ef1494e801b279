// Package base contains the protocol-independent halves of the socket
// transports. The tcp and unix packages plug a connector into it and get a
// complete client and server transport; the package itself never dials or
// listens on its own.
//
// Wire Protocol:
//
//	A connection carries a stream of frames. Each frame starts with a
//	20 byte header (shard id, request id, payload length, all big endian)
//	followed by the serialized message. The request id lets a client
//	multiplex many outstanding requests over one connection and match
//	responses as they arrive, in any order. Payloads are capped at
//	maxFramePayload since sequence and counter messages are tiny; a larger
//	announced length means a broken peer.
//
// Client Side:
//
//	The client keeps a configurable number of links per endpoint and
//	spreads requests over them round-robin. Each link has one reader
//	goroutine that correlates incoming frames with the callers blocked on
//	them. Failed requests are retried on another link with exponential
//	backoff and jitter, and a link whose connection breaks redials it.
//
// Server Side:
//
//	The server serves every accepted connection on its own goroutine and
//	processes the requests of a connection on a bounded worker pool, so a
//	single chatty client cannot spawn unbounded goroutines. Read buffers
//	come from a sync.Pool and are reused across frames.
//
// Concurrency:
//
//	All exported methods are safe for concurrent use. Writes to a shared
//	connection are serialized with a per-connection lock, reads happen on
//	a single goroutine per connection.
package base
