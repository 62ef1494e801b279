// Package http carries the RPC protocol over plain HTTP instead of the
// framed socket transports. Messages are POSTed to /{shardId} on one of
// the configured servers, the response body is the serialized reply.
//
// Compared to the tcp and unix transports there is no frame protocol and
// no request multiplexing: every request is an ordinary HTTP exchange, and
// connection pooling is delegated to net/http. That costs some throughput
// but makes the server reachable with curl, load balancers and anything
// else that speaks HTTP.
//
// The client balances round-robin over the configured endpoints and
// retries transport-level failures; HTTP error statuses are returned to
// the caller unchanged. With log level "debug" the server logs every
// request with its status and duration.
package http
