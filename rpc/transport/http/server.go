package http

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ValentinKolb/dSEQ/rpc/common"
	"github.com/ValentinKolb/dSEQ/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

// httpServer exposes the registered handler as POST /{shardId}. The
// response body carries the serialized reply, protocol problems (bad shard
// id, unreadable body) map to HTTP error statuses.
type httpServer struct {
	handler transport.ServerHandleFunc
	cfg     common.ServerConfig
}

// NewHttpServerTransport creates a server transport speaking plain HTTP
func NewHttpServerTransport() transport.IRPCServerTransport {
	return &httpServer{}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (s *httpServer) RegisterHandler(handler transport.ServerHandleFunc) {
	s.handler = handler
}

func (s *httpServer) Listen(config common.ServerConfig) error {
	s.cfg = config

	var endpoint http.HandlerFunc = s.serveRPC
	if config.LogLevel == "debug" {
		endpoint = logRequests(endpoint)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /{shardId}", endpoint)

	Logger.Infof("Starting HTTP server on %s", config.Endpoint)
	return http.ListenAndServe(config.Endpoint, mux)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// serveRPC handles one RPC over HTTP
func (s *httpServer) serveRPC(w http.ResponseWriter, r *http.Request) {
	shardID, err := strconv.ParseUint(r.PathValue("shardId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid shardId", http.StatusBadRequest)
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return
	}

	resp := s.handler(shardID, body)
	if _, err := w.Write(resp); err != nil {
		http.Error(w, "Failed to write response", http.StatusInternalServerError)
	}
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// statusRecorder remembers the status code written by the wrapped handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// logRequests logs method, path, status and duration of each request
func logRequests(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	}
}
