package base

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/dSEQ/rpc/common"
	"github.com/ValentinKolb/dSEQ/rpc/transport"
)

// -----------------------------------------------------------
// Connector interface (implemented by tcp, unix, ...)
// -----------------------------------------------------------

// IServerConnector supplies the protocol-specific part of a server
// transport: producing the listener.
type IServerConnector interface {
	// Listen creates the listener for the configured endpoint
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the protocol name for log output (e.g. "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Types
// -----------------------------------------------------------

// serverTransport is the protocol-independent server. It accepts
// connections from the connector's listener and serves each one on its own
// goroutine with a bounded number of request workers.
type serverTransport struct {
	accept     IServerConnector
	handler    transport.ServerHandleFunc
	cfg        common.ServerConfig
	listener   net.Listener
	buffers    *sync.Pool
	bufferSize int
	maxWorkers int
}

// serverConn tracks the per-connection state: the worker semaphore, the
// wait group covering in-flight workers and the write lock that keeps
// response frames from interleaving.
type serverConn struct {
	conn    net.Conn
	t       *serverTransport
	timeout time.Duration
	sem     chan struct{}
	wg      sync.WaitGroup
	writeMu sync.Mutex
}

// -----------------------------------------------------------
// Factory (used by the tcp and unix packages)
// -----------------------------------------------------------

// NewBaseServerTransport builds a server transport around the given
// connector. bufferSize is the pooled read buffer size, maxWorkersPerConn
// bounds the requests processed concurrently on a single connection.
func NewBaseServerTransport(connector IServerConnector, bufferSize int, maxWorkersPerConn int) transport.IRPCServerTransport {
	if maxWorkersPerConn < 1 {
		maxWorkersPerConn = 1
	}

	return &serverTransport{
		accept:     connector,
		bufferSize: bufferSize,
		maxWorkers: maxWorkersPerConn,
		buffers: &sync.Pool{
			New: func() interface{} {
				return make([]byte, bufferSize)
			},
		},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	t.cfg = config

	listener, err := t.accept.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %v", err)
	}
	t.listener = listener

	Logger.Infof("Starting %s server on %s with %d workers per connection",
		t.accept.GetName(), config.Endpoint, t.maxWorkers)

	for {
		conn, err := listener.Accept()
		if err != nil {
			Logger.Errorf("Accept error: %v", err)
			continue
		}

		sc := &serverConn{
			conn:    conn,
			t:       t,
			timeout: time.Duration(config.TimeoutSecond) * time.Second,
			sem:     make(chan struct{}, t.maxWorkers),
		}
		go sc.serve()
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// serve reads frames off the connection until it closes. Each frame is
// processed on a worker goroutine; the semaphore blocks the read loop once
// maxWorkers requests are in flight, pushing back on the client instead of
// spawning without bound.
func (sc *serverConn) serve() {
	defer sc.conn.Close()

	for {
		err := sc.readNext()
		if err == io.EOF {
			Logger.Infof("Connection closed by client")
			break
		}
		if err != nil {
			Logger.Errorf("Error handling request: %v", err)
			break
		}
	}

	// in-flight workers still hold pooled buffers and may write responses
	sc.wg.Wait()
}

// readNext reads a single frame and schedules its worker
func (sc *serverConn) readNext() error {
	if sc.timeout > 0 {
		if err := sc.conn.SetReadDeadline(time.Now().Add(sc.timeout)); err != nil {
			return fmt.Errorf("failed to set read deadline: %v", err)
		}
	}

	buf := sc.t.buffers.Get().([]byte)
	shardID, requestID, payload, err := recvFrame(sc.conn, buf)
	if err != nil {
		sc.t.buffers.Put(buf)
		return err
	}

	sc.sem <- struct{}{}
	sc.wg.Add(1)
	go func() {
		defer sc.t.buffers.Put(buf)
		sc.respond(shardID, requestID, payload)
	}()
	return nil
}

// respond runs the handler for one frame and writes the response back
// under the same request id
func (sc *serverConn) respond(shardID, requestID uint64, payload []byte) {
	defer func() {
		<-sc.sem
		sc.wg.Done()
	}()

	start := time.Now()
	resp := sc.t.handler(shardID, payload)
	Logger.Debugf("Processed request for shard %d with requestID %d took %s", shardID, requestID, time.Since(start))

	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()

	if sc.timeout > 0 {
		if err := sc.conn.SetWriteDeadline(time.Now().Add(sc.timeout)); err != nil {
			Logger.Errorf("Failed to set write deadline: %v", err)
			return
		}
	}
	if err := sendFrame(sc.conn, shardID, requestID, resp); err != nil {
		Logger.Errorf("Failed to write response: %v", err)
	}
}
