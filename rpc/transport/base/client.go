package base

import (
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dSEQ/rpc/common"
	"github.com/ValentinKolb/dSEQ/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("transport/rpc")

// -----------------------------------------------------------
// Connector interface (implemented by tcp, unix, ...)
// -----------------------------------------------------------

// IClientConnector supplies the protocol-specific part of a client
// transport. The base transport handles framing, multiplexing and retries,
// the connector only knows how to produce and tune a net.Conn.
type IClientConnector interface {
	// Connect dials a single endpoint
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the protocol name for log output (e.g. "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific socket options to a
	// freshly dialed connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Types
// -----------------------------------------------------------

// reply carries the outcome of one request back to the caller waiting in Send
type reply struct {
	payload []byte
	err     error
}

// link is one live connection to one endpoint. Requests from many
// goroutines are multiplexed over it; pending maps request ids to the
// channel the caller is blocked on.
type link struct {
	conn     net.Conn
	endpoint string
	done     chan struct{}
	pending  *xsync.MapOf[uint64, chan reply]
	writeMu  sync.Mutex
	owner    *clientTransport
}

// clientTransport is the protocol-independent client. It owns a set of
// links (connections per endpoint times endpoints) and spreads requests
// over them round-robin.
type clientTransport struct {
	dial       IClientConnector
	cfg        common.ClientConfig
	links      []*link
	linksMu    sync.RWMutex
	rrCounter  uint64
	reqCounter uint64
	closed     bool
}

// -----------------------------------------------------------
// Factory (used by the tcp and unix packages)
// -----------------------------------------------------------

// NewBaseClientTransport builds a client transport around the given connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		dial:       connector,
		reqCounter: 1,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	t.cfg = config
	t.closed = false
	t.dropLinks()

	perEndpoint := config.ConnectionsPerEndpoint
	if perEndpoint < 1 {
		perEndpoint = 1
	}

	want := len(config.Endpoints) * perEndpoint
	for _, endpoint := range config.Endpoints {
		for i := 0; i < perEndpoint; i++ {
			l := &link{
				endpoint: endpoint,
				done:     make(chan struct{}),
				pending:  xsync.NewMapOf[uint64, chan reply](),
				owner:    t,
			}
			if err := l.redial(); err != nil {
				Logger.Warningf("Failed to connect to %s (connection %d/%d): %v", endpoint, i+1, perEndpoint, err)
				continue
			}

			t.linksMu.Lock()
			t.links = append(t.links, l)
			t.linksMu.Unlock()

			go l.readLoop()
		}
	}

	t.linksMu.RLock()
	got := len(t.links)
	t.linksMu.RUnlock()

	if got == 0 {
		return fmt.Errorf("failed to connect to any endpoint")
	}

	Logger.Infof("Connected %d of %d connections across %d endpoints via %s",
		got, want, len(config.Endpoints), t.dial.GetName())
	return nil
}

func (t *clientTransport) Send(shardID uint64, req []byte) ([]byte, error) {
	requestID := atomic.AddUint64(&t.reqCounter, 1)

	attempts := t.cfg.RetryCount
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		l := t.pickLink()
		if l == nil {
			return nil, fmt.Errorf("no active connections available")
		}

		resp, err := t.dispatch(l, shardID, requestID, req)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		Logger.Debugf("Request attempt %d/%d failed: %v", attempt+1, attempts, err)
		time.Sleep(backoffDelay(attempt))
	}

	return nil, fmt.Errorf("failed to send request after %d attempts: %v", attempts, lastErr)
}

func (t *clientTransport) Close() error {
	t.closed = true
	t.dropLinks()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// dispatch performs one request/response exchange on one link
func (t *clientTransport) dispatch(l *link, shardID, requestID uint64, req []byte) ([]byte, error) {
	if l.conn == nil {
		return nil, fmt.Errorf("connection is closed")
	}

	respCh := make(chan reply, 1)
	l.pending.Store(requestID, respCh)
	defer l.pending.Delete(requestID)

	timeout := t.timeout()
	if timeout > 0 {
		l.conn.SetWriteDeadline(time.Now().Add(timeout))
	}

	// the write lock covers only the frame write, responses arrive on the
	// reader goroutine
	l.writeMu.Lock()
	err := sendFrame(l.conn, shardID, requestID, req)
	l.writeMu.Unlock()
	if err != nil {
		return nil, err
	}

	var deadline <-chan time.Time
	if timeout > 0 {
		deadline = time.After(timeout)
	}

	select {
	case r := <-respCh:
		return r.payload, r.err
	case <-deadline:
		return nil, fmt.Errorf("request timed out")
	}
}

// pickLink returns the next link round-robin, or nil if none are connected
func (t *clientTransport) pickLink() *link {
	t.linksMu.RLock()
	defer t.linksMu.RUnlock()

	switch len(t.links) {
	case 0:
		return nil
	case 1:
		return t.links[0]
	default:
		idx := atomic.AddUint64(&t.rrCounter, 1) % uint64(len(t.links))
		return t.links[idx]
	}
}

// dropLinks closes every link and empties the list
func (t *clientTransport) dropLinks() {
	t.linksMu.Lock()
	defer t.linksMu.Unlock()

	for _, l := range t.links {
		close(l.done)
		if l.conn != nil {
			l.conn.Close()
		}
	}
	t.links = nil
}

func (t *clientTransport) timeout() time.Duration {
	if t.cfg.TimeoutSecond > 0 {
		return time.Duration(t.cfg.TimeoutSecond) * time.Second
	}
	return 0
}

// backoffDelay computes the sleep before retry number attempt: exponential
// from 50ms with +-10% jitter so synchronized clients do not retry in
// lockstep.
func backoffDelay(attempt int) time.Duration {
	ms := float64(50 * (int64(1) << attempt))
	jittered := ms * (0.9 + 0.2*rand.Float64())
	return time.Duration(jittered) * time.Millisecond
}

// readLoop receives frames on the link and hands each one to the caller
// waiting on its request id. Runs until the link is dropped or the
// connection cannot be restored.
func (l *link) readLoop() {
	for {
		select {
		case <-l.done:
			return
		default:
		}

		if timeout := l.owner.timeout(); timeout > 0 {
			l.conn.SetReadDeadline(time.Now().Add(timeout))
		}

		shardID, requestID, payload, err := recvFrame(l.conn, nil)

		respCh, waiting := l.pending.Load(requestID)
		switch {
		case waiting && err != nil:
			respCh <- reply{nil, fmt.Errorf("error reading response: %v", err)}
		case waiting:
			respCh <- reply{payload, nil}
		case err != nil:
			Logger.Errorf("Read error on connection to %s: %v", l.endpoint, err)
			if err := l.redial(); err != nil {
				Logger.Errorf("Failed to reconnect to %s: %v", l.endpoint, err)
				return
			}
		default:
			Logger.Warningf("Received response for unknown request ID %d with shard ID %d", requestID, shardID)
		}
	}
}

// redial (re-)establishes the link's connection
func (l *link) redial() error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}

	conn, err := l.owner.dial.Connect(l.endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %v", l.endpoint, err)
	}
	if err := l.owner.dial.UpgradeConnection(conn, l.owner.cfg); err != nil {
		conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %v", l.endpoint, err)
	}

	l.conn = conn
	return nil
}
