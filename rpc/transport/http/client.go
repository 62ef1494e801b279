package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dSEQ/rpc/common"
	"github.com/ValentinKolb/dSEQ/rpc/transport"
)

// httpClient posts serialized messages to /{shardId} on one of the
// configured servers. Connection reuse is left to net/http's idle pool, so
// unlike the socket transports there is no multiplexing or frame protocol
// here.
type httpClient struct {
	targets []*url.URL
	hc      *http.Client
	rr      uint32
	retries int
}

// NewHttpClientTransport creates a client transport speaking plain HTTP
func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClient{}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (c *httpClient) Connect(config common.ClientConfig) error {
	targets := make([]*url.URL, 0, len(config.Endpoints))
	for _, endpoint := range config.Endpoints {
		u, err := url.Parse(endpoint)
		if err != nil {
			return fmt.Errorf("invalid endpoint %q: %v", endpoint, err)
		}
		targets = append(targets, u)
	}

	c.targets = targets
	c.rr = 0
	c.retries = config.RetryCount
	c.hc = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     time.Duration(config.TimeoutSecond) * time.Second,
		},
	}
	return nil
}

func (c *httpClient) Send(shardID uint64, req []byte) ([]byte, error) {
	if c.hc == nil {
		return nil, fmt.Errorf("http transport not initialized")
	}

	resp, err := c.post(c.nextTarget(shardID), req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (c *httpClient) Close() error {
	if c.hc != nil {
		c.hc.CloseIdleConnections()
	}
	c.hc = nil
	c.targets = nil
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// nextTarget picks a server round-robin and appends the shard path
func (c *httpClient) nextTarget(shardID uint64) string {
	idx := atomic.AddUint32(&c.rr, 1) % uint32(len(c.targets))
	return fmt.Sprintf("%s/%d", c.targets[idx].String(), shardID)
}

// post sends the request, retrying transport-level failures. HTTP error
// statuses are not retried, those are returned to the caller as-is.
func (c *httpClient) post(target string, body []byte) (*http.Response, error) {
	attempts := c.retries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		resp, err := c.hc.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
