// Package rtorrent updates rTorrent's listening port over XML-RPC.
//
// rTorrent exposes no authentication of its own; access control is left to the
// web server publishing the /RPC2 endpoint.
package rtorrent

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kolo/xmlrpc"
	"github.com/rs/zerolog"
)

// setPortRangeMethod sets the low and high end of the listening port range.
const setPortRangeMethod = "set_port_range"

// Client talks to rTorrent's XML-RPC endpoint
type Client struct {
	endpoint string
	xml      *xmlrpc.Client
	logger   zerolog.Logger
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	transport http.RoundTripper
	timeout   time.Duration
}

// WithTransport sets the HTTP transport. It takes precedence over WithTimeout.
func WithTransport(transport http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.transport = transport
	}
}

// WithTimeout bounds how long the transport waits for response headers
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// NewClient creates a client for {baseURL}/RPC2
func NewClient(baseURL string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrEmptyURL
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	transport := o.transport
	if transport == nil && o.timeout > 0 {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.ResponseHeaderTimeout = o.timeout
		transport = t
	}

	endpoint := strings.TrimRight(baseURL, "/") + "/RPC2"

	xc, err := xmlrpc.NewClient(endpoint, transport)
	if err != nil {
		return nil, fmt.Errorf("failed to create XML-RPC client: %w", err)
	}

	return &Client{
		endpoint: endpoint,
		xml:      xc,
		logger:   logger,
	}, nil
}

// Name identifies the backend in logs and metrics
func (c *Client) Name() string {
	return "rtorrent"
}

// Authenticate is a no-op, rTorrent has no login step.
func (c *Client) Authenticate(ctx context.Context) error {
	return nil
}

// UpdatePort sets the port range to the single port.
func (c *Client) UpdatePort(ctx context.Context, port int) error {
	if _, err := c.call(ctx, setPortRangeMethod, port, port); err != nil {
		return fmt.Errorf("failed to set port range to %d: %w", port, err)
	}

	c.logger.Info().Int("port", port).Str("endpoint", c.endpoint).Msg("Updated rTorrent port range")
	return nil
}

// call performs the XML-RPC call and gives up waiting once ctx is done. The
// xmlrpc codec sends the HTTP request synchronously and takes no context, so
// the call runs on its own goroutine and an abandoned request finishes in the
// background, bounded by the transport timeout.
func (c *Client) call(ctx context.Context, method string, args ...interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type response struct {
		result interface{}
		err    error
	}

	done := make(chan response, 1)
	go func() {
		var result interface{}
		err := c.xml.Call(method, args, &result)
		done <- response{result: result, err: err}
	}()

	select {
	case resp := <-done:
		return resp.result, resp.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close releases the XML-RPC client.
func (c *Client) Close() error {
	return c.xml.Close()
}
