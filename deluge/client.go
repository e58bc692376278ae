// Package deluge updates Deluge's listening ports through the Web UI JSON-RPC
// endpoint.
package deluge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rs/zerolog"
)

const (
	methodLogin     = "auth.login"
	methodSetConfig = "core.set_config"
)

// Client represents a Deluge Web UI client
type Client struct {
	endpoint   string
	password   string
	httpClient *http.Client
	lastID     uint64
	logger     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the HTTP client. A cookie jar is attached when the
// client has none, the session cookie is required after login.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient.Jar == nil {
			httpClient.Jar = c.httpClient.Jar
		}
		c.httpClient = httpClient
	}
}

// NewClient creates a new Deluge client for the JSON endpoint, usually
// http://host:8112/json
func NewClient(endpoint, password string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, ErrEmptyURL
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := &Client{
		endpoint: endpoint,
		password: password,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Name identifies the backend in logs and metrics
func (c *Client) Name() string {
	return "deluge"
}

// Authenticate calls auth.login with the Web UI password. The session cookie
// is stored in the client's jar.
func (c *Client) Authenticate(ctx context.Context) error {
	resp, err := c.call(ctx, methodLogin, c.password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if !resp.truthy() {
		return ErrLoginRejected
	}

	c.logger.Info().Str("endpoint", c.endpoint).Msg("Logged in to Deluge")
	return nil
}

// UpdatePort sets listen_ports to [port, port]. Both a 200 status and a true
// result are required.
func (c *Client) UpdatePort(ctx context.Context, port int) error {
	config := map[string]interface{}{
		"listen_ports": []int{port, port},
	}

	resp, err := c.call(ctx, methodSetConfig, config)
	if err != nil {
		return fmt.Errorf("failed to set listen ports to %d: %w", port, err)
	}

	if !resp.truthy() {
		return fmt.Errorf("%w (port %d)", ErrUpdateRejected, port)
	}

	c.logger.Info().Int("port", port).Msg("Updated Deluge listening port")
	return nil
}

// call posts a JSON-RPC request with the next sequential id
func (c *Client) call(ctx context.Context, method string, params ...interface{}) (*rpcResponse, error) {
	c.lastID++
	request := rpcRequest{
		Method: method,
		Params: params,
		ID:     c.lastID,
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("method", method).
		Uint64("id", request.ID).
		Msg("Making Deluge RPC request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var response rpcResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if response.Error != nil {
		return nil, response.Error
	}

	return &response, nil
}

// Close drops idle connections held for the session.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
