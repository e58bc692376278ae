package qbittorrent

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog"
)

// Client wraps the qBittorrent Web API client
type Client struct {
	client *qbittorrent.Client
	http   *http.Client
	host   string
	logger zerolog.Logger

	basicUser string
	basicPass string
}

// NewClient creates a new qBittorrent client. No request is made until
// Authenticate is called.
func NewClient(url, username, password string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	host := strings.TrimRight(url, "/")
	qbLogger := logger.With().Str("component", "go-qbittorrent").Logger()

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: o.insecureSkipVerify}

	// WithHTTPClient attaches the library's cookie jar, so httpClient shares
	// the session established by LoginCtx
	httpClient := &http.Client{
		Timeout:   o.timeout,
		Transport: transport,
	}

	client := qbittorrent.NewClient(qbittorrent.Config{
		Host:          host,
		Username:      username,
		Password:      password,
		TLSSkipVerify: o.insecureSkipVerify,
		BasicUser:     o.basicUser,
		BasicPass:     o.basicPass,
		Log:           log.New(qbLogger, "", 0),
	}).WithHTTPClient(httpClient)

	return &Client{
		client:    client,
		http:      httpClient,
		host:      host,
		logger:    logger,
		basicUser: o.basicUser,
		basicPass: o.basicPass,
	}, nil
}

// Name identifies the backend in logs and metrics
func (c *Client) Name() string {
	return "qbittorrent"
}

// Authenticate logs in through /api/v2/auth/login and confirms the session
// with an authenticated request. The session cookie is kept by the underlying
// client for every later call.
func (c *Client) Authenticate(ctx context.Context) error {
	// LoginCtx skips the request for empty credentials and accepts any 200
	// that sets a cookie, so it cannot be trusted on its own
	if err := c.client.LoginCtx(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	if err := c.verifySession(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	c.logger.Info().Str("host", c.host).Msg("Logged in to qBittorrent")
	return nil
}

// UpdatePort sets the listen_port preference. qBittorrent does not echo the
// applied value, so a 200 response is the only success signal.
func (c *Client) UpdatePort(ctx context.Context, port int) error {
	prefs := map[string]interface{}{
		"listen_port": port,
	}

	// go-qbittorrent retries transport errors itself, one call may send several requests
	if err := c.client.SetPreferencesCtx(ctx, prefs); err != nil {
		return fmt.Errorf("failed to set listen port to %d: %w", port, err)
	}

	c.logger.Info().Int("port", port).Msg("Updated qBittorrent listening port")
	return nil
}

// verifySession requests the Web API version, which the Web UI only answers
// for an authenticated session
func (c *Client) verifySession(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/v2/app/webapiVersion", nil)
	if err != nil {
		return fmt.Errorf("could not build request: %w", err)
	}
	if c.basicUser != "" && c.basicPass != "" {
		req.SetBasicAuth(c.basicUser, c.basicPass)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("session check failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("session check returned status %d", resp.StatusCode)
	}
	return nil
}

// ListenPort reads the currently configured listen port.
func (c *Client) ListenPort(ctx context.Context) (int, error) {
	prefs, err := c.client.GetAppPreferencesCtx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get preferences: %w", err)
	}

	c.logger.Debug().Int("port", prefs.ListenPort).Msg("Retrieved qBittorrent preferences")
	return prefs.ListenPort, nil
}

// Close releases the session. The Web API session simply expires server side.
func (c *Client) Close() error {
	return nil
}
