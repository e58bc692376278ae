// Package backend defines the torrent client abstraction the monitor talks to
// and builds the configured implementation.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/portsync/config"
	"github.com/s0up4200/portsync/deluge"
	"github.com/s0up4200/portsync/qbittorrent"
	"github.com/s0up4200/portsync/rtorrent"
)

// Kind names a supported torrent client
type Kind string

const (
	KindQBittorrent Kind = "qbittorrent"
	KindRTorrent    Kind = "rtorrent"
	KindDeluge      Kind = "deluge"
)

// Client is a torrent client whose listening port can be changed
type Client interface {
	// Name identifies the backend in logs and metrics
	Name() string

	// Authenticate establishes the session used by later calls
	Authenticate(ctx context.Context) error

	// UpdatePort sets the listening port
	UpdatePort(ctx context.Context, port int) error

	// Close releases the session
	Close() error
}

// PortReader is implemented by backends that can report their current port
type PortReader interface {
	ListenPort(ctx context.Context) (int, error)
}

// ParseKind maps a configuration value to a Kind. Empty selects qBittorrent.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindQBittorrent:
		return KindQBittorrent, nil
	case KindRTorrent:
		return KindRTorrent, nil
	case KindDeluge:
		return KindDeluge, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

// New creates the backend selected in cfg
func New(cfg *config.Config, logger zerolog.Logger) (Client, error) {
	kind, err := ParseKind(cfg.Backend)
	if err != nil {
		return nil, err
	}

	logger = logger.With().Str("backend", string(kind)).Logger()

	switch kind {
	case KindRTorrent:
		var opts []rtorrent.Option
		if cfg.Retry.Timeout > 0 {
			opts = append(opts, rtorrent.WithTimeout(cfg.Retry.Timeout))
		}
		client, err := rtorrent.NewClient(cfg.RTorrent.URL, logger, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil

	case KindDeluge:
		var opts []deluge.Option
		if cfg.Retry.Timeout > 0 {
			opts = append(opts, deluge.WithTimeout(cfg.Retry.Timeout))
		}
		client, err := deluge.NewClient(cfg.Deluge.URL, cfg.Deluge.Password, logger, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		var opts []qbittorrent.Option
		if cfg.Retry.Timeout > 0 {
			opts = append(opts, qbittorrent.WithTimeout(cfg.Retry.Timeout))
		}
		if cfg.QBittorrent.TLSSkipVerify {
			opts = append(opts, qbittorrent.WithInsecureSkipVerify())
		}
		if cfg.QBittorrent.BasicUser != "" {
			opts = append(opts, qbittorrent.WithBasicAuth(cfg.QBittorrent.BasicUser, cfg.QBittorrent.BasicPass))
		}
		client, err := qbittorrent.NewClient(cfg.QBittorrent.URL, cfg.QBittorrent.Username, cfg.QBittorrent.Password, logger, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
