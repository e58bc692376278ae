// Package monitor keeps the torrent client's listening port in line with the
// forwarded port announced in the VPN log.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/portsync/backend"
	"github.com/s0up4200/portsync/filter"
	"github.com/s0up4200/portsync/retry"
	"github.com/s0up4200/portsync/vpnlog"
)

// DefaultInterval is the pause between two polls
const DefaultInterval = 60 * time.Second

// Locator finds the newest log file
type Locator interface {
	Latest() (vpnlog.File, error)
}

// Extractor reads the newest announced port from a log file
type Extractor interface {
	Extract(path string) (int, error)
}

// Recorder receives poll and update observations
type Recorder interface {
	ObservePoll(outcome string)
	UpdateSucceeded(backend string, port int)
	UpdateFailed(backend string)
}

type nopRecorder struct{}

func (nopRecorder) ObservePoll(string)          {}
func (nopRecorder) UpdateSucceeded(string, int) {}
func (nopRecorder) UpdateFailed(string)         {}

// State is carried from one poll to the next
type State struct {
	// LastPort is the last port the backend accepted, 0 if none
	LastPort int
}

// Option configures a Monitor
type Option func(*Monitor)

// WithInterval sets the pause between polls. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithGuard installs a port guard. A nil guard accepts every port.
func WithGuard(g *filter.Guard) Option {
	return func(m *Monitor) {
		m.guard = g
	}
}

// WithWake lets a receive on ch end the current wait early
func WithWake(ch <-chan struct{}) Option {
	return func(m *Monitor) {
		m.wake = ch
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(m *Monitor) {
		if r != nil {
			m.recorder = r
		}
	}
}

// Monitor polls the log and pushes port changes to the backend
type Monitor struct {
	locator   Locator
	extractor Extractor
	client    backend.Client
	executor  *retry.Executor
	logger    zerolog.Logger

	interval time.Duration
	guard    *filter.Guard
	wake     <-chan struct{}
	recorder Recorder
}

// New creates a Monitor
func New(locator Locator, extractor Extractor, client backend.Client, executor *retry.Executor, logger zerolog.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		locator:   locator,
		extractor: extractor,
		client:    client,
		executor:  executor,
		logger:    logger,
		interval:  DefaultInterval,
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Interval returns the pause between polls
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Run authenticates and then polls until ctx is cancelled. It returns
// ErrAuthenticationFailed when no session could be established and the
// context error once cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info().Str("backend", m.client.Name()).Msg("Authenticating with torrent client")

	if !m.executor.Run(ctx, "authenticate", m.client.Authenticate) {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrAuthenticationFailed, m.client.Name())
	}

	m.logger.Info().
		Dur("interval", m.interval).
		Str("guard", m.guard.String()).
		Msg("Monitoring for port changes")

	var state State
	for {
		state, _ = m.Poll(ctx, state)

		if err := m.wait(ctx); err != nil {
			return err
		}
	}
}

// Poll runs one locate, extract, guard, compare and update cycle. The
// returned state only advances when the backend accepted the port.
func (m *Monitor) Poll(ctx context.Context, state State) (State, Outcome) {
	next, outcome := m.poll(ctx, state)
	m.recorder.ObservePoll(outcome.String())
	return next, outcome
}

func (m *Monitor) poll(ctx context.Context, state State) (State, Outcome) {
	file, err := m.locator.Latest()
	if err != nil {
		m.logger.Warn().Err(err).Msg("Could not locate log file")
		return state, OutcomeNoLog
	}

	log := m.logger.With().Str("file", file.Path).Logger()

	port, err := m.extractor.Extract(file.Path)
	if err != nil {
		if errors.Is(err, vpnlog.ErrNoAnnouncement) {
			log.Debug().Msg("No port announcement found")
		} else {
			log.Warn().Err(err).Msg("Could not read log file")
		}
		return state, OutcomeNoPort
	}

	allowed, err := m.guard.Allow(filter.Candidate{
		Port:     port,
		Previous: state.LastPort,
		File:     filepath.Base(file.Path),
		ModTime:  file.ModTime,
	})
	if err != nil {
		log.Warn().Err(err).Int("port", port).Msg("Port guard failed, skipping port")
		return state, OutcomeRejected
	}
	if !allowed {
		log.Info().Int("port", port).Str("guard", m.guard.String()).Msg("Port rejected by guard")
		return state, OutcomeRejected
	}

	if port == state.LastPort {
		log.Debug().Int("port", port).Msg("Port unchanged")
		return state, OutcomeUnchanged
	}

	log.Info().
		Int("port", port).
		Int("previous", state.LastPort).
		Msg("Forwarded port changed")

	ok := m.executor.Run(ctx, "update port", func(ctx context.Context) error {
		return m.client.UpdatePort(ctx, port)
	})
	if !ok {
		m.recorder.UpdateFailed(m.client.Name())
		log.Warn().Int("port", port).Msg("Port update failed, retrying on next poll")
		return state, OutcomeUpdateFailed
	}

	m.recorder.UpdateSucceeded(m.client.Name(), port)
	log.Info().
		Int("port", port).
		Str("backend", m.client.Name()).
		Msg("Updated listening port")

	return State{LastPort: port}, OutcomeUpdated
}

func (m *Monitor) wait(ctx context.Context) error {
	timer := time.NewTimer(m.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	case <-m.wake:
		m.logger.Debug().Msg("Log directory changed, polling early")
		return nil
	}
}
