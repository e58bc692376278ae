package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)
	rec.now = func() time.Time { return time.Unix(1700000000, 0) }

	rec.ObservePoll("updated")
	rec.ObservePoll("unchanged")
	rec.ObservePoll("unchanged")
	rec.UpdateSucceeded("qbittorrent", 51413)
	rec.UpdateFailed("qbittorrent")
	rec.RetryAttempt()
	rec.RetryAttempt()

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Polls.WithLabelValues("updated")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.Polls.WithLabelValues("unchanged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.PortUpdates.WithLabelValues("qbittorrent", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.PortUpdates.WithLabelValues("qbittorrent", "failure")))
	assert.Equal(t, 51413.0, testutil.ToFloat64(rec.ForwardedPort))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(rec.LastUpdate))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.Retries))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestNilRecorder(t *testing.T) {
	var rec *Recorder

	assert.NotPanics(t, func() {
		rec.ObservePoll("no_log")
		rec.UpdateSucceeded("deluge", 1)
		rec.UpdateFailed("deluge")
		rec.RetryAttempt()
	})
}

func TestServe(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)
	rec.UpdateSucceeded("rtorrent", 40000)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, ln, reg, zerolog.Nop())
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "portsync_forwarded_port 40000")
	assert.Contains(t, string(body), `portsync_port_updates_total{backend="rtorrent",result="success"} 1`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeInvalidAddress(t *testing.T) {
	err := Serve(context.Background(), "256.0.0.1:bad", prometheus.NewRegistry(), zerolog.Nop())
	assert.Error(t, err)
}
