package rtorrent

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okResponse = `<?xml version="1.0"?>
<methodResponse><params><param><value><i4>0</i4></value></param></params></methodResponse>`

const faultResponse = `<?xml version="1.0"?>
<methodResponse><fault><value><struct>
<member><name>faultCode</name><value><i4>-506</i4></value></member>
<member><name>faultString</name><value><string>method not defined</string></value></member>
</struct></value></fault></methodResponse>`

func newServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server.URL
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient("", zerolog.Nop())
	assert.ErrorIs(t, err, ErrEmptyURL)
}

func TestUpdatePort(t *testing.T) {
	var body atomic.Value
	url := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/RPC2", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		body.Store(string(data))

		w.Header().Set("Content-Type", "text/xml")
		_, _ = io.WriteString(w, okResponse)
	})

	client, err := NewClient(url+"/", zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Authenticate(ctx))
	require.NoError(t, client.UpdatePort(ctx, 54321))

	sent := body.Load().(string)
	assert.Contains(t, sent, "<methodName>set_port_range</methodName>")
	assert.Equal(t, 2, strings.Count(sent, "54321"), "low and high end of the range")
}

func TestUpdatePortFault(t *testing.T) {
	url := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = io.WriteString(w, faultResponse)
	})

	client, err := NewClient(url, zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	err = client.UpdatePort(context.Background(), 54321)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method not defined")
}

func TestUpdatePortHonoursContext(t *testing.T) {
	release := make(chan struct{})
	url := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = io.WriteString(w, okResponse)
	})
	t.Cleanup(func() { close(release) })

	client, err := NewClient(url, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = client.UpdatePort(ctx, 54321)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientName(t *testing.T) {
	client, err := NewClient("http://localhost:8000", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "rtorrent", client.Name())
}

func TestUpdatePortTransportTimeout(t *testing.T) {
	release := make(chan struct{})
	url := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = io.WriteString(w, okResponse)
	})
	t.Cleanup(func() { close(release) })

	client, err := NewClient(url, zerolog.Nop(), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- client.UpdatePort(context.Background(), 54321)
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "54321")
	case <-time.After(5 * time.Second):
		t.Fatal("update did not time out")
	}
}

func TestUpdatePortReturnsWhileEarlierCallIsStuck(t *testing.T) {
	release := make(chan struct{})
	url := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = io.WriteString(w, okResponse)
	})
	t.Cleanup(func() { close(release) })

	client, err := NewClient(url, zerolog.Nop())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		start := time.Now()
		err := client.UpdatePort(ctx, 54321)
		cancel()

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 2*time.Second)
	}
}
