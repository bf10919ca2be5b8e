package probe

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listen opens a loopback listener and returns it with its port.
func listen(t *testing.T) (net.Listener, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	return ln, port
}

func TestPortProberOpen(t *testing.T) {
	ln, port := listen(t)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	prober := NewPortProber(nil, false, nil)
	result := prober.Probe(context.Background(), "127.0.0.1", port, time.Second)

	assert.True(t, result.Open)
	assert.Equal(t, port, result.Port)
	assert.Empty(t, result.Banner, "banners disabled")
}

func TestPortProberClosed(t *testing.T) {
	ln, port := listen(t)
	ln.Close()

	prober := NewPortProber(nil, false, nil)
	result := prober.Probe(context.Background(), "127.0.0.1", port, time.Second)

	assert.False(t, result.Open)
	assert.Equal(t, port, result.Port)
	assert.Empty(t, result.Service, "service set only when open")
}

func TestPortProberCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prober := NewPortProber(nil, false, nil)

	start := time.Now()
	result := prober.Probe(ctx, "127.0.0.1", 65000, 5*time.Second)

	assert.False(t, result.Open)
	assert.Less(t, time.Since(start), time.Second, "cancellation must not wait out the timeout")
}

func TestPortProberBanner(t *testing.T) {
	ln, port := listen(t)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_, _ = conn.Write([]byte("SSH-2.0-OpenSSH_9.6\r\n"))
			conn.Close()
		}
	}()

	prober := NewPortProber(nil, true, nil)
	result := prober.Probe(context.Background(), "127.0.0.1", port, time.Second)

	require.True(t, result.Open)
	assert.Contains(t, result.Banner, "SSH-2.0-OpenSSH_9.6")
}

func TestPortProberIdempotent(t *testing.T) {
	ln, port := listen(t)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	prober := NewPortProber(nil, false, nil)

	first := prober.Probe(context.Background(), "127.0.0.1", port, time.Second)
	second := prober.Probe(context.Background(), "127.0.0.1", port, time.Second)

	assert.Equal(t, first.Open, second.Open)
	assert.Equal(t, first.Service, second.Service)
}

func TestClassifyDialError(t *testing.T) {
	ln, port := listen(t)
	ln.Close()

	// A refused connect is classified but never surfaced in the result.
	_, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), time.Second)
	require.Error(t, err)
	assert.Equal(t, "closed", classifyDialError(err))

	assert.Equal(t, "canceled", classifyDialError(context.Canceled))
	assert.Equal(t, "timeout", classifyDialError(context.DeadlineExceeded))
}
