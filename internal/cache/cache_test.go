package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientIsEmptyCache(t *testing.T) {
	var c *Client
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())

	var dst map[string]string
	c.SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute)
	assert.False(t, c.GetJSON(ctx, "k", &dst))
}

func TestUnreachableRedisFailsSafe(t *testing.T) {
	// Nothing listens on port 1; every call should degrade to a miss.
	c := New("127.0.0.1:1", "", 0, "test:")
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.Error(t, c.Ping(ctx))
	assert.False(t, c.Available())
}

func TestMonitorDisablesUnreachableRedis(t *testing.T) {
	c := New("127.0.0.1:1", "", 0, "test:")
	defer c.Close()
	require.True(t, c.Available())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Monitor(ctx, 20*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	assert.Eventually(t, func() bool { return !c.Available() }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after cancellation")
	}
}

func TestMonitorNilClient(t *testing.T) {
	var c *Client
	assert.NoError(t, c.Monitor(context.Background(), time.Millisecond, slog.Default()))
	assert.False(t, c.Available())
}

func TestKeyPrefix(t *testing.T) {
	c := &Client{prefix: "natours:"}
	assert.Equal(t, "natours:tour:1", c.key("tour:1"))
}
