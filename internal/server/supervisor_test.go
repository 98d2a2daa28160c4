package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSupervisor() *Supervisor {
	return NewSupervisor(slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	return e
}

// waitListening blocks until e has bound its listener.
func waitListening(t *testing.T, e *echo.Echo) string {
	t.Helper()
	var addr string
	require.Eventually(t, func() bool {
		if a := e.ListenerAddr(); a != nil {
			addr = a.String()
			return true
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	return addr
}

func runAsync(ctx context.Context, s *Supervisor, e *echo.Echo, tasks ...Task) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, e, "127.0.0.1:0", tasks...) }()
	return done
}

func TestSupervisor_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e := newTestEcho()
	done := runAsync(ctx, newTestSupervisor(), e)

	addr := waitListening(t, e)
	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}

func TestSupervisor_TaskFailureShutsDown(t *testing.T) {
	boom := errors.New("boom")
	e := newTestEcho()
	release := make(chan struct{})
	done := runAsync(context.Background(), newTestSupervisor(), e, func(ctx context.Context) error {
		<-release
		return boom
	})

	waitListening(t, e)
	close(release)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-time.After(3 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}

func TestSupervisor_RecoversTaskPanic(t *testing.T) {
	e := newTestEcho()
	release := make(chan struct{})
	done := runAsync(context.Background(), newTestSupervisor(), e, func(ctx context.Context) error {
		<-release
		panic("unexpected nil")
	})

	waitListening(t, e)
	close(release)

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panicked")
	case <-time.After(3 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}

func TestSupervisor_TasksSeeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e := newTestEcho()
	stopped := make(chan struct{})
	done := runAsync(ctx, newTestSupervisor(), e, func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return nil
	})

	waitListening(t, e)
	cancel()

	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("task was not cancelled")
	}
	assert.NoError(t, <-done)
}

func TestSupervisor_ListenFailure(t *testing.T) {
	e := newTestEcho()
	err := newTestSupervisor().Run(context.Background(), e, "256.0.0.1:bad")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")
}
