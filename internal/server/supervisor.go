// Package server supervises the HTTP server and its companion tasks.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"natours/internal/logging"
)

// DefaultShutdownTimeout bounds graceful shutdown when none is configured.
const DefaultShutdownTimeout = 10 * time.Second

// Task is a long running job that must stop when ctx is cancelled.
type Task func(ctx context.Context) error

// Supervisor runs the HTTP server next to its tasks. The first failure, a
// recovered panic, a termination signal or cancellation of the parent
// context shuts everything down.
type Supervisor struct {
	logger          *slog.Logger
	shutdownTimeout time.Duration
	signals         []os.Signal
}

// NewSupervisor creates a supervisor that stops on SIGINT and SIGTERM.
func NewSupervisor(logger *slog.Logger, shutdownTimeout time.Duration) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	return &Supervisor{
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// Run serves e on addr until shutdown. It returns nil after a signal or
// parent cancellation and the first task error otherwise.
func (s *Supervisor) Run(ctx context.Context, e *echo.Echo, addr string, tasks ...Task) error {
	ctx, stop := signal.NotifyContext(ctx, s.signals...)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(s.guarded(gctx, "http", func(context.Context) error {
		s.logger.Info("http server listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}))

	for i, task := range tasks {
		g.Go(s.guarded(gctx, fmt.Sprintf("task %d", i), task))
	}

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down", slog.Duration("timeout", s.shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), s.shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("supervisor stopped", logging.Err(err))
		return err
	}
	s.logger.Info("supervisor stopped")
	return nil
}

// guarded turns a panic in task into an error so the group shuts down.
func (s *Supervisor) guarded(ctx context.Context, name string, task Task) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("task panicked",
					slog.String("task", name),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				err = fmt.Errorf("%s panicked: %v", name, r)
			}
		}()
		return task(ctx)
	}
}
