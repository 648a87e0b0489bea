// Package server runs an http.Handler, usually a *doze.Application, until
// its context ends, then drains in-flight requests before returning.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

// ErrStarted is returned when Start is called more than once.
var ErrStarted = errors.New("server: already started")

const (
	addrWait                 = 5 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultReadTimeout       = 10 * time.Second
	defaultWriteTimeout      = 15 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
)

// Config holds the listen address and timeouts. Zero durations take the
// package defaults.
type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	// ShutdownTimeout bounds the drain that follows the end of the Start context.
	ShutdownTimeout time.Duration
	// Logger receives lifecycle events. Nil means slog.Default().
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	orDefault := func(d *time.Duration, def time.Duration) {
		if *d <= 0 {
			*d = def
		}
	}
	orDefault(&c.ReadHeaderTimeout, defaultReadHeaderTimeout)
	orDefault(&c.ReadTimeout, defaultReadTimeout)
	orDefault(&c.WriteTimeout, defaultWriteTimeout)
	orDefault(&c.IdleTimeout, defaultIdleTimeout)
	orDefault(&c.ShutdownTimeout, defaultShutdownTimeout)
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Server serves one handler on one listener. It can be started once.
type Server struct {
	cfg     Config
	http    *http.Server
	started atomic.Bool

	// addr is written once before listening is closed.
	addr      string
	listening chan struct{}
}

// New returns a Server for handler. Nothing listens until Start.
func New(cfg Config, handler http.Handler) *Server {
	cfg = cfg.withDefaults()
	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(cfg.Logger.Handler(), slog.LevelWarn),
		},
		listening: make(chan struct{}),
	}
}

// Start listens and serves until ctx is done or Shutdown is called. When ctx
// ends, in-flight requests get ShutdownTimeout to finish and Start returns
// once they have. A clean stop returns nil.
func (s *Server) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrStarted
	}

	ln, err := new(net.ListenConfig).Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on %q: %w", s.cfg.Addr, err)
	}
	s.addr = ln.Addr().String()
	close(s.listening)

	drained := make(chan struct{})
	stopDrain := context.AfterFunc(ctx, func() {
		defer close(drained)
		drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.Shutdown(drainCtx); err != nil {
			s.cfg.Logger.WarnContext(drainCtx, "server drain incomplete", slog.Any("error", err))
		}
	})

	s.cfg.Logger.InfoContext(ctx, "server listening", slog.String("addr", s.addr))
	err = s.http.Serve(ln)
	if !stopDrain() {
		<-drained
	}
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: serve: %w", err)
	}

	s.cfg.Logger.InfoContext(context.WithoutCancel(ctx), "server stopped", slog.String("addr", s.addr))
	return nil
}

// Shutdown stops accepting connections and waits for active requests until
// ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cfg.Logger.InfoContext(ctx, "server shutting down", slog.String("addr", s.cfg.Addr))
	return s.http.Shutdown(ctx)
}

// Addr returns the address the server listens on, waiting briefly for
// Start to bind. It is empty if the server is not listening by then, which
// makes it usable with ":0" addresses in tests.
func (s *Server) Addr() string {
	select {
	case <-s.listening:
		return s.addr
	case <-time.After(addrWait):
		return ""
	}
}
