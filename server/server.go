package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/caasmo/actiondispatch/config"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	cfg     config.Server
	handler http.Handler
	logger  *slog.Logger
}

func NewServer(cfg config.Server, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
	}
}

// Run listens on the configured address and serves until SIGINT, SIGTERM,
// SIGQUIT or cancellation of ctx, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.logger.Error("failed to listen", "addr", s.cfg.Addr, "err", err)
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done or the server fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("Server configuration",
		"addr", ln.Addr().String(),
		"read_timeout", s.cfg.ReadTimeout.Duration,
		"read_header_timeout", s.cfg.ReadHeaderTimeout.Duration,
		"write_timeout", s.cfg.WriteTimeout.Duration,
		"idle_timeout", s.cfg.IdleTimeout.Duration,
		"shutdown_timeout", s.cfg.ShutdownGracefulTimeout.Duration,
	)

	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout.Duration,
		WriteTimeout:      s.cfg.WriteTimeout.Duration,
		IdleTimeout:       s.cfg.IdleTimeout.Duration,
	}

	serverError := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Serve error", "err", err)
			serverError <- err
		}
		close(serverError)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("Received shutdown signal - gracefully shutting down")
	case err := <-serverError:
		if err != nil {
			s.logger.Error("Server error - initiating shutdown", "err", err)
			runErr = err
		}
	}

	gracefulCtx, cancelShutdown := context.WithTimeout(context.Background(), s.cfg.ShutdownGracefulTimeout.Duration)
	defer cancelShutdown()

	shutdownGroup, _ := errgroup.WithContext(gracefulCtx)
	shutdownGroup.Go(func() error {
		s.logger.Info("Shutting down HTTP server")
		if err := srv.Shutdown(gracefulCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "err", err)
			return err
		}
		s.logger.Info("HTTP server stopped gracefully")
		return nil
	})

	if err := shutdownGroup.Wait(); err != nil {
		s.logger.Error("Error during shutdown", "err", err)
		return errors.Join(runErr, err)
	}

	s.logger.Info("All systems stopped gracefully")
	return runErr
}

func (s *Server) Handler() http.Handler {
	return s.handler
}
