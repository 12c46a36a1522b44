// Package api hosts the dashboard service behind HTTP and gRPC listeners.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"sp500dash/internal/httpapi"
	"sp500dash/internal/metrics"
)

// ServerOptions configures the listeners.
type ServerOptions struct {
	HTTPAddr string
	GRPCAddr string // empty disables gRPC
	HTTP     httpapi.Options
}

// Server is the main API server that hosts HTTP and gRPC endpoints.
type Server struct {
	opts ServerOptions
	http *http.Server
	grpc *grpc.Server
	log  *slog.Logger
}

// NewServer wires svc into an HTTP router and, when configured, a gRPC
// server.
func NewServer(svc *DashboardService, opts ServerOptions, m *metrics.Metrics, log *slog.Logger) *Server {
	s := &Server{
		opts: opts,
		log:  log.With("component", "api"),
	}
	s.http = &http.Server{
		Addr:              opts.HTTPAddr,
		Handler:           httpapi.NewDashboardServer(svc, opts.HTTP, m, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if opts.GRPCAddr != "" {
		s.grpc = grpc.NewServer()
		RegisterDashboardServer(s.grpc, NewDashboardRPC(svc))
	}
	return s
}

// HTTPHandler exposes the HTTP router, mostly for tests.
func (s *Server) HTTPHandler() http.Handler { return s.http.Handler }

// ListenAndServe starts the HTTP and gRPC listeners and blocks until the
// context is cancelled or a listener fails. Either way both servers are shut
// down before it returns.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpLn, err := net.Listen("tcp", s.opts.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.opts.HTTPAddr, err)
	}
	var grpcLn net.Listener
	if s.grpc != nil {
		if grpcLn, err = net.Listen("tcp", s.opts.GRPCAddr); err != nil {
			httpLn.Close()
			return fmt.Errorf("listening on %s: %w", s.opts.GRPCAddr, err)
		}
	}
	return s.Serve(ctx, httpLn, grpcLn)
}

// Serve is ListenAndServe on existing listeners. grpcLn may be nil.
func (s *Server) Serve(ctx context.Context, httpLn, grpcLn net.Listener) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		s.log.Info("http listening", "addr", httpLn.Addr().String())
		if err := s.http.Serve(httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if s.grpc != nil && grpcLn != nil {
		eg.Go(func() error {
			s.log.Info("grpc listening", "addr", grpcLn.Addr().String())
			if err := s.grpc.Serve(grpcLn); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

// Shutdown performs a graceful shutdown of the HTTP and gRPC servers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down")
	if s.grpc != nil {
		done := make(chan struct{})
		go func() {
			s.grpc.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			s.grpc.Stop()
		}
	}
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
