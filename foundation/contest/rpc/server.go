package rpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/ardanlabs/powcontest/foundation/contest/coordinator"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Server serves the miner service over grpc.
type Server struct {
	log  *zap.SugaredLogger
	grpc *grpc.Server
}

// NewServer constructs a grpc server with the miner service registered.
func NewServer(log *zap.SugaredLogger, coord *coordinator.Coordinator) *Server {
	gs := grpc.NewServer(grpc.UnaryInterceptor(logging(log)))
	RegisterMinerServer(gs, Service{Coord: coord})

	return &Server{
		log:  log,
		grpc: gs,
	}
}

// Serve accepts connections on the listener until the server is stopped.
func (s *Server) Serve(l net.Listener) error {
	s.log.Infow("startup", "status", "rpc router started", "host", l.Addr().String())

	if err := s.grpc.Serve(l); err != nil {
		return fmt.Errorf("rpc serve: %w", err)
	}

	return nil
}

// ListenAndServe listens on the TCP address and then calls Serve.
func (s *Server) ListenAndServe(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rpc listen %s: %w", addr, err)
	}

	return s.Serve(l)
}

// Shutdown stops accepting new calls and waits for the active ones to
// finish. If the context expires first, the remaining calls are cancelled.
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.grpc.Stop()
		return ctx.Err()
	}
}

// logging writes some information about each call to the logs.
func logging(log *zap.SugaredLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		now := time.Now()

		resp, err := handler(ctx, req)

		log.Infow("rpc completed", "method", info.FullMethod, "code", status.Code(err).String(), "since", time.Since(now))

		return resp, err
	}
}
