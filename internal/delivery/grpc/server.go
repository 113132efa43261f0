// Package grpc exposes the standard gRPC health service so orchestrators can
// check the storefront alongside its HTTP API.
package grpc

import (
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health entry reported next to the overall "" entry.
const ServiceName = "athletix.Storefront"

type Server struct {
	srv    *grpc.Server
	health *health.Server
}

func NewServer() *Server {
	s := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	return &Server{srv: s, health: h}
}

// Serve marks the storefront as serving and blocks until the listener closes.
func (s *Server) Serve(lis net.Listener) error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	slog.Info("gRPC health server started", "addr", lis.Addr().String())
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve grpc: %w", err)
	}
	return nil
}

// Shutdown flips every entry to NOT_SERVING before draining connections.
func (s *Server) Shutdown() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
