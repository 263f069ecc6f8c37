// Package health exposes the standard gRPC health service so orchestrators can
// probe the process without going through the HTTP rate limiter.
package health

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"waypoint/pkg/logger"
)

const Service = "waypoint"

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	lis    net.Listener
}

// Listen binds addr and registers the health service. Status starts as NOT_SERVING.
func Listen(addr string) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("health listen: %w", err)
	}

	s := &Server{
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
		lis:    lis,
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.SetServing(false)

	return s, nil
}

func (s *Server) Addr() string {
	return s.lis.Addr().String()
}

// Serve blocks until Stop is called.
func (s *Server) Serve() {
	if err := s.grpc.Serve(s.lis); err != nil {
		logger.Error("health server stopped", "err", err)
	}
}

func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(Service, status)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
