package grpc

import (
	"log/slog"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported alongside the overall status.
const ServiceName = "alertwatcher.Webhook"

// Server exposes the standard gRPC health service so orchestrators can probe
// the watcher without going through the webhook route.
type Server struct {
	health     *health.Server
	grpcServer *grpc.Server
	mu         sync.Mutex
}

func NewServer() *Server {
	return &Server{
		health: health.NewServer(),
	}
}

func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	s.mu.Lock()
	s.grpcServer = grpc.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	srv := s.grpcServer
	s.mu.Unlock()

	slog.Info("gRPC health server listening", "addr", lis.Addr().String())
	return srv.Serve(lis)
}

// Stop reports NOT_SERVING to in-flight probes, then drains the server.
func (s *Server) Stop() {
	s.health.Shutdown()

	s.mu.Lock()
	srv := s.grpcServer
	s.mu.Unlock()
	if srv != nil {
		srv.GracefulStop()
	}
}
