package health

import (
	"fmt"
	"log/slog"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name reported for the API.
const ServiceName = "studentrecords.v1.API"

// GrpcServer exposes the standard grpc.health.v1 service for health checks.
type GrpcServer struct {
	server *grpc.Server
	health *health.Server
	logger *slog.Logger
}

func NewGrpcServer(logger *slog.Logger) *GrpcServer {
	server := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &GrpcServer{
		server: server,
		health: healthServer,
		logger: logger,
	}
}

// SetServing flips both the overall and the API status.
func (g *GrpcServer) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(ServiceName, status)
}

func (g *GrpcServer) Listen(port string) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	g.logger.Info("gRPC health server starting", "port", port)
	return g.Serve(lis)
}

func (g *GrpcServer) Serve(lis net.Listener) error {
	return g.server.Serve(lis)
}

func (g *GrpcServer) Stop() {
	g.health.Shutdown()
	g.server.GracefulStop()
}
