package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported for the student API.
const ServiceName = "gestion.etudiant.v1.StudentAPI"

// Health reports whether the student API can reach its store. It starts
// NOT_SERVING until the first successful probe.
type Health struct {
	srv *health.Server
}

func NewHealth() *Health {
	srv := health.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	srv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Health{srv: srv}
}

func (h *Health) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.srv.SetServingStatus("", status)
	h.srv.SetServingStatus(ServiceName, status)
}

// Shutdown flips every service to NOT_SERVING and ignores later updates.
func (h *Health) Shutdown() {
	h.srv.Shutdown()
}

// NewServer builds the gRPC server exposing grpc.health.v1. When
// serviceToken is set every call must carry it in x-service-token.
func NewServer(h *Health, serviceToken string) (*grpc.Server, error) {
	var opts []grpc.ServerOption
	if serviceToken != "" {
		auth, err := newServiceAuth(serviceToken)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.UnaryInterceptor(auth.unary), grpc.StreamInterceptor(auth.stream))
	}
	server := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(server, h.srv)
	return server, nil
}
