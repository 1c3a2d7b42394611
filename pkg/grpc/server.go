// Package grpc serves the standard grpc.health.v1.Health service next to
// the HTTP storefront, so orchestrators can probe the process over gRPC.
//
// Check with an empty service name runs every probe; naming a probe
// ("database", "redis") runs only that one.
//
//	srv, err := grpc.Start(":9090", probes)
//	defer grpc.Stop(srv)
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
	"github.com/shashiranjanraj/dailyfresh/pkg/metrics"
)

// Probe reports nil when a dependency is healthy.
type Probe func(ctx context.Context) error

var (
	handled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dailyfresh",
		Subsystem: "grpc",
		Name:      "handled_total",
		Help:      "gRPC calls completed by method and code.",
	}, []string{"method", "code"})

	handling = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dailyfresh",
		Subsystem: "grpc",
		Name:      "handling_seconds",
		Help:      "gRPC call latency in seconds.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"method"})
)

func init() {
	metrics.DefaultRegistry.MustRegister(handled, handling)
}

func recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("grpc: panic recovered", "method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

// observeInterceptor logs and records metrics for each unary call.
func observeInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	handled.WithLabelValues(info.FullMethod, code.String()).Inc()
	handling.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
	logger.Debug("grpc: request", "method", info.FullMethod, "code", code.String(),
		"duration_ms", time.Since(start).Milliseconds())
	return resp, err
}

type healthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	probes  map[string]Probe
	timeout time.Duration
}

func (h *healthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	names := []string{req.GetService()}
	if req.GetService() == "" {
		names = names[:0]
		for name := range h.probes {
			names = append(names, name)
		}
		sort.Strings(names)
	} else if _, ok := h.probes[req.GetService()]; !ok {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	st := grpc_health_v1.HealthCheckResponse_SERVING
	for _, name := range names {
		if err := h.probes[name](ctx); err != nil {
			logger.Warn("grpc: health probe failed", "probe", name, "error", err)
			st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	return &grpc_health_v1.HealthCheckResponse{Status: st}, nil
}

// NewServer builds the server without listening.
func NewServer(probes map[string]Probe) *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(recoveryInterceptor, observeInterceptor))
	grpc_health_v1.RegisterHealthServer(srv, &healthServer{probes: probes, timeout: 2 * time.Second})
	reflection.Register(srv)
	return srv
}

// Start listens on addr and serves in the background.
func Start(addr string, probes map[string]Probe) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc: listen on %s: %w", addr, err)
	}
	srv := NewServer(probes)
	logger.Info("grpc: listening", "addr", lis.Addr().String())
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("grpc: serve", "error", err)
		}
	}()
	return srv, nil
}

// Stop waits for in-flight RPCs. A nil server is ignored.
func Stop(srv *grpc.Server) {
	if srv == nil {
		return
	}
	srv.GracefulStop()
	logger.Info("grpc: stopped")
}
