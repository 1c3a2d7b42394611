package grpc_test

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	dfgrpc "github.com/shashiranjanraj/dailyfresh/pkg/grpc"
)

func healthClient(t *testing.T, probes map[string]dfgrpc.Probe) grpc_health_v1.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := dfgrpc.NewServer(probes)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() { dfgrpc.Stop(srv) })

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return grpc_health_v1.NewHealthClient(conn)
}

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func TestHealthAllProbes(t *testing.T) {
	c := healthClient(t, map[string]dfgrpc.Probe{"database": ok, "redis": ok})
	res, err := c.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, res.GetStatus())
}

func TestHealthReportsFailingProbe(t *testing.T) {
	c := healthClient(t, map[string]dfgrpc.Probe{"database": ok, "redis": down})

	res, err := c.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, res.GetStatus())

	res, err = c.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: "database"})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, res.GetStatus())
}

func TestHealthUnknownService(t *testing.T) {
	c := healthClient(t, nil)
	_, err := c.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: "kafka"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
