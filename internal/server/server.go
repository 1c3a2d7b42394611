// Package server runs the HTTP listener, and the gRPC health listener when
// configured, until the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"

	dfgrpc "github.com/shashiranjanraj/dailyfresh/pkg/grpc"
	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

type Options struct {
	Addr     string
	GRPCAddr string // empty disables gRPC
	Handler  http.Handler
	Probes   map[string]dfgrpc.Probe
	// Ready, when set, receives the bound HTTP address.
	Ready func(addr string)
}

// Run blocks until ctx is done or the HTTP listener fails, then drains
// in-flight requests.
func Run(ctx context.Context, opts Options) error {
	lis, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", opts.Addr, err)
	}

	srv := &http.Server{
		Handler:           opts.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	var g *grpc.Server
	if opts.GRPCAddr != "" {
		if g, err = dfgrpc.Start(opts.GRPCAddr, opts.Probes); err != nil {
			lis.Close()
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", lis.Addr().String())
		errCh <- srv.Serve(lis)
	}()
	if opts.Ready != nil {
		opts.Ready(lis.Addr().String())
	}

	select {
	case err := <-errCh:
		dfgrpc.Stop(g)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	dfgrpc.Stop(g)
	if err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	logger.Info("server: stopped")
	return nil
}
