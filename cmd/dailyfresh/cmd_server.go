package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/dailyfresh/app/bootstrap"
	"github.com/shashiranjanraj/dailyfresh/app/routes"
	"github.com/shashiranjanraj/dailyfresh/config"
	"github.com/shashiranjanraj/dailyfresh/internal/server"
	"github.com/shashiranjanraj/dailyfresh/pkg/app"
	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
)

var (
	serveWorkers    int
	serveNoSchedule bool
)

// dailyfresh serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server",
	Long: "Start the HTTP server, plus the gRPC health service when GRPC_PORT is set.\n" +
		"Queue workers and the scheduler run in the same process unless disabled.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, cleanup, err := bootstrap.Boot(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		a, err := c.Application()
		if err != nil {
			return err
		}

		if serveWorkers > 0 {
			c.Queue.StartWorkers(ctx, serveWorkers)
		}
		var scheduled <-chan struct{}
		if !serveNoSchedule {
			s, err := c.Scheduler()
			if err != nil {
				return err
			}
			scheduled = s.Start(ctx)
		}

		opts := server.Options{
			Addr:    ":" + config.AppPort(),
			Handler: a.Handler(),
			Probes:  c.Probes(),
		}
		if port := config.GRPCPort(); port != "" {
			opts.GRPCAddr = ":" + port
		}
		err = server.Run(ctx, opts)

		stop()
		if scheduled != nil {
			<-scheduled
		}
		return err
	},
}

// dailyfresh route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Handlers are never called here, so the controllers can stay nil.
		a := app.New().Routes(routes.Web(routes.Handlers{GraphQL: http.NotFound}))

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range a.RouteTable() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

// dailyfresh cache:clear
var cacheClearCmd = &cobra.Command{
	Use:   "cache:clear",
	Short: "Drop the cached home page so the next request rebuilds it",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		c, cleanup, err := bootstrap.Boot(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if c.Redis == nil {
			logger.Warn("cache:clear: page cache is in process memory; nothing shared to clear")
		}
		if err := c.Catalog.ClearHome(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "home page cache cleared")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&serveWorkers, "workers", "w", 2, "Queue workers to run in-process (0 disables)")
	serveCmd.Flags().BoolVar(&serveNoSchedule, "no-schedule", false, "Do not run the scheduler in-process")
}
