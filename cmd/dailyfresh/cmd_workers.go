package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/dailyfresh/app/bootstrap"
	"github.com/shashiranjanraj/dailyfresh/config"
	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
)

var (
	queueWorkers int
	scheduleOnce string
)

// dailyfresh queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued jobs such as activation emails",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, cleanup, err := bootstrap.Boot(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if config.QueueDriver() != "redis" {
			logger.Warn("queue:work: QUEUE_DRIVER is not redis; only jobs dispatched by this process will be seen")
		}
		workers := max(queueWorkers, 1)
		c.Queue.StartWorkers(ctx, workers)
		fmt.Fprintf(cmd.OutOrStdout(), "queue worker started (%d workers), Ctrl+C to stop\n", workers)

		<-ctx.Done()
		return nil
	},
}

// dailyfresh schedule:run [--once home.warm]
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Run the task scheduler, or a single task with --once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, cleanup, err := bootstrap.Boot(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		s, err := c.Scheduler()
		if err != nil {
			return err
		}
		if scheduleOnce != "" {
			return s.RunNow(ctx, scheduleOnce)
		}

		done := s.Start(ctx)
		fmt.Fprintln(cmd.OutOrStdout(), "scheduler started, Ctrl+C to stop")
		<-done
		return nil
	},
}

// dailyfresh schedule:list
var scheduleListCmd = &cobra.Command{
	Use:   "schedule:list",
	Short: "List the scheduled tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Only the names and specs are needed; no connections are opened.
		c, err := bootstrap.New(nil, nil, nil, bootstrap.Options{CartStore: "memory", HistoryStore: "memory"})
		if err != nil {
			return err
		}
		s, err := c.Scheduler()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TASK\tSPEC\tNEXT")
		for _, e := range s.Entries() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Spec, e.Next.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkers, "workers", "w", 5, "Number of concurrent workers")
	scheduleRunCmd.Flags().StringVar(&scheduleOnce, "once", "", "Run the named task once and exit")
}
