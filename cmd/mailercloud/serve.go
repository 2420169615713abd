package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sanzeeb3/mailercloud-go/metrics"
	"github.com/sanzeeb3/mailercloud-go/server"
	"github.com/sanzeeb3/mailercloud-go/wpforms"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Long:  "Serves the provider operations and submission intake over HTTP until SIGINT or SIGTERM",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		a, err := newApp(ctx, cmd, wpforms.WithMetrics(metrics.NewPrometheus(reg)))
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(a.provider, server.WithLogger(a.log), server.WithGatherer(reg))

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Run(ctx, a.cfg.Server.Addr)
		})
		g.Go(func() error {
			<-ctx.Done()
			a.log.Infof("shutting down")
			return nil
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

