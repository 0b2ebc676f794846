package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pdrpinto/robotroute/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		addr    string
		release bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solve and step API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if release {
				gin.SetMode(gin.ReleaseMode)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(a.scenario, a.logger).Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&release, "release", false, "run gin in release mode")
	return cmd
}
