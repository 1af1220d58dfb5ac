package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hybridai/internal/infrastructure/httpapi"
	"github.com/felixgeelhaar/hybridai/internal/infrastructure/sse"
	"github.com/felixgeelhaar/hybridai/internal/infrastructure/wiring"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the routing API over HTTP",
	Long: `Serve the routing API.

  POST /api/process  {"task": "...", "options": {...}}
  GET  /api/events   Server-Sent Events for decisions, phases and runs
  GET  /metrics      Prometheus metrics
  GET  /healthz      liveness`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, wiring.Options{Events: sse.NewBroadcaster()})
		if err != nil {
			return err
		}
		addr := serveAddr
		if addr == "" {
			addr = services.Config.Server.Addr
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s listening on http://%s\n", headerStyle.Render("hybrid-ai"), addr)
		server := httpapi.NewServer(addr, services.Router, services.Metrics, services.Logger,
			httpapi.WithEvents(services.Events))
		if err := server.Run(cmd.Context()); err != nil {
			return NewCLIError("http server failed", "Check that the address is free or pass --addr", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr)")
	RootCmd.AddCommand(serveCmd)
}
