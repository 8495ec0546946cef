package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unowned-ai/nin/pkg/mcp"
	"github.com/unowned-ai/nin/pkg/notify"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the nin MCP server",
		Long: `Start a Model Context Protocol (MCP) server exposing folders, notes and
top-level notes as MCP tools, over STDIO by default or streamable HTTP with --http.

Due reminders are delivered while the server runs and forwarded to clients.
Logs go to stderr so they don't contaminate the JSON-RPC stream on stdout.

Example:

  nin mcp --dbpath nin.db 2> server.log
  nin mcp --http :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			httpAddr, _ := cmd.Flags().GetString("http")

			var srv *mcp.NinMCPServer
			a, err := opts.open(cmd, func(ctx context.Context, n notify.Notification) error {
				return srv.ReminderSink()(ctx, n)
			})
			if err != nil {
				return err
			}
			defer a.Close()
			srv = mcp.NewNinMCPServer(a.svc, a.log)

			ctx, stop := signal.NotifyContext(baseContext(cmd), os.Interrupt, syscall.SIGTERM)
			wait := a.deliverInBackground(ctx)
			defer func() {
				stop()
				wait()
			}()

			a.log.Info("mcp server starting",
				zap.String("store", a.cfg.Store.Driver),
				zap.String("transport", transportName(httpAddr)))
			if httpAddr != "" {
				return srv.StartHTTP(ctx, httpAddr)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")
			return srv.Start()
		},
	}
	mcpCmd.Flags().String("http", "", "Serve streamable HTTP on this address instead of stdio")
	return mcpCmd
}

func transportName(httpAddr string) string {
	if httpAddr != "" {
		return "http"
	}
	return "stdio"
}
