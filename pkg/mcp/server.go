// Package mcp exposes the notepad service as Model Context Protocol tools.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	nin "github.com/unowned-ai/nin/pkg"
	"github.com/unowned-ai/nin/pkg/notepad"
	"github.com/unowned-ai/nin/pkg/notify"
)

// ReminderMethod is the notification sent to clients when a reminder fires.
const ReminderMethod = "notifications/nin/reminder"

type NinMCPServer struct {
	mcpServer *server.MCPServer
	log       *zap.Logger
}

// NewNinMCPServer builds the server and registers every tool.
func NewNinMCPServer(svc *notepad.Service, log *zap.Logger) *NinMCPServer {
	if log == nil {
		log = zap.NewNop()
	}
	s := server.NewMCPServer(
		"Nin MCP Server",
		nin.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	srv := &NinMCPServer{mcpServer: s, log: log.Named("mcp")}
	registerTools(s, &handlers{svc: svc})
	return srv
}

// Start runs the stdio event loop.
func (s *NinMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// StartHTTP serves the streamable HTTP transport on addr until ctx is done.
func (s *NinMCPServer) StartHTTP(ctx context.Context, addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.mcpServer)

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Start(addr) }()
	s.log.Info("mcp http listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return httpServer.Shutdown(context.Background())
	}
}

// MCPRawServer exposes the raw mcp-go server.
func (s *NinMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

// ReminderSink logs a due reminder and forwards it to connected clients.
func (s *NinMCPServer) ReminderSink() notify.Sink {
	return func(ctx context.Context, n notify.Notification) error {
		s.log.Info("reminder due", zap.String("title", n.Title), zap.Time("at", n.At))
		s.mcpServer.SendNotificationToAllClients(ReminderMethod, map[string]any{
			"handle": string(n.Handle),
			"title":  n.Title,
			"body":   n.Body,
			"at":     n.At.Format(timeLayout),
		})
		return nil
	}
}
