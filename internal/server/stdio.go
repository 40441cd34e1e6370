package server

import (
	"context"
	"errors"
	"io"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/axonhq/axon/internal/logger"
)

// RunStdio serves line-delimited JSON-RPC on stdin/stdout until ctx is
// cancelled or stdin closes. stdout carries protocol frames only; every
// diagnostic goes through the zap logger on stderr.
func RunStdio(ctx context.Context, s *mcpserver.MCPServer, log *logger.Logger) error {
	log.Info("stream transport ready")
	srv := mcpserver.NewStdioServer(s)
	err := srv.Listen(ctx, os.Stdin, os.Stdout)
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
