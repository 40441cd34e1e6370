// Package server hosts the MCP server over its two transports: the stdio
// stream and the HTTP host (streamable /mcp, legacy SSE, health, dashboard).
package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/axonhq/axon/internal/engine"
	"github.com/axonhq/axon/internal/logger"
	"github.com/axonhq/axon/internal/tools/axon"
)

const serverName = "axon"

// New assembles the MCP server: tool registration, the protocol guard,
// session bookkeeping hooks, and per-call logging. Both transports serve the
// returned server.
func New(eng *engine.Engine, reg *Registry, log *logger.Logger, version string) *mcpserver.MCPServer {
	hooks := &mcpserver.Hooks{}

	hooks.AddBeforeInitialize(func(ctx context.Context, id any, message *mcp.InitializeRequest) {
		fields := make([]zap.Field, 0, 4)
		if sess := mcpserver.ClientSessionFromContext(ctx); sess != nil {
			fields = append(fields, zap.String("session", sess.SessionID()))
		}
		if message != nil {
			ci := message.Params.ClientInfo
			fields = append(fields,
				zap.String("client", ci.Name),
				zap.String("client_version", ci.Version),
				zap.String("protocol", message.Params.ProtocolVersion))
		}
		log.Info("client connecting", fields...)
	})

	hooks.AddAfterCallTool(func(ctx context.Context, id any, message *mcp.CallToolRequest, result *mcp.CallToolResult) {
		if message == nil {
			return
		}
		log.Debug("tool call",
			zap.String("tool", message.Params.Name),
			zap.Bool("is_error", result != nil && result.IsError))
	})

	hooks.AddOnUnregisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		sid := session.SessionID()
		if agent := reg.Agent(sid); agent != "" {
			log.Info("session closed", zap.String("session", sid), zap.String("agent", agent))
		} else {
			log.Debug("session closed", zap.String("session", sid))
		}
		reg.Remove(sid)
	})

	s := mcpserver.NewMCPServer(
		serverName,
		version,
		mcpserver.WithInstructions(axon.InstructionsText()),
		mcpserver.WithToolHandlerMiddleware(axon.ProtocolGuard()),
		mcpserver.WithToolHandlerMiddleware(bindAgent(reg)),
		mcpserver.WithHooks(hooks),
	)
	axon.Register(s, eng)
	return s
}

// bindAgent keeps the session registry current by observing the agent (or
// author) argument of tool calls. Tools that take neither still refresh the
// session's activity timestamp.
func bindAgent(reg *Registry) mcpserver.ToolHandlerMiddleware {
	return func(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if sess := mcpserver.ClientSessionFromContext(ctx); sess != nil {
				args := req.GetArguments()
				agent, _ := args["agent"].(string)
				if agent == "" {
					agent, _ = args["author"].(string)
				}
				if agent != "" {
					reg.Bind(sess.SessionID(), agent)
				} else {
					reg.Touch(sess.SessionID())
				}
			}
			return next(ctx, req)
		}
	}
}
