// Package axon is the dispatcher: it maps MCP tool calls onto coordination
// engine operations and encodes the results. It is transport-agnostic: the
// same registration serves the stdio stream and the HTTP host.
package axon

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/axonhq/axon/internal/domain"
	"github.com/axonhq/axon/internal/engine"
)

// Register registers the coordination tools with the mcp-go server. The
// engine carries its own logger; per-call tracing is the server hooks' job.
func Register(s *server.MCPServer, eng *engine.Engine) {
	// Task lifecycle tools (5)
	registerCreateTask(s, eng)
	registerUpdateTask(s, eng)
	registerAssignTask(s, eng)
	registerSetTaskState(s, eng)
	registerArchiveTask(s, eng)

	// Task read tools (3)
	registerGetTaskByID(s, eng)
	registerGetTaskByCode(s, eng)
	registerListTasks(s, eng)

	// Work discovery tools (3)
	registerDiscoverWork(s, eng)
	registerClaimTask(s, eng)
	registerReleaseTask(s, eng)

	// Work session tools (2)
	registerStartWorkSession(s, eng)
	registerEndWorkSession(s, eng)

	// Messaging tools (2)
	registerCreateTaskMessage(s, eng)
	registerGetTaskMessages(s, eng)
}

// ProtocolGuard rejects tool calls arriving before the session finished the
// initialize handshake. The rejection uses the canonical error body with the
// protocol kind rather than a transport-level JSON-RPC error, so clients see
// it the same way on both transports.
func ProtocolGuard() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if session := server.ClientSessionFromContext(ctx); session != nil && !session.Initialized() {
				return errorResult(domain.Protocolf("tool %s called before the session was initialized", req.Params.Name))
			}
			return next(ctx, req)
		}
	}
}
