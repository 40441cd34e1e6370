package axon

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/axonhq/axon/internal/engine"
)

// registerStartWorkSession registers the start_work_session tool.
func registerStartWorkSession(s *server.MCPServer, eng *engine.Engine) {
	s.AddTool(
		mcp.NewTool("start_work_session",
			mcp.WithDescription("Open a work session on a task the agent owns. The task must be InProgress or Review, and the agent must not already have an open session on it."),
			mcp.WithNumber("task_id", mcp.Required(), mcp.Description("Task id to work on")),
			mcp.WithString("agent", mcp.Required(), mcp.Description("Agent starting the session (must own the task)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			taskID, err := requireInt64(args, "task_id")
			if err != nil {
				return errorResult(err)
			}
			agent, err := requireString(args, "agent")
			if err != nil {
				return errorResult(err)
			}

			session, err := eng.StartWorkSession(ctx, taskID, agent)
			if err != nil {
				return errorResult(err)
			}
			return jsonResult(session)
		},
	)
}

// registerEndWorkSession registers the end_work_session tool.
func registerEndWorkSession(s *server.MCPServer, eng *engine.Engine) {
	s.AddTool(
		mcp.NewTool("end_work_session",
			mcp.WithDescription("Close an open work session, stamping its end time. Notes and a 0.0-1.0 productivity score may be attached."),
			mcp.WithNumber("session_id", mcp.Required(), mcp.Description("Session id to close")),
			mcp.WithString("notes", mcp.Description("Free-text notes about the session")),
			mcp.WithNumber("productivity_score", mcp.Description("Self-assessed productivity, 0.0-1.0")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			sessionID, err := requireInt64(args, "session_id")
			if err != nil {
				return errorResult(err)
			}
			notes, err := optionalString(args, "notes")
			if err != nil {
				return errorResult(err)
			}
			score, err := optionalFloat64(args, "productivity_score")
			if err != nil {
				return errorResult(err)
			}

			session, err := eng.EndWorkSession(ctx, sessionID, notes, score)
			if err != nil {
				return errorResult(err)
			}
			return jsonResult(session)
		},
	)
}
