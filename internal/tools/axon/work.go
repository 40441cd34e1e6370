package axon

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/axonhq/axon/internal/engine"
)

// registerDiscoverWork registers the discover_work tool.
func registerDiscoverWork(s *server.MCPServer, eng *engine.Engine) {
	s.AddTool(
		mcp.NewTool("discover_work",
			mcp.WithDescription("List claimable tasks (state Created, no owner), oldest first. Capabilities are advisory and echoed back; the hub does not match on them. Follow up with claim_task to take a task."),
			mcp.WithString("agent", mcp.Required(), mcp.Description("Agent looking for work")),
			mcp.WithArray("capabilities", mcp.Description("Advisory capability tags, e.g. ['code-edit', 'review']")),
			mcp.WithNumber("max_tasks", mcp.Description("Maximum tasks to return (default 10)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			agent, err := requireString(args, "agent")
			if err != nil {
				return errorResult(err)
			}
			capabilities, err := stringSlice(args, "capabilities")
			if err != nil {
				return errorResult(err)
			}
			maxTasks := 0
			if n, err := optionalInt(args, "max_tasks"); err != nil {
				return errorResult(err)
			} else if n != nil {
				maxTasks = *n
			}

			tasks, err := eng.DiscoverWork(ctx, agent, capabilities, maxTasks)
			if err != nil {
				return errorResult(err)
			}
			if capabilities == nil {
				capabilities = []string{}
			}
			return jsonResult(discoverResult{Agent: agent, Capabilities: capabilities, Tasks: tasks})
		},
	)
}

// registerClaimTask registers the claim_task tool.
func registerClaimTask(s *server.MCPServer, eng *engine.Engine) {
	s.AddTool(
		mcp.NewTool("claim_task",
			mcp.WithDescription("Atomically claim an unowned Created task. On success the task is owned by the agent and InProgress. When several agents race for the same task exactly one wins; the rest get a conflict."),
			mcp.WithNumber("task_id", mcp.Required(), mcp.Description("Task id to claim")),
			mcp.WithString("agent", mcp.Required(), mcp.Description("Claiming agent")),
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

			task, err := eng.ClaimTask(ctx, taskID, agent)
			if err != nil {
				return errorResult(err)
			}
			return jsonResult(task)
		},
	)
}

// registerReleaseTask registers the release_task tool.
func registerReleaseTask(s *server.MCPServer, eng *engine.Engine) {
	s.AddTool(
		mcp.NewTool("release_task",
			mcp.WithDescription("Hand a claimed task back to the pool: owner cleared, state reset to Created. Only the current owner may release, and only from InProgress or Blocked."),
			mcp.WithNumber("task_id", mcp.Required(), mcp.Description("Task id to release")),
			mcp.WithString("agent", mcp.Required(), mcp.Description("Releasing agent (must be the current owner)")),
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

			task, err := eng.ReleaseTask(ctx, taskID, agent)
			if err != nil {
				return errorResult(err)
			}
			return jsonResult(task)
		},
	)
}
