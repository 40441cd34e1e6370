package axon

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/axonhq/axon/internal/domain"
	"github.com/axonhq/axon/internal/engine"
)

// registerCreateTask registers the create_task tool.
func registerCreateTask(s *server.MCPServer, eng *engine.Engine) {
	s.AddTool(
		mcp.NewTool("create_task",
			mcp.WithDescription("Create a coordination task. The task starts in state Created and is discoverable until an agent claims it."),
			mcp.WithString("code", mcp.Required(), mcp.Description("Unique task code, e.g. 'TASK-001' (uppercase, must contain a hyphen or digit)")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Short task name (1-200 characters)")),
			mcp.WithString("description", mcp.Description("Detailed task description (up to 16 KiB)")),
			mcp.WithString("owner", mcp.Description("Agent to pre-assign the task to (lowercase, e.g. 'backend-1'). Omit to leave it unassigned.")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			code, err := requireString(args, "code")
			if err != nil {
				return errorResult(err)
			}
			name, err := requireString(args, "name")
			if err != nil {
				return errorResult(err)
			}
			description, _ := args["description"].(string)
			owner, err := optionalString(args, "owner")
			if err != nil {
				return errorResult(err)
			}

			task, err := eng.CreateTask(ctx, engine.CreateTaskParams{
				Code:        code,
				Name:        name,
				Description: description,
				Owner:       owner,
			})
			if err != nil {
				return errorResult(err)
			}
			return jsonResult(task)
		},
	)
}

// registerUpdateTask registers the update_task tool.
func registerUpdateTask(s *server.MCPServer, eng *engine.Engine) {
	s.AddTool(
		mcp.NewTool("update_task",
			mcp.WithDescription("Partially update a task's name, description, or owner. At least one field must be provided. Archived tasks reject updates."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
			mcp.WithString("name", mcp.Description("New task name")),
			mcp.WithString("description", mcp.Description("New task description; pass an empty string to clear it")),
			mcp.WithString("owner", mcp.Description("New owner agent; pass null or empty to unassign")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			id, err := requireInt64(args, "id")
			if err != nil {
				return errorResult(err)
			}
			name, err := optionalString(args, "name")
			if err != nil {
				return errorResult(err)
			}
			description, err := presentString(args, "description")
			if err != nil {
				return errorResult(err)
			}
			owner, ownerSet, err := nullableString(args, "owner")
			if err != nil {
				return errorResult(err)
			}

			task, err := eng.UpdateTask(ctx, engine.UpdateTaskParams{
				ID:          id,
				Name:        name,
				Description: description,
				Owner:       owner,
				OwnerSet:    ownerSet,
			})
			if err != nil {
				return errorResult(err)
			}
			return jsonResult(task)
		},
	)
}

// registerAssignTask registers the assign_task tool.
func registerAssignTask(s *server.MCPServer, eng *engine.Engine) {
	s.AddTool(
		mcp.NewTool("assign_task",
			mcp.WithDescription("Set or clear a task's owner without changing its state. Pass null or empty new_owner to unassign."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
			mcp.WithString("new_owner", mcp.Description("Agent to assign; null or empty unassigns")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			id, err := requireInt64(args, "id")
			if err != nil {
				return errorResult(err)
			}
			owner, _, err := nullableString(args, "new_owner")
			if err != nil {
				return errorResult(err)
			}

			task, err := eng.AssignTask(ctx, id, owner)
			if err != nil {
				return errorResult(err)
			}
			return jsonResult(task)
		},
	)
}

// registerSetTaskState registers the set_task_state tool.
func registerSetTaskState(s *server.MCPServer, eng *engine.Engine) {
	s.AddTool(
		mcp.NewTool("set_task_state",
			mcp.WithDescription("Move a task through its lifecycle. Only the transitions of the state machine are accepted; entering Done stamps done_at, entering Archived stamps archived_at."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
			mcp.WithString("state", mcp.Required(), mcp.Description("Target state"),
				mcp.Enum("Created", "InProgress", "Blocked", "Review", "Done", "Archived")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			id, err := requireInt64(args, "id")
			if err != nil {
				return errorResult(err)
			}
			raw, err := requireString(args, "state")
			if err != nil {
				return errorResult(err)
			}
			state, err := domain.ParseState(raw)
			if err != nil {
				return errorResult(err)
			}

			task, err := eng.SetTaskState(ctx, id, state)
			if err != nil {
				return errorResult(err)
			}
			return jsonResult(task)
		},
	)
}

// registerArchiveTask registers the archive_task tool.
func registerArchiveTask(s *server.MCPServer, eng *engine.Engine) {
	s.AddTool(
		mcp.NewTool("archive_task",
			mcp.WithDescription("Archive a Done task. Archived is terminal: every later mutation of the task fails."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := requireInt64(req.GetArguments(), "id")
			if err != nil {
				return errorResult(err)
			}
			task, err := eng.ArchiveTask(ctx, id)
			if err != nil {
				return errorResult(err)
			}
			return jsonResult(task)
		},
	)
}

// registerGetTaskByID registers the get_task_by_id tool.
func registerGetTaskByID(s *server.MCPServer, eng *engine.Engine) {
	s.AddTool(
		mcp.NewTool("get_task_by_id",
			mcp.WithDescription("Fetch a task by id. Returns null when no such task exists."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := requireInt64(req.GetArguments(), "id")
			if err != nil {
				return errorResult(err)
			}
			task, err := eng.GetTaskByID(ctx, id)
			if err != nil {
				return errorResult(err)
			}
			if task == nil {
				return nullResult, nil
			}
			return jsonResult(task)
		},
	)
}

// registerGetTaskByCode registers the get_task_by_code tool.
func registerGetTaskByCode(s *server.MCPServer, eng *engine.Engine) {
	s.AddTool(
		mcp.NewTool("get_task_by_code",
			mcp.WithDescription("Fetch a task by its code. Returns null when no such task exists."),
			mcp.WithString("code", mcp.Required(), mcp.Description("Task code, e.g. 'TASK-001'")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			code, err := requireString(req.GetArguments(), "code")
			if err != nil {
				return errorResult(err)
			}
			task, err := eng.GetTaskByCode(ctx, code)
			if err != nil {
				return errorResult(err)
			}
			if task == nil {
				return nullResult, nil
			}
			return jsonResult(task)
		},
	)
}

// registerListTasks registers the list_tasks tool.
func registerListTasks(s *server.MCPServer, eng *engine.Engine) {
	s.AddTool(
		mcp.NewTool("list_tasks",
			mcp.WithDescription("List tasks with AND-composed filters, ordered by creation time then id."),
			mcp.WithString("owner", mcp.Description("Filter by owner agent")),
			mcp.WithString("state", mcp.Description("Filter by lifecycle state"),
				mcp.Enum("Created", "InProgress", "Blocked", "Review", "Done", "Archived")),
			mcp.WithString("date_from", mcp.Description("Only tasks created at or after this RFC 3339 instant")),
			mcp.WithString("date_to", mcp.Description("Only tasks created before this RFC 3339 instant")),
			mcp.WithNumber("limit", mcp.Description("Page size (default 100, max 1000)")),
			mcp.WithNumber("offset", mcp.Description("Page offset (default 0)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			owner, err := optionalString(args, "owner")
			if err != nil {
				return errorResult(err)
			}
			state, err := optionalString(args, "state")
			if err != nil {
				return errorResult(err)
			}
			dateFrom, err := optionalTime(args, "date_from")
			if err != nil {
				return errorResult(err)
			}
			dateTo, err := optionalTime(args, "date_to")
			if err != nil {
				return errorResult(err)
			}
			limit, err := optionalInt(args, "limit")
			if err != nil {
				return errorResult(err)
			}
			offset, err := optionalInt(args, "offset")
			if err != nil {
				return errorResult(err)
			}

			tasks, err := eng.ListTasks(ctx, engine.ListTasksParams{
				Owner:    owner,
				State:    state,
				DateFrom: dateFrom,
				DateTo:   dateTo,
				Limit:    limit,
				Offset:   offset,
			})
			if err != nil {
				return errorResult(err)
			}
			return jsonResult(taskList{Tasks: tasks, Count: len(tasks)})
		},
	)
}
