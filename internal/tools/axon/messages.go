package axon

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/axonhq/axon/internal/engine"
)

// registerCreateTaskMessage registers the create_task_message tool.
func registerCreateTaskMessage(s *server.MCPServer, eng *engine.Engine) {
	s.AddTool(
		mcp.NewTool("create_task_message",
			mcp.WithDescription("Post a message on a task's log. Omit target for a broadcast; set reply_to to thread under an earlier message of the same task. Messages are append-only."),
			mcp.WithString("task_code", mcp.Required(), mcp.Description("Code of the task the message belongs to")),
			mcp.WithString("author", mcp.Required(), mcp.Description("Posting agent")),
			mcp.WithString("target", mcp.Description("Recipient agent; omit to broadcast")),
			mcp.WithString("kind", mcp.Required(), mcp.Description("Message kind: handoff, question, comment, solution, blocker, or a custom 1-32 character tag")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Message text (up to 64 KiB)")),
			mcp.WithNumber("reply_to", mcp.Description("Id of an earlier message on the same task")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			taskCode, err := requireString(args, "task_code")
			if err != nil {
				return errorResult(err)
			}
			author, err := requireString(args, "author")
			if err != nil {
				return errorResult(err)
			}
			target, err := optionalString(args, "target")
			if err != nil {
				return errorResult(err)
			}
			kind, err := requireString(args, "kind")
			if err != nil {
				return errorResult(err)
			}
			content, err := requireString(args, "content")
			if err != nil {
				return errorResult(err)
			}
			replyTo, err := optionalInt64(args, "reply_to")
			if err != nil {
				return errorResult(err)
			}

			msg, err := eng.CreateTaskMessage(ctx, engine.CreateMessageParams{
				TaskCode: taskCode,
				Author:   author,
				Target:   target,
				Kind:     kind,
				Content:  content,
				ReplyTo:  replyTo,
			})
			if err != nil {
				return errorResult(err)
			}
			return jsonResult(msg)
		},
	)
}

// registerGetTaskMessages registers the get_task_messages tool.
func registerGetTaskMessages(s *server.MCPServer, eng *engine.Engine) {
	s.AddTool(
		mcp.NewTool("get_task_messages",
			mcp.WithDescription("List a task's messages with AND-composed filters, ordered by creation time then id. The target filter matches exactly: broadcasts are not included when it is set."),
			mcp.WithString("task_code", mcp.Required(), mcp.Description("Code of the task to read")),
			mcp.WithString("author", mcp.Description("Filter by posting agent")),
			mcp.WithString("target", mcp.Description("Filter by recipient agent (exact match, excludes broadcasts)")),
			mcp.WithString("kind", mcp.Description("Filter by message kind")),
			mcp.WithNumber("reply_to", mcp.Description("Filter by parent message id")),
			mcp.WithNumber("limit", mcp.Description("Page size (default 100, max 1000)")),
			mcp.WithNumber("offset", mcp.Description("Page offset (default 0)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			taskCode, err := requireString(args, "task_code")
			if err != nil {
				return errorResult(err)
			}
			author, err := optionalString(args, "author")
			if err != nil {
				return errorResult(err)
			}
			target, err := optionalString(args, "target")
			if err != nil {
				return errorResult(err)
			}
			kind, err := optionalString(args, "kind")
			if err != nil {
				return errorResult(err)
			}
			replyTo, err := optionalInt64(args, "reply_to")
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

			msgs, err := eng.GetTaskMessages(ctx, engine.ListMessagesParams{
				TaskCode: taskCode,
				Author:   author,
				Target:   target,
				Kind:     kind,
				ReplyTo:  replyTo,
				Limit:    limit,
				Offset:   offset,
			})
			if err != nil {
				return errorResult(err)
			}
			return jsonResult(messageList{Messages: msgs, Count: len(msgs)})
		},
	)
}
