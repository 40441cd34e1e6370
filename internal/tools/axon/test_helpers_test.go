package axon

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/axonhq/axon/internal/engine"
	"github.com/axonhq/axon/internal/logger"
	"github.com/axonhq/axon/internal/store/memory"
)

// testServer creates an MCPServer with all tools registered on a fresh
// in-memory store. The clock advances one second per operation so ordering
// by created_at is deterministic.
func testServer(t *testing.T) *server.MCPServer {
	t.Helper()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var ticks int
	clock := func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	}
	eng := engine.New(memory.New(), logger.Nop(), engine.WithClock(clock))
	s := server.NewMCPServer("axon-test", "0.0.0",
		server.WithToolHandlerMiddleware(ProtocolGuard()))
	Register(s, eng)
	return s
}

// callTool calls a registered tool via the MCPServer's HandleMessage.
// Returns the parsed CallToolResult or an error for JSON-RPC level failures.
func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	reqJSON, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      name,
			"arguments": args,
		},
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	respJSON := s.HandleMessage(context.Background(), reqJSON)
	respBytes, err := json.Marshal(respJSON)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var resp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("RPC error %d calling %s: %s", resp.Error.Code, name, resp.Error.Message)
	}

	var result mcp.CallToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	return &result
}

// resultText extracts the first text content from a CallToolResult.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("result is nil")
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content in result")
	return ""
}

// callOK calls a tool and decodes its success payload into out (when out is
// non-nil). Fails the test if the tool returned an error result.
func callOK(t *testing.T, s *server.MCPServer, name string, args map[string]any, out any) {
	t.Helper()
	result := callTool(t, s, name, args)
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("%s failed: %s", name, text)
	}
	if out != nil {
		if err := json.Unmarshal([]byte(text), out); err != nil {
			t.Fatalf("%s: decode payload %q: %v", name, text, err)
		}
	}
}

// callErr calls a tool expecting an error result and returns the decoded body.
func callErr(t *testing.T, s *server.MCPServer, name string, args map[string]any) errorBody {
	t.Helper()
	result := callTool(t, s, name, args)
	text := resultText(t, result)
	if !result.IsError {
		t.Fatalf("%s succeeded, expected an error result: %s", name, text)
	}
	var body errorBody
	if err := json.Unmarshal([]byte(text), &body); err != nil {
		t.Fatalf("%s: decode error body %q: %v", name, text, err)
	}
	return body
}

// taskPayload is the decoded wire form of a task result.
type taskPayload struct {
	ID          int64   `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Owner       *string `json:"owner"`
	State       string  `json:"state"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	DoneAt      *string `json:"done_at"`
	ArchivedAt  *string `json:"archived_at"`
}

// messagePayload is the decoded wire form of a message result.
type messagePayload struct {
	ID      int64   `json:"id"`
	TaskID  int64   `json:"task_id"`
	Author  string  `json:"author"`
	Target  *string `json:"target"`
	Kind    string  `json:"kind"`
	Content string  `json:"content"`
	ReplyTo *int64  `json:"reply_to"`
}

// sessionPayload is the decoded wire form of a work session result.
type sessionPayload struct {
	ID                int64    `json:"id"`
	TaskID            int64    `json:"task_id"`
	Agent             string   `json:"agent"`
	StartedAt         string   `json:"started_at"`
	EndedAt           *string  `json:"ended_at"`
	Notes             *string  `json:"notes"`
	ProductivityScore *float64 `json:"productivity_score"`
}

// taskListPayload is the decoded wire form of a list_tasks result.
type taskListPayload struct {
	Tasks []taskPayload `json:"tasks"`
	Count int           `json:"count"`
}

// messageListPayload is the decoded wire form of a get_task_messages result.
type messageListPayload struct {
	Messages []messagePayload `json:"messages"`
	Count    int              `json:"count"`
}

// createTask is a shorthand for creating a task through the wire surface.
func createTask(t *testing.T, s *server.MCPServer, code, name string, owner string) taskPayload {
	t.Helper()
	args := map[string]any{"code": code, "name": name}
	if owner != "" {
		args["owner"] = owner
	}
	var task taskPayload
	callOK(t, s, "create_task", args, &task)
	return task
}
