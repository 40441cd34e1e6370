package axon

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/axonhq/axon/internal/domain"
)

// errorBody is the canonical wire form of a failed operation, carried as the
// single text block of an isError tool result. Transport-level JSON-RPC
// errors (parse, unknown method, bad envelope) stay with mcp-go; everything
// the engine rejects comes back through here.
type errorBody struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

// jsonResult marshals v into a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(domain.WrapStore(err, "encode result"))
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult encodes err as an isError tool result with the canonical body.
// Untyped errors are reported as store failures with a generic message so no
// internal detail leaks to clients.
func errorResult(err error) (*mcp.CallToolResult, error) {
	de, ok := domain.AsError(err)
	if !ok {
		de = &domain.Error{Kind: domain.KindStore, Message: "internal storage error"}
	}
	body := errorBody{
		Code:    de.Kind.JSONRPCCode(),
		Kind:    string(de.Kind),
		Reason:  de.Reason,
		Message: de.Message,
	}
	data, merr := json.Marshal(body)
	if merr != nil {
		return mcp.NewToolResultError(fmt.Sprintf(`{"code":-32005,"kind":"store","message":%q}`, de.Message)), nil
	}
	return mcp.NewToolResultError(string(data)), nil
}

// discoverResult is the discover_work payload: the candidate tasks plus the
// agent's advisory capabilities echoed back unchanged.
type discoverResult struct {
	Agent        string         `json:"agent"`
	Capabilities []string       `json:"capabilities"`
	Tasks        []*domain.Task `json:"tasks"`
}

// taskList wraps list_tasks output so the payload stays an object.
type taskList struct {
	Tasks []*domain.Task `json:"tasks"`
	Count int            `json:"count"`
}

// messageList wraps get_task_messages output.
type messageList struct {
	Messages []*domain.TaskMessage `json:"messages"`
	Count    int                   `json:"count"`
}

// nullResult is the payload for get_* lookups that found nothing: an explicit
// JSON null, never a JSON-RPC error.
var nullResult = mcp.NewToolResultText("null")
