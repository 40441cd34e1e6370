package axon

import (
	"testing"
)

func TestTargetedMessagingScenario(t *testing.T) {
	s := testServer(t)
	createTask(t, s, "MSG-1", "n", "")

	post := func(author, target, kind, content string) messagePayload {
		t.Helper()
		args := map[string]any{
			"task_code": "MSG-1",
			"author":    author,
			"kind":      kind,
			"content":   content,
		}
		if target != "" {
			args["target"] = target
		}
		var msg messagePayload
		callOK(t, s, "create_task_message", args, &msg)
		return msg
	}

	post("frontend", "backend", "handoff", "h")
	post("backend", "frontend", "question", "q")
	post("qa", "", "comment", "c")

	var page messageListPayload
	callOK(t, s, "get_task_messages", map[string]any{"task_code": "MSG-1", "target": "backend"}, &page)
	if page.Count != 1 || page.Messages[0].Kind != "handoff" {
		t.Fatalf("target filter returned %+v, want only the handoff", page.Messages)
	}

	callOK(t, s, "get_task_messages", map[string]any{"task_code": "MSG-1", "kind": "question"}, &page)
	if page.Count != 1 || page.Messages[0].Content != "q" {
		t.Fatalf("kind filter returned %+v, want only the question", page.Messages)
	}

	// Exact-match target semantics: broadcasts are not folded into a
	// targeted query.
	callOK(t, s, "get_task_messages", map[string]any{"task_code": "MSG-1", "target": "frontend"}, &page)
	if page.Count != 1 || page.Messages[0].Author != "backend" {
		t.Fatalf("target=frontend returned %+v, want only backend's question", page.Messages)
	}

	callOK(t, s, "get_task_messages", map[string]any{"task_code": "MSG-1"}, &page)
	if page.Count != 3 {
		t.Fatalf("unfiltered count = %d, want 3", page.Count)
	}
	for i := 1; i < len(page.Messages); i++ {
		if page.Messages[i].ID < page.Messages[i-1].ID {
			t.Fatalf("messages out of order: %+v", page.Messages)
		}
	}
}

func TestMessageThreading(t *testing.T) {
	s := testServer(t)
	createTask(t, s, "THR-1", "n", "")
	createTask(t, s, "THR-2", "n", "")

	var root messagePayload
	callOK(t, s, "create_task_message", map[string]any{
		"task_code": "THR-1", "author": "agent-a", "kind": "question", "content": "root",
	}, &root)

	var reply messagePayload
	callOK(t, s, "create_task_message", map[string]any{
		"task_code": "THR-1", "author": "agent-b", "kind": "solution", "content": "answer", "reply_to": root.ID,
	}, &reply)
	if reply.ReplyTo == nil || *reply.ReplyTo != root.ID {
		t.Fatalf("reply_to = %v, want %d", reply.ReplyTo, root.ID)
	}

	// reply_to must reference a message of the same task.
	body := callErr(t, s, "create_task_message", map[string]any{
		"task_code": "THR-2", "author": "agent-a", "kind": "comment", "content": "x", "reply_to": root.ID,
	})
	if body.Kind != "validation" {
		t.Errorf("cross-task reply: kind = %q, want validation", body.Kind)
	}

	// Dangling reply_to is a lookup miss.
	body = callErr(t, s, "create_task_message", map[string]any{
		"task_code": "THR-1", "author": "agent-a", "kind": "comment", "content": "x", "reply_to": 99,
	})
	if body.Kind != "not_found" {
		t.Errorf("dangling reply: kind = %q, want not_found", body.Kind)
	}

	var page messageListPayload
	callOK(t, s, "get_task_messages", map[string]any{"task_code": "THR-1", "reply_to": root.ID}, &page)
	if page.Count != 1 || page.Messages[0].ID != reply.ID {
		t.Fatalf("reply_to filter returned %+v, want only the reply", page.Messages)
	}
}

func TestMessageRejectionsByTaskState(t *testing.T) {
	s := testServer(t)

	body := callErr(t, s, "create_task_message", map[string]any{
		"task_code": "NOPE-1", "author": "agent-a", "kind": "comment", "content": "x",
	})
	if body.Kind != "not_found" {
		t.Errorf("missing task: kind = %q, want not_found", body.Kind)
	}

	createTask(t, s, "ARC-1", "n", "")
	callOK(t, s, "claim_task", map[string]any{"task_id": 1, "agent": "agent-a"}, nil)
	callOK(t, s, "set_task_state", map[string]any{"id": 1, "state": "Done"}, nil)
	callOK(t, s, "archive_task", map[string]any{"id": 1}, nil)

	body = callErr(t, s, "create_task_message", map[string]any{
		"task_code": "ARC-1", "author": "agent-a", "kind": "comment", "content": "x",
	})
	if body.Kind != "invalid_state_transition" {
		t.Errorf("archived task: kind = %q, want invalid_state_transition", body.Kind)
	}
}

func TestCustomMessageKinds(t *testing.T) {
	s := testServer(t)
	createTask(t, s, "CK-1", "n", "")

	var msg messagePayload
	callOK(t, s, "create_task_message", map[string]any{
		"task_code": "CK-1", "author": "agent-a", "kind": "benchmark-result", "content": "42ms",
	}, &msg)
	if msg.Kind != "benchmark-result" {
		t.Errorf("kind = %q, want the custom kind stored verbatim", msg.Kind)
	}

	body := callErr(t, s, "create_task_message", map[string]any{
		"task_code": "CK-1", "author": "agent-a", "kind": "this-kind-name-is-far-too-long-to-accept", "content": "x",
	})
	if body.Kind != "validation" {
		t.Errorf("oversized kind: kind = %q, want validation", body.Kind)
	}
}
