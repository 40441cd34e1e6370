package axon

import (
	"testing"
)

func TestDiscoverWorkReturnsUnownedCreatedTasks(t *testing.T) {
	s := testServer(t)
	createTask(t, s, "DW-1", "n", "")
	createTask(t, s, "DW-2", "n", "agent-a") // pre-assigned, not discoverable
	createTask(t, s, "DW-3", "n", "")

	var result struct {
		Agent        string        `json:"agent"`
		Capabilities []string      `json:"capabilities"`
		Tasks        []taskPayload `json:"tasks"`
	}
	callOK(t, s, "discover_work", map[string]any{
		"agent":        "agent-b",
		"capabilities": []string{"code-edit", "review"},
	}, &result)

	if result.Agent != "agent-b" {
		t.Errorf("agent = %q, want agent-b", result.Agent)
	}
	if len(result.Capabilities) != 2 || result.Capabilities[0] != "code-edit" {
		t.Errorf("capabilities not echoed back: %v", result.Capabilities)
	}
	if len(result.Tasks) != 2 || result.Tasks[0].Code != "DW-1" || result.Tasks[1].Code != "DW-3" {
		t.Errorf("tasks = %+v, want [DW-1 DW-3] oldest first", result.Tasks)
	}
}

func TestDiscoverWorkHonorsMaxTasks(t *testing.T) {
	s := testServer(t)
	for _, code := range []string{"MX-1", "MX-2", "MX-3"} {
		createTask(t, s, code, "n", "")
	}

	var result struct {
		Tasks []taskPayload `json:"tasks"`
	}
	callOK(t, s, "discover_work", map[string]any{"agent": "agent-a", "max_tasks": 2}, &result)
	if len(result.Tasks) != 2 {
		t.Errorf("got %d tasks, want 2", len(result.Tasks))
	}
}

func TestClaimReleaseReclaim(t *testing.T) {
	s := testServer(t)
	createTask(t, s, "RACE-1", "N", "")

	var claimed taskPayload
	callOK(t, s, "claim_task", map[string]any{"task_id": 1, "agent": "agent-a"}, &claimed)
	if claimed.Owner == nil || *claimed.Owner != "agent-a" {
		t.Fatalf("owner = %v, want agent-a", claimed.Owner)
	}
	if claimed.State != "InProgress" {
		t.Fatalf("state = %q, want InProgress", claimed.State)
	}

	// The loser of the race sees a conflict with a machine-readable reason.
	body := callErr(t, s, "claim_task", map[string]any{"task_id": 1, "agent": "agent-b"})
	if body.Kind != "conflict" || body.Code != -32007 {
		t.Errorf("loser got kind=%q code=%d, want conflict/-32007", body.Kind, body.Code)
	}
	if body.Reason != "already_claimed" {
		t.Errorf("reason = %q, want already_claimed", body.Reason)
	}

	var released taskPayload
	callOK(t, s, "release_task", map[string]any{"task_id": 1, "agent": "agent-a"}, &released)
	if released.Owner != nil || released.State != "Created" {
		t.Fatalf("after release: owner=%v state=%q, want unowned Created", released.Owner, released.State)
	}

	var reclaimed taskPayload
	callOK(t, s, "claim_task", map[string]any{"task_id": 1, "agent": "agent-b"}, &reclaimed)
	if reclaimed.Owner == nil || *reclaimed.Owner != "agent-b" {
		t.Fatalf("reclaim owner = %v, want agent-b", reclaimed.Owner)
	}
}

func TestClaimWrongStateConflict(t *testing.T) {
	s := testServer(t)
	createTask(t, s, "WS-1", "n", "")
	callOK(t, s, "claim_task", map[string]any{"task_id": 1, "agent": "agent-a"}, nil)
	callOK(t, s, "set_task_state", map[string]any{"id": 1, "state": "Done"}, nil)
	callOK(t, s, "assign_task", map[string]any{"id": 1, "new_owner": nil}, nil)

	body := callErr(t, s, "claim_task", map[string]any{"task_id": 1, "agent": "agent-b"})
	if body.Reason != "wrong_state" {
		t.Errorf("reason = %q, want wrong_state", body.Reason)
	}
}

func TestReleaseRequiresOwnership(t *testing.T) {
	s := testServer(t)
	createTask(t, s, "REL-1", "n", "")
	callOK(t, s, "claim_task", map[string]any{"task_id": 1, "agent": "agent-a"}, nil)

	body := callErr(t, s, "release_task", map[string]any{"task_id": 1, "agent": "agent-b"})
	if body.Kind != "conflict" || body.Reason != "not_owner" {
		t.Errorf("got kind=%q reason=%q, want conflict/not_owner", body.Kind, body.Reason)
	}
}

func TestReleaseFromBlocked(t *testing.T) {
	s := testServer(t)
	createTask(t, s, "BLK-1", "n", "")
	callOK(t, s, "claim_task", map[string]any{"task_id": 1, "agent": "agent-a"}, nil)
	callOK(t, s, "set_task_state", map[string]any{"id": 1, "state": "Blocked"}, nil)

	var released taskPayload
	callOK(t, s, "release_task", map[string]any{"task_id": 1, "agent": "agent-a"}, &released)
	if released.State != "Created" || released.Owner != nil {
		t.Fatalf("after release from Blocked: owner=%v state=%q", released.Owner, released.State)
	}
}

func TestClaimNotFound(t *testing.T) {
	s := testServer(t)
	body := callErr(t, s, "claim_task", map[string]any{"task_id": 7, "agent": "agent-a"})
	if body.Kind != "not_found" {
		t.Errorf("kind = %q, want not_found", body.Kind)
	}
}
