package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/axonhq/axon/internal/domain"
)

func TestDiscoverWork(t *testing.T) {
	e, clock := testEngine(t)
	ctx := context.Background()

	mustCreate(t, e, "DISC-1", "n", nil)
	clock.Advance(time.Second)
	mustCreate(t, e, "DISC-2", "n", ptr("agent-b")) // owned: not discoverable
	clock.Advance(time.Second)
	mustCreate(t, e, "DISC-3", "n", nil)
	clock.Advance(time.Second)
	started := mustCreate(t, e, "DISC-4", "n", nil)
	if _, err := e.SetTaskState(ctx, started.ID, domain.StateInProgress); err != nil {
		t.Fatalf("SetTaskState: %v", err)
	}

	tasks, err := e.DiscoverWork(ctx, "agent-a", []string{"go", "sql"}, 0)
	if err != nil {
		t.Fatalf("DiscoverWork: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Code != "DISC-1" || tasks[1].Code != "DISC-3" {
		t.Fatalf("discovered = %v, want [DISC-1 DISC-3]", codes(tasks))
	}

	one, err := e.DiscoverWork(ctx, "agent-a", nil, 1)
	if err != nil {
		t.Fatalf("DiscoverWork: %v", err)
	}
	if len(one) != 1 || one[0].Code != "DISC-1" {
		t.Fatalf("discovered = %v, want [DISC-1]", codes(one))
	}
}

func TestDiscoverWorkBadAgent(t *testing.T) {
	e, _ := testEngine(t)
	_, err := e.DiscoverWork(context.Background(), "Agent!", nil, 0)
	wantKind(t, err, domain.KindValidation, "")
}

// Walks the RACE-1 scenario minus the concurrency: claim, double claim,
// foreign release, owner release, re-claim.
func TestClaimAndRelease(t *testing.T) {
	e, clock := testEngine(t)
	ctx := context.Background()

	task := mustCreate(t, e, "RACE-1", "N", nil)
	clock.Advance(time.Second)

	claimed, err := e.ClaimTask(ctx, task.ID, "agent-a")
	if err != nil {
		t.Fatalf("ClaimTask: %v", err)
	}
	if claimed.Owner == nil || *claimed.Owner != "agent-a" {
		t.Fatalf("owner = %v, want agent-a", claimed.Owner)
	}
	if claimed.State != domain.StateInProgress {
		t.Fatalf("state = %s, want InProgress", claimed.State)
	}
	if !claimed.UpdatedAt.After(claimed.CreatedAt) {
		t.Errorf("updated_at = %v, want after created_at", claimed.UpdatedAt)
	}

	_, err = e.ClaimTask(ctx, task.ID, "agent-b")
	wantKind(t, err, domain.KindConflict, domain.ReasonAlreadyClaimed)

	_, err = e.ReleaseTask(ctx, task.ID, "agent-b")
	wantKind(t, err, domain.KindConflict, domain.ReasonNotOwner)

	released, err := e.ReleaseTask(ctx, task.ID, "agent-a")
	if err != nil {
		t.Fatalf("ReleaseTask: %v", err)
	}
	if released.Owner != nil || released.State != domain.StateCreated {
		t.Fatalf("after release: owner = %v, state = %s, want nil/Created", released.Owner, released.State)
	}

	if _, err := e.ClaimTask(ctx, task.ID, "agent-b"); err != nil {
		t.Fatalf("re-claim by loser: %v", err)
	}
}

func TestClaimRace(t *testing.T) {
	e, _ := testEngine(t)
	ctx := context.Background()

	task := mustCreate(t, e, "RACE-2", "n", nil)

	const claimants = 8
	var wg sync.WaitGroup
	errs := make([]error, claimants)
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.ClaimTask(ctx, task.ID, "agent-a")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		wantKind(t, err, domain.KindConflict, domain.ReasonAlreadyClaimed)
	}
	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1", wins)
	}
}

func TestClaimWrongState(t *testing.T) {
	e, _ := testEngine(t)
	ctx := context.Background()

	// Unowned but already InProgress: claim must fail with wrong_state.
	task := mustCreate(t, e, "CWS-1", "n", nil)
	if _, err := e.SetTaskState(ctx, task.ID, domain.StateInProgress); err != nil {
		t.Fatalf("SetTaskState: %v", err)
	}
	_, err := e.ClaimTask(ctx, task.ID, "agent-a")
	wantKind(t, err, domain.KindConflict, domain.ReasonWrongState)
}

func TestClaimMissingTask(t *testing.T) {
	e, _ := testEngine(t)
	_, err := e.ClaimTask(context.Background(), 404, "agent-a")
	wantKind(t, err, domain.KindNotFound, "")
}

func TestReleaseFromBlocked(t *testing.T) {
	e, _ := testEngine(t)
	ctx := context.Background()

	task := mustCreate(t, e, "RLB-1", "n", nil)
	if _, err := e.ClaimTask(ctx, task.ID, "agent-a"); err != nil {
		t.Fatalf("ClaimTask: %v", err)
	}
	if _, err := e.SetTaskState(ctx, task.ID, domain.StateBlocked); err != nil {
		t.Fatalf("SetTaskState: %v", err)
	}
	released, err := e.ReleaseTask(ctx, task.ID, "agent-a")
	if err != nil {
		t.Fatalf("ReleaseTask: %v", err)
	}
	if released.State != domain.StateCreated {
		t.Errorf("state = %s, want Created", released.State)
	}
}

func TestReleaseWrongState(t *testing.T) {
	e, _ := testEngine(t)
	ctx := context.Background()

	task := mustCreate(t, e, "RLW-1", "n", nil)
	if _, err := e.ClaimTask(ctx, task.ID, "agent-a"); err != nil {
		t.Fatalf("ClaimTask: %v", err)
	}
	if _, err := e.SetTaskState(ctx, task.ID, domain.StateReview); err != nil {
		t.Fatalf("SetTaskState: %v", err)
	}
	_, err := e.ReleaseTask(ctx, task.ID, "agent-a")
	wantKind(t, err, domain.KindConflict, domain.ReasonWrongState)
}

func TestReleaseUnowned(t *testing.T) {
	e, _ := testEngine(t)
	task := mustCreate(t, e, "RLU-1", "n", nil)
	_, err := e.ReleaseTask(context.Background(), task.ID, "agent-a")
	wantKind(t, err, domain.KindConflict, domain.ReasonNotOwner)
}
