package integration

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/danieljhkim/sphere/internal/clock"
	"github.com/danieljhkim/sphere/internal/engine"
)

func TestLockLifecycle_AcrossEngines(t *testing.T) {
	root := setupWorkspace(t, "api", "web")
	ctx := context.Background()

	clk := clock.NewFakeClock(testStart)
	apiAgent := newEngine(clk)
	webAgent := newEngine(clk)

	res, err := apiAgent.Lock(ctx, &engine.LockRequest{
		CWD:      filepath.Join(root, "api"),
		File:     "src/user.ts",
		Identity: engine.Identity{Agent: "claude", Protocol: "mcp"},
		Reason:   "refactoring user model",
	})
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	if res.Lock.LockedBy.Project != "api" {
		t.Errorf("LockedBy.Project = %q, want api", res.Lock.LockedBy.Project)
	}

	// Second engine sees the lock through the shared store.
	_, err = webAgent.Lock(ctx, &engine.LockRequest{
		CWD:      filepath.Join(root, "web"),
		File:     "../api/src/user.ts",
		Identity: engine.Identity{Agent: "copilot", Protocol: "manual"},
	})
	if !errors.Is(err, engine.ErrLockExists) {
		t.Fatalf("Lock by web: got %v, want ErrLockExists", err)
	}

	clk.Advance(90 * time.Second)
	status, err := webAgent.Status(ctx, &engine.StatusRequest{CWD: filepath.Join(root, "web", "src")})
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.CurrentProject != "web" {
		t.Errorf("CurrentProject = %q, want web", status.CurrentProject)
	}
	if len(status.Locks) != 1 {
		t.Fatalf("Locks = %d, want 1", len(status.Locks))
	}
	if status.Locks[0].Age != 90*time.Second {
		t.Errorf("Age = %v, want 90s", status.Locks[0].Age)
	}

	// Only the holder may release when an owner is given.
	_, err = webAgent.Unlock(ctx, &engine.UnlockRequest{CWD: root, File: "api/src/user.ts", Owner: "copilot"})
	if !errors.Is(err, engine.ErrNotOwner) {
		t.Fatalf("Unlock by non-holder: got %v, want ErrNotOwner", err)
	}

	unlocked, err := apiAgent.Unlock(ctx, &engine.UnlockRequest{CWD: root, File: "api/src/user.ts", Owner: "claude"})
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if !unlocked.Released {
		t.Error("expected lock to be released")
	}

	if _, err := webAgent.Lock(ctx, &engine.LockRequest{
		CWD:      filepath.Join(root, "web"),
		File:     filepath.Join(root, "api", "src", "user.ts"),
		Identity: engine.Identity{Agent: "copilot", Protocol: "manual"},
	}); err != nil {
		t.Fatalf("Lock after release failed: %v", err)
	}
}

func TestLock_ConcurrentEnginesSingleWinner(t *testing.T) {
	root := setupWorkspace(t, "api")
	ctx := context.Background()

	const n = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
		losers  int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			eng := newEngine(clock.NewFakeClock(testStart))
			_, err := eng.Lock(ctx, &engine.LockRequest{
				CWD:      root,
				File:     "shared/config.json",
				Identity: engine.Identity{Project: "api", Agent: "worker", Protocol: "manual"},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errors.Is(err, engine.ErrLockExists):
				losers++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("winners = %d, want 1", winners)
	}
	if losers != n-1 {
		t.Errorf("losers = %d, want %d", losers, n-1)
	}
}

func TestConflictsAndImpact_ExplicitFiles(t *testing.T) {
	root := setupWorkspace(t, "api", "web", "mobile")
	writeGraph(t, root, sharedGraph)
	ctx := context.Background()
	eng := newEngine(clock.NewFakeClock(testStart))

	if _, err := eng.Lock(ctx, &engine.LockRequest{
		CWD:      filepath.Join(root, "api"),
		File:     "src/user.ts",
		Identity: engine.Identity{Agent: "claude", Protocol: "mcp"},
	}); err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	conflicts, err := eng.Conflicts(ctx, &engine.ConflictsRequest{
		CWD:   filepath.Join(root, "web"),
		Files: []string{"../api/src/user.ts", "src/app.ts"},
	})
	if err != nil {
		t.Fatalf("Conflicts failed: %v", err)
	}
	if len(conflicts.Conflicts) != 1 {
		t.Fatalf("Conflicts = %d, want 1", len(conflicts.Conflicts))
	}
	c := conflicts.Conflicts[0]
	if c.File != "api/src/user.ts" || c.HeldBy.Project != "api" || c.RequestedBy.Project != "web" {
		t.Errorf("unexpected conflict: %+v", c)
	}

	// The holder's own project never conflicts with itself.
	own, err := eng.Conflicts(ctx, &engine.ConflictsRequest{
		CWD:   filepath.Join(root, "api"),
		Files: []string{"src/user.ts"},
	})
	if err != nil {
		t.Fatalf("Conflicts failed: %v", err)
	}
	if len(own.Conflicts) != 0 {
		t.Errorf("own conflicts = %+v, want none", own.Conflicts)
	}

	impact, err := eng.Impact(ctx, &engine.ImpactRequest{
		CWD:   root,
		Files: []string{"api/src/user.ts", "api/src/health.ts"},
	})
	if err != nil {
		t.Fatalf("Impact failed: %v", err)
	}
	if want := []string{"web", "mobile"}; !reflect.DeepEqual(impact.Dependents, want) {
		t.Errorf("Dependents = %v, want %v", impact.Dependents, want)
	}

	deps, err := eng.Dependents(ctx, &engine.DependentsRequest{CWD: root, File: "api/src/health.ts"})
	if err != nil {
		t.Fatalf("Dependents failed: %v", err)
	}
	if want := []string{"mobile"}; !reflect.DeepEqual(deps.Dependents, want) {
		t.Errorf("Dependents = %v, want %v", deps.Dependents, want)
	}
}

func TestConflictsAndImpact_GitChanges(t *testing.T) {
	root := setupWorkspace(t, "api", "web", "mobile")
	writeGraph(t, root, sharedGraph)
	ctx := context.Background()

	repo, err := git.PlainInit(root, false)
	if err != nil {
		t.Fatalf("PlainInit failed: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree failed: %v", err)
	}
	writeFile(t, filepath.Join(root, "api", "src", "user.ts"), "export interface User {}\n")
	writeFile(t, filepath.Join(root, "web", "src", "app.ts"), "import { User } from 'api'\n")
	for _, f := range []string{"api/src/user.ts", "web/src/app.ts"} {
		if _, err := wt.Add(f); err != nil {
			t.Fatalf("Add(%s) failed: %v", f, err)
		}
	}
	if _, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: testStart},
	}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	// Modify a tracked export; leave an untracked file that must be ignored.
	writeFile(t, filepath.Join(root, "api", "src", "user.ts"), "export interface User { id: string }\n")
	writeFile(t, filepath.Join(root, "api", "src", "scratch.ts"), "// wip\n")

	eng := newEngine(clock.NewFakeClock(testStart))
	if _, err := eng.Lock(ctx, &engine.LockRequest{
		CWD:      filepath.Join(root, "web"),
		File:     "../api/src/user.ts",
		Identity: engine.Identity{Agent: "copilot", Protocol: "manual"},
	}); err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	conflicts, err := eng.Conflicts(ctx, &engine.ConflictsRequest{CWD: filepath.Join(root, "api")})
	if err != nil {
		t.Fatalf("Conflicts failed: %v", err)
	}
	if want := []string{"api/src/user.ts"}; !reflect.DeepEqual(conflicts.Checked, want) {
		t.Errorf("Checked = %v, want %v", conflicts.Checked, want)
	}
	if len(conflicts.Conflicts) != 1 || conflicts.Conflicts[0].HeldBy.Project != "web" {
		t.Errorf("Conflicts = %+v, want one held by web", conflicts.Conflicts)
	}

	impact, err := eng.Impact(ctx, &engine.ImpactRequest{CWD: filepath.Join(root, "api", "src")})
	if err != nil {
		t.Fatalf("Impact failed: %v", err)
	}
	if want := []string{"web", "mobile"}; !reflect.DeepEqual(impact.Dependents, want) {
		t.Errorf("Dependents = %v, want %v", impact.Dependents, want)
	}
}

func TestImpact_NoGraph(t *testing.T) {
	root := setupWorkspace(t, "api")
	eng := newEngine(clock.NewFakeClock(testStart))

	impact, err := eng.Impact(context.Background(), &engine.ImpactRequest{
		CWD:   root,
		Files: []string{"api/src/user.ts"},
	})
	if err != nil {
		t.Fatalf("Impact failed: %v", err)
	}
	if !impact.GraphMissing {
		t.Error("expected GraphMissing")
	}
	if impact.Dependents == nil || len(impact.Dependents) != 0 {
		t.Errorf("Dependents = %#v, want empty non-nil", impact.Dependents)
	}
}
