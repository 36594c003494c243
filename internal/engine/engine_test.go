package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danieljhkim/sphere/internal/clock"
	"github.com/danieljhkim/sphere/internal/fsops"
	"github.com/danieljhkim/sphere/internal/gitx"
)

var testStart = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	engine *Engine
	root   string
	clock  *clock.FakeClock
	git    *gitx.FakeGitRepo
}

// newTestEnv creates an initialized workspace with projects "api" and "web".
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("SPHERE_WORKSPACE", "")

	root := t.TempDir()
	env := &testEnv{
		root:  root,
		clock: clock.NewFakeClock(testStart),
		git:   gitx.NewFakeGitRepo(root),
	}
	env.engine = New(env.git, fsops.NewRealFS(), env.clock, nil)

	ctx := context.Background()
	if _, err := env.engine.Init(ctx, &InitRequest{CWD: root, Name: "platform"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	for _, name := range []string{"api", "web"} {
		if err := os.MkdirAll(filepath.Join(root, name, "src"), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if _, err := env.engine.AddProject(ctx, &AddProjectRequest{CWD: root, Name: name}); err != nil {
			t.Fatalf("AddProject(%s) failed: %v", name, err)
		}
	}
	return env
}

func (env *testEnv) dir(rel string) string {
	return filepath.Join(env.root, filepath.FromSlash(rel))
}

func (env *testEnv) writeGraph(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(env.root, ".sphere-workspace", "dependency-graph.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write graph: %v", err)
	}
}

func TestInit(t *testing.T) {
	t.Setenv("SPHERE_WORKSPACE", "")
	root := filepath.Join(t.TempDir(), "my-platform")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	e := New(gitx.NewFakeGitRepo(root), fsops.NewRealFS(), clock.NewFakeClock(testStart), nil)

	result, err := e.Init(context.Background(), &InitRequest{CWD: root})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if result.Name != "my-platform" {
		t.Errorf("Name = %q, want base name of root", result.Name)
	}
	if result.StateDir != filepath.Join(root, ".sphere-workspace") {
		t.Errorf("StateDir = %q", result.StateDir)
	}

	if _, err := e.Init(context.Background(), &InitRequest{CWD: root}); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second Init error = %v, want ErrAlreadyInitialized", err)
	}
}

func TestAddProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.engine.AddProject(ctx, &AddProjectRequest{
		CWD:  env.dir("api/src"),
		Name: "billing",
		Path: "services/billing",
		Type: "service",
	})
	if err != nil {
		t.Fatalf("AddProject failed: %v", err)
	}
	if result.Total != 3 || result.Project.Path != "services/billing" || result.Project.Type != "service" {
		t.Errorf("AddProject result = %+v", result)
	}

	if _, err := env.engine.AddProject(ctx, &AddProjectRequest{CWD: env.root, Name: "api"}); !errors.Is(err, ErrProjectExists) {
		t.Errorf("duplicate AddProject error = %v, want ErrProjectExists", err)
	}
	if _, err := env.engine.AddProject(ctx, &AddProjectRequest{CWD: env.root}); !errors.Is(err, ErrValidation) {
		t.Errorf("unnamed AddProject error = %v, want ErrValidation", err)
	}
}

func TestOperationsOutsideWorkspace(t *testing.T) {
	t.Setenv("SPHERE_WORKSPACE", "")
	dir := t.TempDir()
	e := New(gitx.NewFakeGitRepo(dir), fsops.NewRealFS(), clock.NewFakeClock(testStart), nil)
	ctx := context.Background()

	if _, err := e.Status(ctx, &StatusRequest{CWD: dir}); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Errorf("Status error = %v, want ErrWorkspaceNotFound", err)
	}
	if _, err := e.Lock(ctx, &LockRequest{CWD: dir, File: "a"}); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Errorf("Lock error = %v, want ErrWorkspaceNotFound", err)
	}
}

func TestResolveResource(t *testing.T) {
	fs := fsops.NewRealFS()
	root := filepath.FromSlash("/ws")
	api := filepath.FromSlash("/ws/api")

	tests := []struct {
		name    string
		input   string
		cwd     string
		want    string
		wantErr bool
	}{
		{"relative at root", "api/src/a.ts", root, "api/src/a.ts", false},
		{"relative in project", "src/a.ts", api, "api/src/a.ts", false},
		{"sibling project", "../web/b.ts", api, "web/b.ts", false},
		{"backslashes", `src\a.ts`, api, "api/src/a.ts", false},
		{"dot segments", "./api/../web/b.ts", root, "web/b.ts", false},
		{"absolute inside", filepath.FromSlash("/ws/api/a.ts"), api, "api/a.ts", false},
		{"absolute outside", filepath.FromSlash("/elsewhere/a.ts"), root, "", true},
		{"traversal", "../a.ts", root, "", true},
		{"empty", "  ", root, "", true},
		{"root itself", filepath.FromSlash("/ws"), api, "", true},
		{"relative root", "..", api, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveResource(fs, tt.input, tt.cwd, root)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("resolveResource(%q) = %q, %v; want ErrValidation", tt.input, got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveResource(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("resolveResource(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHandlers_CanceledContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := env.engine.Lock(ctx, &LockRequest{CWD: env.root, File: "a.ts", Identity: Identity{Agent: "a", Protocol: "p"}}); !errors.Is(err, context.Canceled) {
		t.Errorf("Lock error = %v, want context.Canceled", err)
	}
	if _, err := env.engine.Unlock(ctx, &UnlockRequest{CWD: env.root, File: "a.ts"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Unlock error = %v, want context.Canceled", err)
	}
	if _, err := env.engine.Status(ctx, &StatusRequest{CWD: env.root}); !errors.Is(err, context.Canceled) {
		t.Errorf("Status error = %v, want context.Canceled", err)
	}
	if _, err := env.engine.Impact(ctx, &ImpactRequest{CWD: env.root, Files: []string{"a.ts"}}); !errors.Is(err, context.Canceled) {
		t.Errorf("Impact error = %v, want context.Canceled", err)
	}
	if _, err := env.engine.AddProject(ctx, &AddProjectRequest{CWD: env.root, Name: "docs"}); !errors.Is(err, context.Canceled) {
		t.Errorf("AddProject error = %v, want context.Canceled", err)
	}
}
