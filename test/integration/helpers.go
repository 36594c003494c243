package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danieljhkim/sphere/internal/clock"
	"github.com/danieljhkim/sphere/internal/engine"
	"github.com/danieljhkim/sphere/internal/fsops"
	"github.com/danieljhkim/sphere/internal/gitx"
)

var testStart = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// newEngine builds an engine backed by the real filesystem and a real git
// repository adapter, the way the CLI wires it.
func newEngine(clk clock.Clock) *engine.Engine {
	return engine.New(gitx.NewRealGitRepo(), fsops.NewRealFS(), clk, nil)
}

// setupWorkspace initializes a workspace in a temp dir and registers the
// given projects, each with a src directory.
func setupWorkspace(t *testing.T, projects ...string) string {
	t.Helper()
	t.Setenv("SPHERE_WORKSPACE", "")

	root := t.TempDir()
	eng := newEngine(clock.NewFakeClock(testStart))
	ctx := context.Background()

	if _, err := eng.Init(ctx, &engine.InitRequest{CWD: root, Name: "platform"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	for _, name := range projects {
		mkdir(t, filepath.Join(root, name, "src"))
		if _, err := eng.AddProject(ctx, &engine.AddProjectRequest{CWD: root, Name: name}); err != nil {
			t.Fatalf("AddProject(%s) failed: %v", name, err)
		}
	}
	return root
}

func mkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	mkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeGraph(t *testing.T, root, content string) {
	t.Helper()
	writeFile(t, filepath.Join(root, ".sphere-workspace", "dependency-graph.yaml"), content)
}

const sharedGraph = `
projects:
  - name: api
    exports:
      - api: UserAPI
        file: api/src/user.ts
      - api: HealthAPI
        file: api/src/health.ts
  - name: web
    imports:
      - api: UserAPI
        from_project: api
  - name: mobile
    imports:
      - api: UserAPI
        from_project: api
      - api: HealthAPI
        from_project: api
`
