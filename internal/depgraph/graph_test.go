package depgraph

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/danieljhkim/sphere/internal/fsops"
)

const sampleGraph = `projects:
  - name: A
    exports:
      - api: X
        file: src/x.ts
      - api: Y
        file: src/y.ts
  - name: B
    imports:
      - api: X
        from_project: A
  - name: C
    exports:
      - api: X
        file: src/x.ts
    imports:
      - api: Y
        from_project: A
      - api: X
        from_project: A
  - name: D
    imports:
      - api: X
        from_project: C
  - name: E
    imports:
      - api: Z
        from_project: nowhere
`

func writeGraph(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dependency-graph.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write graph: %v", err)
	}
	return path
}

func mustParse(t *testing.T, content string) *Graph {
	t.Helper()
	g, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return g
}

func TestParse(t *testing.T) {
	g := mustParse(t, sampleGraph)

	if len(g.Projects) != 5 {
		t.Fatalf("parsed %d projects, want 5", len(g.Projects))
	}
	a := g.Projects[0]
	if a.Name != "A" {
		t.Fatalf("first project = %q, want A", a.Name)
	}
	if len(a.Exports) != 2 || a.Exports[0] != (Export{API: "X", File: "src/x.ts"}) {
		t.Errorf("A.Exports = %+v", a.Exports)
	}
	if c := g.Projects[2]; len(c.Imports) != 2 || c.Imports[0] != (Import{API: "Y", FromProject: "A"}) {
		t.Errorf("C.Imports = %+v", c.Imports)
	}

	want := Summary{Projects: 5, Exports: 3, Imports: 5}
	if got := g.Summary(); got != want {
		t.Errorf("Summary = %+v, want %+v", got, want)
	}
}

func TestParse_Empty(t *testing.T) {
	g := mustParse(t, "")
	if len(g.Projects) != 0 {
		t.Errorf("empty document produced %d projects", len(g.Projects))
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []string{
		"projects: [\n",
		"projects: 5\n",
		"projects:\n  - name: [a, b]\n",
	}
	for _, content := range tests {
		if _, err := Parse([]byte(content)); !errors.Is(err, ErrParse) {
			t.Errorf("Parse(%q) error = %v, want ErrParse", content, err)
		}
	}
}

func TestLoad(t *testing.T) {
	fs := fsops.NewRealFS()

	if _, err := Load(fs, filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, ErrMissingGraph) {
		t.Errorf("Load(absent) error = %v, want ErrMissingGraph", err)
	}

	g, err := Load(fs, writeGraph(t, sampleGraph))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(g.Projects) != 5 {
		t.Errorf("loaded %d projects, want 5", len(g.Projects))
	}

	if _, err := Load(fs, writeGraph(t, "projects: {")); !errors.Is(err, ErrParse) {
		t.Errorf("Load(malformed) error = %v, want ErrParse", err)
	}
}

func TestGraph_Queries(t *testing.T) {
	g := mustParse(t, sampleGraph)

	tests := []struct {
		name    string
		changed []string
		want    []string
	}{
		{"single export file", []string{"src/x.ts"}, []string{"B", "C", "D"}},
		{"second api", []string{"src/y.ts"}, []string{"C"}},
		{"both files dedupe", []string{"src/y.ts", "src/x.ts"}, []string{"B", "C", "D"}},
		{"backslash path", []string{`src\y.ts`}, []string{"C"}},
		{"no match", []string{"unrelated/file.ts"}, []string{}},
		{"nothing changed", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.DetectAPIChanges(tt.changed); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DetectAPIChanges(%v) = %v, want %v", tt.changed, got, tt.want)
			}
		})
	}
}

func TestGraph_FindDependentsMatchesDetect(t *testing.T) {
	g := mustParse(t, sampleGraph)
	for _, f := range []string{"src/x.ts", "src/y.ts", "nope.ts"} {
		detect := g.DetectAPIChanges([]string{f})
		find := g.FindDependents(f)
		if !reflect.DeepEqual(detect, find) {
			t.Errorf("%s: DetectAPIChanges = %v, FindDependents = %v", f, detect, find)
		}
	}
}

func TestQueries_TwoProjectJoin(t *testing.T) {
	path := writeGraph(t, `projects:
  - name: A
    exports:
      - {api: X, file: src/x.ts}
  - name: B
    imports:
      - {api: X, from_project: A}
`)
	fs := fsops.NewRealFS()

	got, err := DetectAPIChanges(fs, path, []string{"src/x.ts"})
	if err != nil {
		t.Fatalf("DetectAPIChanges failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("DetectAPIChanges = %v, want [B]", got)
	}

	got, err = FindDependents(fs, path, "src/x.ts")
	if err != nil {
		t.Fatalf("FindDependents failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("FindDependents = %v, want [B]", got)
	}

	got, err = DetectAPIChanges(fs, path, []string{"unrelated/file.ts"})
	if err != nil || len(got) != 0 {
		t.Errorf("DetectAPIChanges(unrelated) = %v, %v; want []", got, err)
	}
}

func TestQueries_MissingGraph(t *testing.T) {
	fs := fsops.NewRealFS()
	path := filepath.Join(t.TempDir(), "dependency-graph.yaml")

	got, err := DetectAPIChanges(fs, path, []string{"src/x.ts"})
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("DetectAPIChanges on missing graph = %v, %v; want [], nil", got, err)
	}
	got, err = FindDependents(fs, path, "src/x.ts")
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("FindDependents on missing graph = %v, %v; want [], nil", got, err)
	}
}

func TestQueries_MalformedGraph(t *testing.T) {
	fs := fsops.NewRealFS()
	path := writeGraph(t, "projects: [")

	if _, err := DetectAPIChanges(fs, path, []string{"a"}); !errors.Is(err, ErrParse) {
		t.Errorf("DetectAPIChanges error = %v, want ErrParse", err)
	}
	if _, err := FindDependents(fs, path, "a"); !errors.Is(err, ErrParse) {
		t.Errorf("FindDependents error = %v, want ErrParse", err)
	}
}

func TestGraph_Validate(t *testing.T) {
	g := mustParse(t, sampleGraph+`  - name: A
  - name: ""
  - name: F
    imports:
      - api: Nope
        from_project: A
`)

	issues := g.Validate()
	kinds := make(map[IssueKind]int)
	for _, i := range issues {
		kinds[i.Kind]++
	}

	want := map[IssueKind]int{
		IssueUnknownProject:   1, // E imports from nowhere
		IssueUnknownAPI:       1, // F imports Nope from A
		IssueDuplicateProject: 1,
		IssueEmptyName:        1,
	}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("issue kinds = %v, want %v (issues: %v)", kinds, want, issues)
	}

	// Queries are unaffected by integrity problems.
	if got := g.FindDependents("src/y.ts"); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("FindDependents on invalid graph = %v, want [C]", got)
	}
}

func TestGraph_ValidateDuplicateMergesExports(t *testing.T) {
	g := mustParse(t, `projects:
  - name: A
    exports: [{api: X, file: x.ts}]
  - name: A
    exports: [{api: W, file: w.ts}]
  - name: B
    imports: [{api: W, from_project: A}, {api: X, from_project: A}]
`)

	issues := g.Validate()
	if len(issues) != 1 || issues[0].Kind != IssueDuplicateProject || issues[0].Project != "A" {
		t.Errorf("Validate = %v, want only duplicate_project for A", issues)
	}
	if got := g.FindDependents("w.ts"); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("FindDependents(w.ts) = %v, want [B]", got)
	}
}

func TestGraph_ValidateClean(t *testing.T) {
	g := mustParse(t, `projects:
  - name: A
    exports: [{api: X, file: x.ts}]
  - name: B
    imports: [{api: X, from_project: A}]
`)
	if issues := g.Validate(); len(issues) != 0 {
		t.Errorf("Validate = %v, want none", issues)
	}
}
