package depgraph

import (
	"errors"

	"github.com/danieljhkim/sphere/internal/fsops"
	"github.com/danieljhkim/sphere/internal/lockstore"
)

// apiRef identifies an API by its exporting project.
type apiRef struct {
	project string
	api     string
}

// DetectAPIChanges returns the projects that import an API exported from
// any of the changed files. Each project appears once, in graph order.
func (g *Graph) DetectAPIChanges(changed []string) []string {
	files := make(map[string]bool, len(changed))
	for _, f := range changed {
		files[lockstore.Canonical(f)] = true
	}
	return g.dependents(g.exportsFrom(files))
}

// FindDependents returns the projects that import an API exported from
// file.
func (g *Graph) FindDependents(file string) []string {
	return g.dependents(g.exportsFrom(map[string]bool{lockstore.Canonical(file): true}))
}

// exportsFrom returns every API whose export file is in files. A file may
// back several APIs across several projects.
func (g *Graph) exportsFrom(files map[string]bool) map[apiRef]bool {
	affected := make(map[apiRef]bool)
	for _, p := range g.Projects {
		for _, e := range p.Exports {
			if files[lockstore.Canonical(e.File)] {
				affected[apiRef{project: p.Name, api: e.API}] = true
			}
		}
	}
	return affected
}

// dependents returns the projects importing any API in affected.
func (g *Graph) dependents(affected map[apiRef]bool) []string {
	result := []string{}
	if len(affected) == 0 {
		return result
	}

	seen := make(map[string]bool)
	for _, p := range g.Projects {
		if seen[p.Name] {
			continue
		}
		for _, imp := range p.Imports {
			if affected[apiRef{project: imp.FromProject, api: imp.API}] {
				seen[p.Name] = true
				result = append(result, p.Name)
				break
			}
		}
	}
	return result
}

// DetectAPIChanges loads the graph at path and runs Graph.DetectAPIChanges.
// A missing graph has no dependents.
func DetectAPIChanges(fsys fsops.FS, path string, changed []string) ([]string, error) {
	g, err := Load(fsys, path)
	if err != nil {
		if errors.Is(err, ErrMissingGraph) {
			return []string{}, nil
		}
		return nil, err
	}
	return g.DetectAPIChanges(changed), nil
}

// FindDependents loads the graph at path and runs Graph.FindDependents.
// A missing graph has no dependents.
func FindDependents(fsys fsops.FS, path, file string) ([]string, error) {
	g, err := Load(fsys, path)
	if err != nil {
		if errors.Is(err, ErrMissingGraph) {
			return []string{}, nil
		}
		return nil, err
	}
	return g.FindDependents(file), nil
}
