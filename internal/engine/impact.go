package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/danieljhkim/sphere/internal/depgraph"
)

// Impact returns the projects that import an API exported from any of the
// changed files.
func (e *Engine) Impact(ctx context.Context, req *ImpactRequest) (*ImpactResult, error) {
	s, err := e.open(ctx, req.CWD)
	if err != nil {
		return nil, err
	}

	files, err := e.changedFiles(s, req.Files, req.CWD)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	missing, err := e.graphMissing(s)
	if err != nil {
		return nil, err
	}

	dependents, err := depgraph.DetectAPIChanges(e.fs, s.paths.Graph, files)
	if err != nil {
		return nil, err
	}

	return &ImpactResult{
		Changed:      files,
		Dependents:   dependents,
		GraphMissing: missing,
	}, nil
}

// Dependents returns the projects that import an API exported from
// req.File.
func (e *Engine) Dependents(ctx context.Context, req *DependentsRequest) (*DependentsResult, error) {
	s, err := e.open(ctx, req.CWD)
	if err != nil {
		return nil, err
	}

	file, err := resolveResource(e.fs, req.File, req.CWD, s.paths.Root)
	if err != nil {
		return nil, err
	}

	missing, err := e.graphMissing(s)
	if err != nil {
		return nil, err
	}

	dependents, err := depgraph.FindDependents(e.fs, s.paths.Graph, file)
	if err != nil {
		return nil, err
	}

	return &DependentsResult{
		File:         file,
		Dependents:   dependents,
		GraphMissing: missing,
	}, nil
}

// ValidateGraph checks the dependency graph for dangling references.
func (e *Engine) ValidateGraph(ctx context.Context, req *ValidateGraphRequest) (*ValidateGraphResult, error) {
	s, err := e.open(ctx, req.CWD)
	if err != nil {
		return nil, err
	}

	result := &ValidateGraphResult{
		Path:   s.paths.Graph,
		Issues: []depgraph.Issue{},
	}

	g, err := depgraph.Load(e.fs, s.paths.Graph)
	if err != nil {
		if errors.Is(err, depgraph.ErrMissingGraph) {
			result.Missing = true
			return result, nil
		}
		return nil, err
	}

	result.Summary = g.Summary()
	if issues := g.Validate(); len(issues) > 0 {
		result.Issues = issues
	}
	return result, nil
}

func (e *Engine) graphMissing(s *session) (bool, error) {
	exists, err := e.fs.Exists(s.paths.Graph)
	if err != nil {
		return false, fmt.Errorf("failed to check dependency graph: %w", err)
	}
	return !exists, nil
}
