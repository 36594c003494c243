package engine

import (
	"context"
	"errors"

	"github.com/danieljhkim/sphere/internal/clock"
	"github.com/danieljhkim/sphere/internal/depgraph"
)

// Status returns the workspace, its active locks and a graph summary.
func (e *Engine) Status(ctx context.Context, req *StatusRequest) (*StatusResult, error) {
	s, err := e.open(ctx, req.CWD)
	if err != nil {
		return nil, err
	}

	listed, err := s.locks.List()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &StatusResult{
		Root:           s.paths.Root,
		Name:           s.config.Name,
		Projects:       s.config.Projects,
		CurrentProject: s.project("", req.CWD),
		Locks:          make([]LockInfo, 0, len(listed.Locks)),
		Skipped:        listed.Skipped,
	}

	for _, l := range listed.Locks {
		result.Locks = append(result.Locks, LockInfo{Lock: l, Age: clock.Since(e.clock, l.Since)})
	}

	g, err := depgraph.Load(e.fs, s.paths.Graph)
	switch {
	case err == nil:
		summary := g.Summary()
		result.Graph = &summary
	case errors.Is(err, depgraph.ErrMissingGraph):
	default:
		// Status stays usable with a broken graph.
		result.GraphError = err.Error()
	}

	return result, nil
}
