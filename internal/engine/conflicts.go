package engine

import (
	"context"

	"github.com/danieljhkim/sphere/internal/lockstore"
)

// Conflicts reports which of the intended edits touch files locked by
// another project.
func (e *Engine) Conflicts(ctx context.Context, req *ConflictsRequest) (*ConflictsResult, error) {
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

	project := s.project(req.Identity.Project, req.CWD)
	conflicts, err := s.detector.Check(files, lockstore.Owner{
		Project:  project,
		Agent:    req.Identity.Agent,
		Protocol: req.Identity.Protocol,
	})
	if err != nil {
		return nil, err
	}

	if len(conflicts) > 0 {
		s.logger.Debug("conflicts found", "project", project, "count", len(conflicts))
	}

	return &ConflictsResult{
		Project:   project,
		Checked:   files,
		Conflicts: conflicts,
	}, nil
}
