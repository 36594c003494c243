package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/sphere/internal/config"
	"github.com/danieljhkim/sphere/internal/workspace"
)

// Init creates a workspace rooted at req.CWD.
func (e *Engine) Init(ctx context.Context, req *InitRequest) (*InitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(req.CWD)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = filepath.Base(root)
	}

	cfg, err := workspace.Init(e.fs, root, name, req.Force)
	if err != nil {
		return nil, err
	}

	e.logger.WithWorkspace(root).Info("workspace initialized", "name", cfg.Name)

	return &InitResult{
		Root:     root,
		StateDir: config.NewPaths(root).State,
		Name:     cfg.Name,
	}, nil
}

// AddProject registers a project in the workspace enclosing req.CWD.
func (e *Engine) AddProject(ctx context.Context, req *AddProjectRequest) (*AddProjectResult, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrValidation)
	}

	root, err := config.FindRoot(req.CWD)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, err := workspace.AddProject(e.fs, root, workspace.Project{
		Name: req.Name,
		Path: req.Path,
		Type: req.Type,
	})
	if err != nil {
		return nil, err
	}

	p, _ := cfg.Project(req.Name)
	e.logger.WithWorkspace(root).Info("project added", "project", p.Name, "path", p.Path)

	return &AddProjectResult{Project: *p, Total: len(cfg.Projects)}, nil
}
