// Package engine provides the orchestration layer between CLI commands and
// the coordination core.
//
// Every request carries the caller's working directory. The engine resolves
// the workspace root from it once and threads the resulting paths into the
// lock manager, conflict detector and dependency graph explicitly; none of
// those components discover the workspace on their own.
//
// Key operations:
//   - Init/AddProject: workspace document management
//   - Lock/Unlock/Status: advisory locks
//   - Conflicts: cross-project lock conflicts for intended edits
//   - Impact/Dependents/ValidateGraph: dependency graph queries
package engine

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danieljhkim/sphere/internal/clock"
	"github.com/danieljhkim/sphere/internal/config"
	"github.com/danieljhkim/sphere/internal/conflict"
	"github.com/danieljhkim/sphere/internal/fsops"
	"github.com/danieljhkim/sphere/internal/gitx"
	"github.com/danieljhkim/sphere/internal/locks"
	"github.com/danieljhkim/sphere/internal/lockstore"
	"github.com/danieljhkim/sphere/internal/logging"
	"github.com/danieljhkim/sphere/internal/workspace"
)

// Engine orchestrates all sphere operations.
// It is the main API surface called by the CLI.
type Engine struct {
	gitRepo gitx.GitRepo
	fs      fsops.FS
	clock   clock.Clock
	logger  *logging.Logger
}

// New creates a new Engine with the given dependencies.
func New(
	gitRepo gitx.GitRepo,
	fs fsops.FS,
	clk clock.Clock,
	logger *logging.Logger,
) *Engine {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Engine{
		gitRepo: gitRepo,
		fs:      fs,
		clock:   clk,
		logger:  logger,
	}
}

// session is the per-request view of one workspace.
type session struct {
	paths    config.Paths
	config   *workspace.Config
	locks    *locks.Manager
	detector *conflict.Detector
	logger   *logging.Logger
}

// open resolves the workspace enclosing cwd and builds its components.
// It fails with ctx's error once ctx is done.
func (e *Engine) open(ctx context.Context, cwd string) (*session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := config.FindRoot(cwd)
	if err != nil {
		return nil, err
	}

	cfg, err := workspace.Load(e.fs, root)
	if err != nil {
		return nil, err
	}

	return e.sessionFor(root, cfg), nil
}

func (e *Engine) sessionFor(root string, cfg *workspace.Config) *session {
	paths := config.NewPaths(root)
	logger := e.logger.WithWorkspace(root)
	store := lockstore.NewFileStore(e.fs, paths.Locks, logger)
	manager := locks.NewManager(store, e.clock, logger)

	return &session{
		paths:    paths,
		config:   cfg,
		locks:    manager,
		detector: conflict.NewDetector(manager),
		logger:   logger,
	}
}

// project resolves the requesting project: the explicit name when given,
// otherwise the registered project containing cwd.
func (s *session) project(explicit, cwd string) string {
	if explicit != "" {
		return explicit
	}
	if abs, err := filepath.Abs(cwd); err == nil {
		cwd = abs
	}
	return s.config.ProjectForDir(s.paths.Root, cwd)
}

// resolveResource turns a user-supplied resource path into the canonical
// form locks are keyed on: workspace-relative, slash separated and clean.
// Relative paths are resolved against cwd, so one file has one key no
// matter which directory names it.
func resolveResource(fs fsops.FS, userPath, cwd, root string) (string, error) {
	p := strings.TrimSpace(userPath)
	if p == "" {
		return "", fmt.Errorf("%w: file is required", ErrValidation)
	}
	p = filepath.FromSlash(lockstore.Canonical(p))

	if !filepath.IsAbs(p) {
		base, err := filepath.Abs(cwd)
		if err != nil {
			return "", fmt.Errorf("%w: failed to resolve working directory: %v", ErrValidation, err)
		}
		p = filepath.Join(base, p)
	}

	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("%w: failed to compute workspace-relative path for %q: %v", ErrValidation, userPath, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path %q is outside the workspace", ErrValidation, userPath)
	}

	if err := fs.ValidateRelPath(rel); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return path.Clean(filepath.ToSlash(rel)), nil
}

// changedFiles returns workspace-relative files: the explicit list
// resolved against cwd when given, otherwise the uncommitted changes of
// the git repository containing cwd. Changes outside the workspace are
// dropped.
func (e *Engine) changedFiles(s *session, explicit []string, cwd string) ([]string, error) {
	if len(explicit) > 0 {
		files := make([]string, 0, len(explicit))
		for _, f := range explicit {
			if strings.TrimSpace(f) == "" {
				continue
			}
			file, err := resolveResource(e.fs, f, cwd, s.paths.Root)
			if err != nil {
				return nil, err
			}
			files = append(files, file)
		}
		return files, nil
	}

	repoRoot, err := e.gitRepo.Discover(cwd)
	if err != nil {
		return nil, err
	}
	changed, err := e.gitRepo.ChangedFiles(repoRoot)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(changed))
	for _, f := range changed {
		rel, err := e.gitRepo.RelPath(s.paths.Root, filepath.Join(repoRoot, filepath.FromSlash(f)))
		if err != nil {
			s.logger.Debug("ignoring change outside workspace", "file", f, "repo", repoRoot)
			continue
		}
		files = append(files, rel)
	}
	sort.Strings(files)
	return files, nil
}
