// Package gitx reads version-control state for the workspace: which
// repository a directory belongs to and which files have uncommitted
// changes.
package gitx

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
)

// ErrNotInRepo indicates the directory is not inside a git repository.
var ErrNotInRepo = errors.New("not in a git repository")

// GitRepo provides an abstraction for git repository operations.
type GitRepo interface {
	// Discover finds the git repository root starting from cwd.
	Discover(cwd string) (root string, err error)

	// ChangedFiles returns repository-relative paths, slash separated and
	// sorted, that differ from HEAD in the index or the worktree.
	// Untracked files are not included.
	ChangedFiles(root string) ([]string, error)

	// RelPath computes the relative path from repo root to the given absolute path.
	RelPath(root, absPath string) (string, error)
}

// RealGitRepo implements GitRepo with go-git.
type RealGitRepo struct{}

// NewRealGitRepo creates a new RealGitRepo.
func NewRealGitRepo() *RealGitRepo {
	return &RealGitRepo{}
}

func open(path string, detect bool) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: detect})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotInRepo, path)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return repo, nil
}

// Discover finds the worktree root of the repository containing cwd.
func (g *RealGitRepo) Discover(cwd string) (string, error) {
	absPath, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	repo, err := open(absPath, true)
	if err != nil {
		return "", err
	}

	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no worktree to lock files in.
		return "", fmt.Errorf("%w: %v", ErrNotInRepo, err)
	}
	return wt.Filesystem.Root(), nil
}

// ChangedFiles lists tracked files with staged or unstaged changes.
func (g *RealGitRepo) ChangedFiles(root string) ([]string, error) {
	repo, err := open(root, false)
	if err != nil {
		return nil, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	files := make([]string, 0, len(status))
	for path, st := range status {
		if st.Worktree == git.Untracked && st.Staging == git.Untracked {
			continue
		}
		if st.Worktree == git.Unmodified && st.Staging == git.Unmodified {
			continue
		}
		files = append(files, filepath.ToSlash(path))
	}
	sort.Strings(files)

	return files, nil
}

// RelPath computes the relative path from repo root to the given absolute path.
func (g *RealGitRepo) RelPath(root, absPath string) (string, error) {
	return relPath(root, absPath)
}

func relPath(root, target string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute root: %w", err)
	}

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute target: %w", err)
	}

	rel, err := filepath.Rel(absRoot, absTarget)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path is outside repository")
	}

	return filepath.ToSlash(rel), nil
}

// FakeGitRepo implements GitRepo with predetermined values for testing.
type FakeGitRepo struct {
	root    string
	changed []string
	err     error
}

// NewFakeGitRepo creates a new FakeGitRepo.
func NewFakeGitRepo(root string, changed ...string) *FakeGitRepo {
	return &FakeGitRepo{root: root, changed: changed}
}

// SetError sets an error to be returned by all methods.
func (g *FakeGitRepo) SetError(err error) {
	g.err = err
}

// SetChanged replaces the changed file list.
func (g *FakeGitRepo) SetChanged(files ...string) {
	g.changed = files
}

// Discover returns the predetermined root.
func (g *FakeGitRepo) Discover(cwd string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.root, nil
}

// ChangedFiles returns the predetermined files, sorted.
func (g *FakeGitRepo) ChangedFiles(root string) ([]string, error) {
	if g.err != nil {
		return nil, g.err
	}
	files := append([]string{}, g.changed...)
	sort.Strings(files)
	return files, nil
}

// RelPath computes the relative path (works like real implementation).
func (g *FakeGitRepo) RelPath(root, absPath string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return relPath(root, absPath)
}
