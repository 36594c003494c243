package engine

import (
	"time"

	"github.com/danieljhkim/sphere/internal/conflict"
	"github.com/danieljhkim/sphere/internal/depgraph"
	"github.com/danieljhkim/sphere/internal/lockstore"
	"github.com/danieljhkim/sphere/internal/workspace"
)

// InitResult represents the result of creating a workspace.
type InitResult struct {
	// Root is the workspace root directory
	Root string `json:"root"`

	// StateDir is the created state directory
	StateDir string `json:"state_dir"`

	// Name is the workspace name
	Name string `json:"name"`
}

// AddProjectResult represents the result of registering a project.
type AddProjectResult struct {
	Project workspace.Project `json:"project"`

	// Total is the number of registered projects afterwards
	Total int `json:"total"`
}

// LockResult represents an acquired lock.
type LockResult struct {
	Lock *lockstore.Lock `json:"lock"`
}

// UnlockResult represents the result of a release.
type UnlockResult struct {
	File string `json:"file"`

	// Released is false when no lock was held
	Released bool `json:"released"`

	// HeldBy is the owner of the released lock
	HeldBy *lockstore.Owner `json:"held_by,omitempty"`
}

// LockInfo is a held lock with its age at the time of the request.
type LockInfo struct {
	lockstore.Lock
	Age time.Duration `json:"age_ns"`
}

// StatusResult represents the current workspace status.
type StatusResult struct {
	// Root is the workspace root directory
	Root string `json:"root"`

	// Name is the workspace name
	Name string `json:"name"`

	// Projects are the registered projects
	Projects []workspace.Project `json:"projects"`

	// CurrentProject is the project resolved for the working directory
	CurrentProject string `json:"current_project"`

	// Locks are the active locks, sorted by file
	Locks []LockInfo `json:"locks"`

	// Skipped are lock records that could not be read
	Skipped []lockstore.SkippedRecord `json:"skipped,omitempty"`

	// Graph summarizes the dependency graph; nil when none exists
	Graph *depgraph.Summary `json:"graph,omitempty"`

	// GraphError describes a dependency graph that failed to parse
	GraphError string `json:"graph_error,omitempty"`
}

// ConflictsResult represents the outcome of a conflict check.
type ConflictsResult struct {
	// Project is the requesting project
	Project string `json:"project"`

	// Checked are the canonical paths that were checked
	Checked []string `json:"checked"`

	Conflicts []conflict.Conflict `json:"conflicts"`
}

// ImpactResult represents the projects affected by a set of changes.
type ImpactResult struct {
	Changed []string `json:"changed"`

	// Dependents are the importing projects, in graph order
	Dependents []string `json:"dependents"`

	// GraphMissing is set when the workspace has no dependency graph
	GraphMissing bool `json:"graph_missing"`
}

// DependentsResult represents the dependents of one exporting file.
type DependentsResult struct {
	File       string   `json:"file"`
	Dependents []string `json:"dependents"`

	// GraphMissing is set when the workspace has no dependency graph
	GraphMissing bool `json:"graph_missing"`
}

// ValidateGraphResult represents the outcome of a graph integrity check.
type ValidateGraphResult struct {
	Path    string           `json:"path"`
	Missing bool             `json:"missing"`
	Summary depgraph.Summary `json:"summary"`
	Issues  []depgraph.Issue `json:"issues"`
}
