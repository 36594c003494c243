// Package config manages sphere configuration and workspace filesystem paths.
//
// Workspace state lives under <root>/.sphere-workspace/. The root is found
// once by FindRoot and then passed explicitly as a Paths value to every
// component; nothing below the CLI consults the working directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// StateDirName is the directory under the workspace root holding all
	// coordination state.
	StateDirName = ".sphere-workspace"

	// ConfigFileName marks a directory as a workspace root.
	ConfigFileName = "config.yaml"

	// LocksDirName holds one record per locked resource.
	LocksDirName = "locks"

	// GraphFileName is the dependency graph document.
	GraphFileName = "dependency-graph.yaml"

	// MemoryDirName is the shared memory directory created by init.
	MemoryDirName = "memory"
)

// ErrWorkspaceNotFound indicates no workspace root exists above a directory.
var ErrWorkspaceNotFound = errors.New("no workspace found")

// Paths contains all the filesystem paths of one workspace.
type Paths struct {
	// Root is the workspace root directory
	Root string

	// State is <root>/.sphere-workspace
	State string

	// Config is the workspace document
	Config string

	// Locks is the lock record directory
	Locks string

	// Graph is the dependency graph document
	Graph string

	// Memory is the shared memory directory
	Memory string
}

// NewPaths returns the paths for the workspace rooted at root.
func NewPaths(root string) Paths {
	state := filepath.Join(root, StateDirName)
	return Paths{
		Root:   root,
		State:  state,
		Config: filepath.Join(state, ConfigFileName),
		Locks:  filepath.Join(state, LocksDirName),
		Graph:  filepath.Join(state, GraphFileName),
		Memory: filepath.Join(state, MemoryDirName),
	}
}

// FindRoot walks from dir towards the filesystem root looking for a
// directory containing .sphere-workspace/config.yaml.
// SPHERE_WORKSPACE overrides the search when set.
func FindRoot(dir string) (string, error) {
	if override := os.Getenv("SPHERE_WORKSPACE"); override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", fmt.Errorf("failed to resolve SPHERE_WORKSPACE: %w", err)
		}
		if !isRoot(abs) {
			return "", fmt.Errorf("%w: SPHERE_WORKSPACE=%s has no %s/%s", ErrWorkspaceNotFound, abs, StateDirName, ConfigFileName)
		}
		return abs, nil
	}

	current, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		if isRoot(current) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("%w above %s", ErrWorkspaceNotFound, dir)
		}
		current = parent
	}
}

func isRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, StateDirName, ConfigFileName))
	return err == nil && info.Mode().IsRegular()
}
