package engine

import (
	"errors"

	"github.com/danieljhkim/sphere/internal/config"
	"github.com/danieljhkim/sphere/internal/depgraph"
	"github.com/danieljhkim/sphere/internal/gitx"
	"github.com/danieljhkim/sphere/internal/locks"
	"github.com/danieljhkim/sphere/internal/workspace"
)

var (
	// ErrValidation indicates a validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrWorkspaceNotFound indicates no workspace encloses the working directory.
	ErrWorkspaceNotFound = config.ErrWorkspaceNotFound

	// ErrNotInRepo indicates the current directory is not in a git repository.
	ErrNotInRepo = gitx.ErrNotInRepo

	// ErrLockExists indicates the file is already locked.
	ErrLockExists = locks.ErrLockExists

	// ErrNotOwner indicates a release by someone other than the holder.
	ErrNotOwner = locks.ErrNotOwner

	// ErrGraphParse indicates a malformed dependency graph document.
	ErrGraphParse = depgraph.ErrParse

	// ErrAlreadyInitialized indicates the workspace already exists.
	ErrAlreadyInitialized = workspace.ErrAlreadyInitialized

	// ErrProjectExists indicates a duplicate project registration.
	ErrProjectExists = workspace.ErrProjectExists
)
