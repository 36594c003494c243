package workspace

import "errors"

var (
	// ErrAlreadyInitialized indicates the root already holds a workspace.
	ErrAlreadyInitialized = errors.New("workspace already initialized")

	// ErrProjectExists indicates a project name is already registered.
	ErrProjectExists = errors.New("project already exists in workspace")

	// ErrInvalidConfig indicates a workspace document that fails validation.
	ErrInvalidConfig = errors.New("invalid workspace config")
)
