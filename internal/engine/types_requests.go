package engine

// InitRequest represents a request to create a workspace.
type InitRequest struct {
	// CWD is the directory that becomes the workspace root
	CWD string

	// Name is the workspace name (defaults to the base name of CWD)
	Name string

	// Force replaces an existing workspace document
	Force bool
}

// AddProjectRequest represents a request to register a project.
type AddProjectRequest struct {
	// CWD is the current working directory
	CWD string

	// Name is the project name
	Name string

	// Path is the project directory relative to the workspace root
	// (defaults to Name)
	Path string

	// Type is an optional free-form project type
	Type string
}

// Identity describes who is making a request. Empty fields are resolved
// by the engine: Project from the working directory, Agent and Protocol
// by each operation's defaults.
type Identity struct {
	Project  string
	Agent    string
	Protocol string
}

// LockRequest represents a request to acquire a lock.
type LockRequest struct {
	// CWD is the current working directory
	CWD string

	// File is the resource to lock
	File string

	// Identity is the lock owner
	Identity Identity

	// Reason is optional free text stored with the lock
	Reason string
}

// UnlockRequest represents a request to release a lock.
type UnlockRequest struct {
	// CWD is the current working directory
	CWD string

	// File is the resource to release
	File string

	// Owner, when set, must match the holder's agent or project
	Owner string
}

// StatusRequest represents a request for workspace status.
type StatusRequest struct {
	// CWD is the current working directory
	CWD string
}

// ConflictsRequest represents a request to check intended edits against
// held locks.
type ConflictsRequest struct {
	// CWD is the current working directory
	CWD string

	// Files are the paths to check. When empty, the uncommitted changes of
	// the git repository containing CWD are used.
	Files []string

	// Identity is the requester
	Identity Identity
}

// ImpactRequest represents a request for the projects affected by changes.
type ImpactRequest struct {
	// CWD is the current working directory
	CWD string

	// Files are the changed paths. When empty, the uncommitted changes of
	// the git repository containing CWD are used.
	Files []string
}

// DependentsRequest represents a request for the dependents of one
// exporting file.
type DependentsRequest struct {
	// CWD is the current working directory
	CWD string

	// File is the exporting file
	File string
}

// ValidateGraphRequest represents a request to check the dependency graph
// for dangling references.
type ValidateGraphRequest struct {
	// CWD is the current working directory
	CWD string
}
