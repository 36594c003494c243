package depgraph

import "errors"

var (
	// ErrMissingGraph indicates no dependency graph document exists.
	// Queries treat it as an empty graph.
	ErrMissingGraph = errors.New("dependency graph not found")

	// ErrParse indicates a malformed dependency graph document.
	ErrParse = errors.New("malformed dependency graph")
)
