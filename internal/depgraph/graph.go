// Package depgraph answers blast-radius queries over the workspace
// dependency graph: which projects import an API exported from a given
// file.
//
// The graph is a read-only snapshot. It is loaded fresh for every
// package-level query and never written by this package.
package depgraph

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/sphere/internal/fsops"
)

// Export declares that a project exposes api from file.
type Export struct {
	API  string `yaml:"api" json:"api"`
	File string `yaml:"file" json:"file"`
}

// Import declares that a project consumes api from another project.
type Import struct {
	API         string `yaml:"api" json:"api"`
	FromProject string `yaml:"from_project" json:"from_project"`
}

// Project is one node of the graph.
type Project struct {
	Name    string   `yaml:"name" json:"name"`
	Exports []Export `yaml:"exports" json:"exports"`
	Imports []Import `yaml:"imports" json:"imports"`
}

// Graph is the workspace dependency graph.
type Graph struct {
	Projects []Project `yaml:"projects" json:"projects"`
}

// Parse decodes a dependency graph document. No referential integrity is
// checked; see Validate.
func Parse(data []byte) (*Graph, error) {
	var g Graph
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&g); err != nil {
		// An empty document is an empty graph.
		if errors.Is(err, io.EOF) {
			return &g, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &g, nil
}

// Load reads and parses the graph document at path. A missing document
// yields ErrMissingGraph.
func Load(fsys fsops.FS, path string) (*Graph, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMissingGraph
		}
		return nil, fmt.Errorf("failed to read dependency graph: %w", err)
	}

	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Summary counts the nodes and edges of a graph.
type Summary struct {
	Projects int `json:"projects"`
	Exports  int `json:"exports"`
	Imports  int `json:"imports"`
}

// Summary returns node and edge counts.
func (g *Graph) Summary() Summary {
	s := Summary{Projects: len(g.Projects)}
	for _, p := range g.Projects {
		s.Exports += len(p.Exports)
		s.Imports += len(p.Imports)
	}
	return s
}
