// Package workspace manages the workspace document: the workspace name, the
// projects that participate in it, and shared conventions.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/sphere/internal/config"
	"github.com/danieljhkim/sphere/internal/fsops"
)

// Project is one repository participating in the workspace.
type Project struct {
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path" json:"path"`
	Type string `yaml:"type,omitempty" json:"type,omitempty"`
}

// Decision records an architectural decision shared across projects.
type Decision struct {
	ID        string `yaml:"id" json:"id"`
	Title     string `yaml:"title" json:"title"`
	Decision  string `yaml:"decision" json:"decision"`
	Rationale string `yaml:"rationale" json:"rationale"`
	Date      string `yaml:"date" json:"date"`
}

// Shared holds conventions that apply to every project.
type Shared struct {
	Conventions            []string   `yaml:"conventions" json:"conventions"`
	AntiPatterns           []string   `yaml:"anti_patterns" json:"anti_patterns"`
	ArchitecturalDecisions []Decision `yaml:"architectural_decisions" json:"architectural_decisions"`
}

// Memory points at the shared memory directory.
type Memory struct {
	Directory string `yaml:"directory" json:"directory"`
}

// Config is the workspace document stored at .sphere-workspace/config.yaml.
type Config struct {
	Name     string    `yaml:"name" json:"name"`
	Projects []Project `yaml:"projects" json:"projects"`
	Shared   Shared    `yaml:"shared" json:"shared"`
	Memory   Memory    `yaml:"memory" json:"memory"`
}

// New returns the document written by Init.
func New(name string) *Config {
	return &Config{
		Name:     name,
		Projects: []Project{},
		Shared: Shared{
			Conventions:            []string{},
			AntiPatterns:           []string{},
			ArchitecturalDecisions: []Decision{},
		},
		Memory: Memory{
			Directory: config.StateDirName + "/" + config.MemoryDirName,
		},
	}
}

// Init creates the workspace state directory under root with its locks
// and memory directories and an empty workspace document. An existing
// document is only replaced when force is set.
func Init(fsys fsops.FS, root, name string, force bool) (*Config, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}

	paths := config.NewPaths(root)
	exists, err := fsys.Exists(paths.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to check workspace config: %w", err)
	}
	if exists && !force {
		return nil, fmt.Errorf("%w at %s", ErrAlreadyInitialized, root)
	}

	for _, dir := range []string{paths.State, paths.Locks, paths.Memory} {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	cfg := New(name)
	if err := Save(fsys, root, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and validates the workspace document under root.
func Load(fsys fsops.FS, root string) (*Config, error) {
	path := config.NewPaths(root).Config
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", config.ErrWorkspaceNotFound, root)
		}
		return nil, fmt.Errorf("failed to read workspace config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected a mapping", ErrInvalidConfig)
	}
	if _, ok := raw["projects"].([]any); !ok {
		return nil, fmt.Errorf("%w: missing %q list", ErrInvalidConfig, "projects")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("%w: missing %q", ErrInvalidConfig, "name")
	}

	return &cfg, nil
}

// Save writes cfg as the workspace document under root.
func Save(fsys fsops.FS, root string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal workspace config: %w", err)
	}
	if err := fsys.AtomicWrite(config.NewPaths(root).Config, data, 0644); err != nil {
		return fmt.Errorf("failed to write workspace config: %w", err)
	}
	return nil
}

// AddProject registers a project and persists the document.
func AddProject(fsys fsops.FS, root string, p Project) (*Config, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrInvalidConfig)
	}
	if p.Path == "" {
		p.Path = p.Name
	}
	if err := fsys.ValidateRelPath(p.Path); err != nil {
		return nil, fmt.Errorf("project %q: %w", p.Name, err)
	}
	p.Path = filepath.ToSlash(filepath.Clean(filepath.FromSlash(strings.ReplaceAll(p.Path, `\`, "/"))))

	cfg, err := Load(fsys, root)
	if err != nil {
		return nil, err
	}
	if _, ok := cfg.Project(p.Name); ok {
		return nil, fmt.Errorf("%w: %q", ErrProjectExists, p.Name)
	}

	cfg.Projects = append(cfg.Projects, p)
	if err := Save(fsys, root, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Project returns the registered project with the given name.
func (c *Config) Project(name string) (*Project, bool) {
	for i := range c.Projects {
		if c.Projects[i].Name == name {
			return &c.Projects[i], true
		}
	}
	return nil, false
}

// ProjectForDir resolves which project dir belongs to: the registered
// project whose path contains dir, preferring the deepest match. When no
// project matches, the base name of dir is used.
func (c *Config) ProjectForDir(root, dir string) string {
	best, bestLen := "", -1
	if c != nil {
		if rel, err := filepath.Rel(root, dir); err == nil {
			rel = filepath.ToSlash(rel)
			for _, p := range c.Projects {
				pp := strings.TrimSuffix(p.Path, "/")
				if rel == pp || strings.HasPrefix(rel, pp+"/") {
					if len(pp) > bestLen {
						best, bestLen = p.Name, len(pp)
					}
				}
			}
		}
	}
	if best != "" {
		return best
	}
	return filepath.Base(dir)
}
