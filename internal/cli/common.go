package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danieljhkim/sphere/internal/clock"
	"github.com/danieljhkim/sphere/internal/engine"
	"github.com/danieljhkim/sphere/internal/fsops"
	"github.com/danieljhkim/sphere/internal/gitx"
)

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine() *engine.Engine {
	return engine.New(
		gitx.NewRealGitRepo(),
		fsops.NewRealFS(),
		&clock.RealClock{},
		logger,
	)
}

// workingDir returns the current working directory.
func workingDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}

// identity merges explicit flag values over the configured identity.
// An empty project is left for the engine to resolve from the working
// directory.
func identity(project, agent, protocol string) engine.Identity {
	s := currentSettings()
	id := engine.Identity{
		Project:  s.Identity.Project,
		Agent:    s.Identity.Agent,
		Protocol: s.Identity.Protocol,
	}
	if project != "" {
		id.Project = project
	}
	if agent != "" {
		id.Agent = agent
	}
	if protocol != "" {
		id.Protocol = protocol
	}
	return id
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
