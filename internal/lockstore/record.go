package lockstore

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Owner identifies who acquired a lock and under what workflow.
type Owner struct {
	Project  string `yaml:"project" json:"project"`
	Agent    string `yaml:"agent" json:"agent"`
	Protocol string `yaml:"protocol" json:"protocol"`
}

// Matches reports whether id names this owner, by agent or by project.
func (o Owner) Matches(id string) bool {
	return id != "" && (id == o.Agent || id == o.Project)
}

// String returns "project/agent".
func (o Owner) String() string {
	return o.Project + "/" + o.Agent
}

// Lock is one advisory hold on a single workspace-relative resource.
type Lock struct {
	File     string    `json:"file"`
	LockedBy Owner     `json:"locked_by"`
	Since    time.Time `json:"since"`
	Reason   string    `json:"reason,omitempty"`
}

// record is the on-disk shape of a Lock. since is kept as an ISO-8601
// string so documents written by other tools decode the same way.
type record struct {
	File     string `yaml:"file"`
	LockedBy Owner  `yaml:"locked_by"`
	Since    string `yaml:"since"`
	Reason   string `yaml:"reason,omitempty"`
}

// MarshalLock encodes l as a lock record document.
func MarshalLock(l *Lock) ([]byte, error) {
	rec := record{
		File:     l.File,
		LockedBy: l.LockedBy,
		Since:    l.Since.UTC().Format(time.RFC3339Nano),
		Reason:   l.Reason,
	}
	data, err := yaml.Marshal(&rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lock record: %w", err)
	}
	return data, nil
}

// UnmarshalLock decodes and checks a lock record document. Any problem
// is reported as ErrParse.
func UnmarshalLock(data []byte) (*Lock, error) {
	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if strings.TrimSpace(rec.File) == "" {
		return nil, fmt.Errorf("%w: missing file", ErrParse)
	}
	if rec.LockedBy.Project == "" {
		return nil, fmt.Errorf("%w: missing locked_by.project", ErrParse)
	}

	since, err := time.Parse(time.RFC3339Nano, rec.Since)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid since %q", ErrParse, rec.Since)
	}

	return &Lock{
		File:     Canonical(rec.File),
		LockedBy: rec.LockedBy,
		Since:    since.UTC(),
		Reason:   rec.Reason,
	}, nil
}
