package depgraph

import "fmt"

// IssueKind classifies a referential integrity problem.
type IssueKind string

const (
	IssueDuplicateProject IssueKind = "duplicate_project"
	IssueUnknownProject   IssueKind = "unknown_project"
	IssueUnknownAPI       IssueKind = "unknown_api"
	IssueEmptyName        IssueKind = "empty_name"
)

// Issue is one integrity problem found by Validate.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Project string    `json:"project"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Project, i.Message)
}

// Validate reports dangling references in the graph. Queries do not call
// it and behave the same on graphs that fail it.
func (g *Graph) Validate() []Issue {
	var issues []Issue

	exports := make(map[string]map[string]bool)
	for _, p := range g.Projects {
		if p.Name == "" {
			issues = append(issues, Issue{Kind: IssueEmptyName, Message: "project has no name"})
			continue
		}
		apis, dup := exports[p.Name]
		if dup {
			issues = append(issues, Issue{
				Kind:    IssueDuplicateProject,
				Project: p.Name,
				Message: "project declared more than once",
			})
		} else {
			apis = make(map[string]bool, len(p.Exports))
			exports[p.Name] = apis
		}
		// Queries join over every entry, so duplicates contribute exports.
		for _, e := range p.Exports {
			apis[e.API] = true
		}
	}

	for _, p := range g.Projects {
		for _, imp := range p.Imports {
			apis, ok := exports[imp.FromProject]
			switch {
			case !ok:
				issues = append(issues, Issue{
					Kind:    IssueUnknownProject,
					Project: p.Name,
					Message: fmt.Sprintf("imports %q from unknown project %q", imp.API, imp.FromProject),
				})
			case !apis[imp.API]:
				issues = append(issues, Issue{
					Kind:    IssueUnknownAPI,
					Project: p.Name,
					Message: fmt.Sprintf("imports %q which %q does not export", imp.API, imp.FromProject),
				})
			}
		}
	}

	return issues
}
