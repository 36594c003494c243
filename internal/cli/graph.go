package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/sphere/internal/engine"
)

var errGraphInvalid = errors.New("dependency graph has integrity issues")

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect the dependency graph",
}

var graphValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the dependency graph for dangling references",
	Long: `Check the dependency graph for imports from unknown projects, imports
of APIs the named project does not export, and duplicate project names.

Impact queries do not depend on this check and keep working on graphs
that fail it.`,
	Args: cobra.NoArgs,
	RunE: runGraphValidate,
}

func init() {
	graphCmd.AddCommand(graphValidateCmd)
}

func runGraphValidate(cmd *cobra.Command, args []string) error {
	cwd, err := workingDir()
	if err != nil {
		return err
	}

	result, err := newEngine().ValidateGraph(context.Background(), &engine.ValidateGraphRequest{CWD: cwd})
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := outputJSON(result); err != nil {
			return err
		}
	} else {
		switch {
		case result.Missing:
			PrintWarning(fmt.Sprintf("No dependency graph at %s", result.Path))
		case len(result.Issues) == 0:
			PrintSuccess(fmt.Sprintf("Dependency graph is consistent (%s)",
				PrintCount(result.Summary.Projects, "project", "projects")))
		default:
			PrintWarning(fmt.Sprintf("%s found:", PrintCount(len(result.Issues), "issue", "issues")))
			for _, issue := range result.Issues {
				PrintError(fmt.Sprintf("[%s] %s", issue.Kind, issue.String()))
			}
		}
	}

	if len(result.Issues) > 0 {
		return errGraphInvalid
	}
	return nil
}
