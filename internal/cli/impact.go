package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/sphere/internal/engine"
)

var impactCmd = &cobra.Command{
	Use:   "impact [files...]",
	Short: "List projects affected by changed files",
	Long: `List the projects that import an API exported from any of the given files.

Without arguments, the uncommitted changes of the git repository containing
the current directory are used. A workspace without a dependency graph has
no known dependents.`,
	RunE: runImpact,
}

var dependentsCmd = &cobra.Command{
	Use:   "dependents <file>",
	Short: "List projects that depend on an exporting file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDependents,
}

func runImpact(cmd *cobra.Command, args []string) error {
	cwd, err := workingDir()
	if err != nil {
		return err
	}

	result, err := newEngine().Impact(context.Background(), &engine.ImpactRequest{
		CWD:   cwd,
		Files: args,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}

	if len(result.Changed) == 0 {
		PrintInfo("No changed files detected.")
		return nil
	}
	printDependents(PrintCount(len(result.Changed), "changed file", "changed files"), result.Dependents, result.GraphMissing)
	return nil
}

func runDependents(cmd *cobra.Command, args []string) error {
	cwd, err := workingDir()
	if err != nil {
		return err
	}

	result, err := newEngine().Dependents(context.Background(), &engine.DependentsRequest{
		CWD:  cwd,
		File: args[0],
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}

	printDependents(result.File, result.Dependents, result.GraphMissing)
	return nil
}

func printDependents(subject string, dependents []string, graphMissing bool) {
	if graphMissing {
		PrintWarning("No dependency graph in this workspace; dependents are unknown.")
		return
	}
	if len(dependents) == 0 {
		PrintSuccess(fmt.Sprintf("No projects depend on %s", subject))
		return
	}
	PrintInfo(fmt.Sprintf("%s affected by %s:", PrintCount(len(dependents), "project", "projects"), subject))
	PrintList(dependents, 1)
}
