package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/sphere/internal/engine"
)

var (
	projectPath string
	projectType string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage workspace projects",
	Long:  `Register and list the projects that participate in the workspace.`,
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a project",
	Long: `Register a project in the workspace.

The path is relative to the workspace root and defaults to the project
name. Commands run inside a registered project's directory act as that
project unless --project is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectAdd,
}

var projectListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List registered projects",
	Args:    cobra.NoArgs,
	RunE:    runProjectList,
}

func init() {
	projectAddCmd.Flags().StringVarP(&projectPath, "path", "p", "",
		"Project directory relative to the workspace root")
	projectAddCmd.Flags().StringVarP(&projectType, "type", "t", "",
		"Project type (free-form, e.g. service, library)")

	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	cwd, err := workingDir()
	if err != nil {
		return err
	}

	result, err := newEngine().AddProject(context.Background(), &engine.AddProjectRequest{
		CWD:  cwd,
		Name: args[0],
		Path: projectPath,
		Type: projectType,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}

	PrintSuccess(fmt.Sprintf("Added project %q at %s (%s in workspace)",
		result.Project.Name, result.Project.Path, PrintCount(result.Total, "project", "projects")))
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	cwd, err := workingDir()
	if err != nil {
		return err
	}

	status, err := newEngine().Status(context.Background(), &engine.StatusRequest{CWD: cwd})
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(status.Projects)
	}

	if len(status.Projects) == 0 {
		PrintEmptyState("No projects registered")
		return nil
	}

	rows := make([][]string, 0, len(status.Projects))
	for _, p := range status.Projects {
		marker := ""
		if p.Name == status.CurrentProject {
			marker = "*"
		}
		rows = append(rows, []string{marker, p.Name, p.Path, p.Type})
	}
	PrintTable([]string{"", "NAME", "PATH", "TYPE"}, rows)
	return nil
}
