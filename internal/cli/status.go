package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/sphere/internal/engine"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show active locks and dependency graph summary",
	Long:  `Display the workspace, its active file locks and a summary of the dependency graph.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := workingDir()
		if err != nil {
			return err
		}

		result, err := newEngine().Status(context.Background(), &engine.StatusRequest{CWD: cwd})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		PrintSection(fmt.Sprintf("Workspace %s", result.Name))
		PrintLabelValue("Root", result.Root)
		PrintLabelValue("Projects", PrintCount(len(result.Projects), "project", "projects"))
		PrintLabelValue("Current project", result.CurrentProject)

		PrintSection(fmt.Sprintf("Active locks: %d", len(result.Locks)))
		if len(result.Locks) == 0 {
			PrintEmptyState("(none)")
		} else {
			rows := make([][]string, 0, len(result.Locks))
			for _, l := range result.Locks {
				rows = append(rows, []string{
					l.File,
					l.LockedBy.String(),
					l.LockedBy.Protocol,
					FormatAge(l.Age),
					l.Reason,
				})
			}
			PrintTable([]string{"FILE", "LOCKED BY", "PROTOCOL", "SINCE", "REASON"}, rows)
		}
		for _, s := range result.Skipped {
			name := s.Key
			if s.File != "" {
				name = fmt.Sprintf("%s (%s)", s.File, s.Key)
			}
			PrintWarning(fmt.Sprintf("Skipped unreadable lock record %s: %s", name, s.Reason))
		}

		PrintSection("Dependency graph")
		switch {
		case result.GraphError != "":
			PrintWarning(result.GraphError)
		case result.Graph == nil:
			PrintEmptyState("No dependency graph")
		default:
			PrintLabelValue("Projects", fmt.Sprintf("%d", result.Graph.Projects))
			PrintLabelValue("Exports", fmt.Sprintf("%d", result.Graph.Exports))
			PrintLabelValue("Imports", fmt.Sprintf("%d", result.Graph.Imports))
		}
		return nil
	},
}
