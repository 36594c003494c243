package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/sphere/internal/engine"
)

// errConflicts is returned with --strict so scripts can fail on conflicts.
var errConflicts = errors.New("lock conflicts detected")

var (
	conflictsProject  string
	conflictsAgent    string
	conflictsProtocol string
	conflictsStrict   bool
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts [files...]",
	Short: "Detect lock conflicts with your changes",
	Long: `Check files you intend to modify against locks held by other projects.

Without arguments, the uncommitted changes of the git repository containing
the current directory are checked. Locks held by your own project are not
conflicts. Matching is on exact paths; a lock on a directory does not cover
the files inside it.`,
	RunE: runConflicts,
}

func init() {
	conflictsCmd.Flags().StringVar(&conflictsProject, "project", "", "Requesting project (default: project of the current directory)")
	conflictsCmd.Flags().StringVar(&conflictsAgent, "agent", "", "Requesting agent")
	conflictsCmd.Flags().StringVar(&conflictsProtocol, "protocol", "", "Requesting protocol")
	conflictsCmd.Flags().BoolVar(&conflictsStrict, "strict", false, "Exit with an error when conflicts are found")
}

func runConflicts(cmd *cobra.Command, args []string) error {
	cwd, err := workingDir()
	if err != nil {
		return err
	}

	result, err := newEngine().Conflicts(context.Background(), &engine.ConflictsRequest{
		CWD:      cwd,
		Files:    args,
		Identity: identity(conflictsProject, conflictsAgent, conflictsProtocol),
	})
	if err != nil {
		if errors.Is(err, engine.ErrNotInRepo) {
			return fmt.Errorf("failed to get changed files: %w (pass files explicitly outside a git repository)", err)
		}
		return err
	}

	if jsonOutput {
		if err := outputJSON(result); err != nil {
			return err
		}
	} else {
		printConflicts(result)
	}

	if conflictsStrict && len(result.Conflicts) > 0 {
		return errConflicts
	}
	return nil
}

func printConflicts(result *engine.ConflictsResult) {
	if len(result.Checked) == 0 {
		PrintInfo("No changed files detected.")
		return
	}

	PrintInfo(fmt.Sprintf("Checked %s as project %s", PrintCount(len(result.Checked), "file", "files"), result.Project))

	if len(result.Conflicts) == 0 {
		PrintSuccess("No conflicts detected.")
		return
	}

	PrintWarning(fmt.Sprintf("%s detected:", PrintCount(len(result.Conflicts), "conflict", "conflicts")))
	rows := make([][]string, 0, len(result.Conflicts))
	for _, c := range result.Conflicts {
		rows = append(rows, []string{c.File, c.HeldBy.String(), c.HeldBy.Protocol, c.Reason})
	}
	PrintTable([]string{"FILE", "HELD BY", "PROTOCOL", "REASON"}, rows)
}
