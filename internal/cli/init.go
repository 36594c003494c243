package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/sphere/internal/engine"
)

var (
	initForce bool
	initName  string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a workspace in the current directory",
	Long: `Initialize a sphere workspace rooted at the current directory.

This creates .sphere-workspace/ with the workspace config, the locks
directory and a shared memory directory. Every participant must be able
to read and write this directory; it may live on a network share.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initName, "name", "n", "",
		"Workspace name (default: directory name)")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false,
		"Overwrite an existing workspace config")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := workingDir()
	if err != nil {
		return err
	}

	result, err := newEngine().Init(context.Background(), &engine.InitRequest{
		CWD:   cwd,
		Name:  initName,
		Force: initForce,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}

	PrintSuccess(fmt.Sprintf("Initialized workspace %q at %s", result.Name, result.StateDir))
	fmt.Println()
	PrintInfo("Next steps:")
	fmt.Println("  1. Register projects:  sphere project add <name> --path <dir>")
	fmt.Println("  2. Lock a file:        sphere lock <file> --reason <why>")
	fmt.Println("  3. Check your changes: sphere conflicts")
	return nil
}
