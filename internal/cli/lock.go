package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/sphere/internal/engine"
)

var (
	lockReason   string
	lockProject  string
	lockAgent    string
	lockProtocol string
	unlockOwner  string
)

var lockCmd = &cobra.Command{
	Use:   "lock <file>",
	Short: "Acquire an advisory lock on a file",
	Long: `Acquire an advisory lock on a file.

The lock is recorded in the shared workspace and held until it is
released with 'sphere unlock'. Locks never expire. Acquisition is atomic:
when several participants lock the same file at once, exactly one wins.

The owner identity comes from --project/--agent/--protocol, then the
identity section of the user config, then the project containing the
current directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runLock,
}

var unlockCmd = &cobra.Command{
	Use:   "unlock <file>",
	Short: "Release an advisory lock on a file",
	Long: `Release an advisory lock on a file.

With --owner, the lock is only released when the owner matches the
holder's agent or project. Unlocking a file that is not locked is not an
error.`,
	Args: cobra.ExactArgs(1),
	RunE: runUnlock,
}

func init() {
	lockCmd.Flags().StringVarP(&lockReason, "reason", "r", "", "Why the file is locked")
	lockCmd.Flags().StringVar(&lockProject, "project", "", "Owning project (default: project of the current directory)")
	lockCmd.Flags().StringVar(&lockAgent, "agent", "", "Owning agent (default: identity.agent)")
	lockCmd.Flags().StringVar(&lockProtocol, "protocol", "", "Workflow the lock is taken under (default: identity.protocol)")

	unlockCmd.Flags().StringVar(&unlockOwner, "owner", "", "Only release if held by this agent or project")
}

func runLock(cmd *cobra.Command, args []string) error {
	cwd, err := workingDir()
	if err != nil {
		return err
	}

	result, err := newEngine().Lock(context.Background(), &engine.LockRequest{
		CWD:      cwd,
		File:     args[0],
		Identity: identity(lockProject, lockAgent, lockProtocol),
		Reason:   lockReason,
	})
	if err != nil {
		if errors.Is(err, engine.ErrLockExists) {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		return err
	}

	if jsonOutput {
		return outputJSON(result.Lock)
	}

	PrintSuccess(fmt.Sprintf("Locked: %s", result.Lock.File))
	PrintLabelValue("Owner", result.Lock.LockedBy.String())
	PrintLabelValue("Protocol", result.Lock.LockedBy.Protocol)
	if result.Lock.Reason != "" {
		PrintLabelValue("Reason", result.Lock.Reason)
	}
	return nil
}

func runUnlock(cmd *cobra.Command, args []string) error {
	cwd, err := workingDir()
	if err != nil {
		return err
	}

	result, err := newEngine().Unlock(context.Background(), &engine.UnlockRequest{
		CWD:   cwd,
		File:  args[0],
		Owner: unlockOwner,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}

	if result.Released {
		PrintSuccess(fmt.Sprintf("Unlocked: %s", result.File))
		if result.HeldBy != nil {
			PrintLabelValue("Held by", result.HeldBy.String())
		}
	} else {
		PrintWarning(fmt.Sprintf("No lock found for: %s", result.File))
	}
	return nil
}
