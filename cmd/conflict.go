package cmd

import (
	"github.com/spf13/cobra"

	"collate/internal/params"
)

var conflictCmd = &cobra.Command{
	Use:   "conflict <file>",
	Short: "Resolve a conflict-marked file",
	Long: `Splits a file containing merge conflict markers into a two-pane
compare: "theirs" read-only on the left, editable "mine" on the right.
The original file is not modified.`,
	Args: cobra.ExactArgs(1),
	RunE: runConflict,
}

func init() {
	rootCmd.AddCommand(conflictCmd)
}

func runConflict(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	handle, err := ws.disp.OpenConflict(args[0], params.None())
	if err != nil {
		return err
	}
	ws.model.QueueOpen(handle)
	return ws.Run()
}
