package cmd

import (
	"github.com/spf13/cobra"

	"collate/internal/params"
)

var clipboardCount int

var clipboardCmd = &cobra.Command{
	Use:   "clipboard",
	Short: "Compare recent clipboard contents",
	Long: `Compares the most recent clipboard buffers against each other. The
current clipboard content is the first pane; earlier captures fill the
remaining panes, newest first.`,
	RunE: runClipboard,
}

func init() {
	clipboardCmd.Flags().IntVarP(&clipboardCount, "count", "n", 2, "Number of clipboard buffers to compare")
	rootCmd.AddCommand(clipboardCmd)
}

func runClipboard(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	handle, err := ws.disp.OpenClipboard(clipboardCount, params.None())
	if err != nil {
		return err
	}
	ws.model.QueueOpen(handle)
	return ws.Run()
}
