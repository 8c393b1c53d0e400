package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"collate/internal/doc"
	"collate/internal/params"
)

var patchOutput string

var patchCmd = &cobra.Command{
	Use:   "patch <left> <right>",
	Short: "Generate a patch from two text files",
	Long: `Compares two text files and writes the differences as a patch file,
without opening the workspace.`,
	Args: cobra.ExactArgs(2),
	RunE: runPatch,
}

func init() {
	patchCmd.Flags().StringVarP(&patchOutput, "output", "o", "", "Patch file to write (required)")
	patchCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(patchCmd)
}

func runPatch(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	handle, err := ws.disp.OpenFiles(args, params.None(), doc.KindOther)
	if err != nil {
		return err
	}
	if err := ws.disp.GeneratePatch(handle.Doc.ID, patchOutput); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", patchOutput)
	return nil
}
