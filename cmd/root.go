package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"collate/internal/doc"
	"collate/internal/logger"
)

var (
	debugMode             bool
	quietMode             bool
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "collate [paths...]",
	Short: "TUI for comparing files, folders, tables, images, and binaries",
	Long: `Collate is a TUI application for running multiple comparisons side by
side. Sources are classified automatically (text, table, binary, image,
web page, folder) and each comparison gets its own frame; watched
sources refresh the frame when they change on disk.`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initLogging)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", true, "Enable debug logging (on by default)")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to info level only")
}

func initLogging() {
	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("collate %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("collate %s\n", version)
}

// runRoot opens the given paths with automatic classification, or an
// empty workspace when no paths are given.
func runRoot(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	if len(args) > 0 {
		handle, err := ws.disp.OpenFiles(args, autoParams(), doc.KindOther)
		if err != nil {
			return err
		}
		ws.model.QueueOpen(handle)
	}
	return ws.Run()
}
