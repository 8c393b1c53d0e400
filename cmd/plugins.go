package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"collate/internal/config"
	"collate/internal/plugin"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List installed pipeline plugins",
	Long: `Lists the unpacker and prediffer pipelines found in the plugin
directory's manifests.`,
	RunE: runPlugins,
}

var pluginsReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-read pipeline manifests and report problems",
	Long: `Re-reads every manifest in the plugin directory and reports the first
malformed one, if any. Inside the TUI the same reload is bound to 'r'.`,
	RunE: runPluginsReload,
}

func init() {
	pluginsCmd.AddCommand(pluginsReloadCmd)
	rootCmd.AddCommand(pluginsCmd)
}

func runPluginsReload(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	reg := plugin.NewRegistry(cfg.GetPluginDir())
	if err := reg.Reload(); err != nil {
		return err
	}
	fmt.Printf("Loaded %d pipeline(s) from %s\n", len(reg.Pipelines()), cfg.GetPluginDir())
	return nil
}

func runPlugins(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	reg := plugin.NewRegistry(cfg.GetPluginDir())
	if err := reg.Reload(); err != nil {
		return err
	}

	pipelines := reg.Pipelines()
	if len(pipelines) == 0 {
		fmt.Printf("No pipelines found in %s\n", cfg.GetPluginDir())
		return nil
	}
	for _, p := range pipelines {
		fmt.Printf("%-24s %-10s %s\n", p.Name, p.Event, p.Label)
	}
	return nil
}
