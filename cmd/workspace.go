package cmd

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"

	"collate/internal/app"
	"collate/internal/clipboard"
	"collate/internal/config"
	"collate/internal/dispatch"
	"collate/internal/logger"
	"collate/internal/menu"
	"collate/internal/mru"
	"collate/internal/params"
	"collate/internal/patch"
	"collate/internal/plugin"
	"collate/internal/watch"
)

// workspace is the fully wired application: config, watcher, plugin
// menus, recent history, and the dispatcher they hang off.
type workspace struct {
	cfg     *config.Config
	watcher *watch.Coordinator
	plugins *plugin.Registry
	menus   *menu.Engine
	history *mru.History
	disp    *dispatch.Dispatcher
	model   *app.Model
}

// newWorkspace builds the application graph shared by every command
// that opens comparisons.
func newWorkspace() (*workspace, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	watcher, err := watch.NewCoordinator()
	if err != nil {
		// Watching is an enhancement; the workspace still runs.
		logger.Warn("Workspace: %v", err)
		watcher = nil
	}

	plugins := plugin.NewRegistry(cfg.GetPluginDir())
	if err := plugins.Reload(); err != nil {
		logger.Warn("Workspace: %v", err)
	}
	menus := menu.NewEngine(plugins)
	history := mru.New(cfg, mru.DefaultMaxItems)

	disp := dispatch.New(dispatch.Options{
		Config:    cfg,
		Watcher:   watcher,
		Menus:     menus,
		Confirmer: largeFileConfirmer(),
		Recents:   history,
		Clipboard: clipboardSource{},
		Patch:     patch.Writer{},
	})

	model := app.New(app.Options{
		Config:     cfg,
		Dispatcher: disp,
		Menus:      menus,
		Plugins:    plugins,
		Watcher:    watcher,
		Version:    version,
	})

	return &workspace{
		cfg:     cfg,
		watcher: watcher,
		plugins: plugins,
		menus:   menus,
		history: history,
		disp:    disp,
		model:   model,
	}, nil
}

// Run starts the TUI and blocks until it exits.
func (ws *workspace) Run() error {
	defer logger.Close()
	p := tea.NewProgram(ws.model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}

// Close releases watcher and document resources.
func (ws *workspace) Close() {
	ws.model.Close()
}

// largeFileConfirmer prompts before opening sources over the configured
// size threshold.
func largeFileConfirmer() dispatch.Confirmer {
	return dispatch.ConfirmerFunc(func(locations []string) bool {
		proceed := true
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Open large files?").
				Description(strings.Join(locations, "\n")).
				Affirmative("Open").
				Negative("Cancel").
				Value(&proceed),
		))
		if err := form.Run(); err != nil {
			return false
		}
		return proceed
	})
}

// clipboardSource adapts the clipboard history to the dispatcher.
type clipboardSource struct{}

func (clipboardSource) Buffers(n int) ([][]byte, error) {
	if err := clipboard.Init(); err != nil {
		return nil, err
	}
	return clipboard.Buffers(n)
}

// autoParams is the parameter set for automatically classified opens.
func autoParams() params.OpenParams {
	return params.Auto(params.AutoOptions{})
}
