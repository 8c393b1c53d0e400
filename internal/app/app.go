// Package app is the Bubble Tea shell around the comparison core: it
// renders the open-document workspace, routes key presses to registry
// navigation and plugin reloads, and marshals background change
// notifications onto the update loop.
package app

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"collate/internal/config"
	"collate/internal/dispatch"
	"collate/internal/doc"
	"collate/internal/logger"
	"collate/internal/menu"
	"collate/internal/notification"
	"collate/internal/plugin"
	"collate/internal/watch"
)

// visibleBuckets is the tab order of the workspace's document
// collections.
var visibleBuckets = []doc.Kind{
	doc.KindFolder,
	doc.KindFile,
	doc.KindHex,
	doc.KindImage,
	doc.KindWebPage,
}

// ChangeMsg carries a watch notification onto the update loop.
type ChangeMsg struct {
	Notification watch.Notification
}

// RedrawResumeMsg is the repaint-resume timer. Token pairs it with the
// suppression that scheduled it.
type RedrawResumeMsg struct {
	Token int
}

// FlashClearMsg clears the transient status line.
type FlashClearMsg struct{}

// Model is the main Bubble Tea model.
type Model struct {
	config  *config.Config
	version string

	disp    *dispatch.Dispatcher
	menus   *menu.Engine
	plugins *plugin.Registry
	watcher *watch.Coordinator

	width  int
	height int

	// Workspace position: the active collection tab and the active
	// document within it.
	bucket  doc.Kind
	current string

	// Maximized mirrors the workspace repaint mode: when set, frame
	// creation always suppresses repaints until the resume timer fires.
	maximized bool

	redraw   Redraw
	lastView string

	flash string

	// pendingChanges counts undelivered change batches per document so
	// the list can mark stale comparisons.
	pendingChanges map[string]int

	// queued holds comparisons dispatched before the program started;
	// Init attaches them.
	queued []*dispatch.ViewHandle
}

// Options carries the collaborators the shell is built from.
type Options struct {
	Config     *config.Config
	Dispatcher *dispatch.Dispatcher
	Menus      *menu.Engine
	Plugins    *plugin.Registry
	Watcher    *watch.Coordinator
	Version    string
}

// New creates the app model.
func New(opts Options) *Model {
	return &Model{
		config:         opts.Config,
		version:        opts.Version,
		disp:           opts.Dispatcher,
		menus:          opts.Menus,
		plugins:        opts.Plugins,
		watcher:        opts.Watcher,
		bucket:         doc.KindFile,
		maximized:      true,
		pendingChanges: make(map[string]int),
	}
}

// QueueOpen records a comparison dispatched before the program
// started. Init attaches it.
func (m *Model) QueueOpen(handle *dispatch.ViewHandle) {
	m.queued = append(m.queued, handle)
}

// Init attaches queued comparisons and starts background listeners.
func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, handle := range m.queued {
		cmds = append(cmds, m.Attach(handle))
	}
	m.queued = nil
	if m.watcher != nil {
		m.watcher.Start()
		cmds = append(cmds, m.waitForChange())
	}
	return tea.Batch(cmds...)
}

// Close releases watcher and open-document resources.
func (m *Model) Close() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
	m.disp.Shutdown()
}

// waitForChange blocks on the watch channel and republishes the next
// notification as a message.
func (m *Model) waitForChange() tea.Cmd {
	events := m.watcher.Events()
	return func() tea.Msg {
		n, ok := <-events
		if !ok {
			return nil
		}
		return ChangeMsg{Notification: n}
	}
}

// resumeTimer schedules the repaint-resume tick for a suppression.
func resumeTimer(token int) tea.Cmd {
	return tea.Tick(resumeDelay, func(time.Time) tea.Msg {
		return RedrawResumeMsg{Token: token}
	})
}

// Attach makes a freshly dispatched document the active one, gating
// repaints across its frame layout.
func (m *Model) Attach(handle *dispatch.ViewHandle) tea.Cmd {
	hadActive := m.current != ""
	m.bucket = handle.Doc.Kind.Bucket()
	m.current = handle.Doc.ID
	logger.Info("App: attached doc id=%s kind=%s reused=%v", handle.Doc.ID, handle.Doc.Kind, handle.Reused)

	var cmds []tea.Cmd
	if !handle.Reused {
		if token, suppressed := m.redraw.FrameCreated(m.maximized, hadActive); suppressed {
			cmds = append(cmds, resumeTimer(token))
		}
		if m.config != nil && m.config.GetNotificationsEnabled() {
			name := handle.Doc.Kind.String() + " compare"
			cmds = append(cmds, func() tea.Msg {
				_ = notification.CompareReady(name)
				return nil
			})
		}
	}
	return tea.Batch(cmds...)
}

// CurrentDocument returns the active document, if any.
func (m *Model) CurrentDocument() (*doc.Document, bool) {
	if m.current == "" {
		return nil, false
	}
	return m.disp.Registry().Get(m.current)
}
