package app

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"collate/internal/doc"
	"collate/internal/keys"
	"collate/internal/logger"
)

// flashDuration is how long a transient status message stays up.
const flashDuration = 3 * time.Second

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKeyPress(msg)

	case ChangeMsg:
		m.disp.Loop().Post(func() {
			m.disp.HandleChange(msg.Notification)
		})
		m.disp.Loop().Pump()
		for range msg.Notification.Paths {
			m.pendingChanges[msg.Notification.DocID]++
		}
		return m, m.waitForChange()

	case RedrawResumeMsg:
		if m.redraw.TimerFired(msg.Token) {
			// Resume owes one full repaint.
			m.lastView = ""
		}
		return m, nil

	case FlashClearMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case keys.CtrlC, "q":
		return m, tea.Quit

	case keys.Tab:
		m.cycleBucket()
		return m, nil

	case keys.Home, "g":
		return m.navigate(func() (*doc.Document, bool) {
			return m.disp.Registry().First(m.bucket)
		})

	case keys.End, "G":
		return m.navigate(func() (*doc.Document, bool) {
			return m.disp.Registry().Last(m.bucket)
		})

	case keys.Down, "j", "n":
		return m.navigate(func() (*doc.Document, bool) {
			return m.disp.Registry().Next(m.bucket, m.current)
		})

	case keys.Up, "k", "p":
		return m.navigate(func() (*doc.Document, bool) {
			return m.disp.Registry().Prev(m.bucket, m.current)
		})

	case keys.CtrlW, "x":
		return m.closeCurrent()

	case keys.CtrlR, "r":
		return m.reloadPlugins()
	}

	return m, nil
}

// cycleBucket moves the workspace to the next non-empty collection, or
// just the next one when all are empty.
func (m *Model) cycleBucket() {
	start := 0
	for i, k := range visibleBuckets {
		if k == m.bucket {
			start = i
			break
		}
	}
	for step := 1; step <= len(visibleBuckets); step++ {
		next := visibleBuckets[(start+step)%len(visibleBuckets)]
		if len(m.disp.Registry().EnumerateByKind(next)) > 0 || step == len(visibleBuckets) {
			m.bucket = next
			break
		}
	}
	m.syncCurrent()
}

// navigate applies a registry move. An unavailable move (off either
// end, empty collection) is a silent no-op.
func (m *Model) navigate(move func() (*doc.Document, bool)) (tea.Model, tea.Cmd) {
	target, ok := move()
	if !ok {
		return m, nil
	}
	m.current = target.ID
	if !m.redraw.FrameActivated() {
		// Activation during the suppression window must not repaint.
		return m, nil
	}
	m.lastView = ""
	return m, nil
}

// closeCurrent closes the active document and lands on its neighbor.
func (m *Model) closeCurrent() (tea.Model, tea.Cmd) {
	if m.current == "" {
		return m, nil
	}
	closing := m.current
	if next, ok := m.disp.Registry().Next(m.bucket, closing); ok {
		m.current = next.ID
	} else if prev, ok := m.disp.Registry().Prev(m.bucket, closing); ok {
		m.current = prev.ID
	} else {
		m.current = ""
	}
	m.disp.CloseDocument(closing)
	delete(m.pendingChanges, closing)
	m.syncCurrent()
	return m, nil
}

// reloadPlugins rescans pipeline manifests and atomically swaps in
// rebuilt menus.
func (m *Model) reloadPlugins() (tea.Model, tea.Cmd) {
	if m.plugins == nil || m.menus == nil {
		return m, nil
	}
	if err := m.plugins.Reload(); err != nil {
		logger.Warn("App: plugin reload failed: %v", err)
		return m.setFlash("Plugin reload failed: " + err.Error())
	}
	m.menus.ReloadMenus()
	return m.setFlash("Plugins reloaded")
}

func (m *Model) setFlash(text string) (tea.Model, tea.Cmd) {
	m.flash = text
	return m, tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return FlashClearMsg{}
	})
}

// syncCurrent repairs the active-document pointer after removals or
// bucket switches.
func (m *Model) syncCurrent() {
	if m.current != "" {
		if d, ok := m.disp.Registry().Get(m.current); ok && d.Kind.Bucket() == m.bucket {
			return
		}
	}
	if first, ok := m.disp.Registry().First(m.bucket); ok {
		m.current = first.ID
		return
	}
	m.current = ""
}
