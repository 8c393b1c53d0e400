package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"collate/internal/doc"
)

var (
	colorPrimary = lipgloss.Color("#7D56F4")
	colorMuted   = lipgloss.Color("#6C6C6C")
	colorAccent  = lipgloss.Color("#04B575")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	listItemStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	listSelectedStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(colorMuted)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	flashStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Padding(0, 1)
)

// View renders the workspace.
func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true

	if m.redraw.Suppressed() && m.lastView != "" {
		// Repaints are gated; keep showing the last frame.
		v.SetContent(m.lastView)
		return v
	}

	if m.width == 0 || m.height == 0 {
		v.SetContent("Loading...")
		return v
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		m.viewTabs(),
		m.viewDocuments(),
		m.viewFooter(),
	)
	m.lastView = content
	v.SetContent(content)
	return v
}

func (m *Model) viewHeader() string {
	title := "Collate"
	if m.version != "" {
		title += " " + m.version
	}
	return headerStyle.Render(title)
}

func (m *Model) viewTabs() string {
	var tabs []string
	for _, k := range visibleBuckets {
		label := fmt.Sprintf("%s (%d)", k, len(m.disp.Registry().EnumerateByKind(k)))
		style := tabStyle
		if k == m.bucket {
			style = tabActiveStyle
		}
		tabs = append(tabs, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) viewDocuments() string {
	list := m.disp.Registry().EnumerateByKind(m.bucket)
	if len(list) == 0 {
		return listItemStyle.Italic(true).Render("  No open comparisons. Open one with `collate open`.")
	}

	var b strings.Builder
	for _, d := range list {
		style := listItemStyle
		prefix := "  "
		if d.ID == m.current {
			style = listSelectedStyle
			prefix = "> "
		}
		label := describeDocument(d)
		if m.pendingChanges[d.ID] > 0 {
			label += " *"
		}
		b.WriteString(style.Render(prefix+label) + "\n")
	}

	if current, ok := m.CurrentDocument(); ok {
		b.WriteString("\n" + m.viewDetail(current))
	}
	return b.String()
}

func (m *Model) viewDetail(d *doc.Document) string {
	var b strings.Builder
	b.WriteString(detailLabelStyle.Render("  kind: ") + d.Kind.String() + "\n")
	for i, loc := range d.Locations {
		desc := ""
		if i < len(d.Descriptions) && d.Descriptions[i] != "" {
			desc = " (" + d.Descriptions[i] + ")"
		}
		b.WriteString(detailLabelStyle.Render(fmt.Sprintf("  pane %d: ", i)) + loc + desc + "\n")
	}
	if m.menus != nil {
		profile := m.menus.BuildMenu(d.Kind)
		for _, entry := range profile.Entries {
			if entry.Pipeline != "" {
				b.WriteString(detailLabelStyle.Render("  plugin: ") + entry.Label + "\n")
			}
		}
	}
	return b.String()
}

func (m *Model) viewFooter() string {
	if m.flash != "" {
		return flashStyle.Render(m.flash)
	}
	return footerStyle.Render("tab: collection  j/k: next/prev  g/G: first/last  x: close  r: reload plugins  q: quit")
}

func describeDocument(d *doc.Document) string {
	parts := make([]string, 0, len(d.Locations))
	for i, loc := range d.Locations {
		if i < len(d.Descriptions) && d.Descriptions[i] != "" {
			parts = append(parts, d.Descriptions[i])
			continue
		}
		parts = append(parts, shortLocation(loc))
	}
	return strings.Join(parts, " ↔ ")
}

func shortLocation(loc string) string {
	if i := strings.LastIndexByte(loc, '/'); i >= 0 && i+1 < len(loc) {
		return loc[i+1:]
	}
	return loc
}
