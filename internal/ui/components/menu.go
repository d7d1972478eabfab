package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// MenuItem represents a single item in a navigation menu.
type MenuItem struct {
	Label    string
	Detail   string // dimmed text shown after the label
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical navigation menu. Selection skips disabled items.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.Selected = m.next(-1, 1)
	return m
}

// next returns the first enabled index after from in direction dir, or from
// when there is none.
func (m Menu) next(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			return i
		}
	}
	if from < 0 {
		return 0
	}
	return from
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		m.Selected = m.next(m.Selected, -1)
	case "down", "j":
		m.Selected = m.next(m.Selected, 1)
	case "home", "g":
		m.Selected = m.next(-1, 1)
	case "end", "G":
		m.Selected = m.next(len(m.Items), -1)
	case "enter":
		if item, ok := m.Current(); ok && item.Action != nil {
			return m, item.Action()
		}
	}

	return m, nil
}

// Current returns the selected item if it is enabled.
func (m Menu) Current() (MenuItem, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return MenuItem{}, false
	}
	item := m.Items[m.Selected]
	return item, !item.Disabled
}

// View renders the menu.
func (m Menu) View() string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var s string
	for i, item := range m.Items {
		var line string
		switch {
		case item.Disabled:
			line = theme.Disabled.Render("    " + item.Label)
		case i == m.Selected:
			line = theme.Selected.Render("  ▸ " + item.Label)
		default:
			line = theme.Unselected.Render("    " + item.Label)
		}
		if item.Detail != "" {
			line += " " + dim.Render(item.Detail)
		}
		s += line + "\n"
	}
	return s
}
