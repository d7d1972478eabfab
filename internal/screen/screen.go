// Package screen defines the contract between the router and the screens
// it stacks.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathdrill/internal/ui/layout"
)

// Kind tags which view a screen presents.
type Kind int

const (
	MenuView Kind = iota
	CountdownView
	TaskView
	ResultView
	HistoryView
)

func (k Kind) String() string {
	switch k {
	case MenuView:
		return "menu"
	case CountdownView:
		return "countdown"
	case TaskView:
		return "task"
	case ResultView:
		return "result"
	case HistoryView:
		return "history"
	default:
		return "unknown"
	}
}

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first shown.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string

	// Kind reports which view this is.
	Kind() Kind
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// EscapeHandler is implemented by screens that handle Esc themselves
// instead of letting the app pop them.
type EscapeHandler interface {
	HandlesEscape() bool
}
