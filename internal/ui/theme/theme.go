// Package theme holds the shared colors and styles.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, chalkboard inspired.
var (
	Primary   = lipgloss.Color("#38BDF8") // Sky
	Secondary = lipgloss.Color("#A3E635") // Lime
	Accent    = lipgloss.Color("#FBBF24") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0B1F1A") // Board green
	BgCard    = lipgloss.Color("#13302A") // Lighter board
	Border    = lipgloss.Color("#2F5D50") // Frame
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	// Question renders the task being asked.
	Question = lipgloss.NewStyle().
			Bold(true).
			Foreground(Text).
			Align(lipgloss.Center)

	// Countdown renders the big 3-2-1 digit.
	Countdown = lipgloss.NewStyle().
			Bold(true).
			Foreground(Accent).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(1, 4)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Disabled = lipgloss.NewStyle().
			Foreground(TextDim)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)
