package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with mathdrill styling. The value is
// passed through untouched: no trimming, no filtering.
type TextInput struct {
	Model    textinput.Model
	MaxWidth int
}

// NewTextInput creates a new focused text input.
func NewTextInput(placeholder string, maxWidth int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	styles := ti.Styles()
	styles.Focused.Prompt = lipgloss.NewStyle().Foreground(theme.Accent)
	styles.Focused.Text = lipgloss.NewStyle().Foreground(theme.Text)
	ti.SetStyles(styles)
	ti.Focus()

	// Width only sizes the field. CharLimit stays 0 so long answers are
	// never cut short.
	if maxWidth > 0 {
		ti.SetWidth(maxWidth)
	}

	return TextInput{
		Model:    ti,
		MaxWidth: maxWidth,
	}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	return t.Model.View()
}

// Value returns the current input value exactly as typed.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Reset clears the value for the next question.
func (t *TextInput) Reset() {
	t.Model.Reset()
}
