package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

func key(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func text(s string) tea.KeyPressMsg {
	r := []rune(s)
	return tea.KeyPressMsg{Code: r[0], Text: s}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "none", Disabled: true},
		{Label: "a"},
		{Label: "gap", Disabled: true},
		{Label: "b"},
	})
	if m.Selected != 1 {
		t.Fatalf("initial selection = %d, want 1", m.Selected)
	}

	m, _ = m.Update(key(tea.KeyDown))
	if m.Selected != 3 {
		t.Errorf("after down = %d, want 3", m.Selected)
	}
	m, _ = m.Update(key(tea.KeyDown))
	if m.Selected != 3 {
		t.Errorf("down at end = %d, want 3", m.Selected)
	}
	m, _ = m.Update(key(tea.KeyUp))
	m, _ = m.Update(key(tea.KeyUp))
	if m.Selected != 1 {
		t.Errorf("up past disabled head = %d, want 1", m.Selected)
	}
}

func TestMenu_EnterRunsAction(t *testing.T) {
	type picked struct{ label string }
	m := NewMenu([]MenuItem{
		{Label: "a", Action: func() tea.Cmd { return func() tea.Msg { return picked{"a"} } }},
		{Label: "b", Action: func() tea.Cmd { return func() tea.Msg { return picked{"b"} } }},
	})
	m, _ = m.Update(key(tea.KeyDown))
	_, cmd := m.Update(key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if got, ok := cmd().(picked); !ok || got.label != "b" {
		t.Errorf("cmd() = %#v, want picked{b}", got)
	}
}

func TestMenu_AllDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "x", Disabled: true}})
	if _, ok := m.Current(); ok {
		t.Error("Current() should report no enabled item")
	}
	if _, cmd := m.Update(key(tea.KeyEnter)); cmd != nil {
		t.Error("enter on a disabled item should do nothing")
	}
}

func TestMenu_ViewShowsDetail(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "Addition", Detail: "(3 tasks)"}})
	if v := m.View(); !strings.Contains(v, "Addition") || !strings.Contains(v, "(3 tasks)") {
		t.Errorf("View() = %q", v)
	}
}

func TestTextInput_KeepsRawValue(t *testing.T) {
	ti := NewTextInput("answer", 20)
	for _, s := range []string{" ", "4", ".", "0"} {
		ti, _ = ti.Update(text(s))
	}
	if got := ti.Value(); got != " 4.0" {
		t.Errorf("Value() = %q, want %q", got, " 4.0")
	}

	ti.Reset()
	if ti.Value() != "" {
		t.Errorf("Value() after Reset = %q, want empty", ti.Value())
	}
}

func TestStepProgress(t *testing.T) {
	p := NewStepProgress(2, 4, 40)
	if p.Percent != 0.5 {
		t.Errorf("Percent = %v, want 0.5", p.Percent)
	}
	v := p.View()
	if !strings.Contains(v, "Task 2 of 4") {
		t.Errorf("View() missing label: %q", v)
	}
	if w := lipgloss.Width(v); w != 40 {
		t.Errorf("width = %d, want 40", w)
	}

	if z := NewStepProgress(0, 0, 40); z.Percent != 0 {
		t.Errorf("zero total Percent = %v", z.Percent)
	}
}
