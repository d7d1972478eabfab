// Package router keeps the stack of visible screens.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathdrill/internal/screen"
)

// PushScreenMsg requests the router to push a new screen onto the stack.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg requests the router to pop the current screen off the stack.
type PopScreenMsg struct{}

// ReplaceScreenMsg requests the router to swap the top screen for another.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// PopToRootMsg requests the router to drop every screen above the root.
type PopToRootMsg struct{}

// RootMsg delivers Msg to the root screen whatever is on top, for results
// of work the root started before another screen was pushed.
type RootMsg struct {
	Msg tea.Msg
}

// Push returns a command that pushes s.
func Push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return PushScreenMsg{Screen: s} }
}

// Pop returns a command that pops the top screen.
func Pop() tea.Cmd {
	return func() tea.Msg { return PopScreenMsg{} }
}

// Replace returns a command that replaces the top screen with s.
func Replace(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return ReplaceScreenMsg{Screen: s} }
}

// PopToRoot returns a command that returns to the root screen.
func PopToRoot() tea.Cmd {
	return func() tea.Msg { return PopToRootMsg{} }
}

// Router manages a stack of screens.
type Router struct {
	stack []screen.Screen
}

// New creates a new Router with the given initial screen.
func New(initial screen.Screen) *Router {
	return &Router{
		stack: []screen.Screen{initial},
	}
}

// Push adds a screen on top of the stack and calls its Init().
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop removes the top screen. No-op if stack depth would become 0.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	r.stack[len(r.stack)-1] = nil
	r.stack = r.stack[:len(r.stack)-1]
	return nil
}

// Replace swaps the top screen for s and calls its Init(). The depth is
// unchanged.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	r.stack[len(r.stack)-1] = s
	return s.Init()
}

// PopToRoot drops every screen above the root.
func (r *Router) PopToRoot() tea.Cmd {
	for i := 1; i < len(r.stack); i++ {
		r.stack[i] = nil
	}
	r.stack = r.stack[:1]
	return nil
}

// Active returns the top screen on the stack.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the number of screens on the stack.
func (r *Router) Depth() int {
	return len(r.stack)
}

// Update forwards a message to the active screen and handles navigation messages.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case PopToRootMsg:
		return r.PopToRoot()
	case RootMsg:
		updated, cmd := r.stack[0].Update(msg.Msg)
		r.stack[0] = updated
		return cmd
	}

	active := r.Active()
	if active == nil {
		return nil
	}

	updated, cmd := active.Update(msg)
	r.stack[len(r.stack)-1] = updated
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	active := r.Active()
	if active == nil {
		return ""
	}
	return active.View(width, height)
}
