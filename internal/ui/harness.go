package ui

import (
	"github.com/atomicstack/grpm/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// Harness drives the UI model programmatically for tests. It implements
// session.Renderer so a controller can render straight into it.
type Harness struct {
	model *Model
}

// NewHarness creates a harness for the provided model.
func NewHarness(model *Model) *Harness {
	return &Harness{model: model}
}

// Render delivers a snapshot as the running program would.
func (h *Harness) Render(s session.Snapshot) {
	h.Send(frameMsg{snap: s})
}

// Send routes a message through the model. Commands are not executed; blink
// and spinner ticks would otherwise loop forever.
func (h *Harness) Send(msg tea.Msg) {
	if h.model == nil {
		return
	}
	mdl, _ := h.model.Update(msg)
	if updated, ok := mdl.(*Model); ok {
		h.model = updated
	}
}

// View returns the current view string.
func (h *Harness) View() string {
	if h.model == nil {
		return ""
	}
	return h.model.View()
}

// Model exposes the underlying model.
func (h *Harness) Model() *Model {
	return h.model
}
