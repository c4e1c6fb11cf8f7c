package input

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// EventType distinguishes keyboard input from clock ticks.
type EventType int

const (
	EventInput EventType = iota
	EventTick
)

func (t EventType) String() string {
	switch t {
	case EventInput:
		return "input"
	case EventTick:
		return "tick"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// Event is a single item of the merged input/tick stream. Key is only set for
// EventInput.
type Event struct {
	Type EventType
	Key  tea.Key
}

// TerminalError reports a failure to configure, read from or restore the
// controlling terminal.
type TerminalError struct {
	Op  string
	Err error
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("terminal %s: %v", e.Op, e.Err)
}

func (e *TerminalError) Unwrap() error { return e.Err }
