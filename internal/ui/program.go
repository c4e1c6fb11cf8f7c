package ui

import (
	"errors"

	"github.com/atomicstack/grpm/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// Program runs the Model in its own goroutine and implements
// session.Renderer.
type Program struct {
	prog   *tea.Program
	frames chan session.Snapshot
	done   chan struct{}
	err    error
}

// NewProgram wraps model in a tea.Program drawing on the alternate screen.
// The program never reads input; keys reach the session through the input
// poller instead.
func NewProgram(model *Model, opts ...tea.ProgramOption) *Program {
	base := []tea.ProgramOption{tea.WithAltScreen(), tea.WithInput(nil)}
	return &Program{
		prog:   tea.NewProgram(model, append(base, opts...)...),
		frames: make(chan session.Snapshot, 1),
		done:   make(chan struct{}),
	}
}

// Start launches the program and the goroutine feeding it frames.
func (p *Program) Start() {
	go func() {
		defer close(p.done)
		_, p.err = p.prog.Run()
	}()
	go p.pump()
}

func (p *Program) pump() {
	for {
		select {
		case <-p.done:
			return
		case s := <-p.frames:
			p.prog.Send(frameMsg{snap: s})
		}
	}
}

// Render hands a snapshot to the program without blocking. A frame the
// program has not picked up yet is replaced. Render must be called from a
// single goroutine.
func (p *Program) Render(s session.Snapshot) {
	select {
	case <-p.frames:
	default:
	}
	p.frames <- s
}

// Stop quits the program, waits for it to restore the screen and returns its
// exit error.
func (p *Program) Stop() error {
	p.prog.Quit()
	<-p.done
	if errors.Is(p.err, tea.ErrProgramKilled) {
		return nil
	}
	return p.err
}

var _ session.Renderer = (*Program)(nil)
