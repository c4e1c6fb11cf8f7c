package input

import (
	"context"
	"time"

	"github.com/atomicstack/grpm/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultTickRate is the tick frequency in Hz.
const DefaultTickRate = 60

// Source yields key presses. Poll waits up to timeout for input and reports
// whether Read will return without blocking.
type Source interface {
	Poll(timeout time.Duration) (bool, error)
	Read() (tea.Key, error)
}

// Interval converts a tick rate in Hz into the tick period. Non-positive
// rates fall back to DefaultTickRate.
func Interval(rate int) time.Duration {
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return time.Second / time.Duration(rate)
}

// Poller merges key presses from a Source with a fixed-rate tick.
type Poller struct {
	src      Source
	events   chan<- Event
	interval time.Duration
}

// NewPoller wires a poller to its source and output channel. The poller owns
// events and closes it when Run returns.
func NewPoller(src Source, events chan<- Event, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = Interval(DefaultTickRate)
	}
	return &Poller{src: src, events: events, interval: interval}
}

// Run polls until ctx is cancelled. Input is forwarded as soon as it is
// available; a tick is emitted whenever the tick boundary has passed.
func (p *Poller) Run(ctx context.Context) error {
	defer close(p.events)
	last := time.Now()
	for {
		if ctx.Err() != nil {
			return nil
		}
		remaining := p.interval - time.Since(last)
		if remaining < 0 {
			remaining = 0
		}
		ready, err := p.src.Poll(remaining)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			events.Input.Error(err)
			return &TerminalError{Op: "poll", Err: err}
		}
		if ready {
			key, err := p.src.Read()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				events.Input.Error(err)
				return &TerminalError{Op: "read", Err: err}
			}
			if !p.emit(ctx, Event{Type: EventInput, Key: key}) {
				return nil
			}
		}
		if time.Since(last) >= p.interval {
			if !p.emit(ctx, Event{Type: EventTick}) {
				return nil
			}
			last = time.Now()
		}
	}
}

func (p *Poller) emit(ctx context.Context, ev Event) bool {
	select {
	case <-ctx.Done():
		return false
	case p.events <- ev:
		return true
	}
}
