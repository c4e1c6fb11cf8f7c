package input

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when stdin is not a terminal.
var ErrNotTerminal = errors.New("not a terminal")

// TTYSource reads keys from a terminal placed in raw mode.
type TTYSource struct {
	fd     int
	state  *term.State
	reader cancelreader.CancelReader

	keys    chan tea.Key
	errs    chan error
	done    chan struct{}
	pending *tea.Key

	closeOnce sync.Once
	closeErr  error
}

// OpenTTY puts in into raw mode and starts reading from it. Close must be
// called to restore the terminal.
func OpenTTY(in *os.File) (*TTYSource, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, &TerminalError{Op: "open", Err: ErrNotTerminal}
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, &TerminalError{Op: "raw mode", Err: err}
	}
	reader, err := cancelreader.NewReader(in)
	if err != nil {
		_ = term.Restore(fd, state)
		return nil, &TerminalError{Op: "reader", Err: err}
	}
	s := &TTYSource{
		fd:     fd,
		state:  state,
		reader: reader,
		keys:   make(chan tea.Key, 64),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *TTYSource) readLoop() {
	defer close(s.keys)
	buf := make([]byte, 256)
	for {
		n, err := s.reader.Read(buf)
		if err != nil {
			s.errs <- err
			return
		}
		for _, key := range decodeAll(buf[:n]) {
			select {
			case s.keys <- key:
			case <-s.done:
				return
			}
		}
	}
}

// Poll waits up to timeout for a key.
func (s *TTYSource) Poll(timeout time.Duration) (bool, error) {
	if s.pending != nil {
		return true, nil
	}
	if timeout <= 0 {
		select {
		case key, ok := <-s.keys:
			return s.hold(key, ok)
		default:
			return false, nil
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case key, ok := <-s.keys:
		return s.hold(key, ok)
	case <-timer.C:
		return false, nil
	}
}

// Read returns the next key, blocking when none has been polled.
func (s *TTYSource) Read() (tea.Key, error) {
	if s.pending != nil {
		key := *s.pending
		s.pending = nil
		return key, nil
	}
	key, ok := <-s.keys
	if !ok {
		return tea.Key{}, s.readErr()
	}
	return key, nil
}

func (s *TTYSource) hold(key tea.Key, ok bool) (bool, error) {
	if !ok {
		return false, s.readErr()
	}
	s.pending = &key
	return true, nil
}

func (s *TTYSource) readErr() error {
	select {
	case err := <-s.errs:
		if errors.Is(err, cancelreader.ErrCanceled) {
			return io.EOF
		}
		return err
	default:
		return io.EOF
	}
}

// Close stops the reader and restores the terminal mode. It is safe to call
// more than once.
func (s *TTYSource) Close() error {
	s.closeOnce.Do(func() {
		s.reader.Cancel()
		close(s.done)
		_ = s.reader.Close()
		if err := term.Restore(s.fd, s.state); err != nil {
			s.closeErr = &TerminalError{Op: "restore", Err: err}
		}
	})
	return s.closeErr
}
