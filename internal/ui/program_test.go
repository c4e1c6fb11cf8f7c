package ui

import (
	"testing"
	"time"

	"github.com/atomicstack/grpm/internal/session"
)

func TestRenderKeepsOnlyLatestFrame(t *testing.T) {
	p := NewProgram(testModel())
	done := make(chan struct{})
	go func() {
		for _, owner := range []string{"a", "b", "c"} {
			p.Render(session.Snapshot{Owner: owner})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Render blocked without a running program")
	}
	select {
	case s := <-p.frames:
		if s.Owner != "c" {
			t.Fatalf("expected latest frame, got %q", s.Owner)
		}
	default:
		t.Fatal("expected a pending frame")
	}
}
