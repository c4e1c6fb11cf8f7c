package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/atomicstack/grpm/internal/cache"
	"github.com/atomicstack/grpm/internal/filter"
	"github.com/atomicstack/grpm/internal/github"
	"github.com/atomicstack/grpm/internal/input"
	"github.com/atomicstack/grpm/internal/testutil"
	"github.com/atomicstack/grpm/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// gatedSource withholds its keys until ready is closed.
type gatedSource struct {
	mu    sync.Mutex
	ready <-chan struct{}
	keys  []tea.Key
	err   error
}

func (s *gatedSource) Poll(timeout time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	select {
	case <-s.ready:
	case <-time.After(timeout):
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.keys) == 0 {
		time.Sleep(timeout)
		return false, nil
	}
	return true, nil
}

func (s *gatedSource) Read() (tea.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.keys[0]
	s.keys = s.keys[1:]
	return k, nil
}

// loadedRenderer closes loaded on the first frame showing releases.
type loadedRenderer struct {
	once   sync.Once
	loaded chan struct{}
	frames int
}

func (r *loadedRenderer) Render(s session.Snapshot) {
	r.frames++
	if s.Total > 0 {
		r.once.Do(func() { close(r.loaded) })
	}
}

func testConfig() Config {
	return Config{
		Owner:    "octocat",
		Repo:     "hello-world",
		Match:    filter.ModeRegex,
		TickRate: 200,
	}
}

func TestRunFetchesSelectsAndQuits(t *testing.T) {
	client := testutil.NewClient("octocat/hello-world", testutil.SampleReleases())
	renderer := &loadedRenderer{loaded: make(chan struct{})}
	src := &gatedSource{
		ready: renderer.loaded,
		keys: []tea.Key{
			{Type: tea.KeyCtrlS},
			{Type: tea.KeyRunes, Runes: []rune{'q'}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	selected, err := run(ctx, testConfig(), src, client, renderer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selected == nil || selected.ID != 21 {
		t.Fatalf("expected asset 21 selected, got %#v", selected)
	}
	if calls := client.Calls(); len(calls) == 0 || calls[0] != "list octocat/hello-world" {
		t.Fatalf("expected startup fetch, got %v", calls)
	}
	if renderer.frames < 2 {
		t.Fatalf("expected several frames, got %d", renderer.frames)
	}
}

func TestRunSurfacesTerminalErrors(t *testing.T) {
	boom := errors.New("tty gone")
	src := &gatedSource{ready: make(chan struct{}), err: boom}
	renderer := &loadedRenderer{loaded: make(chan struct{})}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := run(ctx, testConfig(), src, testutil.NewClient("octocat/hello-world", nil), renderer)
	var te *input.TerminalError
	if !errors.As(err, &te) {
		t.Fatalf("expected *input.TerminalError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestRunTreatsParentCancelAsQuit(t *testing.T) {
	src := &gatedSource{ready: make(chan struct{})}
	renderer := &loadedRenderer{loaded: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)
	if _, err := run(ctx, testConfig(), src, testutil.NewClient("octocat/hello-world", nil), renderer); err != nil {
		t.Fatalf("expected interrupt to end cleanly, got %v", err)
	}
}

func TestNewClientWrapsCacheWhenConfigured(t *testing.T) {
	client, closeFn, err := NewClient(Config{APIURL: "http://127.0.0.1:0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := client.(*github.Client); !ok {
		t.Fatalf("expected bare GitHub client, got %T", client)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	cfg := Config{APIURL: "http://127.0.0.1:0", CacheFile: filepath.Join(t.TempDir(), "cache", "releases.db")}
	client, closeFn, err = NewClient(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()
	if _, ok := client.(*cache.Client); !ok {
		t.Fatalf("expected cached client, got %T", client)
	}
}

func TestSessionOptionsFetchOnStart(t *testing.T) {
	cases := []struct {
		owner, repo string
		want        bool
	}{
		{"octocat", "hello-world", true},
		{"octocat/hello-world", "", true},
		{"octocat", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		opts := SessionOptions(Config{Owner: tc.owner, Repo: tc.repo})
		if opts.FetchOnStart != tc.want {
			t.Fatalf("%q %q: expected FetchOnStart=%v", tc.owner, tc.repo, tc.want)
		}
	}
}
