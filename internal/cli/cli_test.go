package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/atomicstack/grpm/internal/app"
	"github.com/atomicstack/grpm/internal/backend"
	"github.com/atomicstack/grpm/internal/config"
	"github.com/atomicstack/grpm/internal/filter"
	"github.com/atomicstack/grpm/internal/release"
	"github.com/atomicstack/grpm/internal/testutil"
)

type harness struct {
	stdout  bytes.Buffer
	stderr  bytes.Buffer
	client  *testutil.Client
	tuiCfg  *app.Config
	started *config.Config
	pick    *release.Asset
}

func (h *harness) deps() Deps {
	return Deps{
		Stdout: &h.stdout,
		Stderr: &h.stderr,
		Startup: func(cfg config.Config) {
			h.started = &cfg
		},
		RunTUI: func(ctx context.Context, cfg app.Config) (*release.Asset, error) {
			h.tuiCfg = &cfg
			return h.pick, nil
		},
		NewClient: func(app.Config) (backend.Client, func() error, error) {
			return h.client, func() error { return nil }, nil
		},
	}
}

// newHarness runs the test from a scratch directory so error logs land there.
func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return &harness{client: testutil.NewClient("octocat/hello-world", testutil.SampleReleases())}
}

func TestRootRunsTUIWithPositionalFields(t *testing.T) {
	h := newHarness(t)
	h.pick = &release.Asset{DownloadURL: "https://example.com/v2/linux"}
	code := Execute(context.Background(), []string{"--match", "fuzzy", "octocat/hello-world", "^v2"}, h.deps())
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, h.stderr.String())
	}
	if h.tuiCfg == nil {
		t.Fatal("expected TUI to run")
	}
	if h.tuiCfg.Owner != "octocat" || h.tuiCfg.Repo != "hello-world" || h.tuiCfg.ReleasePattern != "^v2" {
		t.Fatalf("unexpected tui config %#v", h.tuiCfg)
	}
	if h.tuiCfg.Match != filter.ModeFuzzy {
		t.Fatalf("expected fuzzy mode, got %v", h.tuiCfg.Match)
	}
	if h.started == nil {
		t.Fatal("expected startup hook to run")
	}
	if got := strings.TrimSpace(h.stdout.String()); got != "https://example.com/v2/linux" {
		t.Fatalf("expected selected URL printed, got %q", got)
	}
}

func TestTUISubcommand(t *testing.T) {
	h := newHarness(t)
	if code := Execute(context.Background(), []string{"tui", "octocat", "hello-world"}, h.deps()); code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, h.stderr.String())
	}
	if h.tuiCfg == nil || h.tuiCfg.Repo != "hello-world" {
		t.Fatalf("unexpected tui config %#v", h.tuiCfg)
	}
	if h.stdout.Len() != 0 {
		t.Fatalf("expected no output without a selection, got %q", h.stdout.String())
	}
}

func TestSearchListsMatchingReleases(t *testing.T) {
	h := newHarness(t)
	code := Execute(context.Background(), []string{"search", "octocat/hello-world", "^v2"}, h.deps())
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, h.stderr.String())
	}
	out := h.stdout.String()
	for _, want := range []string{"TAG", "v2.0.0", "Second", "2026-03-01", "pre"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "v1.0.0") {
		t.Fatalf("expected v1.0.0 filtered out:\n%s", out)
	}
}

func TestSearchListsMatchingAssets(t *testing.T) {
	h := newHarness(t)
	code := Execute(context.Background(), []string{"search", "octocat", "hello-world", "", "linux"}, h.deps())
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, h.stderr.String())
	}
	out := h.stdout.String()
	for _, want := range []string{"https://example.com/v2/linux", "https://example.com/v1/linux", "3.1 MB", "1,234"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "darwin") {
		t.Fatalf("expected darwin asset filtered out:\n%s", out)
	}
}

func TestSearchErrors(t *testing.T) {
	h := newHarness(t)
	if code := Execute(context.Background(), []string{"search", "octocat"}, h.deps()); code != 2 {
		t.Fatalf("expected exit 2 without repo, got %d", code)
	}
	if !strings.Contains(h.stderr.String(), "Error: ") {
		t.Fatalf("expected error on stderr, got %q", h.stderr.String())
	}

	h = newHarness(t)
	if code := Execute(context.Background(), []string{"search", "octocat/hello-world", "("}, h.deps()); code != 2 {
		t.Fatalf("expected exit 2 for bad pattern, got %d", code)
	}
	if len(h.client.Calls()) != 0 {
		t.Fatal("expected no fetch for a bad pattern")
	}

	h = newHarness(t)
	h.client.SetErr(errors.New("rate limited"))
	if code := Execute(context.Background(), []string{"search", "octocat/hello-world"}, h.deps()); code != 1 {
		t.Fatalf("expected exit 1 for fetch failure, got %d", code)
	}
	if !strings.Contains(h.stderr.String(), "rate limited") {
		t.Fatalf("expected fetch error on stderr, got %q", h.stderr.String())
	}
}

func TestConfigErrorsExitTwo(t *testing.T) {
	for _, args := range [][]string{
		{"--bogus"},
		{"--match", "glob"},
		{"a", "b", "c", "d", "e"},
	} {
		h := newHarness(t)
		if code := Execute(context.Background(), args, h.deps()); code != 2 {
			t.Fatalf("%v: expected exit 2, got %d", args, code)
		}
		if h.tuiCfg != nil {
			t.Fatalf("%v: TUI must not start", args)
		}
	}
}

func TestTUIErrorExitsOne(t *testing.T) {
	h := newHarness(t)
	deps := h.deps()
	deps.RunTUI = func(context.Context, app.Config) (*release.Asset, error) {
		return nil, errors.New("tty gone")
	}
	if code := Execute(context.Background(), nil, deps); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)
	Version = "v1.2.3"
	t.Cleanup(func() { Version = "dev" })
	if code := Execute(context.Background(), []string{"version"}, h.deps()); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if got := strings.TrimSpace(h.stdout.String()); got != "grpm v1.2.3" {
		t.Fatalf("unexpected version output %q", got)
	}
}

func TestSearchLatestSkipsPrereleases(t *testing.T) {
	h := newHarness(t)
	if code := Execute(context.Background(), []string{"search", "octocat/hello-world", "latest"}, h.deps()); code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, h.stderr.String())
	}
	out := h.stdout.String()
	if !strings.Contains(out, "v1.0.0") || strings.Contains(out, "v2.0.0") {
		t.Fatalf("expected only the latest stable release:\n%s", out)
	}
}

func TestSearchExactTag(t *testing.T) {
	h := newHarness(t)
	if code := Execute(context.Background(), []string{"search", "octocat/hello-world", "t:v2.0.0", "darwin"}, h.deps()); code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, h.stderr.String())
	}
	out := h.stdout.String()
	if !strings.Contains(out, "https://example.com/v2/darwin") || strings.Contains(out, "linux") {
		t.Fatalf("expected the darwin asset of v2.0.0 only:\n%s", out)
	}

	h = newHarness(t)
	Execute(context.Background(), []string{"search", "octocat/hello-world", "t:v2"}, h.deps())
	if strings.Contains(h.stdout.String(), "v2.0.0") {
		t.Fatalf("expected exact tag match only:\n%s", h.stdout.String())
	}
}

func TestSearchByAssetID(t *testing.T) {
	h := newHarness(t)
	if code := Execute(context.Background(), []string{"search", "octocat/hello-world", "22"}, h.deps()); code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, h.stderr.String())
	}
	if !strings.Contains(h.stdout.String(), "https://example.com/v2/darwin") {
		t.Fatalf("expected asset 22 listed:\n%s", h.stdout.String())
	}
	calls := h.client.Calls()
	if len(calls) != 1 || calls[0] != "asset octocat/hello-world#22" {
		t.Fatalf("expected a direct asset lookup, got %v", calls)
	}

	h = newHarness(t)
	if code := Execute(context.Background(), []string{"search", "octocat/hello-world", "99"}, h.deps()); code != 1 {
		t.Fatalf("expected exit 1 for a missing asset, got %d", code)
	}
}
