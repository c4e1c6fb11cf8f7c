package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/atomicstack/grpm/internal/filter"
	"github.com/atomicstack/grpm/internal/github"
)

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := cfg.App
	if a.APIURL != github.DefaultAPIURL {
		t.Fatalf("expected default api url, got %q", a.APIURL)
	}
	if a.Match != filter.ModeRegex || a.Recompile != filter.RecompileLive {
		t.Fatalf("unexpected match/recompile %v/%v", a.Match, a.Recompile)
	}
	if a.TickRate != 60 || a.DescHeight != 10 {
		t.Fatalf("unexpected tick rate %d or desc height %d", a.TickRate, a.DescHeight)
	}
	if a.FetchTimeout != 30*time.Second || a.MinFetchInterval != 250*time.Millisecond {
		t.Fatalf("unexpected durations %v %v", a.FetchTimeout, a.MinFetchInterval)
	}
	if cfg.Logging.Trace || cfg.Logging.FilePath != "" {
		t.Fatalf("unexpected logging %#v", cfg.Logging)
	}
}

func TestLoadArgsPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grpm.yaml")
	body := "match: fuzzy\ntick-rate: 30\nfetch-timeout: 5s\ndesc-height: 12\ntoken: from-file\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	environ := []string{
		"GRPM_CONFIG=" + path,
		"GRPM_TICK_RATE=45",
		"GRPM_DESC_HEIGHT=8",
		"GITHUB_TOKEN=from-github-env",
	}

	cfg, err := LoadArgs([]string{"--desc-height", "6"}, environ)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := cfg.App
	if a.Match != filter.ModeFuzzy {
		t.Fatalf("expected match from file, got %v", a.Match)
	}
	if a.FetchTimeout != 5*time.Second {
		t.Fatalf("expected fetch timeout from file, got %v", a.FetchTimeout)
	}
	if a.TickRate != 45 {
		t.Fatalf("expected env to beat file, got %d", a.TickRate)
	}
	if a.DescHeight != 6 {
		t.Fatalf("expected flag to beat env, got %d", a.DescHeight)
	}
	if a.Token != "from-github-env" {
		t.Fatalf("expected GITHUB_TOKEN fallback to beat file, got %q", a.Token)
	}
	if cfg.Flags["config"] != path {
		t.Fatalf("expected config path recorded, got %q", cfg.Flags["config"])
	}
}

func TestGRPMTokenBeatsGitHubToken(t *testing.T) {
	cfg, err := LoadArgs(nil, []string{"GITHUB_TOKEN=a", "GRPM_TOKEN=b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Token != "b" {
		t.Fatalf("expected GRPM_TOKEN, got %q", cfg.App.Token)
	}
}

func TestLoadArgsPositional(t *testing.T) {
	cases := []struct {
		args                     []string
		owner, repo, rel, asset string
	}{
		{[]string{"octocat/hello-world"}, "octocat", "hello-world", "", ""},
		{[]string{"octocat/hello-world", "^v2", "linux"}, "octocat", "hello-world", "^v2", "linux"},
		{[]string{"octocat", "hello-world", "^v2"}, "octocat", "hello-world", "^v2", ""},
		{[]string{"octocat"}, "octocat", "", "", ""},
	}
	for _, tc := range cases {
		cfg, err := LoadArgs(tc.args, nil)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", tc.args, err)
		}
		a := cfg.App
		if a.Owner != tc.owner || a.Repo != tc.repo || a.ReleasePattern != tc.rel || a.AssetPattern != tc.asset {
			t.Fatalf("%v: got %q %q %q %q", tc.args, a.Owner, a.Repo, a.ReleasePattern, a.AssetPattern)
		}
	}
}

func TestLoadArgsRejectsBadValues(t *testing.T) {
	cases := [][]string{
		{"--match", "glob"},
		{"--recompile", "sometimes"},
		{"--tick-rate", "0"},
		{"--desc-height", "1"},
		{"--fetch-timeout=-1s"},
		{"--no-such-flag"},
		{"a", "b", "c", "d", "e"},
	}
	for _, args := range cases {
		_, err := LoadArgs(args, nil)
		if err == nil {
			t.Fatalf("%v: expected error", args)
		}
		if !IsConfigError(err) {
			t.Fatalf("%v: expected config error, got %T", args, err)
		}
	}
	if _, err := LoadArgs(nil, []string{"GRPM_TICK_RATE=fast"}); !IsConfigError(err) {
		t.Fatalf("expected config error for bad env value, got %v", err)
	}
	if _, err := LoadArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, nil); !IsConfigError(err) {
		t.Fatalf("expected config error for missing file, got %v", err)
	}
}
