package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const pageOne = `[
  {"tag_name":"v2.0","name":"Second","body":"## notes","html_url":"https://github.com/octocat/hello-world/releases/tag/v2.0",
   "published_at":"2024-05-01T10:00:00Z","prerelease":false,"draft":false,
   "assets":[{"id":11,"name":"hello-linux-amd64.tar.gz","label":null,"browser_download_url":"https://github.com/dl/11",
              "content_type":"application/gzip","size":2048,"download_count":7}]}
]`

const pageTwo = `[{"tag_name":"v1.0","name":null,"body":null,"published_at":null,"assets":[]}]`

func TestListReleasesFollowsPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer s3cret" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if r.URL.Path != "/repos/octocat/hello-world/releases" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("per_page") != "100" {
			t.Errorf("expected per_page=100, got %q", r.URL.RawQuery)
		}
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, pageTwo)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octocat/hello-world/releases?per_page=100&page=2>; rel="next", <%s/x?page=2>; rel="last"`, srv.URL, srv.URL))
		fmt.Fprint(w, pageOne)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Token: "s3cret"})
	rels, err := c.ListReleases(context.Background(), "octocat", "hello-world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rels) != 2 || rels[0].Tag != "v2.0" || rels[1].Tag != "v1.0" {
		t.Fatalf("unexpected releases %#v", rels)
	}
	first := rels[0]
	if first.Name != "Second" || first.Body != "## notes" || first.PublishedAt.Year() != 2024 {
		t.Fatalf("unexpected release fields %#v", first)
	}
	if len(first.Assets) != 1 {
		t.Fatalf("expected one asset, got %d", len(first.Assets))
	}
	a := first.Assets[0]
	if a.ID != 11 || a.DownloadURL != "https://github.com/dl/11" || a.Size != 2048 || a.DownloadCount != 7 || a.Label != "" {
		t.Fatalf("unexpected asset %#v", a)
	}
	if rels[1].Name != "" || !rels[1].PublishedAt.IsZero() {
		t.Fatalf("expected null fields to map to zero values, got %#v", rels[1])
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "unavailable", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"id":5,"name":"tool.zip","browser_download_url":"https://dl/5","size":10}`)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, BaseDelay: time.Millisecond})
	a, err := c.GetAsset(context.Background(), "octocat", "hello-world", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID != 5 || a.Name != "tool.zip" {
		t.Fatalf("unexpected asset %#v", a)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, BaseDelay: time.Millisecond})
	_, err := c.ListReleases(context.Background(), "nobody", "nothing")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestNextLink(t *testing.T) {
	cases := map[string]string{
		"": "",
		`<https://api.github.com/x?page=3>; rel="next", <https://api.github.com/x?page=9>; rel="last"`: "https://api.github.com/x?page=3",
		`<https://api.github.com/x?page=1>; rel="prev"`:                                                 "",
		`<https://api.github.com/x?page=2>; rel=next`:                                                   "https://api.github.com/x?page=2",
	}
	for header, want := range cases {
		if got := nextLink(header); got != want {
			t.Fatalf("nextLink(%q): expected %q, got %q", header, want, got)
		}
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retryWithBackoff(ctx, 5, time.Hour, func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Fatalf("expected cancellation after one call, got %v after %d", err, calls)
	}
}
