// Package github implements the small part of the GitHub REST API needed to
// list releases and resolve release assets.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atomicstack/grpm/internal/logging/events"
	"github.com/atomicstack/grpm/internal/release"
	jsoniter "github.com/json-iterator/go"
)

// DefaultAPIURL is the public GitHub API endpoint.
const DefaultAPIURL = "https://api.github.com"

const (
	perPage          = 100
	defaultAttempts  = 3
	defaultBaseDelay = 250 * time.Millisecond
	defaultMaxPages  = 50
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options configure a Client. Zero values select sensible defaults.
type Options struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	// Attempts bounds the number of tries per page for retryable failures.
	Attempts  int
	BaseDelay time.Duration
	MaxPages  int
	UserAgent string
}

// Client talks to the GitHub REST API.
type Client struct {
	base      string
	token     string
	http      *http.Client
	attempts  int
	baseDelay time.Duration
	maxPages  int
	userAgent string
}

// New returns a client for opts.
func New(opts Options) *Client {
	c := &Client{
		base:      strings.TrimRight(opts.BaseURL, "/"),
		token:     opts.Token,
		http:      opts.HTTPClient,
		attempts:  opts.Attempts,
		baseDelay: opts.BaseDelay,
		maxPages:  opts.MaxPages,
		userAgent: opts.UserAgent,
	}
	if c.base == "" {
		c.base = DefaultAPIURL
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 60 * time.Second}
	}
	if c.attempts <= 0 {
		c.attempts = defaultAttempts
	}
	if c.baseDelay <= 0 {
		c.baseDelay = defaultBaseDelay
	}
	if c.maxPages <= 0 {
		c.maxPages = defaultMaxPages
	}
	if c.userAgent == "" {
		c.userAgent = "grpm"
	}
	return c
}

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
	}
	return fmt.Sprintf("GET %s: %s: %s", e.URL, e.Status, e.Body)
}

// Retryable reports whether the request may succeed if repeated.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

type releaseJSON struct {
	TagName     string      `json:"tag_name"`
	Name        *string     `json:"name"`
	Body        *string     `json:"body"`
	HTMLURL     string      `json:"html_url"`
	PublishedAt *time.Time  `json:"published_at"`
	Prerelease  bool        `json:"prerelease"`
	Draft       bool        `json:"draft"`
	Assets      []assetJSON `json:"assets"`
}

type assetJSON struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Label              *string `json:"label"`
	BrowserDownloadURL string  `json:"browser_download_url"`
	ContentType        string  `json:"content_type"`
	Size               int64   `json:"size"`
	DownloadCount      int64   `json:"download_count"`
}

func (r releaseJSON) release() release.Release {
	out := release.Release{
		Tag:        r.TagName,
		Name:       deref(r.Name),
		Body:       deref(r.Body),
		HTMLURL:    r.HTMLURL,
		Prerelease: r.Prerelease,
		Draft:      r.Draft,
	}
	if r.PublishedAt != nil {
		out.PublishedAt = *r.PublishedAt
	}
	if len(r.Assets) > 0 {
		out.Assets = make([]release.Asset, len(r.Assets))
		for i, a := range r.Assets {
			out.Assets[i] = a.asset()
		}
	}
	return out
}

func (a assetJSON) asset() release.Asset {
	return release.Asset{
		ID:            a.ID,
		Name:          a.Name,
		Label:         deref(a.Label),
		DownloadURL:   a.BrowserDownloadURL,
		ContentType:   a.ContentType,
		Size:          a.Size,
		DownloadCount: a.DownloadCount,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ListReleases returns every release of owner/repo, newest first, following
// pagination links.
func (c *Client) ListReleases(ctx context.Context, owner, repo string) ([]release.Release, error) {
	next := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d", c.base, url.PathEscape(owner), url.PathEscape(repo), perPage)
	var out []release.Release
	for page := 0; next != "" && page < c.maxPages; page++ {
		var batch []releaseJSON
		link, err := c.get(ctx, next, &batch)
		if err != nil {
			return nil, fmt.Errorf("list releases %s/%s: %w", owner, repo, err)
		}
		for _, r := range batch {
			out = append(out, r.release())
		}
		next = link
	}
	return out, nil
}

// GetAsset fetches the metadata of a single release asset.
func (c *Client) GetAsset(ctx context.Context, owner, repo string, id int64) (release.Asset, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/releases/assets/%d", c.base, url.PathEscape(owner), url.PathEscape(repo), id)
	var a assetJSON
	if _, err := c.get(ctx, u, &a); err != nil {
		return release.Asset{}, fmt.Errorf("get asset %d of %s/%s: %w", id, owner, repo, err)
	}
	return a.asset(), nil
}

// get decodes the JSON body at u into v and returns the rel="next" link.
func (c *Client) get(ctx context.Context, u string, v interface{}) (string, error) {
	var next string
	attempt := 0
	err := retryWithBackoff(ctx, c.attempts, c.baseDelay, func() error {
		attempt++
		link, err := c.fetch(ctx, u, v)
		if err != nil {
			if isRetryable(err) {
				events.Fetch.Retry(u, attempt, err)
				return err
			}
			return permanent{err}
		}
		next = link
		return nil
	})
	var p permanent
	if errors.As(err, &p) {
		return "", p.err
	}
	return next, err
}

func (c *Client) fetch(ctx context.Context, u string, v interface{}) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", &StatusError{URL: u, StatusCode: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return "", fmt.Errorf("decode %s: %w", u, err)
	}
	return nextLink(resp.Header.Get("Link")), nil
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

// nextLink extracts the rel="next" target of an RFC 8288 Link header.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		target := strings.TrimSpace(segs[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range segs[1:] {
			param = strings.TrimSpace(param)
			if param == `rel="next"` || param == "rel=next" {
				return target[1 : len(target)-1]
			}
		}
	}
	return ""
}
