// Package testutil holds fakes shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atomicstack/grpm/internal/release"
)

// Client is an in-memory backend.Client.
type Client struct {
	mu       sync.Mutex
	Releases map[string][]release.Release
	Err      error
	calls    []string
}

// NewClient serves releases for "owner/repo".
func NewClient(repo string, releases []release.Release) *Client {
	return &Client{Releases: map[string][]release.Release{repo: releases}}
}

func (c *Client) ListReleases(ctx context.Context, owner, repo string) ([]release.Release, error) {
	c.record("list " + owner + "/" + repo)
	if err := c.fail(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Releases[owner+"/"+repo], nil
}

func (c *Client) GetAsset(ctx context.Context, owner, repo string, id int64) (release.Asset, error) {
	c.record(fmt.Sprintf("asset %s/%s#%d", owner, repo, id))
	if err := c.fail(); err != nil {
		return release.Asset{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rel := range c.Releases[owner+"/"+repo] {
		for _, a := range rel.Assets {
			if a.ID == id {
				return a, nil
			}
		}
	}
	return release.Asset{}, fmt.Errorf("asset %d not found", id)
}

// Calls returns the calls made so far, oldest first.
func (c *Client) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// SetErr makes every later call fail with err.
func (c *Client) SetErr(err error) {
	c.mu.Lock()
	c.Err = err
	c.mu.Unlock()
}

func (c *Client) record(call string) {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()
}

func (c *Client) fail() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Err
}

// SampleReleases returns two releases of octocat/hello-world, newest first.
func SampleReleases() []release.Release {
	return []release.Release{
		{
			Tag:         "v2.0.0",
			Name:        "Second",
			Body:        "## Changes\n\n- faster",
			HTMLURL:     "https://github.com/octocat/hello-world/releases/tag/v2.0.0",
			PublishedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			Prerelease:  true,
			Assets: []release.Asset{
				{ID: 21, Name: "hello-linux-amd64.tar.gz", Size: 3_100_000, DownloadCount: 1234, DownloadURL: "https://example.com/v2/linux"},
				{ID: 22, Name: "hello-darwin-arm64.tar.gz", Size: 2_900_000, DownloadURL: "https://example.com/v2/darwin"},
			},
		},
		{
			Tag:         "v1.0.0",
			HTMLURL:     "https://github.com/octocat/hello-world/releases/tag/v1.0.0",
			PublishedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Assets: []release.Asset{
				{ID: 11, Name: "hello-linux-amd64.tar.gz", Size: 1_000, DownloadURL: "https://example.com/v1/linux"},
			},
		},
	}
}
