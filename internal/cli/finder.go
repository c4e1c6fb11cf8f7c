package cli

import (
	"strconv"
	"strings"

	"github.com/atomicstack/grpm/internal/filter"
	"github.com/atomicstack/grpm/internal/release"
)

const (
	latestRelease = "latest"
	tagPrefix     = "t:"
)

type finderKind int

const (
	findByPattern finderKind = iota
	findLatest
	findByTag
)

// releaseFinder selects releases from a listing. RELEASE is "latest", an
// exact tag written as "t:TAG", or a pattern.
type releaseFinder struct {
	kind    finderKind
	tag     string
	matcher filter.Matcher
}

func parseReleaseFinder(text string, mode filter.Mode) (releaseFinder, error) {
	switch {
	case text == latestRelease:
		return releaseFinder{kind: findLatest}, nil
	case strings.HasPrefix(text, tagPrefix):
		return releaseFinder{kind: findByTag, tag: strings.TrimPrefix(text, tagPrefix)}, nil
	}
	m, err := filter.Compile(text, mode)
	if err != nil {
		return releaseFinder{}, err
	}
	return releaseFinder{kind: findByPattern, matcher: m}, nil
}

// find returns the selected releases in listing order. Listings are newest
// first, so latest is the first published release that is neither a draft
// nor a prerelease.
func (f releaseFinder) find(releases []release.Release) []release.Release {
	switch f.kind {
	case findLatest:
		for _, r := range releases {
			if !r.Draft && !r.Prerelease {
				return []release.Release{r}
			}
		}
		return nil
	case findByTag:
		for _, r := range releases {
			if r.Tag == f.tag {
				return []release.Release{r}
			}
		}
		return nil
	default:
		return filter.Apply(f.matcher, releases, release.TagOf)
	}
}

// assetID reports whether RELEASE is a numeric asset ID standing in for
// both RELEASE and ASSET.
func assetID(rel, asset string) (int64, bool) {
	if !filter.IsEmpty(asset) || rel == "" {
		return 0, false
	}
	for _, c := range rel {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(rel, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
