package release

import "time"

// Release is a tagged, published version of a repository together with its
// downloadable assets. Tag is unique per repository.
type Release struct {
	Tag         string
	Name        string
	Body        string
	HTMLURL     string
	PublishedAt time.Time
	Prerelease  bool
	Draft       bool
	Assets      []Asset
}

// Asset is a single downloadable artifact attached to a release.
type Asset struct {
	ID            int64
	Name          string
	Label         string
	DownloadURL   string
	ContentType   string
	Size          int64
	DownloadCount int64
}

// DisplayName returns the release name, falling back to the tag.
func (r Release) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Tag
}

// TagOf extracts the filterable text of a release.
func TagOf(r Release) string { return r.Tag }

// NameOf extracts the filterable text of an asset.
func NameOf(a Asset) string { return a.Name }

// Tags returns the tags of the given releases in order.
func Tags(releases []Release) []string {
	if len(releases) == 0 {
		return nil
	}
	out := make([]string, len(releases))
	for i, r := range releases {
		out[i] = r.Tag
	}
	return out
}
