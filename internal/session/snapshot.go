package session

import "github.com/atomicstack/grpm/internal/release"

// Snapshot is an immutable copy of the state handed to the renderer. Its
// slices are shared with State, which only ever replaces them wholesale.
type Snapshot struct {
	Owner  string
	Repo   string
	Focus  FieldID
	Fields Fields

	ReleasePatternErr error
	AssetPatternErr   error

	Total        int
	Releases     []release.Release
	Assets       []release.Asset
	ReleaseIndex int
	AssetIndex   int
	Pane         Pane

	Status   string
	Err      error
	Fetching bool
	Selected *release.Asset
}

// Renderer draws snapshots. Render must not block.
type Renderer interface {
	Render(Snapshot)
}

// CurrentRelease returns the highlighted release of the snapshot.
func (s Snapshot) CurrentRelease() (release.Release, bool) {
	if s.ReleaseIndex < 0 || s.ReleaseIndex >= len(s.Releases) {
		return release.Release{}, false
	}
	return s.Releases[s.ReleaseIndex], true
}

// CurrentAsset returns the highlighted asset of the snapshot.
func (s Snapshot) CurrentAsset() (release.Asset, bool) {
	if s.AssetIndex < 0 || s.AssetIndex >= len(s.Assets) {
		return release.Asset{}, false
	}
	return s.Assets[s.AssetIndex], true
}

// Snapshot copies the renderable part of the state.
func (s State) Snapshot() Snapshot {
	snap := Snapshot{
		Owner:             s.Owner,
		Repo:              s.Repo,
		Focus:             s.Focus,
		Fields:            s.Fields,
		ReleasePatternErr: s.ReleasePattern.Err(),
		AssetPatternErr:   s.AssetPattern.Err(),
		Total:             len(s.AllReleases),
		Releases:          s.FilteredReleases,
		Assets:            s.FilteredAssets,
		ReleaseIndex:      s.Releases.Index,
		AssetIndex:        s.Assets.Index,
		Pane:              s.Pane,
		Status:            s.Status,
		Err:               s.Err,
		Fetching:          s.Fetching > 0,
	}
	if s.Selected != nil {
		sel := *s.Selected
		snap.Selected = &sel
	}
	return snap
}
