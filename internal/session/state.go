package session

import (
	"github.com/atomicstack/grpm/internal/filter"
	"github.com/atomicstack/grpm/internal/release"
)

// State is the mutable model of the screen. It is owned by the Controller
// and never shared; the renderer only ever sees Snapshots.
type State struct {
	// Owner and Repo are the values of the last confirmed fetch.
	Owner string
	Repo  string

	Focus  FieldID
	Fields Fields

	ReleasePattern filter.Pattern
	AssetPattern   filter.Pattern

	AllReleases      []release.Release
	FilteredReleases []release.Release
	FilteredAssets   []release.Asset

	Releases Cursor
	Assets   Cursor
	Pane     Pane

	Status   string
	Err      error
	Fetching int
	Selected *release.Asset
}

// NewState returns an empty state with every field holding the placeholder.
func NewState(mode filter.Mode) State {
	return State{
		Fields:         NewFields(),
		ReleasePattern: filter.NewPattern(mode),
		AssetPattern:   filter.NewPattern(mode),
	}
}

// SetReleases replaces the release list wholesale, resets both cursors and
// recomputes the filtered lists.
func (s *State) SetReleases(releases []release.Release) {
	s.AllReleases = releases
	s.Releases = Cursor{}
	s.Assets = Cursor{}
	s.refilterReleases()
}

// CurrentRelease returns the highlighted release.
func (s State) CurrentRelease() (release.Release, bool) {
	if len(s.FilteredReleases) == 0 {
		return release.Release{}, false
	}
	return s.FilteredReleases[s.Releases.Index], true
}

// CurrentAsset returns the highlighted asset.
func (s State) CurrentAsset() (release.Asset, bool) {
	if len(s.FilteredAssets) == 0 {
		return release.Asset{}, false
	}
	return s.FilteredAssets[s.Assets.Index], true
}

func (s *State) pattern(id FieldID) *filter.Pattern {
	switch id {
	case FieldReleasePattern:
		return &s.ReleasePattern
	case FieldAssetPattern:
		return &s.AssetPattern
	}
	return nil
}

func (s *State) refilterReleases() {
	s.FilteredReleases = filter.Apply(s.ReleasePattern.Matcher(), s.AllReleases, release.TagOf)
	s.Releases.Clamp(len(s.FilteredReleases))
	s.refilterAssets()
}

func (s *State) refilterAssets() {
	rel, ok := s.CurrentRelease()
	if !ok {
		s.FilteredAssets = nil
	} else {
		s.FilteredAssets = filter.Apply(s.AssetPattern.Matcher(), rel.Assets, release.NameOf)
	}
	s.Assets.Clamp(len(s.FilteredAssets))
}
