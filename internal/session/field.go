package session

import (
	"fmt"

	"github.com/atomicstack/grpm/internal/filter"
)

// FieldID names one of the four editable fields. The set is closed; Fields
// holds exactly one buffer per value.
type FieldID int

const (
	FieldOwner FieldID = iota
	FieldRepo
	FieldReleasePattern
	FieldAssetPattern

	fieldCount = iota
)

// AllFields lists the fields in focus order.
var AllFields = [fieldCount]FieldID{FieldOwner, FieldRepo, FieldReleasePattern, FieldAssetPattern}

func (f FieldID) String() string {
	switch f {
	case FieldOwner:
		return "owner"
	case FieldRepo:
		return "repo"
	case FieldReleasePattern:
		return "release"
	case FieldAssetPattern:
		return "asset"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// IsPattern reports whether the field holds a filter pattern.
func (f FieldID) IsPattern() bool {
	return f == FieldReleasePattern || f == FieldAssetPattern
}

// Left moves focus one field back, stopping at the first field.
func (f FieldID) Left() FieldID {
	if f <= FieldOwner {
		return FieldOwner
	}
	return f - 1
}

// Right moves focus one field forward, stopping at the last field.
func (f FieldID) Right() FieldID {
	if f >= FieldAssetPattern {
		return FieldAssetPattern
	}
	return f + 1
}

// Up moves from the pattern row to the owner/repo row in the same column.
func (f FieldID) Up() FieldID {
	switch f {
	case FieldReleasePattern:
		return FieldOwner
	case FieldAssetPattern:
		return FieldRepo
	}
	return f
}

// Down moves from the owner/repo row to the pattern row in the same column.
func (f FieldID) Down() FieldID {
	switch f {
	case FieldOwner:
		return FieldReleasePattern
	case FieldRepo:
		return FieldAssetPattern
	}
	return f
}

// Fields stores the text buffer of every field.
type Fields [fieldCount]string

// NewFields returns fields holding the placeholder.
func NewFields() Fields {
	var f Fields
	for i := range f {
		f[i] = filter.Placeholder
	}
	return f
}

// Get returns the buffer of id.
func (f Fields) Get(id FieldID) string { return f[id] }

// Set replaces the buffer of id. An empty value restores the placeholder.
func (f *Fields) Set(id FieldID, value string) {
	if value == "" {
		value = filter.Placeholder
	}
	f[id] = value
}

// Value returns the buffer of id with the placeholder mapped to "".
func (f Fields) Value(id FieldID) string {
	if f[id] == filter.Placeholder {
		return ""
	}
	return f[id]
}

// Pane identifies which list row navigation applies to.
type Pane int

const (
	PaneReleases Pane = iota
	PaneAssets
)

func (p Pane) String() string {
	if p == PaneAssets {
		return "assets"
	}
	return "releases"
}

// Toggle returns the other pane.
func (p Pane) Toggle() Pane {
	if p == PaneAssets {
		return PaneReleases
	}
	return PaneAssets
}
