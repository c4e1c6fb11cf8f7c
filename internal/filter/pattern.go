package filter

import (
	"fmt"
	"strings"
)

// RecompilePolicy decides which edits trigger recompiling a pattern field.
type RecompilePolicy int

const (
	// RecompileLive recompiles on every keystroke in a pattern field.
	RecompileLive RecompilePolicy = iota
	// RecompileOnConfirm recompiles only when the field is confirmed.
	RecompileOnConfirm
)

func (p RecompilePolicy) String() string {
	if p == RecompileOnConfirm {
		return "confirm"
	}
	return "live"
}

// OnEdit reports whether an edit (not a confirmation) should recompile.
func (p RecompilePolicy) OnEdit() bool {
	return p == RecompileLive
}

// ParsePolicy converts a configuration value into a RecompilePolicy.
func ParsePolicy(value string) (RecompilePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "live":
		return RecompileLive, nil
	case "confirm", "enter":
		return RecompileOnConfirm, nil
	}
	return RecompileLive, fmt.Errorf("unknown recompile policy %q (want live or confirm)", value)
}

// Pattern couples the raw text of a filter with the matcher last compiled
// successfully from it.
type Pattern struct {
	Mode Mode

	raw     string
	applied string
	matcher Matcher
	err     error
}

// NewPattern returns an empty pattern in the given mode.
func NewPattern(mode Mode) Pattern {
	return Pattern{Mode: mode, raw: Placeholder, applied: Placeholder}
}

// Set compiles raw. On failure the previous matcher stays in force and the
// error is kept until the next successful compile.
func (p *Pattern) Set(raw string) error {
	p.raw = raw
	m, err := Compile(raw, p.Mode)
	if err != nil {
		p.err = err
		return err
	}
	p.matcher = m
	p.applied = raw
	p.err = nil
	return nil
}

// Raw returns the text most recently passed to Set.
func (p Pattern) Raw() string { return p.raw }

// Applied returns the text the active matcher was compiled from.
func (p Pattern) Applied() string { return p.applied }

// Matcher returns the active matcher; nil means match-all.
func (p Pattern) Matcher() Matcher { return p.matcher }

// Err returns the last compile error, if the raw text is not applied.
func (p Pattern) Err() error { return p.err }

// Valid reports whether the raw text is the applied text.
func (p Pattern) Valid() bool { return p.err == nil }
