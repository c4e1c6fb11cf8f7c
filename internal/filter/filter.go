package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Placeholder is shown in a field that has not been edited yet. It is never
// compiled; a field holding it applies no filter.
const Placeholder = "<search>"

// Mode selects the pattern language.
type Mode int

const (
	ModeRegex Mode = iota
	ModeFuzzy
)

func (m Mode) String() string {
	switch m {
	case ModeFuzzy:
		return "fuzzy"
	default:
		return "regex"
	}
}

// ParseMode converts a configuration value into a Mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "regex", "re":
		return ModeRegex, nil
	case "fuzzy":
		return ModeFuzzy, nil
	}
	return ModeRegex, fmt.Errorf("unknown match mode %q (want regex or fuzzy)", value)
}

// Matcher reports whether a candidate string satisfies a compiled pattern.
type Matcher interface {
	Match(s string) bool
}

// CompileError reports a pattern that could not be compiled.
type CompileError struct {
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

type regexMatcher struct {
	re *regexp.Regexp
}

func (m regexMatcher) Match(s string) bool { return m.re.MatchString(s) }

type fuzzyMatcher struct {
	query string
}

func (m fuzzyMatcher) Match(s string) bool {
	return fuzzy.MatchNormalizedFold(m.query, s)
}

// IsEmpty reports whether text selects everything.
func IsEmpty(text string) bool {
	return text == "" || text == Placeholder
}

// Compile turns text into a Matcher. Empty or placeholder text compiles to a
// nil Matcher, which Apply treats as match-all.
func Compile(text string, mode Mode) (Matcher, error) {
	if IsEmpty(text) {
		return nil, nil
	}
	switch mode {
	case ModeFuzzy:
		return fuzzyMatcher{query: text}, nil
	default:
		re, err := regexp.Compile(text)
		if err != nil {
			return nil, &CompileError{Pattern: text, Err: err}
		}
		return regexMatcher{re: re}, nil
	}
}

// Apply returns the candidates whose extracted text matches m, preserving
// their order. A nil matcher returns candidates unchanged.
func Apply[T any](m Matcher, candidates []T, extract func(T) string) []T {
	if m == nil {
		return candidates
	}
	out := make([]T, 0, len(candidates))
	for _, c := range candidates {
		if m.Match(extract(c)) {
			out = append(out, c)
		}
	}
	return out
}

// ApplyText compiles text and applies it in one step.
func ApplyText[T any](text string, mode Mode, candidates []T, extract func(T) string) ([]T, error) {
	m, err := Compile(text, mode)
	if err != nil {
		return nil, err
	}
	return Apply(m, candidates, extract), nil
}
