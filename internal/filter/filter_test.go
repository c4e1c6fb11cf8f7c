package filter

import (
	"errors"
	"reflect"
	"testing"
)

func identity(s string) string { return s }

func TestApplyEmptyPatternReturnsCandidates(t *testing.T) {
	items := []string{"v2.0", "v1.0", "nightly"}
	for _, text := range []string{"", Placeholder} {
		got, err := ApplyText(text, ModeRegex, items, identity)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", text, err)
		}
		if !reflect.DeepEqual(got, items) {
			t.Fatalf("expected identity for %q, got %#v", text, got)
		}
	}
}

func TestApplyPreservesOrderAndMatches(t *testing.T) {
	items := []string{"v2.1", "nightly", "v2.0", "v1.0"}
	m, err := Compile(`^v2`, ModeRegex)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	got := Apply(m, items, identity)
	want := []string{"v2.1", "v2.0"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
	for _, s := range got {
		if !m.Match(s) {
			t.Fatalf("result %q does not satisfy pattern", s)
		}
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	items := []string{"linux-amd64.tar.gz", "darwin-arm64.zip", "linux-arm64.tar.gz"}
	m, err := Compile(`linux`, ModeRegex)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	first := Apply(m, items, identity)
	second := Apply(m, items, identity)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %#v and %#v", first, second)
	}
	if again := Apply(m, first, identity); !reflect.DeepEqual(again, first) {
		t.Fatalf("expected reapplying to be stable, got %#v", again)
	}
}

func TestCompileInvalidRegex(t *testing.T) {
	_, err := Compile("(", ModeRegex)
	if err == nil {
		t.Fatal("expected compile error for unbalanced paren")
	}
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompileError, got %T", err)
	}
	if ce.Pattern != "(" {
		t.Fatalf("expected pattern recorded, got %q", ce.Pattern)
	}
}

func TestFuzzyModeMatchesSubsequence(t *testing.T) {
	items := []string{"grpm-Linux-x86_64.tar.gz", "grpm-darwin.zip", "checksums.txt"}
	got, err := ApplyText("lnx64", ModeFuzzy, items, identity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != items[0] {
		t.Fatalf("expected fuzzy match on linux asset, got %#v", got)
	}
	if _, err := Compile("(", ModeFuzzy); err != nil {
		t.Fatalf("fuzzy mode should accept any text, got %v", err)
	}
}

func TestPatternKeepsPreviousMatcherOnError(t *testing.T) {
	p := NewPattern(ModeRegex)
	if p.Matcher() != nil {
		t.Fatal("expected match-all for new pattern")
	}
	if err := p.Set("^v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := p.Matcher()
	if err := p.Set("^v1("); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
	if p.Matcher() != before {
		t.Fatal("expected previous matcher to stay active")
	}
	if p.Valid() {
		t.Fatal("expected pattern flagged invalid")
	}
	if p.Raw() != "^v1(" || p.Applied() != "^v1" {
		t.Fatalf("unexpected raw/applied %q/%q", p.Raw(), p.Applied())
	}
	if err := p.Set(Placeholder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Matcher() != nil || !p.Valid() {
		t.Fatal("expected placeholder to reset to match-all")
	}
}

func TestParseModeAndPolicy(t *testing.T) {
	if m, err := ParseMode("FUZZY"); err != nil || m != ModeFuzzy {
		t.Fatalf("expected fuzzy mode, got %v %v", m, err)
	}
	if _, err := ParseMode("glob"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if p, err := ParsePolicy("confirm"); err != nil || p != RecompileOnConfirm {
		t.Fatalf("expected confirm policy, got %v %v", p, err)
	}
	if RecompileOnConfirm.OnEdit() {
		t.Fatal("confirm policy must not recompile on edit")
	}
	if !RecompileLive.OnEdit() {
		t.Fatal("live policy must recompile on edit")
	}
}
