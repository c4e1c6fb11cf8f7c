package input

import (
	"bytes"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

const esc = 0x1b

var sequences = map[string]tea.KeyType{
	"\x1b[A":  tea.KeyUp,
	"\x1b[B":  tea.KeyDown,
	"\x1b[C":  tea.KeyRight,
	"\x1b[D":  tea.KeyLeft,
	"\x1bOA":  tea.KeyUp,
	"\x1bOB":  tea.KeyDown,
	"\x1bOC":  tea.KeyRight,
	"\x1bOD":  tea.KeyLeft,
	"\x1b[H":  tea.KeyHome,
	"\x1bOH":  tea.KeyHome,
	"\x1b[1~": tea.KeyHome,
	"\x1b[7~": tea.KeyHome,
	"\x1b[F":  tea.KeyEnd,
	"\x1bOF":  tea.KeyEnd,
	"\x1b[4~": tea.KeyEnd,
	"\x1b[8~": tea.KeyEnd,
	"\x1b[2~": tea.KeyInsert,
	"\x1b[3~": tea.KeyDelete,
	"\x1b[5~": tea.KeyPgUp,
	"\x1b[6~": tea.KeyPgDown,
	"\x1b[Z":  tea.KeyShiftTab,
}

// decode parses the first key in b and returns it together with the number of
// bytes consumed. ok is false for sequences that map to no key; their bytes
// are still consumed. b must not be empty.
func decode(b []byte) (key tea.Key, n int, ok bool) {
	switch c := b[0]; {
	case c == esc:
		return decodeEscape(b)
	case c == 0x7f || c == 0x08:
		return tea.Key{Type: tea.KeyBackspace}, 1, true
	case c < 0x20:
		return tea.Key{Type: tea.KeyType(c)}, 1, true
	case c == ' ':
		return tea.Key{Type: tea.KeySpace, Runes: []rune{' '}}, 1, true
	}
	r, w := utf8.DecodeRune(b)
	if r == utf8.RuneError && w <= 1 {
		return tea.Key{Type: tea.KeyRunes, Runes: []rune{utf8.RuneError}}, 1, true
	}
	return tea.Key{Type: tea.KeyRunes, Runes: []rune{r}}, w, true
}

func decodeEscape(b []byte) (tea.Key, int, bool) {
	if len(b) == 1 {
		return tea.Key{Type: tea.KeyEsc}, 1, true
	}
	best := 0
	var kind tea.KeyType
	for seq, k := range sequences {
		if len(seq) > best && bytes.HasPrefix(b, []byte(seq)) {
			best, kind = len(seq), k
		}
	}
	if best > 0 {
		return tea.Key{Type: kind}, best, true
	}
	if b[1] == '[' || b[1] == 'O' {
		// unknown CSI/SS3 sequence: swallow it up to its final byte
		for i := 2; i < len(b); i++ {
			if b[i] >= 0x40 && b[i] <= 0x7e {
				return tea.Key{}, i + 1, false
			}
		}
		return tea.Key{}, len(b), false
	}
	if b[1] == esc {
		return tea.Key{Type: tea.KeyEsc}, 1, true
	}
	key, w, ok := decode(b[1:])
	key.Alt = true
	return key, w + 1, ok
}

// decodeAll splits a chunk of terminal input into keys.
func decodeAll(b []byte) []tea.Key {
	var keys []tea.Key
	for len(b) > 0 {
		key, w, ok := decode(b)
		if ok {
			keys = append(keys, key)
		}
		b = b[w:]
	}
	return keys
}
