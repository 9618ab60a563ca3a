package interop

import (
	"strings"
	"unicode"
)

// EnumTable maps enumerated values to their wire strings and back. Values
// are named in title case internally and travel lowercase-hyphenated.
// Unknown wire strings parse to the zero value, which callers reserve as
// the "no value" sentinel.
type EnumTable[T comparable] struct {
	toWire   map[T]string
	fromWire map[string]T
}

// NewEnumTable builds a table from the internal names of each value.
func NewEnumTable[T comparable](names map[T]string) *EnumTable[T] {
	t := &EnumTable[T]{
		toWire:   make(map[T]string, len(names)),
		fromWire: make(map[string]T, len(names)),
	}
	for v, name := range names {
		t.toWire[v] = Hyphenate(name)
		t.fromWire[normalizeWire(name)] = v
	}
	return t
}

// Wire returns the wire string for v.
func (t *EnumTable[T]) Wire(v T) (string, bool) {
	s, ok := t.toWire[v]
	return s, ok
}

// Parse returns the value for a wire string. Matching ignores case,
// hyphens and underscores.
func (t *EnumTable[T]) Parse(s string) T {
	return t.fromWire[normalizeWire(s)]
}

// Hyphenate converts a title-case name ("WatchSuccess") or an underscore
// separated one ("Watch_Success") to its wire form ("watch-success").
func Hyphenate(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	prevLower := false
	for _, r := range name {
		switch {
		case r == '_' || r == '-':
			b.WriteByte('-')
			prevLower = false
			continue
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
			continue
		}
		b.WriteRune(r)
		prevLower = true
	}
	return b.String()
}

func normalizeWire(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "").Replace(s)
}
