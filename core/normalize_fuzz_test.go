package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// FuzzNormalize checks that normalization never panics and is idempotent:
// a normalized string must normalize to itself.
func FuzzNormalize(f *testing.F) {
	seeds := []string{
		"História",
		"  Débito Técnico  ",
		"BUG",
		"",
		"観察",
		"á",   // combining acute accent
		"�",    // replacement char
		"è́̂", // stacked marks
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, s string) {
		once := Normalize(s)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "Normalize must be idempotent for %q", s)
	})
}

// FuzzCanonicalType checks that canonicalization never panics and that known
// canonical names are fixed points of the synonym table.
func FuzzCanonicalType(f *testing.F) {
	for _, s := range []string{"historia", "Story", "Bug", "impediment", "epic"} {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, s string) {
		canonical := CanonicalType(s)
		assert.Equal(t, canonical, CanonicalType(canonical))
	})
}
