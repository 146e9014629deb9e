package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contains(s runeSet, r rune) bool {
	for _, rr := range s {
		if rr.lo <= r && r <= rr.hi {
			return true
		}
	}
	return false
}

func TestNormalizePropertyName(t *testing.T) {
	assert.Equal(t, "uppercaseletter", normalizePropertyName("Uppercase_Letter"))
	assert.Equal(t, "uppercaseletter", normalizePropertyName("uppercase letter"))
	assert.Equal(t, "script=latin", normalizePropertyName("Script=Latin"))
	assert.Equal(t, "lu", normalizePropertyName("L-u"))
}

func TestLookupProperty(t *testing.T) {
	tests := []struct {
		name string
		in   []rune
		out  []rune
	}{
		{"L", []rune{'a', 'Ж', 'あ'}, []rune{'1', ' '}},
		{"Letter", []rune{'a', 'Ж'}, []rune{'1'}},
		{"Lu", []rune{'A'}, []rune{'a'}},
		{"LC", []rune{'A', 'a', 'ǅ'}, []rune{'あ'}},
		{"Nd", []rune{'0', '٣'}, []rune{'a'}},
		{"Cn", []rune{0x378}, []rune{'a'}},
		{"Other", []rune{0x378, 0x0}, []rune{'a'}},
		{"Hiragana", []rune{'ひ'}, []rune{'カ'}},
		{"sc=Greek", []rune{'α'}, []rune{'a'}},
		{"Script_Extensions=Latin", []rune{'a'}, []rune{'α'}},
		{"General_Category=Nd", []rune{'7'}, []rune{'a'}},
		{"ASCII", []rune{0, 0x7f}, []rune{0x80}},
		{"Any", []rune{0, 0x10ffff}, nil},
		{"Assigned", []rune{'a'}, []rune{0x378}},
		{"Alphabetic", []rune{'a', 0x345}, []rune{'1'}},
		{"Uppercase", []rune{'A', 0x2160}, []rune{'a'}},
		{"Lowercase", []rune{'a', 0xaa}, []rune{'A'}},
		{"White_Space", []rune{' ', 0x3000}, []rune{'a'}},
		{"Default_Ignorable_Code_Point", []rune{0xad, 0x200b}, []rune{' ', 0x600}},
		{"Gothic", []rune{0x10330}, []rune{'a'}},
	}

	for _, test := range tests {
		set, ok := lookupProperty(test.name)
		require.True(t, ok, test.name)

		for _, r := range test.in {
			assert.True(t, contains(set, r), "%s should contain %U", test.name, r)
		}
		for _, r := range test.out {
			assert.False(t, contains(set, r), "%s should not contain %U", test.name, r)
		}
	}
}

func TestLookupPropertyUnknown(t *testing.T) {
	for _, name := range []string{"NoSuchProperty", "sc=Lu", "gc=Latin", ""} {
		_, ok := lookupProperty(name)
		assert.False(t, ok, name)
	}
}

func TestLookupPropertyCached(t *testing.T) {
	a, ok := lookupProperty("Greek")
	require.True(t, ok)

	b, ok := lookupProperty("greek")
	require.True(t, ok)

	assert.Equal(t, a, b)
}

func TestShorthandSet(t *testing.T) {
	d := shorthandSet("d")
	assert.True(t, contains(d, '5'))
	assert.True(t, contains(d, '٣'))
	assert.False(t, contains(d, 0x1d7ce))

	w := shorthandSet("w")
	assert.True(t, contains(w, '_'))
	assert.True(t, contains(w, 'ä'))
	assert.False(t, contains(w, '-'))

	s := shorthandSet("s")
	assert.True(t, contains(s, '\t'))
	assert.True(t, contains(s, 0x85))
	assert.True(t, contains(s, 0x2028))
	assert.False(t, contains(s, 'a'))

	for _, set := range []runeSet{d, w, s} {
		assert.Empty(t, set.intersect(runeSet{{0xd800, 0xdfff}}))
		assert.Empty(t, set.intersect(runeSet{{0x10000, 0x10ffff}}))
	}
}
