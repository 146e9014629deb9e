package syntax

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf16"
)

// textMode is the unit the engine scans.
type textMode uint8

const (
	modeUnits      textMode = iota // UTF-16 code units
	modeAstral                     // UTF-16 code units; surrogate pairs are consumed as one character
	modeCodePoints                 // Unicode code points
)

func modeOf(f Flags) textMode {
	switch {
	case f&FlagCodePoints != 0:
		return modeCodePoints
	case f&FlagAstral != 0:
		return modeAstral
	default:
		return modeUnits
	}
}

// surrogatePair matches a valid surrogate pair.
const surrogatePair = `[\uD800-\uDBFF][\uDC00-\uDFFF]`

type runeRange struct {
	lo, hi rune
}

// runeSet is a set of code points. Normalized sets are sorted and contain no overlapping or
// adjacent ranges. All operations except normalize expect normalized sets.
type runeSet []runeRange

var (
	fullDomain   = runeSet{{0, unicode.MaxRune}}
	unitDomain   = runeSet{{0, 0xffff}}
	astralDomain = runeSet{{0, 0xd7ff}, {0xe000, unicode.MaxRune}}
	bmpDomain    = runeSet{{0, 0xd7ff}, {0xe000, 0xffff}}
)

// domain returns the characters, that one step of the engine can consume.
func (m textMode) domain() runeSet {
	switch m {
	case modeAstral:
		return astralDomain
	case modeCodePoints:
		return fullDomain
	default:
		return unitDomain
	}
}

func (s runeSet) normalize() runeSet {
	if len(s) == 0 {
		return nil
	}

	s = slices.Clone(s)
	slices.SortFunc(s, func(a, b runeRange) int {
		return int(a.lo - b.lo)
	})

	res := s[:1]
	for _, r := range s[1:] {
		last := &res[len(res)-1]
		if r.lo <= last.hi+1 {
			last.hi = max(last.hi, r.hi)
		} else {
			res = append(res, r)
		}
	}

	return res
}

func (s runeSet) union(o runeSet) runeSet {
	return append(slices.Clone(s), o...).normalize()
}

func (s runeSet) intersect(o runeSet) runeSet {
	var res runeSet

	i, j := 0, 0
	for i < len(s) && j < len(o) {
		lo := max(s[i].lo, o[j].lo)
		hi := min(s[i].hi, o[j].hi)
		if lo <= hi {
			res = append(res, runeRange{lo, hi})
		}

		if s[i].hi < o[j].hi {
			i++
		} else {
			j++
		}
	}

	return res
}

// complement returns all code points not in s.
func (s runeSet) complement() runeSet {
	var res runeSet

	next := rune(0)
	for _, r := range s {
		if r.lo > next {
			res = append(res, runeRange{next, r.lo - 1})
		}
		next = r.hi + 1
	}
	if next <= unicode.MaxRune {
		res = append(res, runeRange{next, unicode.MaxRune})
	}

	return res
}

func (s runeSet) minus(o runeSet) runeSet {
	return s.intersect(o.complement())
}

// split divides the set into the code points up to at and the rest.
func (s runeSet) split(at rune) (runeSet, runeSet) {
	return s.intersect(runeSet{{0, at}}), s.intersect(runeSet{{at + 1, unicode.MaxRune}})
}

// writeClassRune writes a character of a character class body.
func writeClassRune(b *strings.Builder, r rune, mode textMode) {
	switch {
	case 0x20 <= r && r < 0x7f && !strings.ContainsRune(`\[]^-`, r):
		b.WriteRune(r)
	case r <= 0xffff:
		fmt.Fprintf(b, `\u%04X`, r)
	case mode == modeCodePoints:
		b.WriteRune(r)
	default:
		hi, lo := utf16.EncodeRune(r)
		fmt.Fprintf(b, `\u%04X\u%04X`, hi, lo)
	}
}

// writeClassRanges writes the ranges of s as a character class body. Ranges starting with a
// low surrogate are written first, so that no escaped high surrogate is directly followed by an
// escaped low surrogate; the lexer reads such a sequence as one code point.
func writeClassRanges(b *strings.Builder, s runeSet, mode textMode) {
	for _, first := range []bool{true, false} {
		for _, r := range s {
			if isLowSurrogate(r.lo) != first {
				continue
			}

			writeClassRune(b, r.lo, mode)
			if r.hi > r.lo {
				if r.hi > r.lo+1 || isHighSurrogate(r.lo) {
					b.WriteByte('-')
				}
				writeClassRune(b, r.hi, mode)
			}
		}
	}
}

// encodeSet returns a native construct, that consumes exactly one character of s.
// The set must be a subset of the domain of the mode.
func encodeSet(s runeSet, mode textMode) string {
	if len(s) == 0 {
		return "(?!)"
	}

	if mode != modeAstral {
		if slices.Equal(s, mode.domain()) {
			return `[\s\S]`
		}

		var b strings.Builder
		b.WriteByte('[')
		writeClassRanges(&b, s, mode)
		b.WriteByte(']')

		return b.String()
	}

	bmp, astral := s.split(0xffff)

	var alts []string
	if len(bmp) > 0 {
		var b strings.Builder
		b.WriteByte('[')
		writeClassRanges(&b, bmp, mode)
		b.WriteByte(']')

		alts = append(alts, b.String())
	}
	alts = append(alts, surrogateAlternatives(astral)...)

	if len(alts) == 1 {
		return alts[0]
	}

	return "(?:" + strings.Join(alts, "|") + ")"
}

// surrogateBox is a set of surrogate pairs: every high surrogate in [hiLo, hiHi]
// combined with every low surrogate in lows.
type surrogateBox struct {
	hiLo, hiHi rune
	lows       runeSet
}

// surrogateAlternatives encodes astral code points as alternatives of surrogate pairs.
// Pairs sharing a single high surrogate are combined into one alternative.
func surrogateAlternatives(s runeSet) []string {
	var boxes []surrogateBox

	add := func(hiLo, hiHi, lo, hi rune) {
		if n := len(boxes); n > 0 && hiLo == hiHi {
			last := &boxes[n-1]
			if last.hiLo == hiLo && last.hiHi == hiHi {
				last.lows = append(last.lows, runeRange{lo, hi})
				return
			}
		}

		boxes = append(boxes, surrogateBox{hiLo, hiHi, runeSet{{lo, hi}}})
	}

	for _, r := range s {
		h1, l1 := utf16.EncodeRune(r.lo)
		h2, l2 := utf16.EncodeRune(r.hi)

		if h1 == h2 {
			add(h1, h1, l1, l2)
			continue
		}

		if l1 != 0xdc00 {
			add(h1, h1, l1, 0xdfff)
			h1++
		}

		last := h2
		if l2 != 0xdfff {
			last--
		}
		if h1 <= last {
			add(h1, last, 0xdc00, 0xdfff)
		}

		if l2 != 0xdfff {
			add(h2, h2, 0xdc00, l2)
		}
	}

	alts := make([]string, 0, len(boxes))
	for _, box := range boxes {
		var b strings.Builder

		if box.hiLo == box.hiHi {
			fmt.Fprintf(&b, `\u%04X`, box.hiLo)
		} else {
			fmt.Fprintf(&b, `[\u%04X-\u%04X]`, box.hiLo, box.hiHi)
		}

		if len(box.lows) == 1 && box.lows[0].lo == box.lows[0].hi {
			fmt.Fprintf(&b, `\u%04X`, box.lows[0].lo)
		} else {
			b.WriteByte('[')
			writeClassRanges(&b, box.lows, modeUnits)
			b.WriteByte(']')
		}

		alts = append(alts, b.String())
	}

	return alts
}

// surrogateTag is the distance between a surrogate code unit and its tag. Tags lie in plane 16,
// which never occurs in text scanned as UTF-16 code units.
const surrogateTag = 0x100000

var surrogates = runeSet{{0xd800, 0xdfff}}

// TagSurrogates prepares the native source of a UTF-16 mode pattern for the engine.
// regexp2 shares compiled sets and strings by their UTF-8 encoding, in which every surrogate
// becomes U+FFFD, so constructs differing only in surrogates would be merged. Every escaped
// surrogate is therefore written as a class, and every class containing surrogates also
// contains their tags. Code point mode sources are returned unchanged.
func TagSurrogates(native string, flags Flags) (string, error) {
	if modeOf(flags) == modeCodePoints || !strings.Contains(strings.ToLower(native), `\ud`) {
		return native, nil
	}

	toks, err := lex(native, 0, false, false)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := range toks {
		t := &toks[i]

		switch {
		case (t.kind == tokEscape || t.kind == tokCodePoint) && (isSurrogate(t.r) || t.r > 0xffff):
			for _, u := range codeUnits(t.r) {
				b.WriteByte('[')
				b.WriteString(unitEscape(u))
				writeTags(&b, unitSet(u))
				b.WriteByte(']')
			}
		case t.kind == tokClass && needsTags(t):
			writeTaggedClass(&b, t)
		default:
			b.WriteString(t.text)
		}
	}

	return b.String(), nil
}

func writeTaggedClass(b *strings.Builder, t *token) {
	b.WriteByte('[')
	if t.negate {
		b.WriteByte('^')
	}

	var sub *token
	for _, item := range t.items {
		if item.kind == itemSubtract {
			sub = item.sub
			continue
		}
		b.WriteString(item.text)
	}

	writeTags(b, classTags(t))

	if sub != nil {
		b.WriteByte('-')
		if needsTags(sub) {
			writeTaggedClass(b, sub)
		} else {
			b.WriteString(sub.text)
		}
	}

	b.WriteByte(']')
}

// needsTags reports whether a class or its subtracted class contains surrogates.
func needsTags(t *token) bool {
	if len(classTags(t)) > 0 {
		return true
	}

	for _, item := range t.items {
		if item.kind == itemSubtract && needsTags(item.sub) {
			return true
		}
	}

	return false
}

// classTags returns the surrogates of the characters and ranges of a class.
func classTags(t *token) runeSet {
	var set runeSet

	for _, item := range t.items {
		if item.kind != itemChar && item.kind != itemRange {
			continue
		}

		set = append(set, runeSet{{item.lo, min(item.hi, 0xffff)}}.intersect(surrogates)...)
		for _, r := range [2]rune{item.lo, item.hi} {
			if r > 0xffff {
				for _, u := range codeUnits(r) {
					set = append(set, unitSet(u)...)
				}
			}
		}
	}

	return set.normalize()
}

func writeTags(b *strings.Builder, s runeSet) {
	for _, r := range s {
		b.WriteRune(r.lo + surrogateTag)
		if r.hi > r.lo {
			b.WriteByte('-')
			b.WriteRune(r.hi + surrogateTag)
		}
	}
}

// codeUnits returns the UTF-16 code units of r.
func codeUnits(r rune) []rune {
	if r > 0xffff {
		hi, lo := utf16.EncodeRune(r)
		return []rune{hi, lo}
	}

	return []rune{r}
}

func unitSet(u rune) runeSet {
	return runeSet{{u, u}}
}

func isSurrogate(r rune) bool {
	return 0xd800 <= r && r <= 0xdfff
}
