package xre

import (
	"unicode/utf8"
)

// Unbalanced is the policy of the recursive matcher for delimiters without counterpart.
type Unbalanced uint8

const (
	UnbalancedError    Unbalanced = iota // return an *UnbalancedDelimiterError
	UnbalancedSkip                       // skip the unbalanced left delimiter and continue after it
	UnbalancedSkipLazy                   // skip only the first character of the unbalanced left delimiter
)

// RecursiveOptions are the options of the recursive matcher.
type RecursiveOptions struct {
	EscapeChar rune // escapes delimiters in the text; 0 for none
	Unbalanced Unbalanced
}

// SegmentKind is the kind of a segment of the recursive matcher.
type SegmentKind uint8

const (
	SegmentBetween SegmentKind = iota // text outside of delimited matches
	SegmentLeft                       // the outermost left delimiter
	SegmentMatch                      // the text between the outermost delimiters
	SegmentRight                      // the outermost right delimiter
)

// ValueNames names the segment kinds. A segment kind with an empty name is not emitted.
type ValueNames struct {
	Between, Left, Match, Right string
}

func (v *ValueNames) name(k SegmentKind) string {
	switch k {
	case SegmentBetween:
		return v.Between
	case SegmentLeft:
		return v.Left
	case SegmentMatch:
		return v.Match
	default:
		return v.Right
	}
}

// Segment is a part of the text found by the recursive matcher.
type Segment struct {
	Kind  SegmentKind
	Name  string
	Value string
	Start int // byte offset
	End   int // byte offset, exclusive
}

// MatchRecursive returns the text between the outermost balanced pairs of the left and right
// delimiters, which are dialect patterns compiled with the flags. With the flag g all matches
// are returned, otherwise only the first. With the flag y the matches must follow each other
// without gaps, starting at the beginning of the text.
func MatchRecursive(text, left, right string, flags Flags, opts *RecursiveOptions) ([]string, error) {
	return Defaults().MatchRecursive(text, left, right, flags, opts)
}

// MatchRecursive is like the package function MatchRecursive, but compiles the delimiters
// with the configuration.
func (c Config) MatchRecursive(text, left, right string, flags Flags, opts *RecursiveOptions) ([]string, error) {
	segs, err := c.matchRecursive(text, left, right, flags, opts, &ValueNames{Match: "match"})
	if err != nil {
		return nil, err
	}

	res := make([]string, len(segs))
	for i, s := range segs {
		res[i] = s.Value
	}

	return res, nil
}

// MatchRecursiveSegments is like MatchRecursive, but returns named segments. Together the
// segments of all kinds cover the scanned text without gaps. An empty between segment is
// emitted at the start of the text, if the text starts with a delimiter.
func MatchRecursiveSegments(text, left, right string, flags Flags, opts *RecursiveOptions, names ValueNames) ([]Segment, error) {
	return Defaults().MatchRecursiveSegments(text, left, right, flags, opts, names)
}

// MatchRecursiveSegments is like the package function MatchRecursiveSegments, but compiles
// the delimiters with the configuration.
func (c Config) MatchRecursiveSegments(text, left, right string, flags Flags, opts *RecursiveOptions, names ValueNames) ([]Segment, error) {
	return c.matchRecursive(text, left, right, flags, opts, &names)
}

// recursiveMatcher scans the text with an explicit depth counter.
type recursiveMatcher struct {
	in     *input
	left   *scanner
	right  *scanner
	esc    *scanner
	opts   RecursiveOptions
	names  *ValueNames
	output []Segment
}

func (c Config) matchRecursive(text, leftSrc, rightSrc string, flags Flags, opts *RecursiveOptions, names *ValueNames) ([]Segment, error) {
	if opts == nil {
		opts = &RecursiveOptions{}
	}

	global := flags&FlagGlobal != 0
	sticky := flags&FlagSticky != 0
	basic := flags &^ (FlagGlobal | FlagSticky)

	left, err := c.Compile(leftSrc, basic)
	if err != nil {
		return nil, err
	}

	right, err := c.Compile(rightSrc, basic)
	if err != nil {
		return nil, err
	}

	r := &recursiveMatcher{
		in:    newInput(text, left.codePoints()),
		opts:  *opts,
		names: names,
	}
	r.left = &scanner{p: left, in: r.in}
	r.right = &scanner{p: right, in: r.in}

	if opts.EscapeChar != 0 {
		esc, err := c.escapePattern(opts.EscapeChar, left, right, basic)
		if err != nil {
			return nil, err
		}

		r.esc = &scanner{p: esc, in: r.in}
	}

	if err := r.run(global, sticky); err != nil {
		return nil, err
	}

	return r.output, nil
}

// escapePattern returns a pattern, that consumes escaped characters and text without
// delimiters. It is applied sticky in front of every delimiter search.
func (c Config) escapePattern(ch rune, left, right *Pattern, flags Flags) (*Pattern, error) {
	if !utf8.ValidRune(ch) {
		return nil, ErrEscapeChar
	}

	delims, err := unionSource([]Part{PatternPart(left), PatternPart(right)}, left.flags, Or)
	if err != nil {
		return nil, err
	}

	e := Escape(string(ch))
	src := `(?:` + e + `[\s\S]|(?:(?!` + delims + `)[^` + e + `])+)+`

	return c.Compile(src, flags&(FlagIgnoreCase|FlagMultiline|FlagDotAll|FlagAstral|FlagCodePoints))
}

func (r *recursiveMatcher) run(global, sticky bool) error {
	var (
		openTokens   int
		delimStart   int
		delimEnd     int
		lastOuterEnd int
		outerStart   int
		innerStart   int
	)

	for {
		if r.esc != nil {
			loc, err := r.esc.find(delimEnd, true)
			if err != nil {
				return err
			}
			if loc != nil {
				delimEnd = loc[1]
			}
		}

		leftLoc, err := r.left.find(delimEnd, false)
		if err != nil {
			return err
		}

		rightLoc, err := r.right.find(delimEnd, false)
		if err != nil {
			return err
		}

		// keep the leftmost match only; the left delimiter wins ties
		if leftLoc != nil && rightLoc != nil {
			if leftLoc[0] <= rightLoc[0] {
				rightLoc = nil
			} else {
				leftLoc = nil
			}
		}

		switch {
		case leftLoc != nil:
			delimStart, delimEnd = leftLoc[0], leftLoc[1]
		case rightLoc != nil:
			delimStart, delimEnd = rightLoc[0], rightLoc[1]
		case openTokens == 0:
			return r.finish(global, sticky, lastOuterEnd)
		}

		if sticky && openTokens == 0 && delimStart > lastOuterEnd {
			return nil
		}

		switch {
		case leftLoc != nil:
			if openTokens == 0 {
				outerStart = delimStart
				innerStart = delimEnd
			}
			openTokens++
		case rightLoc != nil && openTokens > 0:
			openTokens--
			if openTokens == 0 {
				r.emitMatch(lastOuterEnd, outerStart, innerStart, delimStart, delimEnd)
				lastOuterEnd = delimEnd

				if !global {
					return nil
				}
			}
		default:
			// unbalanced delimiter
			switch r.opts.Unbalanced {
			case UnbalancedSkip, UnbalancedSkipLazy:
				if rightLoc != nil {
					break
				}

				// the text ended with open delimiters
				delimEnd = outerStart + 1
				if r.opts.Unbalanced == UnbalancedSkip {
					loc, err := r.left.find(outerStart, true)
					if err != nil {
						return err
					}
					if loc != nil && loc[1] > loc[0] {
						delimEnd = loc[1]
					}
				}

				openTokens = 0
				delimStart = -1
			default:
				side, pos := "left", outerStart
				if rightLoc != nil {
					side, pos = "right", delimStart
				}

				return &UnbalancedDelimiterError{
					Side: side,
					Pos:  r.in.byteOffset(pos),
					Text: r.in.text,
				}
			}
		}

		// avoid an infinite loop for delimiters matching the empty string
		if delimStart == delimEnd {
			delimEnd++
		}
	}
}

// finish emits the trailing between segment.
func (r *recursiveMatcher) finish(global, sticky bool, lastOuterEnd int) error {
	if global && !sticky && lastOuterEnd < r.in.len() {
		r.emit(SegmentBetween, lastOuterEnd, r.in.len())
	}

	return nil
}

func (r *recursiveMatcher) emitMatch(lastOuterEnd, outerStart, innerStart, delimStart, delimEnd int) {
	if outerStart > lastOuterEnd || outerStart == 0 {
		r.emit(SegmentBetween, lastOuterEnd, outerStart)
	}

	r.emit(SegmentLeft, outerStart, innerStart)
	r.emit(SegmentMatch, innerStart, delimStart)
	r.emit(SegmentRight, delimStart, delimEnd)
}

func (r *recursiveMatcher) emit(kind SegmentKind, start, end int) {
	name := r.names.name(kind)
	if name == "" {
		return
	}

	r.output = append(r.output, Segment{
		Kind:  kind,
		Name:  name,
		Value: r.in.slice(start, end),
		Start: r.in.byteOffset(start),
		End:   r.in.byteOffset(end),
	})
}
