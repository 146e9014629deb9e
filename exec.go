package xre

// scanner runs a pattern over one prepared input.
type scanner struct {
	p  *Pattern
	in *input
}

func (p *Pattern) scanner(text string) *scanner {
	return &scanner{
		p:  p,
		in: newInput(text, p.codePoints()),
	}
}

// find searches from the character index pos and returns character index pairs.
func (s *scanner) find(pos int, sticky bool) ([]int, error) {
	if pos > s.in.len() {
		return nil, nil
	}

	return s.p.eng.find(s.in, pos, sticky)
}

// match converts character index pairs into a Match.
func (s *scanner) match(loc []int) (*Match, error) {
	bytes := make([]int, len(loc))
	for i, v := range loc {
		bytes[i] = s.in.byteOffset(v)
	}

	return resolve(s.p, s.in.text, bytes)
}

// each calls fn for all non-overlapping matches starting at the character index pos.
// After an empty match, the search continues one character later. If sticky is set,
// every match must start where the previous one ended.
func (s *scanner) each(pos int, sticky bool, fn func(loc []int) (bool, error)) error {
	for pos <= s.in.len() {
		loc, err := s.find(pos, sticky)
		if err != nil {
			return err
		}
		if loc == nil {
			return nil
		}

		more, err := fn(loc)
		if err != nil || !more {
			return err
		}

		if loc[1] == loc[0] {
			pos = loc[1] + 1
		} else {
			pos = loc[1]
		}
	}

	return nil
}

// Exec searches the text for the first match. The search is sticky, if the pattern has
// the flag y. It returns nil if there is no match.
func (p *Pattern) Exec(text string) (*Match, error) {
	return p.ExecAt(text, 0, p.flags&FlagSticky != 0)
}

// ExecAt searches the text for the first match starting at the byte offset pos.
// If sticky is set, the match must start exactly at pos. It returns nil if there is no match
// or pos is beyond the end of the text.
func (p *Pattern) ExecAt(text string, pos int, sticky bool) (*Match, error) {
	if pos > len(text) {
		return nil, nil
	}

	s := p.scanner(text)

	loc, err := s.find(s.in.charIndex(pos), sticky)
	if err != nil || loc == nil {
		return nil, err
	}

	return s.match(loc)
}

// Test reports whether the pattern matches the text.
func (p *Pattern) Test(text string) (bool, error) {
	m, err := p.Exec(text)
	return m != nil, err
}

// ForEach calls fn for all non-overlapping matches of the pattern in the text.
// The flag g is ignored; the flag y stops at the first gap between matches.
// An error returned by fn stops the iteration and is returned.
func ForEach(text string, p *Pattern, fn func(m *Match, i int) error) error {
	s := p.scanner(text)
	i := 0

	return s.each(0, p.flags&FlagSticky != 0, func(loc []int) (bool, error) {
		m, err := s.match(loc)
		if err != nil {
			return false, err
		}

		if err := fn(m, i); err != nil {
			return false, err
		}

		i++
		return true, nil
	})
}

// FindAll returns all non-overlapping matches of the pattern in the text.
func FindAll(text string, p *Pattern) ([]*Match, error) {
	var res []*Match

	err := ForEach(text, p, func(m *Match, _ int) error {
		res = append(res, m)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}
