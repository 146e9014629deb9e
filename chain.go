package xre

// Selector selects the part of a match, that is passed to the next stage of a chain.
// The zero value selects the whole match.
type Selector struct {
	index int
	name  string
}

// SelectGroup selects the numbered group i.
func SelectGroup(i int) Selector {
	return Selector{index: i}
}

// SelectName selects the named group.
func SelectName(name string) Selector {
	return Selector{name: name}
}

// resolve returns the group number of the selector for the pattern.
func (s Selector) resolve(p *Pattern) (int, error) {
	if s.name != "" {
		i, ok := p.captures.Index(s.name)
		if !ok {
			return 0, syntaxErrorf(p.source, "unknown group name %q in chain selector", s.name)
		}

		return i, nil
	}

	if s.index < 0 || s.index > p.NumSubexp() {
		return 0, syntaxErrorf(p.source, "invalid group reference %d in chain selector", s.index)
	}

	return s.index, nil
}

// ChainStage is one stage of MatchChain.
type ChainStage struct {
	Pattern  *Pattern
	Selector Selector
}

// MatchChain matches the stages one after another: the first stage is applied to the text,
// every further stage to each of the values selected by the previous stage. It returns the
// values selected by the last stage in order. Groups, that did not participate, yield "".
// All selectors are validated before the text is scanned.
func MatchChain(text string, stages []ChainStage) ([]string, error) {
	groups := make([]int, len(stages))

	for i, stage := range stages {
		g, err := stage.Selector.resolve(stage.Pattern)
		if err != nil {
			return nil, err
		}

		groups[i] = g
	}

	values := []string{text}

	for i, stage := range stages {
		var next []string

		for _, v := range values {
			err := ForEach(v, stage.Pattern, func(m *Match, _ int) error {
				s, _ := m.Group(groups[i])
				next = append(next, s)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}

		if len(next) == 0 {
			return []string{}, nil
		}

		values = next
	}

	return values, nil
}
