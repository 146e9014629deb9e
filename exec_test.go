package xre

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const datePattern = `(?<year>  [0-9]{4} ) -?  # year
             (?<month> [0-9]{2} ) -?  # month
             (?<day>   [0-9]{2} )     # day`

func TestExecNamedFreeSpacing(t *testing.T) {
	date := MustCompile(datePattern, FlagFreeSpacing)

	m, err := date.Exec("2021-02-22")
	require.NoError(t, err)
	require.NotNil(t, m)

	year, ok := m.Named("year")
	assert.True(t, ok)
	assert.Equal(t, "2021", year)
	assert.Equal(t, map[string]string{"year": "2021", "month": "02", "day": "22"}, m.Groups())
	assert.Equal(t, []string{"", "year", "month", "day"}, date.SubexpNames())
	assert.Equal(t, 2, date.SubexpIndex("month"))
	assert.Equal(t, -1, date.SubexpIndex("hour"))
}

func TestExecStickyLoop(t *testing.T) {
	p := MustCompile(`<(\d+)>`, 0)

	var res []string

	pos := 3
	for {
		m, err := p.ExecAt("<1><2><3>4<5>", pos, true)
		require.NoError(t, err)
		if m == nil {
			break
		}

		g, _ := m.Group(1)
		res = append(res, g)
		pos = m.End()
	}

	assert.Equal(t, []string{"2", "3"}, res)
}

func TestExecStickyFlag(t *testing.T) {
	p := MustCompile(`\d`, FlagSticky)

	m, err := p.Exec("a1")
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = p.Exec("1a")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "1", m.Value())
}

func TestExecByteOffsets(t *testing.T) {
	p := MustCompile(`(b)(x)?`, 0)

	m, err := p.Exec("äöb")
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, 4, m.Index())
	assert.Equal(t, 5, m.End())
	assert.Equal(t, "äöb", m.Input())
	assert.Equal(t, 2, m.NumGroups())

	g := m.Captures()
	assert.Equal(t, Group{Value: "b", Start: 4, End: 5, Matched: true}, g[1])
	assert.Equal(t, Group{Start: -1, End: -1}, g[2])

	_, ok := m.Group(2)
	assert.False(t, ok)
	_, ok = m.Group(3)
	assert.False(t, ok)

	m, err = p.ExecAt("bäb", 3, false)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 3, m.Index())
}

func TestExecAtEnd(t *testing.T) {
	p := MustCompile(`x*`, 0)

	m, err := p.ExecAt("abc", 3, false)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 3, m.Index())
	assert.Equal(t, "", m.Value())

	m, err = p.ExecAt("abc", 10, false)
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = p.ExecAt("abc", 4, true)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestForEach(t *testing.T) {
	var evens []string

	err := ForEach("1a2345", MustCompile(`\d`, 0), func(m *Match, i int) error {
		if i%2 == 1 {
			evens = append(evens, m.Value())
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4"}, evens)
}

func TestForEachEmptyMatches(t *testing.T) {
	ms, err := FindAll("ab", MustCompile(`x*`, 0))
	require.NoError(t, err)
	require.Len(t, ms, 3)

	for i, m := range ms {
		assert.Equal(t, i, m.Index())
		assert.Equal(t, "", m.Value())
	}
}

func TestForEachError(t *testing.T) {
	stop := assert.AnError
	calls := 0

	err := ForEach("123", MustCompile(`\d`, 0), func(*Match, int) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestTestMethod(t *testing.T) {
	date := MustCompile(datePattern, FlagFreeSpacing)

	ok, err := date.Test("2021-02-22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = date.Test("no date")
	require.NoError(t, err)
	assert.False(t, ok)
}
