package xre

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceNamed(t *testing.T) {
	date := MustCompile(datePattern, FlagFreeSpacing)

	res, err := Replace("2021-02-22", date, Template("$<month>/$<day>/$<year>"))
	require.NoError(t, err)
	assert.Equal(t, "02/22/2021", res)

	res, err = Replace("2021-02-22", date, Template("${month}/${day}/${year}"))
	require.NoError(t, err)
	assert.Equal(t, "02/22/2021", res)

	res, err = Replace("2021-02-22", date, Func(func(m *Match) (string, error) {
		g := m.Groups()
		return fmt.Sprintf("%s/%s/%s", g["month"], g["day"], g["year"]), nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "02/22/2021", res)
}

func TestReplaceNumbered(t *testing.T) {
	date := MustCompile(datePattern, FlagFreeSpacing)

	res, err := Replace("2021-02-22", date, Template("$2/$3/$1"))
	require.NoError(t, err)
	assert.Equal(t, "02/22/2021", res)
}

func TestReplaceTemplateTokens(t *testing.T) {
	p := MustCompile(`(b)`, 0)

	tests := []struct {
		template string
		want     string
	}{
		{"[$$]", "a[$]c"},
		{"[$&]", "a[b]c"},
		{"[$0]", "a[b]c"},
		{"[$`]", "a[a]c"},
		{"[$']", "a[c]c"},
		{"[$1]", "a[b]c"},
		{"[$10]", "a[b0]c"},
		{"[$01]", "a[b]c"},
		{"[$<1>]", "a[b]c"},
		{"[$<]", "a[$<]c"},
		{"[$x]", "a[$x]c"},
		{"[$]", "a[$]c"},
	}

	for _, test := range tests {
		res, err := Replace("abc", p, Template(test.template))
		require.NoError(t, err, test.template)
		assert.Equal(t, test.want, res, test.template)
	}
}

func TestReplaceTemplateErrors(t *testing.T) {
	p := MustCompile(`(?<a>b)`, 0)

	for _, template := range []string{"$2", "$<b>", "${}", "${5}"} {
		_, err := Replace("abc", p, Template(template))
		assert.ErrorIs(t, err, ErrSyntax, template)
	}
}

func TestReplaceGlobal(t *testing.T) {
	p := MustCompile(`\d`, 0)

	res, err := Replace("a1b2", p, Template("#"))
	require.NoError(t, err)
	assert.Equal(t, "a#b2", res)

	res, err = ReplaceAll("a1b2", p, Template("#"))
	require.NoError(t, err)
	assert.Equal(t, "a#b#", res)

	res, err = Replace("a1b2", MustCompile(`\d`, FlagGlobal), Template("#"))
	require.NoError(t, err)
	assert.Equal(t, "a#b#", res)

	res, err = Replace("12a3", MustCompile(`\d`, FlagGlobal|FlagSticky), Template("#"))
	require.NoError(t, err)
	assert.Equal(t, "##a3", res)
}

func TestReplaceFuncError(t *testing.T) {
	_, err := ReplaceAll("abc", MustCompile(`b`, 0), Func(func(*Match) (string, error) {
		return "", assert.AnError
	}))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMatchExpand(t *testing.T) {
	m, err := MustCompile(`(?<word>\w+)`, 0).Exec("hello world")
	require.NoError(t, err)
	require.NotNil(t, m)

	s, err := m.Expand("<$<word>|$1|$'>")
	require.NoError(t, err)
	assert.Equal(t, "<hello|hello| world>", s)
}
