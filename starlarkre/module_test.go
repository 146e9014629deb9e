package starlarkre

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"

	"github.com/magnetde/xre"
)

func run(t *testing.T, m *Module, src string) starlark.StringDict {
	t.Helper()

	thread := &starlark.Thread{Name: t.Name()}
	globals, err := starlark.ExecFile(thread, "test.star", src, starlark.StringDict{"xre": m})
	require.NoError(t, err)

	return globals
}

func TestModuleCache(t *testing.T) {
	m := NewModule(xre.Config{})

	a, err := m.compile(`a+`, 0)
	require.NoError(t, err)

	b, err := m.compile(`a+`, 0)
	require.NoError(t, err)
	assert.Same(t, a, b)

	c, err := m.compile(`a+`, xre.FlagIgnoreCase)
	require.NoError(t, err)
	assert.NotSame(t, a, c)

	for i := 0; i < maxPatternCacheSize; i++ {
		_, err := m.compile(fmt.Sprintf("x%d", i), 0)
		require.NoError(t, err)
	}

	assert.Equal(t, maxPatternCacheSize, m.list.Len())
	assert.Len(t, m.cache, maxPatternCacheSize)

	_, ok := m.cache[cacheKey{`a+`, 0}]
	assert.False(t, ok)

	m.purge()
	assert.Zero(t, m.list.Len())
	assert.Empty(t, m.cache)
}

func TestModuleCacheConcurrent(t *testing.T) {
	m := NewModule(xre.Config{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			for j := 0; j < 50; j++ {
				_, err := m.compile(fmt.Sprintf(`\d{%d}`, (i+j)%40), 0)
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, m.list.Len(), maxPatternCacheSize)
}

func TestModuleInstall(t *testing.T) {
	m := NewModule(xre.Config{})

	_, err := m.compile(`.`, 0)
	require.NoError(t, err)

	globals := run(t, m, `
before = xre.is_installed("astral")
xre.install("astral")
after = xre.is_installed("astral")
n = len(xre.exec("\U0001F4A9", ".").value)
xre.uninstall("astral")
reset = xre.is_installed("astral")
`)

	assert.Equal(t, starlark.False, globals["before"])
	assert.Equal(t, starlark.True, globals["after"])
	assert.Equal(t, starlark.MakeInt(4), globals["n"])
	assert.Equal(t, starlark.False, globals["reset"])
	assert.False(t, xre.IsInstalled("astral"))

	thread := &starlark.Thread{Name: t.Name()}
	_, err = starlark.ExecFile(thread, "test.star", `xre.install("turbo")`, starlark.StringDict{"xre": m})
	assert.ErrorContains(t, err, "unknown option")
}

func TestModuleFunctions(t *testing.T) {
	m := NewModule(xre.Config{})

	globals := run(t, m, `
date = xre.compile(r"(?<year>[0-9]{4})-(?<month>[0-9]{2})-(?<day>[0-9]{2})")
m = xre.exec("on 2021-02-22", date)
year = m["year"]
span = m.span("month")
groups = m.groups()
swapped = xre.replace("2021-02-22", date, "$<month>/$<day>/$<year>")
upper = xre.replace("abc", "[ac]", lambda m: m.value.upper(), all = True)
found = [x.value for x in xre.find_all("a1b22c333", r"\d+")]
ok = xre.test("ABC", "b", flags = "i")
chain = xre.match_chain("1 <b>2</b> 3 <b>4 a 56</b>", [r"(?i)<b>.*?</b>", r"\d+"])
nested = xre.match_recursive("(t((e))s)t()(ing)", r"\(", r"\)", flags = "g")
union = xre.union(["a+b*c", xre.compile(r"(dogs)\1")]).source
built = xre.build("^{{year}}-{{rest}}$", {"year": "[0-9]{4}", "rest": {"template": "{{m}}", "subs": {"m": "[0-9]{2}"}}}).test("2024-05")
escaped = xre.escape("a.b")

evens = []
xre.for_each("1a2345", r"\d", lambda m, i: evens.append(m.value) if int(m.value) % 2 == 0 else None)
`)

	assert.Equal(t, starlark.String("2021"), globals["year"])
	assert.Equal(t, starlark.Tuple{starlark.MakeInt(8), starlark.MakeInt(10)}, globals["span"])
	assert.Equal(t, starlark.Tuple{starlark.String("2021"), starlark.String("02"), starlark.String("22")}, globals["groups"])
	assert.Equal(t, starlark.String("02/22/2021"), globals["swapped"])
	assert.Equal(t, starlark.String("AbC"), globals["upper"])
	assert.Equal(t, `["1", "22", "333"]`, globals["found"].String())
	assert.Equal(t, starlark.True, globals["ok"])
	assert.Equal(t, `["2", "4", "56"]`, globals["chain"].String())
	assert.Equal(t, `["t((e))s", "", "ing"]`, globals["nested"].String())
	assert.Equal(t, starlark.String(`a\+b\*c|(dogs)\1`), globals["union"])
	assert.Equal(t, starlark.True, globals["built"])
	assert.Equal(t, starlark.String(`a\.b`), globals["escaped"])
	assert.Equal(t, `["2", "4"]`, globals["evens"].String())
}

func TestModuleRecursiveSegments(t *testing.T) {
	m := NewModule(xre.Config{})

	globals := run(t, m, `
segs = xre.match_recursive("x(y)", r"\(", r"\)", value_names = [None, "left", "match", None])
`)

	assert.Equal(t,
		`[{"name": "left", "value": "(", "start": 1, "end": 2}, {"name": "match", "value": "y", "start": 2, "end": 3}]`,
		globals["segs"].String())
}

func TestModuleErrors(t *testing.T) {
	m := NewModule(xre.Config{})

	for _, src := range []string{
		`xre.compile("(")`,
		`xre.compile("a", flags = "q")`,
		`xre.exec("a", xre.compile("a"), flags = "i")`,
		`xre.exec("a", 1)`,
		`xre.replace("a", "a", 1)`,
		`xre.replace("a", "a", lambda m: 1)`,
		`xre.match_chain("a", [{"backref": 1}])`,
		`xre.match_recursive("a(", r"\(", r"\)")`,
		`xre.match_recursive("a", r"\(", r"\)", unbalanced = "maybe")`,
		`xre.match_recursive("a", r"\(", r"\)", escape_char = "ab")`,
		`xre.build("{{a}}", {"a": 1})`,
		`xre.union([], conjunction = "and")`,
		`xre.union([])`,
		`xre.compile("(?<a>x)").exec("x").group(5)`,
	} {
		thread := &starlark.Thread{Name: t.Name()}
		_, err := starlark.ExecFile(thread, "test.star", src, starlark.StringDict{"xre": m})
		assert.Error(t, err, src)
	}
}
