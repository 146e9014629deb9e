package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnetde/xre"
)

const testConfig = `
astral: true
match_timeout: 2s
flags: x
subpatterns:
  year:
    pattern: '\d{4}'
  word:
    pattern: '(?<w>\w+)'
    flags: i
    compile: true
  date:
    template: '{{year}}-{{month}}'
    subpatterns:
      month:
        pattern: '\d{2}'
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Astral)
	assert.Zero(t, cfg.MatchTimeout)
	assert.Empty(t, cfg.Flags)
	assert.NotNil(t, cfg.Subpatterns)
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.True(t, cfg.Astral)
	assert.Equal(t, 2*time.Second, cfg.MatchTimeout)
	assert.Equal(t, xre.FlagFreeSpacing, cfg.PatternFlags())
	assert.Len(t, cfg.Subpatterns, 3)
	assert.True(t, cfg.Subpatterns["word"].Compile)
	assert.Equal(t, `\d{2}`, cfg.Subpatterns["date"].Subpatterns["month"].Pattern)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("XRE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Astral)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("XRE_CONFIG", writeConfig(t, testConfig))
	t.Setenv("XRE_ASTRAL", "no")
	t.Setenv("XRE_MATCH_TIMEOUT", "150ms")
	t.Setenv("XRE_FLAGS", "im")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Astral)
	assert.Equal(t, 150*time.Millisecond, cfg.MatchTimeout)
	assert.Equal(t, xre.FlagIgnoreCase|xre.FlagMultiline, cfg.PatternFlags())
}

func TestLoadFromEnvInvalid(t *testing.T) {
	path := writeConfig(t, "")

	for key, value := range map[string]string{
		"XRE_ASTRAL":        "maybe",
		"XRE_MATCH_TIMEOUT": "soon",
		"XRE_FLAGS":         "q",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"negative timeout", "match_timeout: -1s", ErrNegativeTimeout},
		{"no pattern", "subpatterns: {a: {flags: i}}", ErrSubpatternKind},
		{"both", "subpatterns: {a: {pattern: x, template: y}}", ErrSubpatternKind},
		{"compiled template", "subpatterns: {a: {template: y, compile: true}}", ErrSubpatternCompiled},
		{"nested", "subpatterns: {a: {template: '{{b}}', subpatterns: {b: {}}}}", ErrSubpatternKind},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, test.content))
			assert.ErrorIs(t, err, test.want)
		})
	}

	_, err := Load(writeConfig(t, "subpatterns: {a: {pattern: x, flags: gg}}"))
	assert.ErrorIs(t, err, xre.ErrSyntax)
}

func TestResolve(t *testing.T) {
	cfg, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	subs, err := cfg.Resolve()
	require.NoError(t, err)

	p, err := xre.Build(`^{{date}}$`, subs, 0)
	require.NoError(t, err)

	ok, err := p.Test("2024-05")
	require.NoError(t, err)
	assert.True(t, ok)

	p, err = xre.Build(`{{word}}!`, subs, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "w"}, p.SubexpNames())

	m, err := p.Exec("say HELLO!")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "HELLO!", m.Value())
}

func TestResolveCompileError(t *testing.T) {
	cfg, err := Load(writeConfig(t, "subpatterns: {a: {pattern: '(', compile: true}}"))
	require.NoError(t, err)

	_, err = cfg.Resolve()
	assert.ErrorIs(t, err, xre.ErrSyntax)
}

func TestApply(t *testing.T) {
	old := xre.Defaults()
	t.Cleanup(func() { xre.SetDefaults(old) })

	cfg, err := Load(writeConfig(t, "astral: true\nmatch_timeout: 1s"))
	require.NoError(t, err)

	Apply(cfg, nil)

	assert.True(t, xre.IsInstalled("astral"))
	assert.Equal(t, time.Second, xre.Defaults().MatchTimeout)
}
