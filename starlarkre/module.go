// Package starlarkre exposes the xre dialect as a Starlark module.
package starlarkre

import (
	"container/list"
	"errors"
	"fmt"
	"sync"

	"go.starlark.net/starlark"

	"github.com/magnetde/xre"
)

// Maximum cache size; 32 should be more than enough, because Starlark scripts stay relatively small.
const maxPatternCacheSize = 32

// Module is the Starlark value of the xre module.
// It carries its own configuration, which is changed by `install` and `uninstall`, and
// a LRU cache of compiled patterns. The cache is implemented with a map and a linked list.
// When the cache exceeds the maximum size, the least recently used element is purged.
type Module struct {
	members starlark.StringDict

	mu     sync.Mutex
	config xre.Config
	list   *list.List                 // least recently used patterns
	cache  map[cacheKey]*list.Element // mapping of patterns to list elements
}

// cacheKey is the key of the pattern cache, containing the pattern and the flags.
type cacheKey struct {
	pattern string
	flags   xre.Flags
}

// Is necessary, because each list element needs to store the key in the map.
type cacheValue struct {
	pattern *Pattern
	key     cacheKey
}

// NewModule creates a new xre module, that compiles patterns with the configuration.
func NewModule(c xre.Config) *Module {
	members := starlark.StringDict{
		"compile": starlark.NewBuiltin("compile", xreCompile),
		"purge":   starlark.NewBuiltin("purge", xrePurge),

		"exec":            starlark.NewBuiltin("exec", xreExec),
		"test":            starlark.NewBuiltin("test", xreTest),
		"replace":         starlark.NewBuiltin("replace", xreReplace),
		"for_each":        starlark.NewBuiltin("for_each", xreForEach),
		"find_all":        starlark.NewBuiltin("find_all", xreFindAll),
		"match_chain":     starlark.NewBuiltin("match_chain", xreMatchChain),
		"match_recursive": starlark.NewBuiltin("match_recursive", xreMatchRecursive),
		"build":           starlark.NewBuiltin("build", xreBuild),
		"union":           starlark.NewBuiltin("union", xreUnion),
		"escape":          starlark.NewBuiltin("escape", xreEscape),

		"install":      starlark.NewBuiltin("install", xreInstall),
		"uninstall":    starlark.NewBuiltin("uninstall", xreInstall),
		"is_installed": starlark.NewBuiltin("is_installed", xreIsInstalled),
	}

	m := Module{
		members: members,
		config:  c,
		list:    list.New(),
		cache:   make(map[cacheKey]*list.Element),
	}

	return &m
}

// Check, if the type satisfies the interfaces.
var (
	_ starlark.Value    = (*Module)(nil)
	_ starlark.HasAttrs = (*Module)(nil)
)

func (m *Module) Freeze()               { m.members.Freeze() }
func (m *Module) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", m.Type()) }
func (m *Module) String() string        { return "<module xre>" }
func (m *Module) Truth() starlark.Bool  { return true }
func (m *Module) Type() string          { return "module" }

func (m *Module) Attr(name string) (starlark.Value, error) {
	if v, ok := m.members[name]; ok {
		if b, ok := v.(*starlark.Builtin); ok {
			return b.BindReceiver(m), nil
		}

		return v, nil
	}

	return nil, nil
}
func (m *Module) AttrNames() []string { return m.members.Keys() }

// Config returns the current configuration of the module.
func (m *Module) Config() xre.Config {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.config
}

// compile compiles a pattern. If the pattern is already in the cache,
// the compiled pattern is returned from the cache.
// Else, the pattern is compiled and then added to the cache.
// If the cache exceeds a certain size (`maxPatternCacheSize`), the oldest element is purged from the cache.
func (m *Module) compile(pattern string, flags xre.Flags) (*Pattern, error) {
	key := cacheKey{pattern, flags}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.cache[key]; ok { // pattern found in the cache
		m.list.MoveToFront(e)
		return e.Value.(*cacheValue).pattern, nil
	}

	p, err := m.config.Compile(pattern, flags)
	if err != nil {
		return nil, err
	}

	res := newPattern(p)
	m.add(key, res)

	return res, nil
}

// add adds a pattern to the cache and purges the oldest element, if the cache is full.
// The lock must be held.
func (m *Module) add(key cacheKey, p *Pattern) {
	if m.list.Len() >= maxPatternCacheSize {
		last := m.list.Back()

		delete(m.cache, last.Value.(*cacheValue).key)
		m.list.Remove(last)
	}

	v := &cacheValue{
		pattern: p,
		key:     key,
	}

	m.cache[key] = m.list.PushFront(v)
}

// purge clears the pattern cache.
func (m *Module) purge() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purgeLocked()
}

func (m *Module) purgeLocked() {
	m.list.Init()
	clear(m.cache)
}

// setOption enables or disables an option of the module configuration.
// The cache is purged, because cached patterns were compiled with the old configuration.
func (m *Module) setOption(option string, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch option {
	case "astral":
		m.config.Astral = on
	default:
		return fmt.Errorf("%w %q", xre.ErrUnknownOption, option)
	}

	m.purgeLocked()
	return nil
}

// patternParam is a Starlark type, representing the possible types of the pattern parameter.
type patternParam struct {
	compiled *Pattern
	raw      string
}

var _ starlark.Unpacker = (*patternParam)(nil)

func (p *patternParam) Unpack(v starlark.Value) error {
	switch t := v.(type) {
	case *Pattern:
		p.compiled = t
	case starlark.String:
		p.raw = string(t)
	default:
		return fmt.Errorf("got %s, want str or pattern", v.Type())
	}

	return nil
}

// flagsParam is a Starlark flag string like "gix".
type flagsParam struct {
	flags xre.Flags
	set   bool
}

var _ starlark.Unpacker = (*flagsParam)(nil)

func (f *flagsParam) Unpack(v starlark.Value) error {
	s, ok := v.(starlark.String)
	if !ok {
		return fmt.Errorf("got %s, want str", v.Type())
	}

	flags, err := xre.ParseFlags(string(s))
	if err != nil {
		return err
	}

	f.flags = flags
	f.set = s != ""
	return nil
}

// compilePattern compiles a pattern parameter using the pattern cache of the module.
// The builtin receiver must be of type `*Module`.
func compilePattern(b *starlark.Builtin, p patternParam, flags flagsParam) (*Pattern, error) {
	if p.compiled != nil {
		if flags.set {
			return nil, errors.New("cannot process flags argument with a compiled pattern")
		}

		return p.compiled, nil
	}

	return b.Receiver().(*Module).compile(p.raw, flags.flags)
}
