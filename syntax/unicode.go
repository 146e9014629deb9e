package syntax

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// UnicodeVersion is the version of the Unicode tables used to expand property escapes.
const UnicodeVersion = unicode.Version

// propertyCache maps normalized property names to their (immutable) rune sets.
var propertyCache sync.Map

var (
	propertyNamesOnce sync.Once
	categoryNames     map[string]string // normalized short or long name -> key of unicode.Categories
	scriptNames       map[string]string // normalized name -> key of unicode.Scripts
	binaryNames       map[string]string // normalized name -> key of unicode.Properties
)

// Long general category names, as used by \p{Letter} or \p{Decimal_Number}.
var categoryAliases = map[string]string{
	"Letter":                "L",
	"Cased_Letter":          "LC",
	"Uppercase_Letter":      "Lu",
	"Lowercase_Letter":      "Ll",
	"Titlecase_Letter":      "Lt",
	"Modifier_Letter":       "Lm",
	"Other_Letter":          "Lo",
	"Mark":                  "M",
	"Combining_Mark":        "M",
	"Nonspacing_Mark":       "Mn",
	"Spacing_Mark":          "Mc",
	"Enclosing_Mark":        "Me",
	"Number":                "N",
	"Decimal_Number":        "Nd",
	"Digit":                 "Nd",
	"Letter_Number":         "Nl",
	"Other_Number":          "No",
	"Punctuation":           "P",
	"Punct":                 "P",
	"Connector_Punctuation": "Pc",
	"Dash_Punctuation":      "Pd",
	"Open_Punctuation":      "Ps",
	"Close_Punctuation":     "Pe",
	"Initial_Punctuation":   "Pi",
	"Final_Punctuation":     "Pf",
	"Other_Punctuation":     "Po",
	"Symbol":                "S",
	"Math_Symbol":           "Sm",
	"Currency_Symbol":       "Sc",
	"Modifier_Symbol":       "Sk",
	"Other_Symbol":          "So",
	"Separator":             "Z",
	"Space_Separator":       "Zs",
	"Line_Separator":        "Zl",
	"Paragraph_Separator":   "Zp",
	"Other":                 "C",
	"Control":               "Cc",
	"Cntrl":                 "Cc",
	"Format":                "Cf",
	"Private_Use":           "Co",
	"Surrogate":             "Cs",
	"Unassigned":            "Cn",
}

func initPropertyNames() {
	categoryNames = make(map[string]string)
	for k := range unicode.Categories {
		categoryNames[normalizePropertyName(k)] = k
	}
	categoryNames["lc"] = "LC"
	categoryNames["cn"] = "Cn"
	for long, short := range categoryAliases {
		categoryNames[normalizePropertyName(long)] = short
	}

	scriptNames = make(map[string]string)
	for k := range unicode.Scripts {
		scriptNames[normalizePropertyName(k)] = k
	}

	binaryNames = make(map[string]string)
	for k := range unicode.Properties {
		binaryNames[normalizePropertyName(k)] = k
	}
}

// normalizePropertyName implements loose matching of property names:
// case, spaces, underscores and hyphens are ignored.
func normalizePropertyName(name string) string {
	var b strings.Builder

	for _, c := range name {
		switch c {
		case ' ', '_', '-':
		default:
			b.WriteRune(unicode.ToLower(c))
		}
	}

	return b.String()
}

// lookupProperty returns the set of code points with the property name.
func lookupProperty(name string) (runeSet, bool) {
	key := normalizePropertyName(name)

	if v, ok := propertyCache.Load(key); ok {
		return v.(runeSet), true
	}

	propertyNamesOnce.Do(initPropertyNames)

	set, ok := resolveProperty(key)
	if !ok {
		return nil, false
	}

	propertyCache.Store(key, set)
	return set, true
}

func resolveProperty(key string) (runeSet, bool) {
	for _, prefix := range []string{"script=", "sc=", "scriptextensions=", "scx="} {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			return resolveScript(rest)
		}
	}

	for _, prefix := range []string{"generalcategory=", "gc="} {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			return resolveCategory(rest)
		}
	}

	if set, ok := resolveCategory(key); ok {
		return set, true
	}

	switch key {
	case "any":
		return fullDomain, true
	case "ascii":
		return runeSet{{0, unicode.MaxASCII}}, true
	case "assigned":
		return assignedSet(), true
	}

	if set, ok := resolveBinary(key); ok {
		return set, true
	}

	return resolveScript(key)
}

func resolveCategory(key string) (runeSet, bool) {
	name, ok := categoryNames[key]
	if !ok {
		return nil, false
	}

	switch name {
	case "LC":
		return tableSet(rangetable.Merge(unicode.Lu, unicode.Ll, unicode.Lt)), true
	case "Cn":
		return fullDomain.minus(assignedSet()), true
	case "C":
		// Go's C does not contain unassigned code points
		return tableSet(unicode.C).union(fullDomain.minus(assignedSet())), true
	}

	return tableSet(unicode.Categories[name]), true
}

func resolveScript(key string) (runeSet, bool) {
	name, ok := scriptNames[key]
	if !ok {
		return nil, false
	}

	return tableSet(unicode.Scripts[name]), true
}

// resolveBinary resolves binary properties. Some derived properties missing in Go's tables
// are composed from their definition in the Unicode character database.
func resolveBinary(key string) (runeSet, bool) {
	switch key {
	case "alphabetic", "alpha":
		return tableSet(rangetable.Merge(unicode.L, unicode.Nl, unicode.Other_Alphabetic)), true
	case "uppercase", "upper":
		return tableSet(rangetable.Merge(unicode.Lu, unicode.Other_Uppercase)), true
	case "lowercase", "lower":
		return tableSet(rangetable.Merge(unicode.Ll, unicode.Other_Lowercase)), true
	case "defaultignorablecodepoint", "di":
		set := tableSet(rangetable.Merge(
			unicode.Other_Default_Ignorable_Code_Point,
			unicode.Cf,
			unicode.Variation_Selector,
		))
		exclude := tableSet(rangetable.Merge(
			unicode.White_Space,
			unicode.Prepended_Concatenation_Mark,
		)).union(runeSet{{0xfff9, 0xfffb}, {0x13430, 0x1343f}})

		return set.minus(exclude), true
	}

	name, ok := binaryNames[key]
	if !ok {
		return nil, false
	}

	return tableSet(unicode.Properties[name]), true
}

var assignedSet = sync.OnceValue(func() runeSet {
	tables := make([]*unicode.RangeTable, 0, len(unicode.Categories))
	for _, t := range unicode.Categories {
		tables = append(tables, t)
	}

	return tableSet(rangetable.Merge(tables...))
})

// shorthandSet returns the set of the class shorthand \d, \w or \s as understood by the engine.
// Only the basic multilingual plane is included, because the engine scans code units.
func shorthandSet(name string) runeSet {
	var set runeSet

	switch name {
	case "d":
		set = tableSet(unicode.Nd)
	case "w":
		set = tableSet(rangetable.Merge(unicode.L, unicode.Mn, unicode.Nd, unicode.Pc))
	case "s":
		set = tableSet(unicode.Z).union(runeSet{{'\t', '\r'}, {0x85, 0x85}})
	}

	return set.intersect(bmpDomain)
}

// tableSet converts a range table into a rune set.
func tableSet(t *unicode.RangeTable) runeSet {
	var s runeSet

	for _, r := range t.R16 {
		s = appendStride(s, rune(r.Lo), rune(r.Hi), rune(r.Stride))
	}
	for _, r := range t.R32 {
		s = appendStride(s, rune(r.Lo), rune(r.Hi), rune(r.Stride))
	}

	return s.normalize()
}

func appendStride(s runeSet, lo, hi, stride rune) runeSet {
	if stride == 1 {
		return append(s, runeRange{lo, hi})
	}

	for r := lo; r <= hi; r += stride {
		s = append(s, runeRange{r, r})
	}

	return s
}
