// Package unicodefacts answers membership questions about Unicode properties,
// general categories and scripts. Facets are addressed by a small integer id,
// which is the index of the facet name in the sorted name list of its kind.
package unicodefacts

import (
	"sort"
	"unicode"
)

// Kind selects a facet family.
type Kind int

const (
	Property Kind = iota
	GeneralCategory
	Script
	ScriptExtension
)

type family struct {
	names  []string
	tables []*unicode.RangeTable
}

func newFamily(m map[string]*unicode.RangeTable) family {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	f := family{names: names, tables: make([]*unicode.RangeTable, len(names))}
	for i, name := range names {
		f.tables[i] = m[name]
	}
	return f
}

var (
	properties = newFamily(unicode.Properties)
	categories = newFamily(unicode.Categories)
	scripts    = newFamily(unicode.Scripts)
)

func familyOf(k Kind) *family {
	switch k {
	case Property:
		return &properties
	case GeneralCategory:
		return &categories
	case Script, ScriptExtension:
		// Script extension tables are not shipped with the standard library;
		// the script itself is a subset of its extension set.
		return &scripts
	}
	return nil
}

// Lookup returns the id of the named facet.
func Lookup(k Kind, name string) (int, bool) {
	f := familyOf(k)
	if f == nil {
		return 0, false
	}
	i := sort.SearchStrings(f.names, name)
	if i < len(f.names) && f.names[i] == name {
		return i, true
	}
	return 0, false
}

// Name returns the facet name for id, or "" when id is out of range.
func Name(k Kind, id int) string {
	f := familyOf(k)
	if f == nil || id < 0 || id >= len(f.names) {
		return ""
	}
	return f.names[id]
}

func has(k Kind, r rune, id int) bool {
	f := familyOf(k)
	if f == nil || id < 0 || id >= len(f.tables) {
		return false
	}
	return unicode.Is(f.tables[id], r)
}

// Tables is the provider backed by the standard library's Unicode tables.
type Tables struct{}

// HasProperty reports whether r has the binary property id.
func (Tables) HasProperty(r rune, id int) bool { return has(Property, r, id) }

// HasGeneralCategory reports whether r belongs to category id.
func (Tables) HasGeneralCategory(r rune, id int) bool { return has(GeneralCategory, r, id) }

// HasScript reports whether r belongs to script id.
func (Tables) HasScript(r rune, id int) bool { return has(Script, r, id) }

// HasScriptExtension reports whether r belongs to the extension set of script id.
func (Tables) HasScriptExtension(r rune, id int) bool { return has(ScriptExtension, r, id) }
