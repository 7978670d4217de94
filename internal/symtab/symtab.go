// Package symtab implements the scope-stack symbol table for ShaderLab
// globals.
//
// Tables are pushed at Shader, SubShader and Pass boundaries and lookups
// walk the stack innermost first, so a Pass declaration shadows a
// SubShader or Shader declaration of the same name.
package symtab

import (
	"sort"

	"github.com/galacean/engine-sub008/internal/ast"
)

// Level is the nesting level of a table.
type Level uint8

const (
	LevelShader Level = iota
	LevelSubShader
	LevelPass
)

func (l Level) String() string {
	switch l {
	case LevelShader:
		return "Shader"
	case LevelSubShader:
		return "SubShader"
	case LevelPass:
		return "Pass"
	default:
		return "unknown"
	}
}

// Global is a declared function, struct, variable, render state block or
// macro. A conditional macro block is a single Global registered under
// every name it declares.
type Global struct {
	Name  string
	Node  ast.Node
	Level Level

	// Referenced is set once something reachable from the current entry
	// point mentions the global.
	Referenced bool

	// Text caches the rendered declaration once Rendered is set.
	Text     string
	Rendered bool
}

// Table holds the globals declared at one level. A name maps to an
// overload set because GLSL functions may be overloaded.
type Table struct {
	Level   Level
	entries map[string][]*Global
	order   []*Global
}

// NewTable creates an empty table.
func NewTable(level Level) *Table {
	return &Table{Level: level, entries: make(map[string][]*Global)}
}

// Declare registers node under name and returns its entry.
func (t *Table) Declare(name string, node ast.Node) *Global {
	g := &Global{Name: name, Node: node, Level: t.Level}
	t.entries[name] = append(t.entries[name], g)
	t.order = append(t.order, g)
	return g
}

// DeclareAll registers one entry for node under every name in names.
// It returns nil when names is empty.
func (t *Table) DeclareAll(names []string, node ast.Node) *Global {
	if len(names) == 0 {
		return nil
	}
	g := &Global{Name: names[0], Node: node, Level: t.Level}
	for _, name := range names {
		t.entries[name] = append(t.entries[name], g)
	}
	t.order = append(t.order, g)
	return g
}

// Lookup returns the overload set declared under name at this level.
func (t *Table) Lookup(name string) []*Global {
	return t.entries[name]
}

// Globals returns every entry in declaration order.
func (t *Table) Globals() []*Global {
	return t.order
}

// Names returns every declared name.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	return names
}

// Stack is the chain of tables visible from the current position.
type Stack struct {
	tables []*Table
}

// Push opens a new innermost table.
func (s *Stack) Push(level Level) *Table {
	t := NewTable(level)
	s.tables = append(s.tables, t)
	return t
}

// Pop closes the innermost table.
func (s *Stack) Pop() {
	if len(s.tables) > 0 {
		s.tables = s.tables[:len(s.tables)-1]
	}
}

// Top returns the innermost table, or nil.
func (s *Stack) Top() *Table {
	if len(s.tables) == 0 {
		return nil
	}
	return s.tables[len(s.tables)-1]
}

// Depth returns the number of open tables.
func (s *Stack) Depth() int {
	return len(s.tables)
}

// Lookup returns the overload set for name from the innermost table that
// declares it.
func (s *Stack) Lookup(name string) []*Global {
	for i := len(s.tables) - 1; i >= 0; i-- {
		if found := s.tables[i].Lookup(name); len(found) > 0 {
			return found
		}
	}
	return nil
}

// All pools every visible entry, innermost table first.
func (s *Stack) All() []*Global {
	var out []*Global
	for i := len(s.tables) - 1; i >= 0; i-- {
		out = append(out, s.tables[i].Globals()...)
	}
	return out
}

// Names returns every visible name, innermost table first and sorted
// within a table, without duplicates.
func (s *Stack) Names() []string {
	seen := make(map[string]bool)
	var out []string
	for i := len(s.tables) - 1; i >= 0; i-- {
		names := s.tables[i].Names()
		sort.Strings(names)
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// Reset clears the referenced and rendered state of every visible entry.
func (s *Stack) Reset() {
	for _, t := range s.tables {
		for _, g := range t.order {
			g.Referenced = false
			g.Rendered = false
			g.Text = ""
		}
	}
}
