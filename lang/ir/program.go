package ir

import (
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"
)

// Meta is a compiled program's metadata (§3.7, §6.2). Name and Version are
// required by the metadata file format; Author and Description are
// optional and nil when absent.
type Meta struct {
	Name        string
	Version     string
	Author      *string
	Description *string
}

// Program is the top-level unit the parser produces and the machine runs,
// or that the bytecode codec serializes (§3.7). Functions is backed by a
// SwissTable map: once a program is parsed, the table is read far more
// than written (every Call and PushFunction looks a name up, but names are
// only ever inserted once, at parse time), which plays to swiss's
// strength the same way the teacher picks it for read-heavy module-level
// tables.
type Program struct {
	Meta      Meta
	Functions *swiss.Map[string, *Function]
}

// NewProgram returns an empty Program ready to accept function
// definitions.
func NewProgram(meta Meta) *Program {
	return &Program{Meta: meta, Functions: swiss.NewMap[string, *Function](8)}
}

// Lookup returns the named function, or nil if the program has none by
// that name.
func (p *Program) Lookup(name string) *Function {
	fn, ok := p.Functions.Get(name)
	if !ok {
		return nil
	}
	return fn
}

// Has reports whether the program defines a function by that name.
func (p *Program) Has(name string) bool {
	return p.Functions.Has(name)
}

// Define adds fn to the program, keyed by its name (§3.8: function names
// are unique per program; callers are expected to have already checked
// that with Has).
func (p *Program) Define(fn *Function) {
	p.Functions.Put(fn.Name, fn)
}

// Names returns the program's function names sorted lexically, the
// iteration order used by the bytecode codec and the `info` command so
// their output is deterministic despite the underlying hash table having
// none.
func (p *Program) Names() []string {
	names := make([]string, 0, p.Functions.Count())
	p.Functions.Iter(func(name string, _ *Function) bool {
		names = append(names, name)
		return false
	})
	slices.Sort(names)
	return names
}

// Len returns the number of functions defined in the program.
func (p *Program) Len() int { return p.Functions.Count() }
