// Package internals holds the registry of builtin opcodes described by
// §4.4: which ones exist, which include group activates each one, and the
// static (ins, outs) contract the type checker enforces for them. It plays
// the role the teacher's lang/compiler resolveIdent/builtin tables play for
// Lua-family global functions, but grouped by include rather than always
// present, and backed by github.com/dolthub/swiss the way the teacher backs
// its own runtime maps (lang/machine.Map).
package internals

import (
	"github.com/dolthub/swiss"
	"github.com/mna/stackyy/lang/ir"
)

// Group names the five include groups of §4.4. Core is always active; the
// rest are turned on by an `include "@std/<name>"` directive.
type Group string

const (
	GroupCore       Group = "core"
	GroupStackOps   Group = "std/stack-ops"
	GroupSimpleMath Group = "std/simple-maths"
	GroupBool       Group = "std/bool"
	GroupReflection Group = "std/reflection"
)

// Shape distinguishes the handful of internal ops whose contract cannot be
// spelled as a fixed (ins, outs) type list from the ordinary fixed ones
// (§4.6 assigns each opcode its own type handler; Shape is how the registry
// tells the type checker which handler shape to use).
type Shape uint8

const (
	// ShapeFixed ops consume exactly Ins and produce exactly Outs.
	ShapeFixed Shape = iota
	// ShapeNone ops are stack-wide or nullary: rev-stack, dup-stack,
	// drop-stack, dbg-stack, noop.
	ShapeNone
	// ShapeSwap is `(a, b) -> (b, a)` for any two types a, b.
	ShapeSwap
	// ShapeDup is `(a) -> (a, a)` for any type a.
	ShapeDup
	// ShapeCompare is `(T, T) -> (Bool)` where T in {Int, String, Bool} and
	// both sides match; cross-type comparison is a type error.
	ShapeCompare
)

// Contract is the static type of an internal op.
type Contract struct {
	Shape Shape
	Ins   []ir.Type
	Outs  []ir.Type
}

// entry binds one internal op's word, opcode and contract to the group that
// activates it.
type entry struct {
	op       ir.InternalOp
	word     string
	group    Group
	contract Contract
}

var any1 = []ir.Type{ir.Any}
var int1 = []ir.Type{ir.Int}
var int2 = []ir.Type{ir.Int, ir.Int}
var bool1 = []ir.Type{ir.Bool}
var str1 = []ir.Type{ir.String}

var fnptr = ir.FunctionPointer(nil, nil)

var registryEntries = []entry{
	{ir.OpNoop, "noop", GroupCore, Contract{Shape: ShapeNone}},
	{ir.OpPrint, "print", GroupCore, Contract{Shape: ShapeFixed, Ins: any1}},
	{ir.OpPrintln, "println", GroupCore, Contract{Shape: ShapeFixed, Ins: any1}},
	{ir.OpToString, "to-string", GroupCore, Contract{Shape: ShapeFixed, Ins: any1, Outs: str1}},

	{ir.OpSwap, "swap", GroupStackOps, Contract{Shape: ShapeSwap}},
	{ir.OpDrop, "drop", GroupStackOps, Contract{Shape: ShapeFixed, Ins: any1}},
	{ir.OpDup, "dup", GroupStackOps, Contract{Shape: ShapeDup}},
	{ir.OpRevStack, "rev-stack", GroupStackOps, Contract{Shape: ShapeNone}},
	{ir.OpDropStack, "drop-stack", GroupStackOps, Contract{Shape: ShapeNone}},
	{ir.OpDupStack, "dup-stack", GroupStackOps, Contract{Shape: ShapeNone}},
	{ir.OpDbgStack, "dbg-stack", GroupStackOps, Contract{Shape: ShapeNone}},

	{ir.OpAdd, "+", GroupSimpleMath, Contract{Shape: ShapeFixed, Ins: int2, Outs: int1}},
	{ir.OpSub, "-", GroupSimpleMath, Contract{Shape: ShapeFixed, Ins: int2, Outs: int1}},
	{ir.OpMul, "*", GroupSimpleMath, Contract{Shape: ShapeFixed, Ins: int2, Outs: int1}},
	{ir.OpDiv, "/", GroupSimpleMath, Contract{Shape: ShapeFixed, Ins: int2, Outs: int1}},
	{ir.OpMod, "%", GroupSimpleMath, Contract{Shape: ShapeFixed, Ins: int2, Outs: int1}},
	{ir.OpSquared, "squared", GroupSimpleMath, Contract{Shape: ShapeFixed, Ins: int1, Outs: int1}},
	{ir.OpCubed, "cubed", GroupSimpleMath, Contract{Shape: ShapeFixed, Ins: int1, Outs: int1}},

	{ir.OpNot, "!", GroupBool, Contract{Shape: ShapeFixed, Ins: bool1, Outs: bool1}},
	{ir.OpPeekNot, "@!", GroupBool, Contract{Shape: ShapeFixed, Ins: bool1, Outs: bool1}},
	{ir.OpEq, "=", GroupBool, Contract{Shape: ShapeCompare}},
	{ir.OpLt, "<", GroupBool, Contract{Shape: ShapeCompare}},
	{ir.OpGt, ">", GroupBool, Contract{Shape: ShapeCompare}},
	{ir.OpLe, "<=", GroupBool, Contract{Shape: ShapeCompare}},
	{ir.OpGe, ">=", GroupBool, Contract{Shape: ShapeCompare}},

	{ir.OpRefRemStr, "ref-rem-str", GroupReflection, Contract{
		Shape: ShapeFixed, Ins: []ir.Type{ir.Int, fnptr}, Outs: []ir.Type{ir.String, fnptr},
	}},
	{ir.OpRefRemStrDrop, "ref-rem-str-drop", GroupReflection, Contract{
		Shape: ShapeFixed, Ins: []ir.Type{ir.Int, fnptr}, Outs: []ir.Type{fnptr},
	}},
	{ir.OpRefPush, "ref-push", GroupReflection, Contract{
		Shape: ShapeFixed, Ins: []ir.Type{ir.String, fnptr}, Outs: []ir.Type{fnptr},
	}},
	{ir.OpRefClear, "ref-clear", GroupReflection, Contract{
		Shape: ShapeFixed, Ins: []ir.Type{fnptr}, Outs: []ir.Type{fnptr},
	}},
}

// Binding is what the active-set lookup returns for a resolved word.
type Binding struct {
	Op       ir.InternalOp
	Contract Contract
}

// Registry indexes every known internal op by word, for building the
// per-group tables that a parser State folds into its active set.
type Registry struct {
	byGroup map[Group]*swiss.Map[string, Binding]
}

// NewRegistry builds the fixed registry of §4.4 once; it never changes at
// runtime, so a single package-level instance is reused by Default.
func NewRegistry() *Registry {
	r := &Registry{byGroup: make(map[Group]*swiss.Map[string, Binding])}
	for _, e := range registryEntries {
		g, ok := r.byGroup[e.group]
		if !ok {
			g = swiss.NewMap[string, Binding](8)
			r.byGroup[e.group] = g
		}
		g.Put(e.word, Binding{Op: e.op, Contract: e.contract})
	}
	return r
}

// Group returns the word -> Binding table for one include group, or nil if
// the group name is not one of the five known groups.
func (r *Registry) Group(g Group) *swiss.Map[string, Binding] {
	return r.byGroup[g]
}

// IsStdGroup reports whether name (the argument of an `include "@std/..."`
// directive, without the "@std/" prefix) names one of the four optional
// internal groups.
func IsStdGroup(name string) (Group, bool) {
	g := Group("std/" + name)
	switch g {
	case GroupStackOps, GroupSimpleMath, GroupBool, GroupReflection:
		return g, true
	}
	return "", false
}

// Default is the shared registry instance used throughout the pipeline.
var Default = NewRegistry()

// contractByOp indexes registryEntries by opcode, for ContractForOp: once
// parsing has resolved a word to its InternalOp, the word and group that
// produced it no longer matter to the type checker or the machine.
var contractByOp = func() map[ir.InternalOp]Contract {
	m := make(map[ir.InternalOp]Contract, len(registryEntries))
	for _, e := range registryEntries {
		m[e.op] = e.contract
	}
	return m
}()

// ContractForOp resolves an already-identified internal opcode to its
// static contract (§4.6).
func ContractForOp(op ir.InternalOp) (Contract, bool) {
	c, ok := contractByOp[op]
	return c, ok
}

// ActiveSet folds the core group and every requested group into a single
// word -> Binding table (§4.4: "Resolution builds the active map by folding
// the include list over the core set"). Unknown groups are ignored by the
// caller before reaching here; ActiveSet trusts its input.
func ActiveSet(groups []Group) *swiss.Map[string, Binding] {
	active := swiss.NewMap[string, Binding](32)
	fold := func(g Group) {
		tbl := Default.Group(g)
		if tbl == nil {
			return
		}
		tbl.Iter(func(word string, b Binding) bool {
			active.Put(word, b)
			return false
		})
	}
	fold(GroupCore)
	for _, g := range groups {
		fold(g)
	}
	return active
}

// Lookup resolves word against the active set built from groups, reporting
// false if it names neither an internal op nor (by omission) a function —
// the caller is responsible for checking function names first, since a
// Word that is not a function and not in the active map is a compile error
// per §4.4.
func Lookup(groups []Group, word string) (Binding, bool) {
	active := ActiveSet(groups)
	return active.Get(word)
}
