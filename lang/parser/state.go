// Package parser implements the grammar of §4.3: top-level include and
// function-declaration parsing, the pre-scan that enables forward
// references within and across included files, body emission per the
// token-shape table, and the post-pass that resolves deferred function
// references once every signature in the include tree is known. It plays
// the role the teacher's lang/parser plays (turning tokens into a program
// representation) but walks a flat token cursor instead of a recursive-
// descent expression grammar, since Stackyy's grammar has no expressions,
// only a function body made of words.
package parser

import (
	"embed"

	"github.com/dolthub/swiss"
	"github.com/mna/stackyy/lang/errs"
	"github.com/mna/stackyy/lang/internals"
	"github.com/mna/stackyy/lang/ir"
	"github.com/mna/stackyy/lang/limits"
	"github.com/mna/stackyy/lang/token"
)

//go:embed stdlib/*.scy
var stdlibFS embed.FS

// bundledLibs maps an `@<other>` include name to the embedded source file
// backing it (§4.3: "@<other> names a bundled optional source file").
var bundledLibs = map[string]string{
	"logging": "stdlib/logging.scy",
	"files":   "stdlib/files.scy",
}

// deferredRef is a `~name` reference emitted before name's signature was
// known, to be resolved once the whole include tree has been pre-scanned
// (§4.3 Post-pass).
type deferredRef struct {
	fn  *ir.Function
	idx int
	tok token.Value
}

// State is the shared parsing context threaded through an entire include
// tree: one top-level file and everything it (transitively) includes
// contribute to the same Functions, Signatures and SysLibs tables (§4.3).
type State struct {
	Program    *ir.Program
	Signatures *swiss.Map[string, ir.FuncRef]
	SysLibs    map[internals.Group]bool
	Limits     limits.Limits

	Errs *errs.List

	deferred   []deferredRef
	includedAt map[string]bool // resolved include paths already included, cycle guard
}

// NewState builds an empty State ready to parse a top-level file.
func NewState(program *ir.Program, lim limits.Limits) *State {
	return &State{
		Program:    program,
		Signatures: swiss.NewMap[string, ir.FuncRef](16),
		SysLibs:    make(map[internals.Group]bool),
		Limits:     lim,
		Errs:       &errs.List{},
		includedAt: make(map[string]bool),
	}
}

// activeGroups returns the include groups currently active, for
// internals.Lookup/ActiveSet.
func (s *State) activeGroups() []internals.Group {
	groups := make([]internals.Group, 0, len(s.SysLibs))
	for g, on := range s.SysLibs {
		if on {
			groups = append(groups, g)
		}
	}
	return groups
}

// resolveDeferred runs the Post-pass of §4.3 once the whole include tree
// has been parsed: every `~name` reference recorded before its signature
// was known is resolved now, or reported as an unknown function.
func (s *State) resolveDeferred() {
	for _, d := range s.deferred {
		ref, ok := s.Signatures.Get(d.tok.Raw[1:])
		if !ok {
			s.Errs.AddFatal(errs.StageCompile, d.tok.Pos, "unknown function reference '%s'", d.tok.Raw)
			continue
		}
		d.fn.Body[d.idx].Operand = &ir.Operand{Kind: ir.OperandPushFunction, PushFunction: ref}
	}
}
