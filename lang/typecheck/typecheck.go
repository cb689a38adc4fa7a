// Package typecheck implements the static checker of §4.6: a per-function
// shadow stack of types, walked once per function in sorted name order
// (ir.Program.Names), each operation either mutating the stack to reflect
// its effect or reporting one of the closed ErrorKind variants with the expected types
// and a snapshot of the offending stack for the diagnostic.
//
// The teacher has no type checker of its own (Lua is dynamically typed), so
// this package borrows its overall posture — a single-pass walker
// accumulating into an errs.List, one diagnostic per failure, continuing to
// the next function rather than aborting the whole program — from how
// lang/resolver walks the teacher's AST collecting errors. The per-opcode
// type handlers themselves live in shapes.go as ApplyOperation, shared
// verbatim with lang/machine so the same rules run in "runtime mode"
// (§4.7) as ran here at compile time.
package typecheck

import (
	"github.com/mna/stackyy/lang/errs"
	"github.com/mna/stackyy/lang/ir"
	"github.com/mna/stackyy/lang/token"
)

// Check type-checks every function in program, returning a combined error
// listing every failure found across every function (a bad function does
// not stop the others from being checked).
func Check(program *ir.Program) error {
	list := &errs.List{}
	for _, name := range program.Names() {
		checkFunction(program, list, program.Lookup(name))
	}
	return list.Err()
}

func checkFunction(program *ir.Program, list *errs.List, fn *ir.Function) {
	st := NewStack(fn.Ins)
	last := token.NoDebug

	for _, op := range fn.Body {
		last = op.Debug
		if v := ApplyOperation(program, st, op); v != nil {
			list.AddFatal(errs.StageCompile, op.Debug, "in function '%s': %s", fn.Name, v.Error())
			return
		}
	}

	if !contractMatches(fn.Outs, st.Snapshot()) {
		list.AddFatal(errs.StageCompile, last,
			"in function '%s': unused elements on the stack: expected [%s], got [%s]",
			fn.Name, ir.JoinTypes(fn.Outs), ir.JoinTypes(st.Snapshot()))
	}
}
