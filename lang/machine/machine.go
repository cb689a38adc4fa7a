// Package machine implements the executor (VM) of §4.7: a single operand
// stack of runtime values, a shadow type stack kept in lock-step with it
// (§3.8's desync invariant), a bounded native call depth, and the
// per-operation loop that runs each instruction's type handler in "runtime
// mode" before its runtime handler.
//
// The teacher's lang/machine is a tree-walking Lua interpreter (Thread,
// upvalues, metatables, coroutines); Stackyy has none of that machinery,
// but keeps the teacher's posture of a Thread type owning one call stack
// and running to completion with no suspension points, matching §4.7's
// "Suspension points: none within the interpreter's core loop".
package machine

import (
	"fmt"
	"io"

	"github.com/mna/stackyy/lang/errs"
	"github.com/mna/stackyy/lang/ir"
	"github.com/mna/stackyy/lang/limits"
	"github.com/mna/stackyy/lang/token"
	"github.com/mna/stackyy/lang/typecheck"
	"github.com/mna/stackyy/lang/values"
)

// flusher is implemented by buffered writers (e.g. bufio.Writer); Thread
// flushes Stdout through it when one is supplied, per §4.7's "print...
// flushes stdout". A plain *os.File or any other io.Writer without Flush is
// used as-is.
type flusher interface{ Flush() error }

// Thread is one executing call stack (§4.7's executor State): the operand
// stack, its shadow type stack, and the bookkeeping the per-op loop
// maintains across calls.
type Thread struct {
	Program *ir.Program
	Stdout  io.Writer
	Limits  limits.Limits

	stack     []values.Value
	shadow    *typecheck.Stack
	callDepth int
	steps     int
	lastOp    ir.Operation
}

// NewThread builds a Thread ready to run program against stdout, bounded by
// lim. The shadow type stack is global to the thread, not per call: a
// concatenative function body only ever touches the top of a single shared
// operand stack, so one continuous shadow stack mirrors it across the whole
// call tree the same way the real stack is shared (§4.7).
func NewThread(program *ir.Program, lim limits.Limits, stdout io.Writer) *Thread {
	return &Thread{
		Program: program,
		Stdout:  stdout,
		Limits:  lim,
		shadow:  typecheck.NewStack(nil),
		lastOp:  ir.Operation{Debug: token.NoDebug},
	}
}

// Run is the entry point of §4.7: it asserts a main function exists,
// invokes it, and enforces the postcondition that exactly one Int remains
// on the operand stack, returned as the process exit code.
func Run(program *ir.Program, lim limits.Limits, stdout io.Writer) (int32, error) {
	t := NewThread(program, lim, stdout)
	main := program.Lookup("main")
	if main == nil {
		return 0, errs.Runtime(errs.NoInfo, "program has no 'main' function")
	}
	if err := t.call(main); err != nil {
		return 0, err
	}
	if len(t.stack) != 1 {
		return 0, errs.Runtime(errs.NoInfo, "main must leave exactly one value on the stack, got %d", len(t.stack))
	}
	exit, ok := t.stack[0].(values.Int)
	if !ok {
		return 0, errs.Runtime(errs.NoInfo, "main's final stack value must be Int, got %s", t.stack[0].Type())
	}
	return int32(exit), nil
}

func (t *Thread) push(v values.Value) { t.stack = append(t.stack, v) }

func (t *Thread) pop(op ir.Operation) (values.Value, error) {
	if len(t.stack) == 0 {
		return nil, errs.Runtime(op.Debug, "operand stack underflow")
	}
	v := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return v, nil
}

func (t *Thread) popInt(op ir.Operation) (values.Int, error) {
	v, err := t.pop(op)
	if err != nil {
		return 0, err
	}
	i, ok := v.(values.Int)
	if !ok {
		return 0, errs.Runtime(op.Debug, "expected Int, got %s", v.Type())
	}
	return i, nil
}

func (t *Thread) popBool(op ir.Operation) (values.Bool, error) {
	v, err := t.pop(op)
	if err != nil {
		return false, err
	}
	b, ok := v.(values.Bool)
	if !ok {
		return false, errs.Runtime(op.Debug, "expected Bool, got %s", v.Type())
	}
	return b, nil
}

func (t *Thread) popString(op ir.Operation) (values.String, error) {
	v, err := t.pop(op)
	if err != nil {
		return "", err
	}
	s, ok := v.(values.String)
	if !ok {
		return "", errs.Runtime(op.Debug, "expected String, got %s", v.Type())
	}
	return s, nil
}

func (t *Thread) popFunction(op ir.Operation) (*values.Function, error) {
	v, err := t.pop(op)
	if err != nil {
		return nil, err
	}
	f, ok := v.(*values.Function)
	if !ok {
		return nil, errs.Runtime(op.Debug, "expected function pointer, got %s", v.Type())
	}
	return f, nil
}

func (t *Thread) popDescriptor(op ir.Operation) (*values.Descriptor, error) {
	v, err := t.pop(op)
	if err != nil {
		return nil, err
	}
	d, ok := v.(*values.Descriptor)
	if !ok {
		return nil, errs.Runtime(op.Debug, "expected descriptor, got %s", v.Type())
	}
	return d, nil
}

// call runs fn's body, bounded by MaxCallStackSize (§3.8), implementing the
// per-op loop of §4.7. It assumes the caller has already left exactly fn's
// Ins on top of the shared operand and shadow stacks.
func (t *Thread) call(fn *ir.Function) error {
	t.callDepth++
	defer func() { t.callDepth-- }()

	for _, op := range fn.Body {
		if t.callDepth > t.Limits.MaxCallStackSize {
			return errs.Runtime(op.Debug, "stack overflow: call depth exceeds %d", t.Limits.MaxCallStackSize)
		}
		if len(t.stack) != t.shadow.Len() {
			return errs.Runtime(op.Debug, "desync between operand stack (%d) and shadow type stack (%d) after '%s'",
				len(t.stack), t.shadow.Len(), t.lastOp.Op)
		}
		if t.Limits.MaxSteps > 0 {
			t.steps++
			if t.steps > t.Limits.MaxSteps {
				return errs.Runtime(op.Debug, "exceeded maximum step count of %d", t.Limits.MaxSteps)
			}
		}

		if v := typecheck.ApplyOperation(t.Program, t.shadow, op); v != nil {
			return errs.Runtime(op.Debug, "in function '%s': %s", fn.Name, v.Error())
		}
		if err := t.exec(fn, op); err != nil {
			return err
		}
		t.lastOp = op
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	_, err := fmt.Fprint(w, s)
	return err
}
