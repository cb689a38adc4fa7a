package parser

import (
	"github.com/mna/stackyy/lang/errs"
	"github.com/mna/stackyy/lang/ir"
	"github.com/mna/stackyy/lang/token"
)

// preScan walks toks once, registering every function declaration's
// signature before any body is emitted, so that a forward reference to a
// function declared later in the same (or an as-yet-unparsed included)
// file can be resolved without a second file read (§4.3 Pre-scan). It also
// catches the purely structural fatals that do not depend on body content:
// a function declared while already inside one, `end` with no declaration
// open, and a missing `end` at EOF.
func (s *State) preScan(toks []token.Value) {
	insideFn := false
	for _, t := range toks {
		switch t.Kind {
		case token.FUNCDECL:
			if insideFn {
				s.Errs.AddFatal(errs.StageCompile, t, "function declaration inside a function body")
				return
			}
			insideFn = true
			ref, ok := s.resolveSig(t)
			if !ok {
				return
			}
			if _, exists := s.Signatures.Get(ref.Name); exists {
				s.Errs.AddFatal(errs.StageCompile, t, "duplicate function name '%s'", ref.Name)
				return
			}
			s.Signatures.Put(ref.Name, ref)
		case token.KEYWORD:
			switch t.Keyword {
			case token.Include:
				if insideFn {
					s.Errs.AddFatal(errs.StageCompile, t, "include inside a function body")
					return
				}
			case token.End:
				if !insideFn {
					s.Errs.AddFatal(errs.StageCompile, t, "'end' with no open function declaration")
					return
				}
				insideFn = false
			}
		}
	}
	if insideFn {
		s.Errs.AddFatal(errs.StageCompile, errs.NoInfo, "unclosed function at end of file")
	}
}

// resolveSig turns a FUNCDECL token's raw string signature into an
// ir.FuncRef, resolving each type name against the closed Type set (§4.2,
// §7: "unknown type name" is a fatal parse error).
func (s *State) resolveSig(t token.Value) (ir.FuncRef, bool) {
	ins, ok := s.resolveTypeNames(t, t.Sig.Ins)
	if !ok {
		return ir.FuncRef{}, false
	}
	outs, ok := s.resolveTypeNames(t, t.Sig.Outs)
	if !ok {
		return ir.FuncRef{}, false
	}
	return ir.FuncRef{Name: t.Sig.Name, Ins: ins, Outs: outs}, true
}

func (s *State) resolveTypeNames(t token.Value, names []string) ([]ir.Type, bool) {
	if len(names) == 0 {
		return nil, true
	}
	types := make([]ir.Type, len(names))
	for i, n := range names {
		typ, ok := ir.LookupTypeName(n)
		if !ok {
			s.Errs.AddFatal(errs.StageCompile, t, "unknown type name '%s'", n)
			return nil, false
		}
		types[i] = typ
	}
	return types, true
}
