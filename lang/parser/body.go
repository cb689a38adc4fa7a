package parser

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mna/stackyy/lang/descriptor"
	"github.com/mna/stackyy/lang/errs"
	"github.com/mna/stackyy/lang/internals"
	"github.com/mna/stackyy/lang/ir"
	"github.com/mna/stackyy/lang/token"
)

// emitBody runs the top-level grammar of §4.3 over toks: only `include` and
// function declarations are legal here.
func (s *State) emitBody(toks []token.Value, dir string, includeDepth int) {
	i := 0
	for i < len(toks) {
		t := toks[i]
		switch {
		case t.Kind == token.KEYWORD && t.Keyword == token.Include:
			i++
			if i >= len(toks) || toks[i].Kind != token.STR {
				s.Errs.AddFatal(errs.StageCompile, t, "include must be followed by a string path")
				return
			}
			pathTok := toks[i]
			i++
			s.handleInclude(pathTok, dir, includeDepth)
			if s.Errs.HasFatal() {
				return
			}

		case t.Kind == token.FUNCDECL:
			ref, ok := s.resolveSig(t)
			if !ok {
				return
			}
			fn := &ir.Function{Name: ref.Name, Ins: ref.Ins, Outs: ref.Outs}
			end := s.emitFunctionBody(fn, toks, i+1)
			if s.Errs.HasFatal() {
				return
			}
			s.Program.Define(fn)
			i = end + 1

		default:
			s.Errs.AddFatal(errs.StageCompile, t, "expected 'include' or a function declaration at top level")
			return
		}
	}
}

// emitFunctionBody emits operations for fn's body starting at toks[start],
// stopping at the matching `end` keyword (preScan already guarantees one
// exists with no nested structure in between) and returning its index.
func (s *State) emitFunctionBody(fn *ir.Function, toks []token.Value, start int) int {
	i := start
	for i < len(toks) {
		t := toks[i]
		if t.Kind == token.KEYWORD && t.Keyword == token.End {
			return i
		}
		if !s.emitOne(fn, t) {
			return i
		}
		i++
	}
	s.Errs.AddFatal(errs.StageCompile, errs.NoInfo, "unclosed function '%s'", fn.Name)
	return i
}

// emitOne emits zero or more operations for a single token inside a
// function body, per the token-shape table of §4.3. It returns false on a
// fatal error, having already recorded it.
func (s *State) emitOne(fn *ir.Function, t token.Value) bool {
	switch t.Kind {
	case token.INT:
		fn.Body = append(fn.Body, ir.Operation{
			Op: ir.OpKindPush, Debug: token.NewTokenDebug(t),
			Operand: &ir.Operand{Kind: ir.OperandInt, Int: t.Int},
		})
	case token.STR:
		fn.Body = append(fn.Body, ir.Operation{
			Op: ir.OpKindPush, Debug: token.NewTokenDebug(t),
			Operand: &ir.Operand{Kind: ir.OperandStr, Str: t.Str},
		})
	case token.FUNCPTR:
		ref, ok := s.resolveSig(t)
		if !ok {
			return false
		}
		fn.Body = append(fn.Body, ir.Operation{
			Op: ir.OpKindPush, Debug: token.NewTokenDebug(t),
			Operand: &ir.Operand{Kind: ir.OperandPushFunction, PushFunction: ref},
		})
	case token.FUNCDECL:
		s.Errs.AddFatal(errs.StageCompile, t, "function declaration inside a function body")
		return false
	case token.KEYWORD:
		switch t.Keyword {
		case token.Include:
			s.Errs.AddFatal(errs.StageCompile, t, "include inside a function body")
			return false
		case token.At:
			fn.Body = append(fn.Body, ir.Operation{Op: ir.OpKindCall, Debug: token.NewTokenDebug(t)})
		case token.AtIf:
			fn.Body = append(fn.Body, ir.Operation{Op: ir.OpKindCallIf, Debug: token.NewTokenDebug(t)})
		default:
			s.Errs.AddFatal(errs.StageCompile, t, "unexpected keyword '%s' in function body", t.Raw)
			return false
		}
	case token.WORD:
		return s.emitWord(fn, t)
	}
	return true
}

// emitWord handles the four Word shapes: descriptor action (`!type-
// action`), function reference (`~name`), call to a known function, or
// internal opcode.
func (s *State) emitWord(fn *ir.Function, t token.Value) bool {
	raw := t.Raw

	if strings.HasPrefix(raw, "!") {
		typName, actionName, ok := splitDescriptorWord(raw[1:])
		if !ok {
			s.Errs.AddFatal(errs.StageCompile, t, "malformed descriptor action '%s'", raw)
			return false
		}
		typ, ok := descriptor.LookupType(typName)
		if !ok {
			s.Errs.AddFatal(errs.StageCompile, t, "unknown descriptor type '%s'", typName)
			return false
		}
		action, ok := descriptor.LookupAction(actionName)
		if !ok {
			s.Errs.AddFatal(errs.StageCompile, t, "unknown descriptor action '%s'", actionName)
			return false
		}
		fn.Body = append(fn.Body, ir.Operation{
			Op: ir.OpKindDescriptor, Debug: token.NewTokenDebug(t),
			Operand: &ir.Operand{Kind: ir.OperandDescriptorAction, DescriptorAction: ir.DescriptorActionRef{
				Type: string(typ), Action: action.String(),
			}},
		})
		return true
	}

	if strings.HasPrefix(raw, "~") {
		name := raw[1:]
		if ref, ok := s.Signatures.Get(name); ok {
			fn.Body = append(fn.Body, ir.Operation{
				Op: ir.OpKindPush, Debug: token.NewTokenDebug(t),
				Operand: &ir.Operand{Kind: ir.OperandPushFunction, PushFunction: ref},
			})
			return true
		}
		fn.Body = append(fn.Body, ir.Operation{
			Op: ir.OpKindPush, Debug: token.NewTokenDebug(t),
			Operand: &ir.Operand{Kind: ir.OperandStr, Str: name},
		})
		s.deferred = append(s.deferred, deferredRef{fn: fn, idx: len(fn.Body) - 1, tok: t})
		return true
	}

	if ref, ok := s.Signatures.Get(raw); ok {
		fn.Body = append(fn.Body, ir.Operation{
			Op: ir.OpKindCall, Debug: token.NewTokenDebug(t),
			Operand: &ir.Operand{Kind: ir.OperandCall, Call: ref.Name},
		})
		return true
	}

	if b, ok := internals.Lookup(s.activeGroups(), raw); ok {
		fn.Body = append(fn.Body, ir.Operation{
			Op: ir.OpKindInternal, Debug: token.NewTokenDebug(t),
			Operand: &ir.Operand{Kind: ir.OperandInternal, Internal: b.Op},
		})
		return true
	}

	s.Errs.AddFatal(errs.StageCompile, t, "unknown internal '%s'", raw)
	return false
}

// splitDescriptorWord splits "file-read-all" into ("file", "read-all"), the
// type name being whatever precedes the first hyphen.
func splitDescriptorWord(s string) (typ, action string, ok bool) {
	idx := strings.IndexByte(s, '-')
	if idx < 0 || idx == len(s)-1 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

// handleInclude resolves one `include "<path>"` directive per §4.3: a
// `@std/<lib>` reference activates an internals group, a bare `@<other>`
// loads a bundled asset, anything else is a filesystem path relative to
// dir. Already-included paths are skipped so that diamond includes (two
// files each including the same library) are not an error.
func (s *State) handleInclude(pathTok token.Value, dir string, includeDepth int) {
	raw := pathTok.Str

	if strings.HasPrefix(raw, "@") {
		name := raw[1:]
		if strings.HasPrefix(name, "std/") {
			group, ok := internals.IsStdGroup(strings.TrimPrefix(name, "std/"))
			if !ok {
				s.Errs.AddFatal(errs.StageCompile, pathTok, "unknown standard library group '%s'", raw)
				return
			}
			s.SysLibs[group] = true
			return
		}

		assetPath, ok := bundledLibs[name]
		if !ok {
			s.Errs.AddFatal(errs.StageCompile, pathTok, "unknown bundled library '%s'", raw)
			return
		}
		if s.includedAt[assetPath] {
			return
		}
		s.includedAt[assetPath] = true
		src, err := stdlibFS.ReadFile(assetPath)
		if err != nil {
			s.Errs.AddFatal(errs.StageCompile, pathTok, "bundled library '%s' unreadable: %s", raw, err)
			return
		}
		s.includeNested(assetPath, string(src), includeDepth, pathTok)
		return
	}

	full := filepath.Join(dir, raw)
	if s.includedAt[full] {
		return
	}
	s.includedAt[full] = true
	src, err := os.ReadFile(full)
	if err != nil {
		s.Errs.AddFatal(errs.StageCompile, pathTok, "cannot read included file '%s': %s", raw, err)
		return
	}
	s.includeNested(full, string(src), includeDepth, pathTok)
}

// includeNested enforces MAX_INCL_DEPTH (§3.8) before recursing into the
// included file's own pre-scan and body-emission passes.
func (s *State) includeNested(path, src string, includeDepth int, pathTok token.Value) {
	if includeDepth+1 > s.Limits.MaxInclDepth {
		s.Errs.AddFatal(errs.StageCompile, pathTok, "include depth %d exceeds limit of %d", includeDepth+1, s.Limits.MaxInclDepth)
		return
	}
	s.parseFile(path, src, includeDepth+1)
}
