package parser

import (
	"os"
	"path/filepath"

	"github.com/mna/stackyy/lang/errs"
	"github.com/mna/stackyy/lang/ir"
	"github.com/mna/stackyy/lang/lexer"
	"github.com/mna/stackyy/lang/limits"
	"github.com/mna/stackyy/lang/preparse"
	"github.com/mna/stackyy/lang/token"
)

// Parse reads the top-level source file at path, parses it and every file
// it transitively includes, and returns the resulting Program. The
// Program's Meta is left zero; callers combine it with a separately loaded
// metadata file (§6.2).
func Parse(path string) (*ir.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSource(path, string(src), limits.Default())
}

// ParseSource parses src as if read from path, under the given bounds. It
// is the entry point tests and `simulate` (which already holds the source
// in memory) use directly.
func ParseSource(path, src string, lim limits.Limits) (*ir.Program, error) {
	program := ir.NewProgram(ir.Meta{})
	st := NewState(program, lim)

	st.parseFile(path, src, 0)
	if st.Errs.HasFatal() {
		return nil, st.Errs.Err()
	}

	st.resolveDeferred()
	if st.Errs.HasFatal() {
		return nil, st.Errs.Err()
	}

	return program, nil
}

// parseFile tokenizes src and runs the pre-scan and body-emission passes
// over it, tracking includeDepth for the nested-include bound (§3.8).
func (s *State) parseFile(path, src string, includeDepth int) {
	raw, err := preparse.Parse(path, src)
	if err != nil {
		s.Errs.AddFatal(errs.StageCompile, errs.NoInfo, "%s", err)
		return
	}

	toks := make([]token.Value, 0, len(raw))
	for _, r := range raw {
		v, err := lexer.Classify(r, s.Errs)
		if err != nil {
			s.Errs.AddFatal(errs.StageCompile, errs.NoInfo, "%s", err)
			return
		}
		toks = append(toks, v)
	}

	dir := filepath.Dir(path)
	s.preScan(toks)
	if s.Errs.HasFatal() {
		return
	}
	s.emitBody(toks, dir, includeDepth)
}
