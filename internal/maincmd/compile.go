package maincmd

import (
	"context"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/stackyy/lang/bytecode"
	"github.com/mna/stackyy/lang/limits"
	"github.com/mna/stackyy/lang/parser"
	"github.com/mna/stackyy/lang/token"
	"github.com/mna/stackyy/lang/typecheck"
)

// Compile implements the `compile -f <file> -m <meta.yml> -o <out> [-s
// LEVEL] [-r]` verb (§6.1): parse, type-check, attach metadata and write
// the result out as bytecode, at the requested debug-info strip level and
// in either the compact binary or human-readable text encoding.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return printError(stdio, compileFile(c.File, c.Meta, c.Out, token.StripLevel(c.Strip), c.Readable))
}

func compileFile(srcPath, metaPath, outPath string, level token.StripLevel, readable bool) error {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	metaData, err := os.ReadFile(metaPath)
	if err != nil {
		return err
	}
	meta, err := bytecode.LoadMeta(metaData)
	if err != nil {
		return err
	}

	lim, err := limits.FromEnv()
	if err != nil {
		return err
	}

	program, err := parser.ParseSource(srcPath, string(src), lim)
	if err != nil {
		return err
	}
	if err := typecheck.Check(program); err != nil {
		return err
	}
	program.Meta = meta

	format := bytecode.Binary
	if readable {
		format = bytecode.Text
	}
	out, err := bytecode.Encode(program, level, format)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, out, 0o644)
}
