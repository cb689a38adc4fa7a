package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/stackyy/lang/bytecode"
	"github.com/mna/stackyy/lang/ir"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Info implements the `info -f <bytecode> [-e <out.yml>]` verb (§6.1):
// print a compiled program's metadata and function signatures, optionally
// also writing the metadata back out as its own yaml file.
func (c *Cmd) Info(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return printError(stdio, infoFile(c.File, c.ExportMeta, stdio))
}

func infoFile(path, exportPath string, stdio mainer.Stdio) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	program, err := bytecode.Decode(data, detectFormat(data))
	if err != nil {
		return err
	}

	printMeta(stdio, program.Meta)
	fmt.Fprintf(stdio.Stdout, "functions:\n")
	for _, name := range program.Names() {
		fn := program.Lookup(name)
		fmt.Fprintf(stdio.Stdout, "  %s(%s -> %s)\n", fn.Name, ir.JoinTypes(fn.Ins), ir.JoinTypes(fn.Outs))
	}

	if exportPath == "" {
		return nil
	}
	out, err := bytecode.SaveMeta(program.Meta)
	if err != nil {
		return err
	}
	return os.WriteFile(exportPath, out, 0o644)
}

// printMeta renders the set metadata fields in sorted key order, so the
// dump is deterministic regardless of which optional fields a given
// program happens to carry.
func printMeta(stdio mainer.Stdio, m ir.Meta) {
	fields := map[string]string{"name": m.Name, "version": m.Version}
	if m.Author != nil {
		fields["author"] = *m.Author
	}
	if m.Description != nil {
		fields["description"] = *m.Description
	}

	keys := maps.Keys(fields)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(stdio.Stdout, "%s: %s\n", k, fields[k])
	}
}
