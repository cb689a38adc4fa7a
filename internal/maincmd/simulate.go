package maincmd

import (
	"context"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/stackyy/lang/limits"
	"github.com/mna/stackyy/lang/machine"
	"github.com/mna/stackyy/lang/parser"
	"github.com/mna/stackyy/lang/typecheck"
)

// Simulate implements the `simulate -f <file>` verb (§6.1): parse,
// type-check and run a source file in one shot, the fast inner loop a
// developer uses while iterating on a program.
func (c *Cmd) Simulate(ctx context.Context, stdio mainer.Stdio, args []string) error {
	exit, err := simulateFile(c.File, stdio)
	if err != nil {
		return printError(stdio, err)
	}
	c.exitCode = exit
	return nil
}

func simulateFile(path string, stdio mainer.Stdio) (int32, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	lim, err := limits.FromEnv()
	if err != nil {
		return 0, err
	}

	program, err := parser.ParseSource(path, string(src), lim)
	if err != nil {
		return 0, err
	}
	if err := typecheck.Check(program); err != nil {
		return 0, err
	}

	return machine.Run(program, lim, stdio.Stdout)
}
