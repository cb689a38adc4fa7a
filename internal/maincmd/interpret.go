package maincmd

import (
	"context"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/stackyy/lang/bytecode"
	"github.com/mna/stackyy/lang/limits"
	"github.com/mna/stackyy/lang/machine"
)

// Interpret implements the `interpret -f <bytecode>` verb (§6.1): load a
// previously compiled program and run it directly, with no parse or
// type-check pass (those already happened at compile time).
func (c *Cmd) Interpret(ctx context.Context, stdio mainer.Stdio, args []string) error {
	exit, err := interpretFile(c.File, stdio)
	if err != nil {
		return printError(stdio, err)
	}
	c.exitCode = exit
	return nil
}

func interpretFile(path string, stdio mainer.Stdio) (int32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	program, err := bytecode.Decode(data, detectFormat(data))
	if err != nil {
		return 0, err
	}

	lim, err := limits.FromEnv()
	if err != nil {
		return 0, err
	}
	return machine.Run(program, lim, stdio.Stdout)
}

// detectFormat distinguishes the two bytecode encodings by their first
// byte: the binary encoding always opens with its version tag (currently
// 1), a value that can never be the first byte of the yaml text encoding,
// whose documents always open with a '-' or letter from the "meta:" key.
func detectFormat(data []byte) bytecode.Format {
	if len(data) > 0 && data[0] < 0x20 {
		return bytecode.Binary
	}
	return bytecode.Text
}
