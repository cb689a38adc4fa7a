package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "stackyy"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<flag>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<flag>...]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler, interpreter and project scaffolder for the %[1]s stack-based
language.

The <command> can be one of:
       simulate -f <file>                Parse, type-check and run a
                                          source file directly.
       compile -f <file> -m <meta.yml>
               -o <out> [-s LEVEL] [-r]   Compile a source file to
                                          bytecode. LEVEL strips debug
                                          info: 0 full, 1 position only,
                                          2 none. -r writes the
                                          human-readable encoding
                                          instead of the compact binary
                                          one.
       interpret -f <bytecode>           Load a compiled program and
                                          run it.
       info -f <bytecode> [-e <out.yml>] Print a compiled program's
                                          metadata; -e also writes it
                                          to a file.
       new -n <name> -p <path>           Scaffold a new project
                                          directory <path>/<name>-scy/.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version               Print version and exit.
       -f --file                 Source or bytecode file.
       -m --meta                 Metadata yaml file (compile).
       -o --out                  Output file (compile).
       -s --strip                Debug info strip level, 0-2 (compile).
       -r --readable             Emit human-readable bytecode (compile).
       -e --export-meta          Metadata export file (info).
       -n --name                 Project name (new).
       -p --path                 Parent directory (new).

More information on the %[1]s repository:
       https://github.com/mna/stackyy
`, binName)
)

// Cmd holds every flag accepted by any command; Validate checks which ones
// are required or forbidden for the command actually invoked, the same
// flat-struct-plus-per-command-Validate shape the teacher's CLI uses.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	File        string `flag:"f,file"`
	Meta        string `flag:"m,meta"`
	Out         string `flag:"o,out"`
	Strip       int    `flag:"s,strip"`
	Readable    bool   `flag:"r,readable"`
	ExportMeta  string `flag:"e,export-meta"`
	Name        string `flag:"n,name"`
	Path        string `flag:"p,path"`

	args     []string
	flags    map[string]bool
	cmdFn    func(context.Context, mainer.Stdio, []string) error
	exitCode int32
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]

	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	switch cmdName {
	case "simulate", "interpret":
		if c.File == "" {
			return fmt.Errorf("%s: -f/--file is required", cmdName)
		}
	case "compile":
		if c.File == "" {
			return fmt.Errorf("%s: -f/--file is required", cmdName)
		}
		if c.Meta == "" {
			return fmt.Errorf("%s: -m/--meta is required", cmdName)
		}
		if c.Out == "" {
			return fmt.Errorf("%s: -o/--out is required", cmdName)
		}
		if c.Strip < 0 || c.Strip > 2 {
			return fmt.Errorf("%s: -s/--strip must be 0, 1 or 2", cmdName)
		}
	case "info":
		if c.File == "" {
			return fmt.Errorf("%s: -f/--file is required", cmdName)
		}
	case "new":
		if c.Name == "" {
			return fmt.Errorf("%s: -n/--name is required", cmdName)
		}
		if c.Path == "" {
			return fmt.Errorf("%s: -p/--path is required", cmdName)
		}
	}

	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		// each command takes care of printing its errors, just return with an error code
		return mainer.Failure
	}

	// simulate/interpret hand back the program's own exit code (§6.1: "exit
	// codes: process exit code equals the Int returned on the operand stack
	// by main"), everything else just reports success/failure of the verb.
	switch c.args[0] {
	case "simulate", "interpret":
		return mainer.ExitCode(c.exitCode)
	default:
		return mainer.Success
	}
}

// valid commands are those that take a mainer.Stdio and a slice of strings as
// input, and return an error as output.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		// must take 4 parameters (including receiver) and return 1
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}

		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
