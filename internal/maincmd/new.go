package maincmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mna/mainer"
)

// New implements the `new -n <name> -p <path>` verb (§6.1): scaffold a
// project directory <path>/<name>-scy/ holding a starter metadata file and
// a starter main source file.
func (c *Cmd) New(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return printError(stdio, scaffoldProject(c.Name, c.Path))
}

const scaffoldMain = `@main(->int)
  "Hello from %s" println
  0
end
`

const scaffoldMeta = `name: %s
version: 0.1.0
`

func scaffoldProject(name, path string) error {
	dir := filepath.Join(path, name+"-scy")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	metaPath := filepath.Join(dir, name+"-meta.scy.yml")
	if err := os.WriteFile(metaPath, []byte(fmt.Sprintf(scaffoldMeta, name)), 0o644); err != nil {
		return err
	}

	mainPath := filepath.Join(dir, name+"-main.scy")
	return os.WriteFile(mainPath, []byte(fmt.Sprintf(scaffoldMain, name)), 0o644)
}
