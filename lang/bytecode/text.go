package bytecode

import (
	"fmt"

	"github.com/mna/stackyy/lang/ir"
	"github.com/mna/stackyy/lang/token"
	"gopkg.in/yaml.v3"
)

func encodeText(p *ir.Program, level token.StripLevel) ([]byte, error) {
	w, err := toWireProgram(p, level)
	if err != nil {
		return nil, fmt.Errorf("bytecode: encode text: %w", err)
	}
	out, err := yaml.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("bytecode: encode text: %w", err)
	}
	return out, nil
}

func decodeText(data []byte) (*ir.Program, error) {
	var w wireProgram
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("bytecode: decode text: %w", err)
	}
	return fromWireProgram(&w)
}
