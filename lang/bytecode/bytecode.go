package bytecode

import (
	"fmt"

	"github.com/mna/stackyy/lang/ir"
	"github.com/mna/stackyy/lang/token"
	"gopkg.in/yaml.v3"
)

// Format selects which of the two encodings of §6.4 Encode/Decode use.
type Format int

const (
	// Binary is the compact, length-prefixed tagged-variant encoding meant
	// for the `compile`/`interpret` verbs' default on-disk representation.
	Binary Format = iota
	// Text is the yaml-backed human-readable encoding, produced by `compile
	// -r` (§6.1).
	Text
)

// Encode serializes p at the given debug-info strip level (§4.8), in the
// requested format. Encoding never mutates p.
func Encode(p *ir.Program, level token.StripLevel, format Format) ([]byte, error) {
	switch format {
	case Text:
		return encodeText(p, level)
	default:
		return encodeBinary(p, level)
	}
}

// Decode deserializes a program previously produced by Encode in the given
// format.
func Decode(data []byte, format Format) (*ir.Program, error) {
	switch format {
	case Text:
		return decodeText(data)
	default:
		return decodeBinary(data)
	}
}

// LoadMeta parses a `<name>-meta.scy.yml` file's contents into an ir.Meta
// (§6.2): Name and Version are required, Author and Description optional.
func LoadMeta(data []byte) (ir.Meta, error) {
	var w wireMeta
	if err := yaml.Unmarshal(data, &w); err != nil {
		return ir.Meta{}, fmt.Errorf("bytecode: load metadata: %w", err)
	}
	if w.Name == "" {
		return ir.Meta{}, fmt.Errorf("bytecode: metadata missing required field 'name'")
	}
	if w.Version == "" {
		return ir.Meta{}, fmt.Errorf("bytecode: metadata missing required field 'version'")
	}
	return fromWireMeta(w), nil
}

// SaveMeta renders m as the yaml document the `info -e` verb writes out.
func SaveMeta(m ir.Meta) ([]byte, error) {
	out, err := yaml.Marshal(toWireMeta(m))
	if err != nil {
		return nil, fmt.Errorf("bytecode: save metadata: %w", err)
	}
	return out, nil
}
