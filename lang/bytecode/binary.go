package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/mna/stackyy/lang/ir"
	"github.com/mna/stackyy/lang/token"
)

// binaryVersion tags the layout below, bumped if the wire shapes ever
// change incompatibly. A decoder refuses anything it doesn't recognize
// rather than guess.
const binaryVersion = 1

// debugTagNone/Token/Position are the single-byte discriminants for the
// wireDebug variant, written ahead of its fields (or alone, for none).
const (
	debugTagNone byte = iota
	debugTagToken
	debugTagPosition
)

func encodeBinary(p *ir.Program, level token.StripLevel) ([]byte, error) {
	w, err := toWireProgram(p, level)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteByte(binaryVersion)
	if err := writeWireProgram(&buf, w); err != nil {
		return nil, fmt.Errorf("bytecode: encode binary: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeBinary(data []byte) (*ir.Program, error) {
	r := bytes.NewReader(data)
	version, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("bytecode: decode binary: %w", err)
	}
	if version != binaryVersion {
		return nil, fmt.Errorf("bytecode: unsupported binary version %d", version)
	}
	w, err := readWireProgram(r)
	if err != nil {
		return nil, fmt.Errorf("bytecode: decode binary: %w", err)
	}
	return fromWireProgram(w)
}

func writeStr(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readStr(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeOptStr(w io.Writer, s *string) error {
	if s == nil {
		_, err := w.Write([]byte{0})
		return err
	}
	if _, err := w.Write([]byte{1}); err != nil {
		return err
	}
	return writeStr(w, *s)
}

func readOptStr(r io.Reader) (*string, error) {
	var present [1]byte
	if _, err := io.ReadFull(r, present[:]); err != nil {
		return nil, err
	}
	if present[0] == 0 {
		return nil, nil
	}
	s, err := readStr(r)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func writeStrSlice(w io.Writer, ss []string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(ss))); err != nil {
		return err
	}
	for _, s := range ss {
		if err := writeStr(w, s); err != nil {
			return err
		}
	}
	return nil
}

func readStrSlice(r io.Reader) ([]string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	ss := make([]string, n)
	for i := range ss {
		s, err := readStr(r)
		if err != nil {
			return nil, err
		}
		ss[i] = s
	}
	return ss, nil
}

func writeI32(w io.Writer, v int32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readI32(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeBool(w io.Writer, b bool) error {
	v := byte(0)
	if b {
		v = 1
	}
	_, err := w.Write([]byte{v})
	return err
}

func readBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

func writeWireMeta(w io.Writer, m wireMeta) error {
	if err := writeStr(w, m.Name); err != nil {
		return err
	}
	if err := writeStr(w, m.Version); err != nil {
		return err
	}
	if err := writeOptStr(w, m.Author); err != nil {
		return err
	}
	return writeOptStr(w, m.Description)
}

func readWireMeta(r io.Reader) (wireMeta, error) {
	var m wireMeta
	var err error
	if m.Name, err = readStr(r); err != nil {
		return m, err
	}
	if m.Version, err = readStr(r); err != nil {
		return m, err
	}
	if m.Author, err = readOptStr(r); err != nil {
		return m, err
	}
	if m.Description, err = readOptStr(r); err != nil {
		return m, err
	}
	return m, nil
}

func writeWireDebug(w io.Writer, d *wireDebug) error {
	if d == nil {
		_, err := w.Write([]byte{debugTagNone})
		return err
	}
	switch d.Kind {
	case "token":
		if _, err := w.Write([]byte{debugTagToken}); err != nil {
			return err
		}
	case "position":
		if _, err := w.Write([]byte{debugTagPosition}); err != nil {
			return err
		}
	default:
		_, err := w.Write([]byte{debugTagNone})
		return err
	}
	if err := writeStr(w, d.File); err != nil {
		return err
	}
	if err := writeI32(w, int32(d.Line)); err != nil {
		return err
	}
	if err := writeI32(w, int32(d.Column)); err != nil {
		return err
	}
	if d.Kind == "token" {
		return writeStr(w, d.Text)
	}
	return nil
}

func readWireDebug(r io.Reader) (*wireDebug, error) {
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return nil, err
	}
	if tag[0] == debugTagNone {
		return nil, nil
	}
	d := &wireDebug{}
	if tag[0] == debugTagToken {
		d.Kind = "token"
	} else {
		d.Kind = "position"
	}
	var err error
	if d.File, err = readStr(r); err != nil {
		return nil, err
	}
	line, err := readI32(r)
	if err != nil {
		return nil, err
	}
	d.Line = int(line)
	col, err := readI32(r)
	if err != nil {
		return nil, err
	}
	d.Column = int(col)
	if d.Kind == "token" {
		if d.Text, err = readStr(r); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func writeWireOperand(w io.Writer, op *wireOperand) error {
	if op == nil {
		_, err := w.Write([]byte{byte(ir.OperandNone)})
		return err
	}
	kind, ok := operandKindByName[op.Kind]
	if !ok {
		return fmt.Errorf("unknown operand kind %q", op.Kind)
	}
	if _, err := w.Write([]byte{byte(kind)}); err != nil {
		return err
	}
	switch kind {
	case ir.OperandInt:
		return writeI32(w, op.Int)
	case ir.OperandStr:
		return writeStr(w, op.Str)
	case ir.OperandBool:
		return writeBool(w, op.Bool)
	case ir.OperandInternal:
		return writeStr(w, op.Internal)
	case ir.OperandPushFunction:
		if err := writeStr(w, op.FuncName); err != nil {
			return err
		}
		if err := writeStrSlice(w, op.FuncIns); err != nil {
			return err
		}
		return writeStrSlice(w, op.FuncOuts)
	case ir.OperandCall:
		return writeStr(w, op.Call)
	case ir.OperandDescriptorAction:
		if err := writeStr(w, op.DescType); err != nil {
			return err
		}
		return writeStr(w, op.DescAction)
	default:
		return nil
	}
}

func readWireOperand(r io.Reader) (*wireOperand, error) {
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return nil, err
	}
	kind := ir.OperandKind(tag[0])
	if kind == ir.OperandNone {
		return nil, nil
	}
	if int(kind) >= len(operandKindNames) {
		return nil, fmt.Errorf("unknown operand tag %d", tag[0])
	}
	op := &wireOperand{Kind: operandKindNames[kind]}
	var err error
	switch kind {
	case ir.OperandInt:
		v, err := readI32(r)
		if err != nil {
			return nil, err
		}
		op.Int = v
	case ir.OperandStr:
		if op.Str, err = readStr(r); err != nil {
			return nil, err
		}
	case ir.OperandBool:
		if op.Bool, err = readBool(r); err != nil {
			return nil, err
		}
	case ir.OperandInternal:
		if op.Internal, err = readStr(r); err != nil {
			return nil, err
		}
	case ir.OperandPushFunction:
		if op.FuncName, err = readStr(r); err != nil {
			return nil, err
		}
		if op.FuncIns, err = readStrSlice(r); err != nil {
			return nil, err
		}
		if op.FuncOuts, err = readStrSlice(r); err != nil {
			return nil, err
		}
	case ir.OperandCall:
		if op.Call, err = readStr(r); err != nil {
			return nil, err
		}
	case ir.OperandDescriptorAction:
		if op.DescType, err = readStr(r); err != nil {
			return nil, err
		}
		if op.DescAction, err = readStr(r); err != nil {
			return nil, err
		}
	}
	return op, nil
}

func writeWireOperation(w io.Writer, op wireOperation) error {
	kind, ok := opKindByName[op.Op]
	if !ok {
		return fmt.Errorf("unknown opcode %q", op.Op)
	}
	if _, err := w.Write([]byte{byte(kind)}); err != nil {
		return err
	}
	if err := writeWireDebug(w, op.Debug); err != nil {
		return err
	}
	return writeWireOperand(w, op.Operand)
}

func readWireOperation(r io.Reader) (wireOperation, error) {
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return wireOperation{}, err
	}
	kind := ir.OpKind(tag[0])
	if int(kind) >= len(opKindNames) {
		return wireOperation{}, fmt.Errorf("unknown opcode tag %d", tag[0])
	}
	debug, err := readWireDebug(r)
	if err != nil {
		return wireOperation{}, err
	}
	operand, err := readWireOperand(r)
	if err != nil {
		return wireOperation{}, err
	}
	return wireOperation{Op: opKindNames[kind], Debug: debug, Operand: operand}, nil
}

func writeWireFunction(w io.Writer, fn wireFunction) error {
	if err := writeStr(w, fn.Name); err != nil {
		return err
	}
	if err := writeStrSlice(w, fn.Ins); err != nil {
		return err
	}
	if err := writeStrSlice(w, fn.Outs); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(fn.Body))); err != nil {
		return err
	}
	for _, op := range fn.Body {
		if err := writeWireOperation(w, op); err != nil {
			return fmt.Errorf("function %q: %w", fn.Name, err)
		}
	}
	return nil
}

func readWireFunction(r io.Reader) (wireFunction, error) {
	var fn wireFunction
	var err error
	if fn.Name, err = readStr(r); err != nil {
		return fn, err
	}
	if fn.Ins, err = readStrSlice(r); err != nil {
		return fn, err
	}
	if fn.Outs, err = readStrSlice(r); err != nil {
		return fn, err
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return fn, err
	}
	fn.Body = make([]wireOperation, n)
	for i := range fn.Body {
		op, err := readWireOperation(r)
		if err != nil {
			return fn, fmt.Errorf("function %q: %w", fn.Name, err)
		}
		fn.Body[i] = op
	}
	return fn, nil
}

func writeWireProgram(w io.Writer, p *wireProgram) error {
	if err := writeWireMeta(w, p.Meta); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(p.Functions))); err != nil {
		return err
	}
	for _, fn := range p.Functions {
		if err := writeWireFunction(w, fn); err != nil {
			return err
		}
	}
	return nil
}

func readWireProgram(r io.Reader) (*wireProgram, error) {
	meta, err := readWireMeta(r)
	if err != nil {
		return nil, err
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	fns := make([]wireFunction, n)
	for i := range fns {
		fn, err := readWireFunction(r)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	return &wireProgram{Meta: meta, Functions: fns}, nil
}
