// Package types implements the straight-line readers for WebAssembly's
// static type grammar: value types, limits, function types, memory/table/
// global types, and block types.
//
// Grounded on the teacher's wasm.readValueType, wasm.readLimits,
// wasm.readGlobalType, wasm.readElemType, and wasm.readMut
// (github.com/vertexdlt/vertexvm/wasm/module.go), and on the struct shapes
// of wasm.FuncType/Limits/Mem/Table/GlobalType in the same file.
package types

import (
	"github.com/vertexdlt/weaselm/internal/cursor"
	"github.com/vertexdlt/weaselm/internal/leb128"
)

// ValueType is one of the four WebAssembly 1.0 numeric primitives.
type ValueType byte

const (
	I32 ValueType = 0x7F
	I64 ValueType = 0x7E
	F32 ValueType = 0x7D
	F64 ValueType = 0x7C
)

func (v ValueType) String() string {
	switch v {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "invalid"
	}
}

// Bitwidth returns the bit width of the value type's storage.
func (v ValueType) Bitwidth() int {
	switch v {
	case I32, F32:
		return 32
	case I64, F64:
		return 64
	default:
		panic("types: invalid value type")
	}
}

// ReadValueType reads a single value-type byte.
func ReadValueType(c *cursor.Cursor) (ValueType, error) {
	off := c.Offset()
	b, err := c.EatByte()
	if err != nil {
		return 0, err
	}
	switch ValueType(b) {
	case I32, I64, F32, F64:
		return ValueType(b), nil
	default:
		return 0, cursor.New(off, "invalid value type 0x%02x", b)
	}
}

// BlockTypeEmpty is the empty-byte encoding (0x40) of a void block type.
const BlockTypeEmpty byte = 0x40

// BlockType is the result type of a structured control construct: either
// void (empty) or exactly one value type.
type BlockType struct {
	Empty  bool
	Result ValueType
}

// Void is the empty block type.
var Void = BlockType{Empty: true}

// ReadBlockType reads a block type (0x40 for void, else a value type).
func ReadBlockType(c *cursor.Cursor) (BlockType, error) {
	off := c.Offset()
	b, ok := c.PeekByte()
	if !ok {
		return BlockType{}, c.Error("unexpected end of input")
	}
	if b == BlockTypeEmpty {
		c.EatByte()
		return Void, nil
	}
	switch ValueType(b) {
	case I32, I64, F32, F64:
		c.EatByte()
		return BlockType{Result: ValueType(b)}, nil
	default:
		return BlockType{}, cursor.New(off, "invalid block type 0x%02x", b)
	}
}

// Results returns the block type's result sequence (empty or one element).
func (bt BlockType) Results() []ValueType {
	if bt.Empty {
		return nil
	}
	return []ValueType{bt.Result}
}

// FuncType is a WebAssembly function signature: ordered params, ordered
// results. In WebAssembly 1.0, len(Results) <= 1.
type FuncType struct {
	Params  []ValueType
	Results []ValueType
}

// FuncTypeForm is the tag byte that prefixes every encoded function type.
const FuncTypeForm byte = 0x60

// ReadFuncType reads a function type (0x60 prefix, param vector, result
// vector).
func ReadFuncType(c *cursor.Cursor) (FuncType, error) {
	off := c.Offset()
	form, err := c.EatByte()
	if err != nil {
		return FuncType{}, err
	}
	if form != FuncTypeForm {
		return FuncType{}, cursor.New(off, "invalid functype form 0x%02x", form)
	}
	params, err := readValueTypeVec(c)
	if err != nil {
		return FuncType{}, err
	}
	results, err := readValueTypeVec(c)
	if err != nil {
		return FuncType{}, err
	}
	return FuncType{Params: params, Results: results}, nil
}

// readValueTypeVec reads a u32-length-prefixed vector of value types,
// growing the result incrementally (rather than pre-allocating the raw,
// unvalidated count) so a truncated vector fails on its first missing
// element instead of committing to an attacker-controlled allocation size.
func readValueTypeVec(c *cursor.Cursor) ([]ValueType, error) {
	n, err := leb128.ReadUint32(c)
	if err != nil {
		return nil, err
	}
	out := make([]ValueType, 0, cursor.VecHint(n))
	for i := uint32(0); i < n; i++ {
		vt, err := ReadValueType(c)
		if err != nil {
			return nil, err
		}
		out = append(out, vt)
	}
	return out, nil
}

// Limits is a resource range: a required minimum and an optional maximum.
type Limits struct {
	Min    uint32
	Max    uint32
	HasMax bool
}

// ReadLimits reads a limits entry (flag byte 0x00 or 0x01, then u32s).
func ReadLimits(c *cursor.Cursor) (Limits, error) {
	off := c.Offset()
	flag, err := c.EatByte()
	if err != nil {
		return Limits{}, err
	}
	var l Limits
	switch flag {
	case 0x00:
		l.Min, err = leb128.ReadUint32(c)
	case 0x01:
		l.Min, err = leb128.ReadUint32(c)
		if err == nil {
			l.Max, err = leb128.ReadUint32(c)
			l.HasMax = true
		}
	default:
		return Limits{}, cursor.New(off, "invalid limits flag 0x%02x", flag)
	}
	if err != nil {
		return Limits{}, err
	}
	return l, nil
}

// ElemKindFuncRef is the only table element kind in WebAssembly 1.0.
const ElemKindFuncRef byte = 0x70

// TableType describes a table: its element kind and its size limits.
type TableType struct {
	ElemKind byte
	Limits   Limits
}

// ReadTableType reads a table type (element kind byte, then limits).
func ReadTableType(c *cursor.Cursor) (TableType, error) {
	off := c.Offset()
	kind, err := c.EatByte()
	if err != nil {
		return TableType{}, err
	}
	if kind != ElemKindFuncRef {
		return TableType{}, cursor.New(off, "invalid table element kind 0x%02x", kind)
	}
	limits, err := ReadLimits(c)
	if err != nil {
		return TableType{}, err
	}
	return TableType{ElemKind: kind, Limits: limits}, nil
}

// MemType describes a linear memory: its size limits, in 64 KiB pages.
type MemType struct {
	Limits Limits
}

// ReadMemType reads a memory type (just limits).
func ReadMemType(c *cursor.Cursor) (MemType, error) {
	l, err := ReadLimits(c)
	if err != nil {
		return MemType{}, err
	}
	return MemType{Limits: l}, nil
}

// Mutability is a global's mutability flag.
type Mutability byte

const (
	Const Mutability = 0x00
	Var   Mutability = 0x01
)

// GlobalType describes a global variable's value type and mutability.
type GlobalType struct {
	ValueType  ValueType
	Mutability Mutability
}

// ReadGlobalType reads a global type (value type, then mutability byte).
func ReadGlobalType(c *cursor.Cursor) (GlobalType, error) {
	vt, err := ReadValueType(c)
	if err != nil {
		return GlobalType{}, err
	}
	off := c.Offset()
	b, err := c.EatByte()
	if err != nil {
		return GlobalType{}, err
	}
	switch Mutability(b) {
	case Const, Var:
		return GlobalType{ValueType: vt, Mutability: Mutability(b)}, nil
	default:
		return GlobalType{}, cursor.New(off, "invalid mutability flag 0x%02x", b)
	}
}
