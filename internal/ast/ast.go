// Package ast is the typed structural model produced by internal/decoder
// and consumed by internal/validation: the decoded module, its functions,
// and the instruction tree inside each function body.
//
// Grounded on the teacher's wasm/module.go struct set (Module, Function,
// FuncType, Import/ImportDesc, Export/ExportDesc, Global, Element, Data,
// Code/LocalEntry — github.com/vertexdlt/vertexvm/wasm), generalized so
// that expression bodies are typed instruction trees instead of raw bytes,
// and so that custom sections are preserved (the teacher's readSection
// discards id-0 sections entirely).
package ast

import (
	"github.com/vertexdlt/weaselm/internal/opcode"
	"github.com/vertexdlt/weaselm/internal/types"
)

// Instruction is one decoded instruction. Tag identifies the variant;
// only the fields relevant to Tag are populated. Op carries the exact
// opcode byte for the TagLoad/TagStore/TagOp families, which each cover
// many distinct opcodes sharing one decode/validate shape.
type Instruction struct {
	Tag Tag
	Op  opcode.Opcode

	// Structured control
	BlockType types.BlockType
	Body      []Instruction
	Else      []Instruction // If only, nil when no else clause
	LabelIdx  uint32        // Br, BrIf
	Labels    []uint32      // BrTable
	Default   uint32        // BrTable
	FuncIdx   uint32        // Call
	TypeIdx   uint32        // CallIndirect

	// Variable / parametric
	LocalIdx  uint32
	GlobalIdx uint32

	// Memory
	Align  uint32
	Offset uint32

	// Numeric constants
	I32 int32
	I64 int64
	F32 float32
	F64 float64
}

// Tag identifies an Instruction's variant.
type Tag int

const (
	TagUnreachable Tag = iota
	TagNop
	TagBlock
	TagLoop
	TagIf
	TagBr
	TagBrIf
	TagBrTable
	TagReturn
	TagCall
	TagCallIndirect
	TagDrop
	TagSelect
	TagLocalGet
	TagLocalSet
	TagLocalTee
	TagGlobalGet
	TagGlobalSet
	TagLoad
	TagStore
	TagMemorySize
	TagMemoryGrow
	TagI32Const
	TagI64Const
	TagF32Const
	TagF64Const
	TagOp // every opcode-only instruction (comparisons, numeric ops, conversions)
)

// Expression is a finite ordered sequence of instructions, as decoded from
// a binary expression terminated by (and not including) the 0x0B end byte.
type Expression []Instruction

// LocalEntry is a run of Count locals sharing ValueType, preserving the
// binary format's run-length encoding.
type LocalEntry struct {
	Count     uint32
	ValueType types.ValueType
}

// Function is a decoded function: its declared type, locals, and body.
type Function struct {
	TypeIdx uint32
	Type    types.FuncType
	Locals  []LocalEntry
	Body    Expression
}

// ImportKind distinguishes what an import's descriptor carries.
type ImportKind byte

const (
	ImportFunc   ImportKind = 0x00
	ImportTable  ImportKind = 0x01
	ImportMem    ImportKind = 0x02
	ImportGlobal ImportKind = 0x03
)

// Import is a single entry of the import section.
type Import struct {
	Module string
	Name   string
	Kind   ImportKind

	FuncTypeIdx uint32 // ImportFunc
	Table       types.TableType
	Mem         types.MemType
	Global      types.GlobalType
}

// ExportKind distinguishes what an export's descriptor refers to.
type ExportKind byte

const (
	ExportFunc   ExportKind = 0x00
	ExportTable  ExportKind = 0x01
	ExportMem    ExportKind = 0x02
	ExportGlobal ExportKind = 0x03
)

// Export is a single entry of the export section.
type Export struct {
	Name string
	Kind ExportKind
	Idx  uint32
}

// Global is a module-defined global: its type and constant initializer.
type Global struct {
	Type types.GlobalType
	Init Expression
}

// Element is a table initializer segment.
type Element struct {
	TableIdx uint32
	Offset   Expression
	FuncIdxs []uint32
}

// Data is a linear memory initializer segment.
type Data struct {
	MemIdx uint32
	Offset Expression
	Init   []byte
}

// CustomSection is an opaque, id-0 section preserved verbatim and in file
// order. Data is a view into the decoder's input buffer; see spec.md §3's
// ownership note.
type CustomSection struct {
	Name string
	Data []byte
}

// Module is the fully decoded, typed representation of a WebAssembly 1.0
// binary module.
type Module struct {
	Types     []types.FuncType
	Imports   []Import
	Functions []Function
	Tables    []types.TableType
	Mems      []types.MemType
	Globals   []Global
	Exports   []Export
	Start     *uint32
	Elements  []Element
	Data      []Data
	Customs   []CustomSection
}

// ImportedFuncs returns the subset of Imports with Kind == ImportFunc, in
// file order.
func (m *Module) ImportedFuncs() []Import {
	var out []Import
	for _, im := range m.Imports {
		if im.Kind == ImportFunc {
			out = append(out, im)
		}
	}
	return out
}

// ImportedTables returns the subset of Imports with Kind == ImportTable.
func (m *Module) ImportedTables() []Import {
	var out []Import
	for _, im := range m.Imports {
		if im.Kind == ImportTable {
			out = append(out, im)
		}
	}
	return out
}

// ImportedMems returns the subset of Imports with Kind == ImportMem.
func (m *Module) ImportedMems() []Import {
	var out []Import
	for _, im := range m.Imports {
		if im.Kind == ImportMem {
			out = append(out, im)
		}
	}
	return out
}

// ImportedGlobals returns the subset of Imports with Kind == ImportGlobal.
func (m *Module) ImportedGlobals() []Import {
	var out []Import
	for _, im := range m.Imports {
		if im.Kind == ImportGlobal {
			out = append(out, im)
		}
	}
	return out
}
