package opcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vertexdlt/weaselm/internal/opcode"
)

func TestNameKnownOpcodes(t *testing.T) {
	assert.Equal(t, "unreachable", opcode.Name(opcode.Unreachable))
	assert.Equal(t, "call_indirect", opcode.Name(opcode.CallIndirect))
	assert.Equal(t, "i32.load8_s", opcode.Name(opcode.I32Load8S))
	assert.Equal(t, "local.tee", opcode.Name(opcode.LocalTee))
	assert.Equal(t, "memory.grow", opcode.Name(opcode.MemoryGrow))
}

func TestNameUnknownOpcode(t *testing.T) {
	assert.Equal(t, "unknown", opcode.Name(opcode.Opcode(0xFC)))
}

func TestOpcodeValuesMatchBinaryEncoding(t *testing.T) {
	// Spot-check a handful of byte values against the WebAssembly 1.0
	// binary opcode table (spec.md §4.4).
	assert.Equal(t, opcode.Opcode(0x02), opcode.Block)
	assert.Equal(t, opcode.Opcode(0x0B), opcode.End)
	assert.Equal(t, opcode.Opcode(0x20), opcode.LocalGet)
	assert.Equal(t, opcode.Opcode(0x41), opcode.I32Const)
	assert.Equal(t, opcode.Opcode(0xBF), opcode.F64ReinterpretI64)
}
