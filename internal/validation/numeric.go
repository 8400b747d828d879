package validation

import (
	"github.com/vertexdlt/weaselm/internal/opcode"
	"github.com/vertexdlt/weaselm/internal/types"
)

// opSig is the operand/result signature of one TagOp instruction: every
// comparison, numeric, and conversion opcode that carries no immediate.
type opSig struct {
	in  []types.ValueType
	out []types.ValueType
}

// opSigs is built once from the WebAssembly 1.0 numeric instruction table
// (spec.md §4.8), grouped by shape rather than transcribed opcode by opcode:
// tests (one operand, i32 result), comparisons (two like operands, i32
// result), unary and binary ops (operands and result all the same type),
// and conversions (each a distinct concrete in/out pair).
var opSigs = buildOpSigs()

func buildOpSigs() map[opcode.Opcode]opSig {
	m := make(map[opcode.Opcode]opSig)

	test := func(t types.ValueType, op opcode.Opcode) {
		m[op] = opSig{in: []types.ValueType{t}, out: []types.ValueType{types.I32}}
	}
	compare := func(t types.ValueType, ops ...opcode.Opcode) {
		for _, op := range ops {
			m[op] = opSig{in: []types.ValueType{t, t}, out: []types.ValueType{types.I32}}
		}
	}
	unary := func(t types.ValueType, ops ...opcode.Opcode) {
		for _, op := range ops {
			m[op] = opSig{in: []types.ValueType{t}, out: []types.ValueType{t}}
		}
	}
	binary := func(t types.ValueType, ops ...opcode.Opcode) {
		for _, op := range ops {
			m[op] = opSig{in: []types.ValueType{t, t}, out: []types.ValueType{t}}
		}
	}
	convert := func(from, to types.ValueType, ops ...opcode.Opcode) {
		for _, op := range ops {
			m[op] = opSig{in: []types.ValueType{from}, out: []types.ValueType{to}}
		}
	}

	test(types.I32, opcode.I32Eqz)
	compare(types.I32, opcode.I32Eq, opcode.I32Ne, opcode.I32LtS, opcode.I32LtU,
		opcode.I32GtS, opcode.I32GtU, opcode.I32LeS, opcode.I32LeU, opcode.I32GeS, opcode.I32GeU)
	test(types.I64, opcode.I64Eqz)
	compare(types.I64, opcode.I64Eq, opcode.I64Ne, opcode.I64LtS, opcode.I64LtU,
		opcode.I64GtS, opcode.I64GtU, opcode.I64LeS, opcode.I64LeU, opcode.I64GeS, opcode.I64GeU)
	compare(types.F32, opcode.F32Eq, opcode.F32Ne, opcode.F32Lt, opcode.F32Gt, opcode.F32Le, opcode.F32Ge)
	compare(types.F64, opcode.F64Eq, opcode.F64Ne, opcode.F64Lt, opcode.F64Gt, opcode.F64Le, opcode.F64Ge)

	unary(types.I32, opcode.I32Clz, opcode.I32Ctz, opcode.I32Popcnt)
	binary(types.I32, opcode.I32Add, opcode.I32Sub, opcode.I32Mul, opcode.I32DivS, opcode.I32DivU,
		opcode.I32RemS, opcode.I32RemU, opcode.I32And, opcode.I32Or, opcode.I32Xor,
		opcode.I32Shl, opcode.I32ShrS, opcode.I32ShrU, opcode.I32Rotl, opcode.I32Rotr)
	unary(types.I64, opcode.I64Clz, opcode.I64Ctz, opcode.I64Popcnt)
	binary(types.I64, opcode.I64Add, opcode.I64Sub, opcode.I64Mul, opcode.I64DivS, opcode.I64DivU,
		opcode.I64RemS, opcode.I64RemU, opcode.I64And, opcode.I64Or, opcode.I64Xor,
		opcode.I64Shl, opcode.I64ShrS, opcode.I64ShrU, opcode.I64Rotl, opcode.I64Rotr)

	unary(types.F32, opcode.F32Abs, opcode.F32Neg, opcode.F32Ceil, opcode.F32Floor,
		opcode.F32Trunc, opcode.F32Nearest, opcode.F32Sqrt)
	binary(types.F32, opcode.F32Add, opcode.F32Sub, opcode.F32Mul, opcode.F32Div,
		opcode.F32Min, opcode.F32Max, opcode.F32Copysign)
	unary(types.F64, opcode.F64Abs, opcode.F64Neg, opcode.F64Ceil, opcode.F64Floor,
		opcode.F64Trunc, opcode.F64Nearest, opcode.F64Sqrt)
	binary(types.F64, opcode.F64Add, opcode.F64Sub, opcode.F64Mul, opcode.F64Div,
		opcode.F64Min, opcode.F64Max, opcode.F64Copysign)

	convert(types.I64, types.I32, opcode.I32WrapI64)
	convert(types.F32, types.I32, opcode.I32TruncF32S, opcode.I32TruncF32U, opcode.I32ReinterpretF32)
	convert(types.F64, types.I32, opcode.I32TruncF64S, opcode.I32TruncF64U)
	convert(types.I32, types.I64, opcode.I64ExtendI32S, opcode.I64ExtendI32U)
	convert(types.F32, types.I64, opcode.I64TruncF32S, opcode.I64TruncF32U)
	convert(types.F64, types.I64, opcode.I64TruncF64S, opcode.I64TruncF64U, opcode.I64ReinterpretF64)
	convert(types.I32, types.F32, opcode.F32ConvertI32S, opcode.F32ConvertI32U, opcode.F32ReinterpretI32)
	convert(types.I64, types.F32, opcode.F32ConvertI64S, opcode.F32ConvertI64U)
	convert(types.F64, types.F32, opcode.F32DemoteF64)
	convert(types.I32, types.F64, opcode.F64ConvertI32S, opcode.F64ConvertI32U)
	convert(types.I64, types.F64, opcode.F64ConvertI64S, opcode.F64ConvertI64U, opcode.F64ReinterpretI64)
	convert(types.F32, types.F64, opcode.F64PromoteF32)

	return m
}

// memArgInfo is one load/store opcode's value type and natural alignment,
// expressed as a log2 bound (maxAlign) rather than a byte count so the
// alignment check in instructions.go never has to left-shift an
// attacker-controlled align value (spec.md §9 Open Question 6).
type memArgInfo struct {
	valueType types.ValueType
	maxAlign  uint32
}

var loadInfo = map[opcode.Opcode]memArgInfo{
	opcode.I32Load:    {types.I32, 2},
	opcode.I64Load:    {types.I64, 3},
	opcode.F32Load:    {types.F32, 2},
	opcode.F64Load:    {types.F64, 3},
	opcode.I32Load8S:  {types.I32, 0},
	opcode.I32Load8U:  {types.I32, 0},
	opcode.I32Load16S: {types.I32, 1},
	opcode.I32Load16U: {types.I32, 1},
	opcode.I64Load8S:  {types.I64, 0},
	opcode.I64Load8U:  {types.I64, 0},
	opcode.I64Load16S: {types.I64, 1},
	opcode.I64Load16U: {types.I64, 1},
	opcode.I64Load32S: {types.I64, 2},
	opcode.I64Load32U: {types.I64, 2},
}

var storeInfo = map[opcode.Opcode]memArgInfo{
	opcode.I32Store:   {types.I32, 2},
	opcode.I64Store:   {types.I64, 3},
	opcode.F32Store:   {types.F32, 2},
	opcode.F64Store:   {types.F64, 3},
	opcode.I32Store8:  {types.I32, 0},
	opcode.I32Store16: {types.I32, 1},
	opcode.I64Store8:  {types.I64, 0},
	opcode.I64Store16: {types.I64, 1},
	opcode.I64Store32: {types.I64, 2},
}
