package validation

import (
	"github.com/vertexdlt/weaselm/internal/ast"
	"github.com/vertexdlt/weaselm/internal/opcode"
	"github.com/vertexdlt/weaselm/internal/types"
)

// operand is one entry of the abstract operand stack. unknown marks the
// polymorphic value spec.md §4.8 describes: any type, produced once a frame
// goes unreachable, that unifies with whatever a later pop expects.
type operand struct {
	unknown bool
	typ     types.ValueType
}

func known(t types.ValueType) operand { return operand{typ: t} }

var unknownOperand = operand{unknown: true}

// ctrlFrame is one entry of the control-frame stack: a Block/Loop/If/the
// function body itself. labelTypes is what a branch targeting this frame
// must leave on the stack (empty for Loop, since branching there restarts
// rather than exits). endTypes is what falling off the end of the frame
// must leave. height is the operand stack depth when the frame was pushed.
type ctrlFrame struct {
	labelTypes  []types.ValueType
	endTypes    []types.ValueType
	height      int
	unreachable bool
}

// exprValidator is the abstract interpreter of spec.md §4.8: an operand
// stack of types (not values) and a control-frame stack, walked once over an
// already-decoded ast.Expression. Grounded on wagon's mockVM
// (_examples/other_examples/acce7eef_go-interpreter-wagon__validate-validate.go.go),
// whose adjustStack/pushFrame/popFrame are the same algorithm; the
// difference is wagon drives it from a byte stream during decode, while this
// walks a typed tree as a second pass, per spec.md's two-layer architecture.
type exprValidator struct {
	ctx      *Context
	operands []operand
	frames   []ctrlFrame
}

// newExprValidator seeds the validator with one implicit outer frame for the
// function body itself, whose label and end types are both the function's
// declared results. Return therefore types exactly like a branch to depth
// len(frames)-1: both pop the function's declared results.
func newExprValidator(ctx *Context, results []types.ValueType) *exprValidator {
	v := &exprValidator{ctx: ctx}
	v.pushControl(results, results)
	return v
}

func (v *exprValidator) pushOperand(op operand) {
	v.operands = append(v.operands, op)
}

func (v *exprValidator) pushType(t types.ValueType) {
	v.pushOperand(known(t))
}

func (v *exprValidator) pushTypes(ts []types.ValueType) {
	for _, t := range ts {
		v.pushType(t)
	}
}

// popOperand pops one operand, or synthesizes Unknown if the current frame
// is marked unreachable and its stack has been exhausted down to its own
// height — spec.md §4.8's polymorphic-stack rule for dead code.
func (v *exprValidator) popOperand() (operand, error) {
	top := &v.frames[len(v.frames)-1]
	if len(v.operands) == top.height {
		if top.unreachable {
			return unknownOperand, nil
		}
		return operand{}, newError("type mismatch: stack underflow")
	}
	op := v.operands[len(v.operands)-1]
	v.operands = v.operands[:len(v.operands)-1]
	return op, nil
}

// popExpected pops one operand and unifies it against expected: either side
// being Unknown accepts the other, otherwise the concrete types must match.
// Returns the resolved operand so callers like Select can learn the
// concrete type two polymorphic operands settled on.
func (v *exprValidator) popExpected(expected operand) (operand, error) {
	actual, err := v.popOperand()
	if err != nil {
		return operand{}, err
	}
	if actual.unknown {
		return expected, nil
	}
	if expected.unknown {
		return actual, nil
	}
	if actual.typ != expected.typ {
		return operand{}, newError("type mismatch: expected %s, got %s", expected.typ, actual.typ)
	}
	return actual, nil
}

func (v *exprValidator) pop(t types.ValueType) error {
	_, err := v.popExpected(known(t))
	return err
}

// popMany pops ts in reverse, matching how they were pushed (the last
// element of ts sits on top of the stack).
func (v *exprValidator) popMany(ts []types.ValueType) error {
	for i := len(ts) - 1; i >= 0; i-- {
		if err := v.pop(ts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (v *exprValidator) pushControl(label, end []types.ValueType) {
	v.frames = append(v.frames, ctrlFrame{labelTypes: label, endTypes: end, height: len(v.operands)})
}

// popControl closes the current frame: its end types must already be on the
// stack, and nothing but them — popping them must land exactly back at the
// frame's starting height.
func (v *exprValidator) popControl() ([]types.ValueType, error) {
	top := v.frames[len(v.frames)-1]
	if err := v.popMany(top.endTypes); err != nil {
		return nil, err
	}
	if len(v.operands) != top.height {
		return nil, newError("type mismatch: values remaining on the stack at end of block")
	}
	v.frames = v.frames[:len(v.frames)-1]
	return top.endTypes, nil
}

// setUnreachable truncates the operand stack to the current frame's height
// and marks it unreachable, so any further pop synthesizes Unknown. Used by
// Unreachable and every unconditional branch.
func (v *exprValidator) setUnreachable() {
	top := &v.frames[len(v.frames)-1]
	v.operands = v.operands[:top.height]
	top.unreachable = true
}

func (v *exprValidator) labelTypesAt(depth uint32) ([]types.ValueType, error) {
	if int(depth) >= len(v.frames) {
		return nil, newError("invalid branch depth %d", depth)
	}
	return v.frames[len(v.frames)-1-int(depth)].labelTypes, nil
}

func sameTypes(a, b []types.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (v *exprValidator) validateInstrs(instrs []ast.Instruction) error {
	for _, instr := range instrs {
		if err := v.validateInstr(instr); err != nil {
			return err
		}
	}
	return nil
}

func (v *exprValidator) validateInstr(instr ast.Instruction) error {
	switch instr.Tag {
	case ast.TagUnreachable:
		v.setUnreachable()

	case ast.TagNop:

	case ast.TagBlock:
		results := instr.BlockType.Results()
		v.pushControl(results, results)
		if err := v.validateInstrs(instr.Body); err != nil {
			return err
		}
		end, err := v.popControl()
		if err != nil {
			return err
		}
		v.pushTypes(end)

	case ast.TagLoop:
		// A branch to a loop restarts it, carrying none of the loop's
		// result values — label_types is empty even when the loop itself
		// produces a value on normal completion.
		results := instr.BlockType.Results()
		v.pushControl(nil, results)
		if err := v.validateInstrs(instr.Body); err != nil {
			return err
		}
		end, err := v.popControl()
		if err != nil {
			return err
		}
		v.pushTypes(end)

	case ast.TagIf:
		if err := v.pop(types.I32); err != nil {
			return err
		}
		results := instr.BlockType.Results()
		v.pushControl(results, results)
		if err := v.validateInstrs(instr.Body); err != nil {
			return err
		}
		if _, err := v.popControl(); err != nil {
			return err
		}
		// instr.Else is nil both when there is no else clause and when it
		// is syntactically empty; validating it as an empty sequence is
		// correct either way, since an empty sequence can only produce
		// results when results itself is empty.
		v.pushControl(results, results)
		if err := v.validateInstrs(instr.Else); err != nil {
			return err
		}
		end, err := v.popControl()
		if err != nil {
			return err
		}
		v.pushTypes(end)

	case ast.TagBr:
		label, err := v.labelTypesAt(instr.LabelIdx)
		if err != nil {
			return err
		}
		if err := v.popMany(label); err != nil {
			return err
		}
		v.setUnreachable()

	case ast.TagBrIf:
		if err := v.pop(types.I32); err != nil {
			return err
		}
		label, err := v.labelTypesAt(instr.LabelIdx)
		if err != nil {
			return err
		}
		if err := v.popMany(label); err != nil {
			return err
		}
		v.pushTypes(label)

	case ast.TagBrTable:
		if err := v.pop(types.I32); err != nil {
			return err
		}
		def, err := v.labelTypesAt(instr.Default)
		if err != nil {
			return err
		}
		for _, l := range instr.Labels {
			lt, err := v.labelTypesAt(l)
			if err != nil {
				return err
			}
			if !sameTypes(lt, def) {
				return newError("br_table target label types do not agree")
			}
		}
		if err := v.popMany(def); err != nil {
			return err
		}
		v.setUnreachable()

	case ast.TagReturn:
		results := v.frames[0].endTypes
		if err := v.popMany(results); err != nil {
			return err
		}
		v.setUnreachable()

	case ast.TagCall:
		ft, err := v.ctx.Func(instr.FuncIdx)
		if err != nil {
			return err
		}
		if err := v.popMany(ft.Params); err != nil {
			return err
		}
		v.pushTypes(ft.Results)

	case ast.TagCallIndirect:
		if v.ctx.TableCount() == 0 {
			return newError("call_indirect requires a table")
		}
		ft, err := v.ctx.FuncType(instr.TypeIdx)
		if err != nil {
			return err
		}
		if err := v.pop(types.I32); err != nil {
			return err
		}
		if err := v.popMany(ft.Params); err != nil {
			return err
		}
		v.pushTypes(ft.Results)

	case ast.TagDrop:
		if _, err := v.popOperand(); err != nil {
			return err
		}

	case ast.TagSelect:
		if err := v.pop(types.I32); err != nil {
			return err
		}
		b, err := v.popOperand()
		if err != nil {
			return err
		}
		a, err := v.popExpected(b)
		if err != nil {
			return err
		}
		v.pushOperand(a)

	case ast.TagLocalGet:
		t, err := v.ctx.Local(instr.LocalIdx)
		if err != nil {
			return err
		}
		v.pushType(t)

	case ast.TagLocalSet:
		t, err := v.ctx.Local(instr.LocalIdx)
		if err != nil {
			return err
		}
		if err := v.pop(t); err != nil {
			return err
		}

	case ast.TagLocalTee:
		t, err := v.ctx.Local(instr.LocalIdx)
		if err != nil {
			return err
		}
		if err := v.pop(t); err != nil {
			return err
		}
		v.pushType(t)

	case ast.TagGlobalGet:
		gt, _, err := v.ctx.Global(instr.GlobalIdx)
		if err != nil {
			return err
		}
		v.pushType(gt.ValueType)

	case ast.TagGlobalSet:
		gt, _, err := v.ctx.Global(instr.GlobalIdx)
		if err != nil {
			return err
		}
		if gt.Mutability != types.Var {
			return newError("global.set to immutable global %d", instr.GlobalIdx)
		}
		if err := v.pop(gt.ValueType); err != nil {
			return err
		}

	case ast.TagLoad:
		info, ok := loadInfo[instr.Op]
		if !ok {
			return newError("unrecognized load opcode 0x%02x", byte(instr.Op))
		}
		if v.ctx.MemCount() == 0 {
			return newError("memory access requires a memory")
		}
		// instr.Align is never shifted, so an adversarial large align value
		// cannot overflow the comparison (spec.md §9 Open Question 6).
		if instr.Align > info.maxAlign {
			return newError("alignment 2**%d exceeds natural alignment of %s", instr.Align, opcodeDesc(instr))
		}
		if err := v.pop(types.I32); err != nil {
			return err
		}
		v.pushType(info.valueType)

	case ast.TagStore:
		info, ok := storeInfo[instr.Op]
		if !ok {
			return newError("unrecognized store opcode 0x%02x", byte(instr.Op))
		}
		if v.ctx.MemCount() == 0 {
			return newError("memory access requires a memory")
		}
		if instr.Align > info.maxAlign {
			return newError("alignment 2**%d exceeds natural alignment of %s", instr.Align, opcodeDesc(instr))
		}
		if err := v.pop(info.valueType); err != nil {
			return err
		}
		if err := v.pop(types.I32); err != nil {
			return err
		}

	case ast.TagMemorySize:
		if v.ctx.MemCount() == 0 {
			return newError("memory.size requires a memory")
		}
		v.pushType(types.I32)

	case ast.TagMemoryGrow:
		if v.ctx.MemCount() == 0 {
			return newError("memory.grow requires a memory")
		}
		if err := v.pop(types.I32); err != nil {
			return err
		}
		v.pushType(types.I32)

	case ast.TagI32Const:
		v.pushType(types.I32)
	case ast.TagI64Const:
		v.pushType(types.I64)
	case ast.TagF32Const:
		v.pushType(types.F32)
	case ast.TagF64Const:
		v.pushType(types.F64)

	case ast.TagOp:
		sig, ok := opSigs[instr.Op]
		if !ok {
			return newError("unrecognized opcode 0x%02x", byte(instr.Op))
		}
		if err := v.popMany(sig.in); err != nil {
			return err
		}
		v.pushTypes(sig.out)

	default:
		return newError("unhandled instruction")
	}
	return nil
}

// ValidateExpression validates a function body against its declared result
// types, per spec.md §4.8-§4.9.
func ValidateExpression(ctx *Context, body ast.Expression, results []types.ValueType) error {
	v := newExprValidator(ctx, results)
	if err := v.validateInstrs(body); err != nil {
		return err
	}
	if _, err := v.popControl(); err != nil {
		return err
	}
	return nil
}

func opcodeDesc(instr ast.Instruction) string {
	return opcode.Name(instr.Op)
}
