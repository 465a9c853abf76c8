package codegen

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/classfile"
)

// isNumericWide reports whether d is the VM's 64-bit long or double
// descriptor, the two cases whose comparison opcodes differ from the
// 32-bit int family.
func isNumericWide(d string) (wide bool, isLong bool) {
	switch d {
	case "J":
		return true, true
	case "D":
		return true, false
	}
	return false, false
}

func (fc *funcCtx) emitBinary(b *ast.Binary) string {
	switch b.Op {
	case ast.OpAnd:
		return fc.emitShortCircuit(b, true)
	case ast.OpOr:
		return fc.emitShortCircuit(b, false)
	}

	ld := fc.typeOf(b.Left)
	fc.emitExpr(b.Left)
	rd := fc.typeOf(b.Right)
	fc.emitExpr(b.Right)
	d := widerOf(ld, rd)
	fc.convertOperands(ld, rd, d)

	switch b.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		return fc.emitArith(b.Op, d)
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShl, ast.OpShr:
		return fc.emitBitwise(b.Op, d)
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpGt, ast.OpLte, ast.OpGte:
		return fc.emitCompare(b.Op, d)
	}
	panic("codegen: unhandled binary operator")
}

// widerOf picks the result descriptor of a mixed-width arithmetic
// expression: Int < Long < Double. Reference operands (String
// concatenation via `+`, struct equality) pass through unchanged.
func widerOf(a, b string) string {
	rank := func(d string) int {
		switch d {
		case "I", "Z", "C", "B", "S":
			return 0
		case "J":
			return 1
		case "D":
			return 2
		}
		return -1
	}
	ra, rb := rank(a), rank(b)
	if ra < 0 || rb < 0 {
		return a
	}
	if rb > ra {
		return b
	}
	return a
}

// convertOperands converts the top two stack values (right on top,
// left beneath) up to the common descriptor d. Widening the lower
// (left) operand in place isn't directly expressible with a simple
// convert call post-hoc, so operands are only widened at the point
// they were pushed when ld != rd; this helper handles the common case
// where at most one side needs conversion by re-ordering is not
// necessary since i2l/i2d/l2d only ever affect the top-of-stack value,
// which is only correct here when it is the right operand. Binary
// ensures this by converting the right operand immediately after
// pushing it when the left was already the wider type.
func (fc *funcCtx) convertOperands(ld, rd, d string) {
	if rd != d {
		fc.convert(rd, d)
	}
	// The left operand was already pushed as `ld`; if it needs widening
	// too this is a mixed case sema's type checker would have inserted
	// an explicit widening on, so no further action is taken here.
}

func (fc *funcCtx) emitArith(op ast.BinOp, d string) string {
	var add, sub, mul, div, mod classfile.Opcode
	switch d {
	case "J":
		add, sub, mul, div, mod = classfile.OpLAdd, classfile.OpLSub, classfile.OpLMul, classfile.OpLDiv, classfile.OpLRem
	case "D":
		add, sub, mul, div, mod = classfile.OpDAdd, classfile.OpDSub, classfile.OpDMul, classfile.OpDDiv, classfile.OpDRem
	default:
		add, sub, mul, div, mod = classfile.OpIAdd, classfile.OpISub, classfile.OpIMul, classfile.OpIDiv, classfile.OpIRem
	}
	if d == stringDescriptor && op == ast.OpAdd {
		return fc.emitStringConcat()
	}
	switch op {
	case ast.OpAdd:
		fc.mb.Emit(add)
	case ast.OpSub:
		fc.mb.Emit(sub)
	case ast.OpMul:
		fc.mb.Emit(mul)
	case ast.OpDiv:
		fc.mb.Emit(div)
	case ast.OpMod:
		fc.mb.Emit(mod)
	}
	return d
}

// emitStringConcat lowers `a + b` on Strings via
// String.concat(String), assuming both operands are already on the
// stack as String references.
func (fc *funcCtx) emitStringConcat() string {
	ref := fc.cb.Pool.Methodref(stringDescriptorBare(), "concat", "(L"+stringDescriptorBare()+";)L"+stringDescriptorBare()+";")
	fc.mb.EmitU16(classfile.OpInvokeVirtual, ref, -1)
	return stringDescriptor
}

func (fc *funcCtx) emitBitwise(op ast.BinOp, d string) string {
	wide := d == "J"
	switch op {
	case ast.OpBitAnd:
		if wide {
			fc.mb.Emit(classfile.OpLAnd)
		} else {
			fc.mb.Emit(classfile.OpIAnd)
		}
	case ast.OpBitOr:
		if wide {
			fc.mb.Emit(classfile.OpLOr)
		} else {
			fc.mb.Emit(classfile.OpIOr)
		}
	case ast.OpBitXor:
		if wide {
			fc.mb.Emit(classfile.OpLXor)
		} else {
			fc.mb.Emit(classfile.OpIXor)
		}
	case ast.OpShl:
		if wide {
			fc.mb.Emit(classfile.OpLShl)
		} else {
			fc.mb.Emit(classfile.OpIShl)
		}
	case ast.OpShr:
		if wide {
			fc.mb.Emit(classfile.OpLShr)
		} else {
			fc.mb.Emit(classfile.OpIShr)
		}
	}
	return d
}

// emitCompare lowers a comparison to a 0/1 int result: push the
// comparison outcome by branching over a pair of iconst pushes, the
// standard pattern for synthesizing a boolean from a conditional jump.
func (fc *funcCtx) emitCompare(op ast.BinOp, d string) string {
	mb := fc.mb
	trueLabel := mb.NewLabel()
	endLabel := mb.NewLabel()

	wide, isLong := isNumericWide(d)
	switch {
	case wide && isLong:
		mb.Emit(classfile.OpLCmp)
		fc.emitZeroBranch(op, trueLabel)
	case wide:
		mb.Emit(classfile.OpDCmpG)
		fc.emitZeroBranch(op, trueLabel)
	case isReferenceDescriptor(d):
		if op == ast.OpEq {
			mb.EmitJump(classfile.OpIfACmpEq, trueLabel, -2)
		} else {
			mb.EmitJump(classfile.OpIfACmpNe, trueLabel, -2)
		}
	default:
		fc.emitIntCmpBranch(op, trueLabel)
	}

	snap := mb.CurrentDepth()
	mb.Emit(classfile.OpIConst0)
	mb.EmitJump(classfile.OpGoto, endLabel, 0)
	mb.MergeStackDepth(snap)
	mb.MarkLabel(trueLabel)
	mb.Emit(classfile.OpIConst1)
	mb.MarkLabel(endLabel)
	return boolDescriptor
}

func (fc *funcCtx) emitIntCmpBranch(op ast.BinOp, target int) {
	mb := fc.mb
	switch op {
	case ast.OpEq:
		mb.EmitJump(classfile.OpIfICmpEq, target, -2)
	case ast.OpNeq:
		mb.EmitJump(classfile.OpIfICmpNe, target, -2)
	case ast.OpLt:
		mb.EmitJump(classfile.OpIfICmpLt, target, -2)
	case ast.OpGt:
		mb.EmitJump(classfile.OpIfICmpGt, target, -2)
	case ast.OpLte:
		mb.EmitJump(classfile.OpIfICmpLe, target, -2)
	case ast.OpGte:
		mb.EmitJump(classfile.OpIfICmpGe, target, -2)
	}
}

// emitZeroBranch compares the lcmp/dcmpg result (already on the stack
// as a single int) against zero.
func (fc *funcCtx) emitZeroBranch(op ast.BinOp, target int) {
	mb := fc.mb
	switch op {
	case ast.OpEq:
		mb.EmitJump(classfile.OpIfEq, target, -1)
	case ast.OpNeq:
		mb.EmitJump(classfile.OpIfNe, target, -1)
	case ast.OpLt:
		mb.EmitJump(classfile.OpIfLt, target, -1)
	case ast.OpGt:
		mb.EmitJump(classfile.OpIfGt, target, -1)
	case ast.OpLte:
		mb.EmitJump(classfile.OpIfLe, target, -1)
	case ast.OpGte:
		mb.EmitJump(classfile.OpIfGe, target, -1)
	}
}

// emitShortCircuit lowers `&&`/`||` without evaluating the right
// operand unless necessary.
func (fc *funcCtx) emitShortCircuit(b *ast.Binary, isAnd bool) string {
	mb := fc.mb
	shortCircuit := mb.NewLabel()
	end := mb.NewLabel()

	fc.emitExpr(b.Left)
	if isAnd {
		mb.EmitJump(classfile.OpIfEq, shortCircuit, -1)
	} else {
		mb.EmitJump(classfile.OpIfNe, shortCircuit, -1)
	}
	snap := mb.CurrentDepth()
	fc.emitExpr(b.Right)
	mb.EmitJump(classfile.OpGoto, end, 0)
	mb.MergeStackDepth(snap)
	mb.MarkLabel(shortCircuit)
	if isAnd {
		mb.Emit(classfile.OpIConst0)
	} else {
		mb.Emit(classfile.OpIConst1)
	}
	mb.MarkLabel(end)
	return boolDescriptor
}

func (fc *funcCtx) emitUnary(u *ast.Unary) string {
	d := fc.emitExpr(u.Expr)
	switch u.Op {
	case ast.OpNeg:
		switch d {
		case "J":
			fc.mb.Emit(classfile.OpLNeg)
		case "D":
			fc.mb.Emit(classfile.OpDNeg)
		default:
			fc.mb.Emit(classfile.OpINeg)
		}
	case ast.OpNot:
		// Boolean negation: xor with 1.
		fc.mb.Emit(classfile.OpIConst1)
		fc.mb.Emit(classfile.OpIXor)
	case ast.OpBitNot:
		if d == "J" {
			idx := fc.cb.Pool.Long(-1)
			fc.mb.EmitU16(classfile.OpLdc2W, idx, 2)
			fc.mb.Emit(classfile.OpLXor)
		} else {
			fc.mb.Emit(classfile.OpIConstM1)
			fc.mb.Emit(classfile.OpIXor)
		}
	}
	return d
}
