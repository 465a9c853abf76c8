package codegen

import (
	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/classfile"
)

const objectDescriptor = "Llang/Object;"
const stringDescriptor = "Llang/String;"
const boolDescriptor = "Z"

// loopCtx records the jump targets a break/continue inside a loop body
// resolves against.
type loopCtx struct {
	breakLabel    int
	continueLabel int
}

// funcCtx carries the state threaded through one method body's
// expression codegen: the method builder being filled in, the local
// slot table, and the enclosing loop stack for break/continue.
type funcCtx struct {
	gen    *Generator
	cb     *classfile.ClassBuilder
	mb     *classfile.MethodBuilder
	locals *localEnv
	owner  string
	fn     *ast.FunctionDecl

	returnDescriptor string
	loops            []loopCtx
	exceptionTable   []classfile.ExceptionTableEntry
}

// typeOf resolves e's descriptor from the analyzer's synthesized-type
// side table, falling back to a generic object reference when no
// static type was recorded (e.g. for a node sema didn't synthesize a
// type for, or when codegen runs over code sema never saw).
func (fc *funcCtx) typeOf(e ast.Expr) string {
	if t, ok := fc.gen.analyzer.TypeOf(e); ok {
		return fc.gen.descriptorOf(t)
	}
	return objectDescriptor
}

func classNameFromDescriptor(d string) string {
	if len(d) >= 2 && d[0] == 'L' && d[len(d)-1] == ';' {
		return d[1 : len(d)-1]
	}
	return d
}

// emitBodyAsReturn emits fn's body so that its value (if any) becomes
// the method's return value, including the final return opcode.
func (fc *funcCtx) emitBodyAsReturn(body ast.Expr) {
	desc := fc.emitExpr(body)
	fc.convert(desc, fc.returnDescriptor)
	load, _, ret, _ := opsFor(fc.returnDescriptor)
	_ = load
	if fc.returnDescriptor == "V" {
		if desc != "V" {
			fc.pop(desc)
		}
		fc.mb.Emit(classfile.OpReturn)
		return
	}
	fc.mb.Emit(ret)
}

// pop discards a value of the given descriptor from the stack.
func (fc *funcCtx) pop(descriptor string) {
	if descriptor == "V" {
		return
	}
	if descriptor == "J" || descriptor == "D" {
		fc.mb.Emit(classfile.OpPop2)
		return
	}
	fc.mb.Emit(classfile.OpPop)
}

// convert emits a widening conversion from `from` to `to` when the two
// descriptors differ in numeric width (Int -> Long -> Double). No
// conversion is emitted between reference descriptors; sema's type
// checker has already rejected anything that would need one.
func (fc *funcCtx) convert(from, to string) {
	if from == to || from == "V" || to == "V" {
		return
	}
	switch {
	case from == "I" && to == "J":
		fc.mb.Emit(classfile.OpI2L)
	case from == "I" && to == "D":
		fc.mb.Emit(classfile.OpI2D)
	case from == "J" && to == "D":
		fc.mb.Emit(classfile.OpL2D)
	}
}

// emitStmt emits e for its side effects only, discarding any value it
// produces.
func (fc *funcCtx) emitStmt(e ast.Expr) {
	desc := fc.emitExpr(e)
	fc.pop(desc)
}

// emitExpr emits e, leaving its value on the operand stack, and
// returns the VM descriptor of what it left there ("V" for none).
func (fc *funcCtx) emitExpr(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.Literal:
		return fc.emitLiteral(v)
	case *ast.Identifier:
		return fc.emitIdentifier(v)
	case *ast.Path:
		return fc.emitPath(v)
	case *ast.Binary:
		return fc.emitBinary(v)
	case *ast.Unary:
		return fc.emitUnary(v)
	case *ast.Call:
		return fc.emitCall(v)
	case *ast.MethodCall:
		return fc.emitMethodCall(v)
	case *ast.StaticCall:
		return fc.emitStaticCall(v)
	case *ast.FieldAccess:
		return fc.emitFieldAccess(v)
	case *ast.SafeAccess:
		return fc.emitSafeAccess(v)
	case *ast.IndexAccess:
		return fc.emitIndexAccess(v)
	case *ast.Block:
		return fc.emitBlock(v)
	case *ast.If:
		return fc.emitIf(v)
	case *ast.Match:
		return fc.emitMatch(v)
	case *ast.While:
		return fc.emitWhile(v)
	case *ast.For:
		return fc.emitFor(v)
	case *ast.Return:
		return fc.emitReturn(v)
	case *ast.Break:
		return fc.emitBreak(v)
	case *ast.Continue:
		return fc.emitContinue(v)
	case *ast.Throw:
		return fc.emitThrow(v)
	case *ast.Try:
		return fc.emitTry(v)
	case *ast.New:
		return fc.emitNew(v)
	case *ast.StructLit:
		return fc.emitStructLit(v)
	case *ast.ArrayLit:
		return fc.emitArrayLit(v)
	case *ast.TupleLit:
		return fc.emitTupleLit(v)
	case *ast.MapLit:
		return fc.emitMapLit(v)
	case *ast.Cast:
		return fc.emitCast(v)
	case *ast.TypeCheck:
		return fc.emitTypeCheck(v)
	case *ast.Coalesce:
		return fc.emitCoalesce(v)
	case *ast.ForceUnwrap:
		return fc.emitForceUnwrap(v)
	case *ast.Unwrap:
		return fc.emitUnwrap(v)
	case *ast.Assignment:
		return fc.emitAssignment(v)
	case *ast.CompoundAssignment:
		return fc.emitCompoundAssignment(v)
	case *ast.Let:
		return fc.emitLet(v)
	case *ast.Lambda:
		return fc.emitLambda(v)
	case *ast.Elvis:
		return fc.emitCoalesce(&ast.Coalesce{ExprBase: v.ExprBase, Value: v.Value, Default: v.Default})
	case *ast.Await:
		return fc.emitExpr(v.Value)
	case *ast.Concurrent:
		return fc.emitConcurrent(v)
	case *ast.Race:
		return fc.emitRace(v)
	case *ast.Timeout:
		return fc.emitExpr(v.Body)
	case *ast.With:
		return fc.emitExpr(v.Body)
	case *ast.Range:
		return fc.emitRange(v.Start, v.End, false)
	case *ast.RangeInclusive:
		return fc.emitRange(v.Start, v.End, true)
	default:
		panic("codegen: unsupported expression node reached emitExpr")
	}
}

func (fc *funcCtx) emitLiteral(l *ast.Literal) string {
	mb := fc.mb
	switch l.Kind {
	case ast.IntLit:
		n := l.Value.(int64)
		switch n {
		case -1:
			mb.Emit(classfile.OpIConstM1)
		case 0:
			mb.Emit(classfile.OpIConst0)
		case 1:
			mb.Emit(classfile.OpIConst1)
		default:
			idx := fc.cb.Pool.Integer(int32(n))
			mb.EmitU8(classfile.OpLdc, byte(idx), 1)
		}
		return "I"
	case ast.FloatLit:
		idx := fc.cb.Pool.Double(l.Value.(float64))
		mb.EmitU16(classfile.OpLdc2W, idx, 2)
		return "D"
	case ast.StringLit:
		idx := fc.cb.Pool.String(l.Value.(string))
		mb.EmitU8(classfile.OpLdc, byte(idx), 1)
		return stringDescriptor
	case ast.InterpStringLit:
		return fc.emitInterpString(l)
	case ast.CharLit:
		idx := fc.cb.Pool.Integer(int32(l.Value.(rune)))
		mb.EmitU8(classfile.OpLdc, byte(idx), 1)
		return "C"
	case ast.BoolLit:
		if l.Value.(bool) {
			mb.Emit(classfile.OpIConst1)
		} else {
			mb.Emit(classfile.OpIConst0)
		}
		return boolDescriptor
	case ast.NullLit:
		mb.Emit(classfile.OpAConstNull)
		return objectDescriptor
	}
	panic("codegen: unknown literal kind")
}

// emitInterpString lowers `f"...{e}..."` to a StringBuilder chain:
// new StringBuilder(), then one append() per segment, then toString().
func (fc *funcCtx) emitInterpString(l *ast.Literal) string {
	const builder = "lang/StringBuilder"
	mb := fc.mb
	classIdx := fc.cb.Pool.Class(builder)
	mb.EmitU16(classfile.OpNew, classIdx, 1)
	mb.Emit(classfile.OpDup)
	ctor := fc.cb.Pool.Methodref(builder, "<init>", "()V")
	mb.EmitU16(classfile.OpInvokeSpecial, ctor, -1)

	for _, seg := range l.Segments {
		if seg.Expr != nil {
			desc := fc.emitExpr(seg.Expr)
			appendDesc := "(" + desc + ")L" + builder + ";"
			if !isReferenceDescriptor(desc) && desc != "I" && desc != "D" && desc != "J" {
				appendDesc = "(I)L" + builder + ";" // char/bool/byte/short widen to int's append overload
			}
			ref := fc.cb.Pool.Methodref(builder, "append", appendDesc)
			mb.EmitU16(classfile.OpInvokeVirtual, ref, -1)
		} else {
			idx := fc.cb.Pool.String(seg.Text)
			mb.EmitU8(classfile.OpLdc, byte(idx), 1)
			ref := fc.cb.Pool.Methodref(builder, "append", "(L"+stringDescriptorBare()+";)L"+builder+";")
			mb.EmitU16(classfile.OpInvokeVirtual, ref, -1)
		}
	}
	toStr := fc.cb.Pool.Methodref(builder, "toString", "()L"+stringDescriptorBare()+";")
	mb.EmitU16(classfile.OpInvokeVirtual, toStr, 0)
	return stringDescriptor
}

func stringDescriptorBare() string { return classNameFromDescriptor(stringDescriptor) }

func (fc *funcCtx) emitIdentifier(id *ast.Identifier) string {
	if s, ok := fc.locals.lookup(id.Name); ok {
		load, _, _, _ := opsFor(s.descriptor)
		fc.mb.EmitLocalOp(load, s.slot, widthOf(s.descriptor))
		return s.descriptor
	}
	// Not a local: an instance field reference on the implicit receiver.
	desc := fc.typeOf(id)
	if this, ok := fc.locals.lookup("this"); ok {
		fc.mb.EmitLocalOp(classfile.OpALoad, this.slot, 1)
		ref := fc.cb.Pool.Fieldref(fc.owner, id.Name, desc)
		fc.mb.EmitU16(classfile.OpGetField, ref, widthOf(desc)-1)
		return desc
	}
	// No receiver in scope (a free function referencing an undeclared
	// name): treat it as a static field on the enclosing class.
	ref := fc.cb.Pool.Fieldref(fc.owner, id.Name, desc)
	fc.mb.EmitU16(classfile.OpGetStatic, ref, widthOf(desc))
	return desc
}

func (fc *funcCtx) emitPath(p *ast.Path) string {
	desc := fc.typeOf(p)
	if len(p.Segments) < 2 {
		ref := fc.cb.Pool.Fieldref(fc.owner, p.String(), desc)
		fc.mb.EmitU16(classfile.OpGetStatic, ref, widthOf(desc))
		return desc
	}
	owner := classfile.ModuleToPackage(p.Segments[:len(p.Segments)-1])
	name := p.Segments[len(p.Segments)-1]
	ref := fc.cb.Pool.Fieldref(owner, name, desc)
	fc.mb.EmitU16(classfile.OpGetStatic, ref, widthOf(desc))
	return desc
}
