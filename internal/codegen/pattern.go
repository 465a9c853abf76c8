package codegen

import (
	"strconv"

	"github.com/flylang/flyc/internal/ast"
	"github.com/flylang/flyc/internal/classfile"
)

// testPattern emits a test of the value held in local slot tmpSlot
// against pat, jumping to failLabel when it does not match. On a
// match it falls through with every VariablePattern leaf in pat bound
// to a fresh local. Patterns sema's exhaustiveness/well-formedness
// checks didn't already validate as reachable are not expected here;
// an unrecognized pattern kind is treated as always matching rather
// than aborting codegen for the whole arm.
func (fc *funcCtx) testPattern(pat ast.Pattern, descriptor string, tmpSlot int, failLabel int) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return
	case *ast.VariablePattern:
		fc.bindVariable(p, descriptor, tmpSlot)
	case *ast.LiteralPattern:
		fc.testLiteral(p, descriptor, tmpSlot, failLabel)
	case *ast.TupleStructPattern:
		fc.testTupleStruct(p, descriptor, tmpSlot, failLabel)
	case *ast.StructPattern:
		fc.testStruct(p, descriptor, tmpSlot, failLabel)
	case *ast.TuplePattern:
		fc.testTuple(p, tmpSlot, failLabel)
	case *ast.OrPattern:
		fc.testOr(p, descriptor, tmpSlot, failLabel)
	case *ast.GuardPattern:
		fc.testPattern(p.Inner, descriptor, tmpSlot, failLabel)
		gd := fc.emitExpr(p.Guard)
		_ = gd
		fc.mb.EmitJump(classfile.OpIfEq, failLabel, -1)
	default:
		// RangePattern/ArrayPattern and any other shape not covered by a
		// dedicated test: accepted unconditionally.
	}
}

func (fc *funcCtx) loadTemp(slot int, descriptor string) {
	load, _, _, _ := opsFor(descriptor)
	fc.mb.EmitLocalOp(load, slot, widthOf(descriptor))
}

func (fc *funcCtx) bindVariable(p *ast.VariablePattern, descriptor string, tmpSlot int) {
	fc.loadTemp(tmpSlot, descriptor)
	s := fc.locals.declare(p.Name, descriptor)
	_, store, _, _ := opsFor(descriptor)
	fc.mb.EmitLocalOp(store, s.slot, -widthOf(descriptor))
}

func (fc *funcCtx) testLiteral(p *ast.LiteralPattern, descriptor string, tmpSlot int, failLabel int) {
	mb := fc.mb
	fc.loadTemp(tmpSlot, descriptor)
	switch p.Kind {
	case ast.StringLit:
		idx := fc.cb.Pool.String(p.Value.(string))
		mb.EmitU8(classfile.OpLdc, byte(idx), 1)
		ref := fc.cb.Pool.Methodref(stringDescriptorBare(), "equals", "(L"+objectNameBare()+";)Z")
		mb.EmitU16(classfile.OpInvokeVirtual, ref, -1)
		mb.EmitJump(classfile.OpIfEq, failLabel, -1)
	case ast.FloatLit:
		idx := fc.cb.Pool.Double(p.Value.(float64))
		mb.EmitU16(classfile.OpLdc2W, idx, 2)
		mb.Emit(classfile.OpDCmpG)
		mb.EmitJump(classfile.OpIfNe, failLabel, -1)
	case ast.BoolLit:
		if p.Value.(bool) {
			mb.EmitJump(classfile.OpIfEq, failLabel, -1)
		} else {
			mb.EmitJump(classfile.OpIfNe, failLabel, -1)
		}
	default:
		// Int/Char: both represented as VM ints.
		n := literalAsInt(p)
		switch n {
		case 0:
			mb.Emit(classfile.OpIConst0)
		case 1:
			mb.Emit(classfile.OpIConst1)
		case -1:
			mb.Emit(classfile.OpIConstM1)
		default:
			idx := fc.cb.Pool.Integer(int32(n))
			mb.EmitU8(classfile.OpLdc, byte(idx), 1)
		}
		mb.EmitJump(classfile.OpIfICmpNe, failLabel, -2)
	}
}

func literalAsInt(p *ast.LiteralPattern) int64 {
	switch v := p.Value.(type) {
	case int64:
		return v
	case rune:
		return int64(v)
	}
	return 0
}

func objectNameBare() string { return classNameFromDescriptor(objectDescriptor) }

// testTupleStruct lowers `Variant(p1, p2, ...)`: an instanceof check
// against the variant's synthetic subclass followed by per-element
// field reads. Positional fields compile under the names "_0", "_1",
// etc., the convention emitData uses for each DataVariant's fields.
func (fc *funcCtx) testTupleStruct(p *ast.TupleStructPattern, descriptor string, tmpSlot int, failLabel int) {
	mb := fc.mb
	variantClass := classNameFromDescriptor(descriptor) + "$" + p.Name
	fc.loadTemp(tmpSlot, descriptor)
	cls := fc.cb.Pool.Class(variantClass)
	mb.EmitU16(classfile.OpInstanceOf, cls, 0)
	mb.EmitJump(classfile.OpIfEq, failLabel, -1)

	for i, elem := range p.Elements {
		if isAlwaysMatch(elem) && !bindsName(elem) {
			continue
		}
		fieldName := positionalFieldName(i)
		elemDesc := objectDescriptor
		fc.loadTemp(tmpSlot, descriptor)
		mb.EmitU16(classfile.OpCheckCast, cls, 0)
		ref := fc.cb.Pool.Fieldref(variantClass, fieldName, elemDesc)
		mb.EmitU16(classfile.OpGetField, ref, widthOf(elemDesc)-1)
		tmp := fc.locals.declare(fc.tempName(), elemDesc)
		_, store, _, _ := opsFor(elemDesc)
		mb.EmitLocalOp(store, tmp.slot, -widthOf(elemDesc))
		fc.testPattern(elem, elemDesc, tmp.slot, failLabel)
	}
}

func positionalFieldName(i int) string {
	return "_" + strconv.Itoa(i)
}

// testStruct lowers `Type { field: pat, ... }`.
func (fc *funcCtx) testStruct(p *ast.StructPattern, descriptor string, tmpSlot int, failLabel int) {
	mb := fc.mb
	owner := descriptor
	if p.Type != nil {
		owner = fc.gen.classNameOf(p.Type)
	} else {
		owner = classNameFromDescriptor(descriptor)
	}
	if p.Type != nil {
		fc.loadTemp(tmpSlot, descriptor)
		cls := fc.cb.Pool.Class(owner)
		mb.EmitU16(classfile.OpInstanceOf, cls, 0)
		mb.EmitJump(classfile.OpIfEq, failLabel, -1)
	}
	for _, field := range p.Fields {
		if isAlwaysMatch(field.Pattern) && !bindsName(field.Pattern) {
			continue
		}
		fieldDesc := objectDescriptor
		fc.loadTemp(tmpSlot, descriptor)
		if p.Type != nil {
			cls := fc.cb.Pool.Class(owner)
			mb.EmitU16(classfile.OpCheckCast, cls, 0)
		}
		ref := fc.cb.Pool.Fieldref(owner, field.Name, fieldDesc)
		mb.EmitU16(classfile.OpGetField, ref, widthOf(fieldDesc)-1)
		tmp := fc.locals.declare(fc.tempName(), fieldDesc)
		_, store, _, _ := opsFor(fieldDesc)
		mb.EmitLocalOp(store, tmp.slot, -widthOf(fieldDesc))
		fc.testPattern(field.Pattern, fieldDesc, tmp.slot, failLabel)
	}
}

// testTuple lowers `(p1, p2, ...)` against a host Tuple value via its
// positional getters.
func (fc *funcCtx) testTuple(p *ast.TuplePattern, tmpSlot int, failLabel int) {
	const tupleClass = "lang/Tuple"
	for i, elem := range p.Elements {
		if isAlwaysMatch(elem) && !bindsName(elem) {
			continue
		}
		fc.loadTemp(tmpSlot, "Llang/Tuple;")
		idxLit := fc.cb.Pool.Integer(int32(i))
		fc.mb.EmitU8(classfile.OpLdc, byte(idxLit), 1)
		ref := fc.cb.Pool.Methodref(tupleClass, "get", "(I)L"+objectNameBare()+";")
		fc.mb.EmitU16(classfile.OpInvokeVirtual, ref, -1)
		tmp := fc.locals.declare(fc.tempName(), objectDescriptor)
		fc.mb.EmitLocalOp(classfile.OpAStore, tmp.slot, -1)
		fc.testPattern(elem, objectDescriptor, tmp.slot, failLabel)
	}
}

// testOr lowers `p1 | p2 | ...`: any one alternative matching is
// enough. No local is bound here regardless of which branch matches.
// Sema does not reject an or-pattern whose alternatives bind variables;
// it reports RES003 only when two alternatives bind the same name.
func (fc *funcCtx) testOr(p *ast.OrPattern, descriptor string, tmpSlot int, failLabel int) {
	matched := fc.mb.NewLabel()
	for i, alt := range p.Alternatives {
		next := fc.mb.NewLabel()
		fc.testPattern(alt, descriptor, tmpSlot, next)
		fc.mb.EmitJump(classfile.OpGoto, matched, 0)
		fc.mb.MarkLabel(next)
		if i == len(p.Alternatives)-1 {
			fc.mb.EmitJump(classfile.OpGoto, failLabel, 0)
		}
	}
	fc.mb.MarkLabel(matched)
}

func isAlwaysMatch(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.WildcardPattern, *ast.VariablePattern:
		return true
	}
	return false
}

func bindsName(p ast.Pattern) bool {
	_, ok := p.(*ast.VariablePattern)
	return ok
}

var tempCounter int

// tempName mints a unique synthetic local-variable name, distinct from
// any name a Flylang identifier could spell (leading digit).
func (fc *funcCtx) tempName() string {
	tempCounter++
	return "0tmp" + strconv.Itoa(tempCounter)
}
