package classfile

import "encoding/binary"

// MethodBuilder accumulates one method body's bytecode, tracking the
// current and maximum stack depth as instructions are appended and
// resolving forward jump targets once every label's final address is
// known. The label/patch-list shape mirrors how a stack-bytecode
// compiler tracks unresolved jump destinations: a label is reserved
// before its target is known, instructions reference it, and a single
// patch pass fixes up the emitted offsets.
type MethodBuilder struct {
	code []byte

	curStack int
	maxStack int

	locals   int // local slot count (maxLocals)
	labels   []int // label id -> resolved code offset, -1 until set
	patches  []jumpPatch
}

type jumpPatch struct {
	codeOffset int // offset of the 2-byte operand to patch
	label      int
}

// NewMethodBuilder starts a method body with maxLocals local slots
// already reserved (this + params + lets, computed by the caller from
// slot allocation before codegen emits any instruction).
func NewMethodBuilder(maxLocals int) *MethodBuilder {
	return &MethodBuilder{locals: maxLocals}
}

// NewLabel reserves an unresolved jump target, returned as an opaque id.
func (m *MethodBuilder) NewLabel() int {
	m.labels = append(m.labels, -1)
	return len(m.labels) - 1
}

// MarkLabel binds label to the current code offset — the next
// instruction emitted becomes its target.
func (m *MethodBuilder) MarkLabel(label int) {
	m.labels[label] = len(m.code)
}

// Emit appends a fixed (operand-free or pool-index) opcode and adjusts
// the running stack depth using its known stack effect. Opcodes with
// operand-dependent effects (invoke*, ldc*, new) must call
// EmitWithEffect instead.
func (m *MethodBuilder) Emit(op Opcode) {
	m.code = append(m.code, byte(op))
	if eff, ok := StackEffect(op); ok {
		m.adjust(eff)
	}
}

// EmitWithEffect appends op and applies an explicit stack-depth delta,
// for opcodes whose effect depends on the resolved method/field
// descriptor at the call site (invokevirtual, invokestatic, new, ldc).
func (m *MethodBuilder) EmitWithEffect(op Opcode, delta int) {
	m.code = append(m.code, byte(op))
	m.adjust(delta)
}

// EmitU8 appends op followed by a single-byte operand (ldc's pool index).
func (m *MethodBuilder) EmitU8(op Opcode, operand byte, delta int) {
	m.code = append(m.code, byte(op), operand)
	m.adjust(delta)
}

// EmitU16 appends op followed by a big-endian 2-byte operand (pool
// index for invoke*/getfield/putfield/new/checkcast/instanceof, or a
// local-slot index when wide indices are needed).
func (m *MethodBuilder) EmitU16(op Opcode, operand uint16, delta int) {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, operand)
	m.code = append(m.code, byte(op))
	m.code = append(m.code, buf...)
	m.adjust(delta)
}

// EmitLocalOp appends a load/store opcode addressed by local slot.
// Slots 0-3 have no dedicated short forms in this encoding: every slot
// is emitted as opcode + 1-byte index, sufficient for the VM's 8-bit
// local-index instruction family.
func (m *MethodBuilder) EmitLocalOp(op Opcode, slot int, delta int) {
	m.code = append(m.code, byte(op), byte(slot))
	m.adjust(delta)
}

// EmitJump appends a branch opcode targeting label, recording a patch
// to fix up the operand once the label resolves. delta is the
// opcode's stack effect excluding the jump itself (e.g. -1 for ifeq
// popping its condition).
func (m *MethodBuilder) EmitJump(op Opcode, label int, delta int) {
	m.code = append(m.code, byte(op), 0, 0)
	m.patches = append(m.patches, jumpPatch{codeOffset: len(m.code) - 2, label: label})
	m.adjust(delta)
}

func (m *MethodBuilder) adjust(delta int) {
	m.curStack += delta
	if m.curStack < 0 {
		m.curStack = 0
	}
	if m.curStack > m.maxStack {
		m.maxStack = m.curStack
	}
}

// MergeStackDepth reconciles the stack depth at a branch target with
// the depth already recorded along another path (e.g. the fall-through
// and taken-branch edges of an if). Both paths must agree on depth at
// a merge point in a well-typed program; codegen calls this after
// emitting each arm of a branch so the tracked depth reflects the
// join point rather than silently drifting.
func (m *MethodBuilder) MergeStackDepth(depth int) {
	m.curStack = depth
}

// CurrentDepth returns the stack depth tracked at the current code
// position, used to snapshot a branch point before emitting each arm.
func (m *MethodBuilder) CurrentDepth() int { return m.curStack }

// MaxStack returns the maximum stack depth observed across every
// instruction emitted so far.
func (m *MethodBuilder) MaxStack() int { return m.maxStack }

// MaxLocals returns the local slot count this method was built with.
func (m *MethodBuilder) MaxLocals() int { return m.locals }

// Offset returns the current code length, used as a jump source/target
// address by callers computing relative offsets manually (e.g. a
// backward loop jump emitted without going through NewLabel).
func (m *MethodBuilder) Offset() int { return len(m.code) }

// Finish resolves every recorded jump patch against its label's final
// offset and returns the completed code array. Panics if a label was
// referenced by EmitJump but never marked — an internal codegen bug,
// not a user-facing error.
func (m *MethodBuilder) Finish() []byte {
	for _, p := range m.patches {
		target := m.labels[p.label]
		if target < 0 {
			panic("classfile: jump to unmarked label")
		}
		// Offsets are relative to the address of the jump opcode itself,
		// i.e. one byte before the 2-byte operand being patched.
		rel := int16(target - (p.codeOffset - 1))
		binary.BigEndian.PutUint16(m.code[p.codeOffset:], uint16(rel))
	}
	return m.code
}
