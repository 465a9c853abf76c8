package classfile

import (
	"encoding/binary"
	"testing"
)

func TestConstantPoolInterning(t *testing.T) {
	p := NewConstantPool()
	i1 := p.Utf8("hello")
	i2 := p.Utf8("hello")
	if i1 != i2 {
		t.Fatalf("Utf8 did not intern: got %d and %d", i1, i2)
	}
	i3 := p.Utf8("world")
	if i3 == i1 {
		t.Fatalf("distinct strings got the same index")
	}
}

func TestConstantPoolWideEntries(t *testing.T) {
	p := NewConstantPool()
	before := p.Len()
	p.Long(42)
	after := p.Len()
	if after-before != 2 {
		t.Fatalf("Long entry should consume 2 pool indices, consumed %d", after-before)
	}
}

func TestSerializeMagicAndVersion(t *testing.T) {
	cb := NewClassBuilder("a/b/Widget", AccPublic)
	out := cb.Serialize()
	if len(out) < 10 {
		t.Fatalf("serialized class file too short: %d bytes", len(out))
	}
	gotMagic := binary.BigEndian.Uint32(out[0:4])
	if gotMagic != magic {
		t.Errorf("got magic 0x%X, want 0x%X", gotMagic, magic)
	}
}

func TestSerializeFieldsAndMethods(t *testing.T) {
	cb := NewClassBuilder("a/b/Widget", AccPublic|AccFinal)
	cb.SuperClass = "lang/Object"
	cb.AddField(FieldEntry{AccessFlags: AccPrivate | AccFinal, Name: "value", Descriptor: "I"})

	mb := NewMethodBuilder(1)
	mb.EmitLocalOp(OpILoad, 0, 1)
	mb.Emit(OpIReturn)
	cb.AddMethod(MethodEntry{
		AccessFlags: AccPublic,
		Name:        "getValue",
		Descriptor:  "()I",
		MaxStack:    mb.MaxStack(),
		MaxLocals:   mb.MaxLocals(),
		Code:        mb.Finish(),
	})

	out := cb.Serialize()
	if len(out) == 0 {
		t.Fatal("expected non-empty output")
	}
}

func TestMethodBuilderStackTracking(t *testing.T) {
	mb := NewMethodBuilder(2)
	mb.EmitLocalOp(OpILoad, 0, 1)
	mb.EmitLocalOp(OpILoad, 1, 1)
	mb.Emit(OpIAdd)
	mb.Emit(OpIReturn)
	if mb.MaxStack() != 2 {
		t.Fatalf("got max stack %d, want 2", mb.MaxStack())
	}
}

func TestMethodBuilderJumpPatching(t *testing.T) {
	mb := NewMethodBuilder(1)
	done := mb.NewLabel()
	mb.EmitLocalOp(OpILoad, 0, 1)
	mb.EmitJump(OpIfEq, done, -1)
	mb.Emit(OpIConst0)
	mb.MarkLabel(done)
	mb.Emit(OpReturn)
	code := mb.Finish()
	if len(code) == 0 {
		t.Fatal("expected non-empty code")
	}
	// The ifeq operand (bytes 3-4, after the iload at 0-1 and the ifeq
	// opcode at 2) must no longer be the zero placeholder once patched.
	if code[3] == 0 && code[4] == 0 {
		t.Errorf("jump operand was not patched")
	}
}

func TestOpcodeForMnemonic(t *testing.T) {
	cases := map[string]Opcode{
		"iload": OpILoad, "astore": OpAStore, "dreturn": OpDReturn,
	}
	for mnemonic, want := range cases {
		got, ok := OpcodeForMnemonic(mnemonic)
		if !ok || got != want {
			t.Errorf("OpcodeForMnemonic(%q) = %v, %v; want %v, true", mnemonic, got, ok, want)
		}
	}
	if _, ok := OpcodeForMnemonic("nonsense"); ok {
		t.Errorf("expected unknown mnemonic to report false")
	}
}

func TestSyntheticNameUniqueness(t *testing.T) {
	a := SyntheticName("process", "lambda")
	b := SyntheticName("process", "lambda")
	if a == b {
		t.Errorf("expected distinct synthetic names, got %q twice", a)
	}
}
