// Package resolver implements Flylang's import/name resolution and the
// primitive-to-VM-descriptor mapping that the rest of the compiler
// (semantic analyzer, code generator) builds on.
package resolver

import "github.com/flylang/flyc/internal/ast"

// PrimitiveInfo describes how one of Flylang's primitive kinds maps onto
// the target VM's type system: its descriptor string, the opcodes used to
// load/store/return a value of that kind, and the name of its boxed
// (reference) counterpart for contexts where a primitive is passed where
// a reference is expected (generic arguments, collections, optionals).
type PrimitiveInfo struct {
	Kind        ast.PrimitiveKind
	Descriptor  string // VM type descriptor, e.g. "I", "J", "D"
	LoadOp      string // local-slot load opcode mnemonic
	StoreOp     string // local-slot store opcode mnemonic
	ReturnOp    string // return opcode mnemonic
	ArrayLoadOp string
	ArrayStoreOp string
	BoxedName   string // fully-qualified boxed wrapper class, e.g. "lang/Integer"
	Wide        bool   // occupies two local slots (64-bit)
}

// primitiveTable is indexed by ast.PrimitiveKind. Float always resolves to
// the VM's 64-bit double descriptor,
// and Unit is a pure alias of Void — both concepts resolve identically,
// never getting their own descriptor.
var primitiveTable = map[ast.PrimitiveKind]PrimitiveInfo{
	ast.IntKind: {
		Kind: ast.IntKind, Descriptor: "I",
		LoadOp: "iload", StoreOp: "istore", ReturnOp: "ireturn",
		ArrayLoadOp: "iaload", ArrayStoreOp: "iastore",
		BoxedName: "lang/Integer",
	},
	ast.LongKind: {
		Kind: ast.LongKind, Descriptor: "J",
		LoadOp: "lload", StoreOp: "lstore", ReturnOp: "lreturn",
		ArrayLoadOp: "laload", ArrayStoreOp: "lastore",
		BoxedName: "lang/Long", Wide: true,
	},
	ast.FloatKind: {
		Kind: ast.FloatKind, Descriptor: "D",
		LoadOp: "dload", StoreOp: "dstore", ReturnOp: "dreturn",
		ArrayLoadOp: "daload", ArrayStoreOp: "dastore",
		BoxedName: "lang/Double", Wide: true,
	},
	ast.DoubleKind: {
		Kind: ast.DoubleKind, Descriptor: "D",
		LoadOp: "dload", StoreOp: "dstore", ReturnOp: "dreturn",
		ArrayLoadOp: "daload", ArrayStoreOp: "dastore",
		BoxedName: "lang/Double", Wide: true,
	},
	ast.BoolKind: {
		Kind: ast.BoolKind, Descriptor: "Z",
		LoadOp: "iload", StoreOp: "istore", ReturnOp: "ireturn",
		ArrayLoadOp: "baload", ArrayStoreOp: "bastore",
		BoxedName: "lang/Boolean",
	},
	ast.CharKind: {
		Kind: ast.CharKind, Descriptor: "C",
		LoadOp: "iload", StoreOp: "istore", ReturnOp: "ireturn",
		ArrayLoadOp: "caload", ArrayStoreOp: "castore",
		BoxedName: "lang/Character",
	},
	ast.ByteKind: {
		Kind: ast.ByteKind, Descriptor: "B",
		LoadOp: "iload", StoreOp: "istore", ReturnOp: "ireturn",
		ArrayLoadOp: "baload", ArrayStoreOp: "bastore",
		BoxedName: "lang/Byte",
	},
	ast.ShortKind: {
		Kind: ast.ShortKind, Descriptor: "S",
		LoadOp: "iload", StoreOp: "istore", ReturnOp: "ireturn",
		ArrayLoadOp: "saload", ArrayStoreOp: "sastore",
		BoxedName: "lang/Short",
	},
	ast.StringKind: {
		Kind: ast.StringKind, Descriptor: "Llang/String;",
		LoadOp: "aload", StoreOp: "astore", ReturnOp: "areturn",
		ArrayLoadOp: "aaload", ArrayStoreOp: "aastore",
		BoxedName: "lang/String",
	},
	ast.VoidKind: {
		Kind: ast.VoidKind, Descriptor: "V",
		ReturnOp: "return",
	},
	ast.UnitKind: {
		// Unit is Void under a different spelling: identical
		// descriptor and opcodes, no separate boxed form.
		Kind: ast.VoidKind, Descriptor: "V",
		ReturnOp: "return",
	},
}

// LookupPrimitive returns the VM mapping for a primitive kind. Every
// ast.PrimitiveKind has an entry; this never returns false for a value
// produced by the parser.
func LookupPrimitive(kind ast.PrimitiveKind) (PrimitiveInfo, bool) {
	info, ok := primitiveTable[kind]
	return info, ok
}

// primitiveNames maps the bare identifier a type annotation uses (e.g.
// `Int`, `String`) onto the primitive kind, so resolve() can recognize
// primitives without a module-qualified path.
var primitiveNames = map[string]ast.PrimitiveKind{
	"Int": ast.IntKind, "Long": ast.LongKind, "Float": ast.FloatKind,
	"Double": ast.DoubleKind, "Bool": ast.BoolKind, "Char": ast.CharKind,
	"Byte": ast.ByteKind, "Short": ast.ShortKind, "String": ast.StringKind,
	"Void": ast.VoidKind, "Unit": ast.UnitKind,
}

// PrimitiveKindByName reports whether name is one of Flylang's built-in
// primitive type names.
func PrimitiveKindByName(name string) (ast.PrimitiveKind, bool) {
	k, ok := primitiveNames[name]
	return k, ok
}
