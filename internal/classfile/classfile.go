package classfile

import "encoding/binary"

const (
	magic        = 0xCAFEBABE
	majorVersion = 0x0034 // VM's minimum supported class-file version
	minorVersion = 0x0000
)

// Access flags, a subset relevant to the constructs this compiler emits.
const (
	AccPublic    = 0x0001
	AccPrivate   = 0x0002
	AccStatic    = 0x0008
	AccFinal     = 0x0010
	AccAbstract  = 0x0400
	AccInterface = 0x0200
)

// FieldEntry is one field_info record.
type FieldEntry struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
}

// MethodEntry is one method_info record: access flags, name/descriptor,
// and the already-built bytecode plus the builder's computed
// max-stack/max-locals. Code is nil for an abstract/interface method
// (no Code attribute emitted).
type MethodEntry struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	MaxStack    int
	MaxLocals   int
	Code        []byte
	Exceptions  []ExceptionTableEntry
}

// ExceptionTableEntry is one entry of a Code attribute's exception
// table, covering a try range and its handler.
type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType string // internal name of the caught type, empty for finally (catch-all)
}

// ClassBuilder accumulates one class's shape — superclass, interfaces,
// fields, methods — before serialization. Codegen constructs one
// ClassBuilder per emitted class (including synthetic lambda and
// async-continuation classes).
type ClassBuilder struct {
	Pool        *ConstantPool
	AccessFlags uint16
	ThisClass   string // internal name, `/`-separated
	SuperClass  string // internal name; empty means the VM's root object type
	Interfaces  []string
	Fields      []FieldEntry
	Methods     []MethodEntry
}

// NewClassBuilder starts a class named thisClass (internal name).
func NewClassBuilder(thisClass string, access uint16) *ClassBuilder {
	return &ClassBuilder{
		Pool:        NewConstantPool(),
		AccessFlags: access,
		ThisClass:   thisClass,
	}
}

// AddField appends a field_info entry.
func (c *ClassBuilder) AddField(f FieldEntry) { c.Fields = append(c.Fields, f) }

// AddMethod appends a method_info entry.
func (c *ClassBuilder) AddMethod(m MethodEntry) { c.Methods = append(c.Methods, m) }

// Serialize produces the complete binary class file: magic, version,
// constant pool, access flags, this/super class, interfaces, fields,
// methods, and a trailing empty class-attribute count. Every symbolic
// reference (class names, field/method name-and-type) is resolved
// against c.Pool, which callers must have already populated via the
// builder's Add* helpers and the bytecode emission that referenced
// constant-pool entries while building each MethodEntry.Code. Every
// name/descriptor/class string touched by the class shape is interned
// first so the constant_pool_count and pool bytes written up front are
// already final by the time the rest of the file is emitted.
func (c *ClassBuilder) Serialize() []byte {
	c.internAll()

	var buf []byte
	putU32 := func(v uint32) { buf = appendU32(buf, v) }
	putU16 := func(v uint16) { buf = appendU16(buf, v) }

	putU32(magic)
	putU16(minorVersion)
	putU16(majorVersion)

	putU16(c.Pool.Len())
	buf = append(buf, c.Pool.Bytes()...)

	putU16(c.AccessFlags)
	putU16(c.Pool.Class(c.ThisClass))
	if c.SuperClass != "" {
		putU16(c.Pool.Class(c.SuperClass))
	} else {
		putU16(0)
	}

	putU16(uint16(len(c.Interfaces)))
	for _, iface := range c.Interfaces {
		putU16(c.Pool.Class(iface))
	}

	putU16(uint16(len(c.Fields)))
	for _, f := range c.Fields {
		putU16(f.AccessFlags)
		putU16(c.Pool.Utf8(f.Name))
		putU16(c.Pool.Utf8(f.Descriptor))
		putU16(0) // attributes_count: no field attributes emitted
	}

	putU16(uint16(len(c.Methods)))
	for _, meth := range c.Methods {
		putU16(meth.AccessFlags)
		putU16(c.Pool.Utf8(meth.Name))
		putU16(c.Pool.Utf8(meth.Descriptor))
		if meth.Code == nil {
			putU16(0) // abstract/interface method: no Code attribute
			continue
		}
		putU16(1)
		codeAttr := c.serializeCode(meth)
		putU16(c.Pool.Utf8("Code"))
		putU32(uint32(len(codeAttr)))
		buf = append(buf, codeAttr...)
	}

	putU16(0) // class-level attributes_count
	return buf
}

// internAll walks every symbolic name this class file will reference
// and interns it, so the pool is complete before the header's
// constant_pool_count is written.
func (c *ClassBuilder) internAll() {
	c.Pool.Class(c.ThisClass)
	if c.SuperClass != "" {
		c.Pool.Class(c.SuperClass)
	}
	for _, iface := range c.Interfaces {
		c.Pool.Class(iface)
	}
	for _, f := range c.Fields {
		c.Pool.Utf8(f.Name)
		c.Pool.Utf8(f.Descriptor)
	}
	for _, meth := range c.Methods {
		c.Pool.Utf8(meth.Name)
		c.Pool.Utf8(meth.Descriptor)
		if meth.Code != nil {
			c.Pool.Utf8("Code")
			for _, ex := range meth.Exceptions {
				if ex.CatchType != "" {
					c.Pool.Class(ex.CatchType)
				}
			}
		}
	}
}

func (c *ClassBuilder) serializeCode(m MethodEntry) []byte {
	var buf []byte
	putU16 := func(v uint16) { buf = appendU16(buf, v) }
	putU32 := func(v uint32) { buf = appendU32(buf, v) }

	putU16(uint16(m.MaxStack))
	putU16(uint16(m.MaxLocals))
	putU32(uint32(len(m.Code)))
	buf = append(buf, m.Code...)

	putU16(uint16(len(m.Exceptions)))
	for _, ex := range m.Exceptions {
		putU16(ex.StartPC)
		putU16(ex.EndPC)
		putU16(ex.HandlerPC)
		if ex.CatchType != "" {
			putU16(c.Pool.Class(ex.CatchType))
		} else {
			putU16(0)
		}
	}

	putU16(0) // Code attribute's own attributes_count (no LineNumberTable emitted)
	return buf
}

func appendU16(buf []byte, v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return append(buf, b...)
}

func appendU32(buf []byte, v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return append(buf, b...)
}
