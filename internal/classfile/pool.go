// Package classfile defines the host VM's binary class-file surface:
// constant-pool tags, the opcode table, and a serializer that turns a
// ClassBuilder into the bytes the code generator returns per compiled
// class. The layout follows the target VM's documented class-file
// format (magic number, constant pool, field/method tables, code
// attribute) — the same binary shape every collaborator compiling to
// this VM must produce, independent of source language.
package classfile

import (
	"encoding/binary"
	"math"
)

// Constant pool tags, one byte each, as the VM's loader expects them.
const (
	TagUtf8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldref           = 9
	TagMethodref          = 10
	TagInterfaceMethodref = 11
	TagNameAndType        = 12
)

// cpEntry is one already-encoded constant pool slot. Long and Double
// entries occupy two pool indices in the VM's format; entryWidth
// reports how many index slots an entry consumes.
type cpEntry struct {
	tag   byte
	bytes []byte
	width int
}

// ConstantPool interns the literals and symbolic references a class
// body needs, handing out indices starting at 1 (index 0 is reserved,
// matching the VM's "no entry" convention). Identical entries are
// interned once: two references to the same method signature share one
// pool slot.
type ConstantPool struct {
	entries []cpEntry
	utf8    map[string]uint16
	class   map[string]uint16
	nat     map[[2]string]uint16
	method  map[[2]string]uint16
	field   map[[2]string]uint16
	str     map[string]uint16
	integer map[int32]uint16
	long    map[int64]uint16
	double  map[float64]uint16
}

// NewConstantPool returns an empty pool ready to intern entries.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{
		utf8:    map[string]uint16{},
		class:   map[string]uint16{},
		nat:     map[[2]string]uint16{},
		method:  map[[2]string]uint16{},
		field:   map[[2]string]uint16{},
		str:     map[string]uint16{},
		integer: map[int32]uint16{},
		long:    map[int64]uint16{},
		double:  map[float64]uint16{},
	}
}

func (p *ConstantPool) nextIndex() uint16 {
	n := 1
	for _, e := range p.entries {
		n += e.width
	}
	return uint16(n)
}

func (p *ConstantPool) add(tag byte, width int, bytes []byte) uint16 {
	idx := p.nextIndex()
	p.entries = append(p.entries, cpEntry{tag: tag, bytes: bytes, width: width})
	return idx
}

// Utf8 interns a UTF-8 string entry, used for every name/descriptor.
func (p *ConstantPool) Utf8(s string) uint16 {
	if idx, ok := p.utf8[s]; ok {
		return idx
	}
	buf := make([]byte, 2+len(s))
	binary.BigEndian.PutUint16(buf, uint16(len(s)))
	copy(buf[2:], s)
	idx := p.add(TagUtf8, 1, buf)
	p.utf8[s] = idx
	return idx
}

// Class interns a class/interface reference by its internal (`/`-separated) name.
func (p *ConstantPool) Class(internalName string) uint16 {
	if idx, ok := p.class[internalName]; ok {
		return idx
	}
	nameIdx := p.Utf8(internalName)
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, nameIdx)
	idx := p.add(TagClass, 1, buf)
	p.class[internalName] = idx
	return idx
}

// NameAndType interns a (name, descriptor) pair used by field/method refs.
func (p *ConstantPool) NameAndType(name, descriptor string) uint16 {
	key := [2]string{name, descriptor}
	if idx, ok := p.nat[key]; ok {
		return idx
	}
	nameIdx := p.Utf8(name)
	descIdx := p.Utf8(descriptor)
	buf := make([]byte, 4)
	binary.BigEndian.PutUint16(buf[0:], nameIdx)
	binary.BigEndian.PutUint16(buf[2:], descIdx)
	idx := p.add(TagNameAndType, 1, buf)
	p.nat[key] = idx
	return idx
}

// Methodref interns a symbolic method reference on owner class
// (internal name) with the given name/descriptor.
func (p *ConstantPool) Methodref(owner, name, descriptor string) uint16 {
	key := [2]string{owner, name + descriptor}
	if idx, ok := p.method[key]; ok {
		return idx
	}
	classIdx := p.Class(owner)
	natIdx := p.NameAndType(name, descriptor)
	buf := make([]byte, 4)
	binary.BigEndian.PutUint16(buf[0:], classIdx)
	binary.BigEndian.PutUint16(buf[2:], natIdx)
	idx := p.add(TagMethodref, 1, buf)
	p.method[key] = idx
	return idx
}

// InterfaceMethodref interns a symbolic interface-method reference.
func (p *ConstantPool) InterfaceMethodref(owner, name, descriptor string) uint16 {
	classIdx := p.Class(owner)
	natIdx := p.NameAndType(name, descriptor)
	buf := make([]byte, 4)
	binary.BigEndian.PutUint16(buf[0:], classIdx)
	binary.BigEndian.PutUint16(buf[2:], natIdx)
	return p.add(TagInterfaceMethodref, 1, buf)
}

// Fieldref interns a symbolic field reference.
func (p *ConstantPool) Fieldref(owner, name, descriptor string) uint16 {
	key := [2]string{owner, name + descriptor}
	if idx, ok := p.field[key]; ok {
		return idx
	}
	classIdx := p.Class(owner)
	natIdx := p.NameAndType(name, descriptor)
	buf := make([]byte, 4)
	binary.BigEndian.PutUint16(buf[0:], classIdx)
	binary.BigEndian.PutUint16(buf[2:], natIdx)
	idx := p.add(TagFieldref, 1, buf)
	p.field[key] = idx
	return idx
}

// String interns a string-literal constant.
func (p *ConstantPool) String(s string) uint16 {
	if idx, ok := p.str[s]; ok {
		return idx
	}
	utf := p.Utf8(s)
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, utf)
	idx := p.add(TagString, 1, buf)
	p.str[s] = idx
	return idx
}

// Integer interns a 32-bit integer constant.
func (p *ConstantPool) Integer(v int32) uint16 {
	if idx, ok := p.integer[v]; ok {
		return idx
	}
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(v))
	idx := p.add(TagInteger, 1, buf)
	p.integer[v] = idx
	return idx
}

// Long interns a 64-bit integer constant. Occupies two pool indices.
func (p *ConstantPool) Long(v int64) uint16 {
	if idx, ok := p.long[v]; ok {
		return idx
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	idx := p.add(TagLong, 2, buf)
	p.long[v] = idx
	return idx
}

// Double interns a 64-bit floating point constant (the VM's only float
// width; Flylang's Float and Double both land here). Occupies two pool
// indices.
func (p *ConstantPool) Double(v float64) uint16 {
	if idx, ok := p.double[v]; ok {
		return idx
	}
	bits := math.Float64bits(v)
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, bits)
	idx := p.add(TagDouble, 2, buf)
	p.double[v] = idx
	return idx
}

// Len returns the constant_pool_count field value (entry count + 1).
func (p *ConstantPool) Len() uint16 {
	return p.nextIndex()
}

// Bytes serializes every entry in pool order: tag byte followed by its
// payload, wide (Long/Double) entries included only once despite
// occupying two indices, matching the VM loader's skip-one-slot rule.
func (p *ConstantPool) Bytes() []byte {
	var out []byte
	for _, e := range p.entries {
		out = append(out, e.tag)
		out = append(out, e.bytes...)
	}
	return out
}
