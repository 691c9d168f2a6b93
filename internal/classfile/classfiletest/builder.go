// Package classfiletest synthesizes minimal class files for tests.
package classfiletest

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Builder assembles a class file whose constant pool holds the given entries.
// The zero value is not usable; call New.
type Builder struct {
	pool  bytes.Buffer
	count int // next free pool index
	utf8  map[string]uint16
	this  uint16
}

// New starts a class file for the given internal class name (e.g. "abc" or
// "net/minecraft/server/Main").
func New(className string) *Builder {
	b := &Builder{count: 1, utf8: make(map[string]uint16)}
	b.this = b.Class(className)
	return b
}

// UTF8 adds (or reuses) a Utf8 constant and returns its index.
func (b *Builder) UTF8(s string) uint16 {
	if idx, ok := b.utf8[s]; ok {
		return idx
	}
	enc := encodeModifiedUTF8(s)
	b.pool.WriteByte(1)
	_ = binary.Write(&b.pool, binary.BigEndian, uint16(len(enc)))
	b.pool.Write(enc)
	idx := b.next(1)
	b.utf8[s] = idx
	return idx
}

// String adds a String constant pointing at a Utf8 entry holding s.
func (b *Builder) String(s string) uint16 {
	ref := b.UTF8(s)
	b.pool.WriteByte(8)
	_ = binary.Write(&b.pool, binary.BigEndian, ref)
	return b.next(1)
}

// Strings adds a String constant for every argument.
func (b *Builder) Strings(values ...string) *Builder {
	for _, v := range values {
		b.String(v)
	}
	return b
}

// Class adds a Class constant.
func (b *Builder) Class(name string) uint16 {
	ref := b.UTF8(name)
	b.pool.WriteByte(7)
	_ = binary.Write(&b.pool, binary.BigEndian, ref)
	return b.next(1)
}

// Integer adds an Integer constant.
func (b *Builder) Integer(v int32) uint16 {
	b.pool.WriteByte(3)
	_ = binary.Write(&b.pool, binary.BigEndian, v)
	return b.next(1)
}

// Long adds a Long constant, which takes two pool slots.
func (b *Builder) Long(v int64) uint16 {
	b.pool.WriteByte(5)
	_ = binary.Write(&b.pool, binary.BigEndian, v)
	return b.next(2)
}

// Double adds a Double constant, which takes two pool slots.
func (b *Builder) Double(v float64) uint16 {
	b.pool.WriteByte(6)
	_ = binary.Write(&b.pool, binary.BigEndian, math.Float64bits(v))
	return b.next(2)
}

// MethodRef adds a Methodref constant with a NameAndType.
func (b *Builder) MethodRef(owner, name, desc string) uint16 {
	cls := b.Class(owner)
	n := b.UTF8(name)
	d := b.UTF8(desc)
	b.pool.WriteByte(12)
	_ = binary.Write(&b.pool, binary.BigEndian, n)
	_ = binary.Write(&b.pool, binary.BigEndian, d)
	nat := b.next(1)
	b.pool.WriteByte(10)
	_ = binary.Write(&b.pool, binary.BigEndian, cls)
	_ = binary.Write(&b.pool, binary.BigEndian, nat)
	return b.next(1)
}

// Bytes returns the encoded class file.
func (b *Builder) Bytes() []byte {
	var out bytes.Buffer
	_ = binary.Write(&out, binary.BigEndian, uint32(0xCAFEBABE))
	_ = binary.Write(&out, binary.BigEndian, uint16(0))  // minor
	_ = binary.Write(&out, binary.BigEndian, uint16(52)) // major: Java 8
	_ = binary.Write(&out, binary.BigEndian, uint16(b.count))
	out.Write(b.pool.Bytes())
	_ = binary.Write(&out, binary.BigEndian, uint16(0x0021)) // public super
	_ = binary.Write(&out, binary.BigEndian, b.this)
	_ = binary.Write(&out, binary.BigEndian, uint16(0)) // super_class
	_ = binary.Write(&out, binary.BigEndian, uint16(0)) // interfaces
	_ = binary.Write(&out, binary.BigEndian, uint16(0)) // fields
	_ = binary.Write(&out, binary.BigEndian, uint16(0)) // methods
	_ = binary.Write(&out, binary.BigEndian, uint16(0)) // attributes
	return out.Bytes()
}

// WithStrings is shorthand for New(className).Strings(values...).Bytes().
func WithStrings(className string, values ...string) []byte {
	return New(className).Strings(values...).Bytes()
}

func (b *Builder) next(slots int) uint16 {
	idx := uint16(b.count)
	b.count += slots
	return idx
}

func encodeModifiedUTF8(s string) []byte {
	var out []byte
	for _, r := range s {
		switch {
		case r == 0:
			out = append(out, 0xC0, 0x80)
		case r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
		case r < 0x10000:
			out = append(out, 0xE0|byte(r>>12), 0x80|byte((r>>6)&0x3F), 0x80|byte(r&0x3F))
		default:
			r -= 0x10000
			hi := 0xD800 + (r >> 10)
			lo := 0xDC00 + (r & 0x3FF)
			for _, u := range []rune{hi, lo} {
				out = append(out, 0xE0|byte(u>>12), 0x80|byte((u>>6)&0x3F), 0x80|byte(u&0x3F))
			}
		}
	}
	return out
}
