package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf16"
)

const magic = 0xCAFEBABE

// ClassFile holds the parts of a class file this tool reads: the version,
// the constant pool and the name of the class itself. Fields, methods and
// attributes are not decoded.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	AccessFlags  uint16
	ThisClass    string
	Constants    *ConstantPool
}

// ParseReader reads r to the end and parses the result.
func ParseReader(r io.Reader) (*ClassFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}
	return Parse(data)
}

// Parse decodes the header and constant pool of a class file.
func Parse(data []byte) (*ClassFile, error) {
	r := &reader{data: data}

	if m := r.u4(); r.err != nil || m != magic {
		return nil, &DecodeError{Kind: ErrBadMagic, Offset: 0}
	}

	cf := &ClassFile{}
	cf.MinorVersion = r.u2()
	cf.MajorVersion = r.u2()
	count := int(r.u2())
	if r.err != nil {
		return nil, r.err
	}
	if count == 0 {
		return nil, malformedf(8, "constant pool count is zero")
	}

	pool, err := parsePool(r, count)
	if err != nil {
		return nil, err
	}
	cf.Constants = pool

	cf.AccessFlags = r.u2()
	thisIdx := int(r.u2())
	if r.err != nil {
		return nil, r.err
	}
	if c, ok := pool.Get(thisIdx); ok && c.Type == ConstantClass {
		cf.ThisClass = c.Value
	} else {
		return nil, malformedf(r.off-2, "this_class %d is not a Class constant", thisIdx)
	}

	return cf, nil
}

func parsePool(r *reader, count int) (*ConstantPool, error) {
	pool := newConstantPool(count)

	for i := 1; i < count; i++ {
		start := r.off
		tag := ConstantType(r.u1())
		c := Constant{Index: i, Type: tag}

		switch tag {
		case ConstantUTF8:
			n := int(r.u2())
			raw := r.bytes(n)
			if r.err != nil {
				return nil, r.err
			}
			s, err := decodeModifiedUTF8(raw)
			if err != nil {
				return nil, malformedf(start, "constant #%d: %v", i, err)
			}
			c.Value = s
		case ConstantInteger:
			c.Value = strconv.FormatInt(int64(int32(r.u4())), 10)
		case ConstantFloat:
			c.Value = strconv.FormatFloat(float64(math.Float32frombits(r.u4())), 'g', -1, 32)
		case ConstantLong:
			c.Value = strconv.FormatInt(int64(r.u8()), 10)
		case ConstantDouble:
			c.Value = strconv.FormatFloat(math.Float64frombits(r.u8()), 'g', -1, 64)
		case ConstantClass, ConstantString, ConstantMethodType, ConstantModule, ConstantPackage:
			c.Refs = []uint16{r.u2()}
		case ConstantFieldRef, ConstantMethodRef, ConstantInterfaceMethodRef,
			ConstantNameAndType, ConstantDynamic, ConstantInvokeDynamic:
			c.Refs = []uint16{r.u2(), r.u2()}
		case ConstantMethodHandle:
			kind := r.u1()
			c.Refs = []uint16{r.u2()}
			c.Value = strconv.Itoa(int(kind))
		default:
			if r.err != nil {
				return nil, r.err
			}
			return nil, &DecodeError{Kind: ErrUnknownTag, Offset: start, Msg: fmt.Sprintf("tag %d at constant #%d", uint8(tag), i)}
		}
		if r.err != nil {
			return nil, r.err
		}

		pool.add(c)
		if tag.Wide() {
			if i+1 >= count {
				return nil, malformedf(start, "constant #%d: %s needs two slots", i, tag)
			}
			i++
		}
	}

	// Text-bearing references point at Utf8 entries; resolve them once so
	// matching never chases indices.
	for pos := range pool.entries {
		c := &pool.entries[pos]
		switch c.Type {
		case ConstantClass, ConstantString, ConstantMethodType, ConstantModule, ConstantPackage:
			target, ok := pool.Get(int(c.Refs[0]))
			if !ok || target.Type != ConstantUTF8 {
				return nil, malformedf(0, "constant #%d: %s references #%d which is not Utf8", c.Index, c.Type, c.Refs[0])
			}
			c.Value = target.Value
		}
	}

	return pool, nil
}

type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || len(r.data)-r.off < n {
		r.err = malformedf(r.off, "unexpected end of data (need %d bytes, have %d)", n, len(r.data)-r.off)
		return false
	}
	return true
}

func (r *reader) u1() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *reader) u2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *reader) u4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *reader) u8() uint64 {
	if !r.need(8) {
		return 0
	}
	v := binary.BigEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	v := r.data[r.off : r.off+n]
	r.off += n
	return v
}

var errBadUTF8 = errors.New("invalid modified UTF-8")

// decodeModifiedUTF8 decodes the JVM's string encoding: NUL is two bytes and
// supplementary characters are stored as surrogate pairs of three bytes each.
func decodeModifiedUTF8(b []byte) (string, error) {
	ascii := true
	for _, c := range b {
		if c == 0 || c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b), nil
	}

	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == 0:
			return "", errBadUTF8
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", errBadUTF8
			}
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0:
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return "", errBadUTF8
			}
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			return "", errBadUTF8
		}
	}
	return string(utf16.Decode(units)), nil
}
