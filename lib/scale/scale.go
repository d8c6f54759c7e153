// Package scale implements the primitives of the SCALE codec used by
// substrate chains: fixed width little endian integers, compact integers
// and length prefixed byte strings.
package scale

import (
	"bytes"
	"encoding/binary"
	"math/bits"

	"github.com/holiman/uint256"
	"golang.org/x/xerrors"
)

var (
	ErrShortInput = xerrors.New("scale: unexpected end of input")
	ErrOverflow   = xerrors.New("scale: value overflows target width")
)

// Encoder accumulates SCALE encoded values.
type Encoder struct {
	buf bytes.Buffer
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

func (e *Encoder) Len() int {
	return e.buf.Len()
}

func (e *Encoder) PutRaw(b []byte) {
	e.buf.Write(b)
}

func (e *Encoder) PutU8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *Encoder) PutBool(v bool) {
	if v {
		e.buf.WriteByte(1)
		return
	}
	e.buf.WriteByte(0)
}

func (e *Encoder) PutU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) PutU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) PutU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

// PutU128 writes v as a 16 byte little endian integer.
func (e *Encoder) PutU128(v *uint256.Int) error {
	if v == nil {
		v = new(uint256.Int)
	}
	if v.BitLen() > 128 {
		return ErrOverflow
	}
	be := v.Bytes32()
	var le [16]byte
	for i := 0; i < 16; i++ {
		le[i] = be[31-i]
	}
	e.buf.Write(le[:])
	return nil
}

// PutCompact writes v in the compact integer encoding.
func (e *Encoder) PutCompact(v uint64) {
	switch {
	case v < 1<<6:
		e.PutU8(uint8(v << 2))
	case v < 1<<14:
		e.PutU16(uint16(v<<2) | 0b01)
	case v < 1<<30:
		e.PutU32(uint32(v<<2) | 0b10)
	default:
		n := (bits.Len64(v) + 7) / 8
		e.PutU8(uint8((n-4)<<2) | 0b11)
		for i := 0; i < n; i++ {
			e.PutU8(uint8(v >> (8 * i)))
		}
	}
}

// PutBytes writes a compact length prefix followed by b.
func (e *Encoder) PutBytes(b []byte) {
	e.PutCompact(uint64(len(b)))
	e.buf.Write(b)
}

// Compact returns the compact encoding of v.
func Compact(v uint64) []byte {
	e := NewEncoder()
	e.PutCompact(v)
	return e.Bytes()
}

// Decoder reads SCALE encoded values from a byte slice.
type Decoder struct {
	data []byte
	off  int
}

func NewDecoder(b []byte) *Decoder {
	return &Decoder{data: b}
}

// Remaining reports the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.off
}

func (d *Decoder) Offset() int {
	return d.off
}

func (d *Decoder) Raw(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, ErrShortInput
	}
	out := d.data[d.off : d.off+n]
	d.off += n
	return out, nil
}

func (d *Decoder) U8() (uint8, error) {
	b, err := d.Raw(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) Bool() (bool, error) {
	b, err := d.U8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, xerrors.Errorf("scale: invalid bool byte %#x", b)
	}
}

func (d *Decoder) U16() (uint16, error) {
	b, err := d.Raw(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) U32() (uint32, error) {
	b, err := d.Raw(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) U64() (uint64, error) {
	b, err := d.Raw(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) U128() (*uint256.Int, error) {
	b, err := d.Raw(16)
	if err != nil {
		return nil, err
	}
	var be [16]byte
	for i := 0; i < 16; i++ {
		be[i] = b[15-i]
	}
	return new(uint256.Int).SetBytes(be[:]), nil
}

func (d *Decoder) Compact() (uint64, error) {
	b0, err := d.U8()
	if err != nil {
		return 0, err
	}
	switch b0 & 0b11 {
	case 0b00:
		return uint64(b0 >> 2), nil
	case 0b01:
		b1, err := d.U8()
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16([]byte{b0, b1}) >> 2), nil
	case 0b10:
		rest, err := d.Raw(3)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32([]byte{b0, rest[0], rest[1], rest[2]}) >> 2), nil
	default:
		n := int(b0>>2) + 4
		raw, err := d.Raw(n)
		if err != nil {
			return 0, err
		}
		var v uint64
		for i := n - 1; i >= 0; i-- {
			if i >= 8 {
				if raw[i] != 0 {
					return 0, ErrOverflow
				}
				continue
			}
			v = v<<8 | uint64(raw[i])
		}
		return v, nil
	}
}

// Bytes reads a compact length prefixed byte string.
func (d *Decoder) Bytes() ([]byte, error) {
	n, err := d.Compact()
	if err != nil {
		return nil, err
	}
	if n > uint64(d.Remaining()) {
		return nil, ErrShortInput
	}
	b, err := d.Raw(int(n))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}
