// Package cser implements the canonical serialization format used for block
// headers and other consensus-critical values.
//
// The format splits every object into two streams:
//   - a byte stream carrying raw data (hashes, keys, integer bodies)
//   - a bit stream carrying booleans and the byte-counts of compacted integers
//
// Splitting keeps integers minimal (a small uint64 costs one body byte plus
// three bits) while the encoding stays strictly canonical: there is exactly
// one valid byte representation for every value, which is mandatory for
// anything that gets hashed or signed.
package cser

import (
	"errors"
	"math/big"
)

// Errors returned by decoding. Encoding never fails for well-formed inputs.
var (
	ErrNonCanonicalEncoding = errors.New("non canonical encoding: value not packed minimally or unused bits non-zero")
	ErrMalformedEncoding    = errors.New("malformed encoding: structure invalid or truncated")
	ErrTooLargeAlloc        = errors.New("too large allocation: decoded size exceeds limit")
)

// MaxAlloc limits decoded slice sizes to prevent OOM on malicious input.
const MaxAlloc = 100 * 1024

// bitArray is an append-only/read-only array of bits packed LSB-first
// into bytes.
type bitArray struct {
	bytes   []byte
	tailLen int // count of used bits in the last byte, 0 if byte-aligned
	readPos int // bit offset for reading
}

func (a *bitArray) push(bits int, v uint) {
	for bits > 0 {
		if a.tailLen == 0 {
			a.bytes = append(a.bytes, 0)
		}
		free := 8 - a.tailLen
		n := bits
		if n > free {
			n = free
		}
		chunk := v & (1<<uint(n) - 1)
		a.bytes[len(a.bytes)-1] |= byte(chunk << uint(a.tailLen))
		a.tailLen = (a.tailLen + n) % 8
		v >>= uint(n)
		bits -= n
	}
}

func (a *bitArray) pop(bits int) (v uint) {
	for i := 0; i < bits; i++ {
		pos := a.readPos + i
		if pos/8 >= len(a.bytes) {
			panic(ErrMalformedEncoding)
		}
		if a.bytes[pos/8]&(1<<uint(pos%8)) != 0 {
			v |= 1 << uint(i)
		}
	}
	a.readPos += bits
	return v
}

// unreadTail reports whether any non-zero bit remains past the read position.
// Canonical encodings must pad the final byte with zero bits only.
func (a *bitArray) unreadTail() bool {
	for pos := a.readPos; pos < len(a.bytes)*8; pos++ {
		if a.bytes[pos/8]&(1<<uint(pos%8)) != 0 {
			return true
		}
	}
	return false
}

// Writer serializes values into the dual-stream canonical format.
type Writer struct {
	bits bitArray
	body []byte
}

// Reader deserializes values written by Writer. Malformed input makes the
// Reader panic with one of the package errors; UnmarshalBinaryAdapter
// converts such panics into returned errors.
type Reader struct {
	bits bitArray
	body []byte
	pos  int
}

// NewWriter creates a ready-to-use canonical writer.
func NewWriter() *Writer {
	return &Writer{
		body: make([]byte, 0, 200),
	}
}

func (r *Reader) read(n int) []byte {
	if r.pos+n > len(r.body) {
		panic(ErrMalformedEncoding)
	}
	b := r.body[r.pos : r.pos+n]
	r.pos += n
	return b
}

// writeCompact writes v with the minimal number of bytes not below minSize,
// recording the extra byte count in sizeBits bits of the bit stream.
func (w *Writer) writeCompact(v uint64, minSize int, sizeBits int) {
	size := minSize
	for v >= 1<<uint(8*size) && size < 8 {
		size++
	}
	if sizeBits > 0 {
		w.bits.push(sizeBits, uint(size-minSize))
	}
	for i := 0; i < size; i++ {
		w.body = append(w.body, byte(v>>uint(8*i)))
	}
}

func (r *Reader) readCompact(minSize int, sizeBits int) uint64 {
	size := minSize
	if sizeBits > 0 {
		size += int(r.bits.pop(sizeBits))
	}
	b := r.read(size)
	var v uint64
	for i := size - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	// a value stored in more bytes than minSize must use its top byte
	if size > minSize && b[size-1] == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return v
}

func (w *Writer) U8(v uint8) {
	w.body = append(w.body, v)
}

func (r *Reader) U8() uint8 {
	return r.read(1)[0]
}

func (w *Writer) U16(v uint16) {
	w.writeCompact(uint64(v), 1, 1)
}

func (r *Reader) U16() uint16 {
	v := r.readCompact(1, 1)
	if v > 0xffff {
		panic(ErrMalformedEncoding)
	}
	return uint16(v)
}

func (w *Writer) U32(v uint32) {
	w.writeCompact(uint64(v), 1, 2)
}

func (r *Reader) U32() uint32 {
	v := r.readCompact(1, 2)
	if v > 0xffffffff {
		panic(ErrMalformedEncoding)
	}
	return uint32(v)
}

func (w *Writer) U64(v uint64) {
	w.writeCompact(v, 1, 3)
}

func (r *Reader) U64() uint64 {
	return r.readCompact(1, 3)
}

// I64 writes a signed integer in zigzag encoding, so that small negative
// values stay compact.
func (w *Writer) I64(v int64) {
	w.U64(uint64(v<<1) ^ uint64(v>>63))
}

func (r *Reader) I64() int64 {
	u := r.U64()
	return int64(u>>1) ^ -int64(u&1)
}

func (w *Writer) Bool(v bool) {
	if v {
		w.bits.push(1, 1)
	} else {
		w.bits.push(1, 0)
	}
}

func (r *Reader) Bool() bool {
	return r.bits.pop(1) != 0
}

// VarUint writes a base-128 varint directly into the byte stream.
// Used for lengths, where a bit-stream size record would be wasteful.
func (w *Writer) VarUint(v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			w.body = append(w.body, b)
			return
		}
		w.body = append(w.body, b|0x80)
	}
}

func (r *Reader) VarUint() uint64 {
	var v uint64
	for shift := uint(0); ; shift += 7 {
		if shift > 63 {
			panic(ErrMalformedEncoding)
		}
		b := r.read(1)[0]
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			if b == 0 && shift > 0 {
				panic(ErrNonCanonicalEncoding)
			}
			return v
		}
	}
}

// FixedBytes writes raw bytes without a length prefix. The reader must know
// the exact size from the schema.
func (w *Writer) FixedBytes(v []byte) {
	w.body = append(w.body, v...)
}

func (r *Reader) FixedBytes(v []byte) {
	copy(v, r.read(len(v)))
}

// SliceBytes writes a length-prefixed byte slice.
func (w *Writer) SliceBytes(v []byte) {
	w.VarUint(uint64(len(v)))
	w.FixedBytes(v)
}

func (r *Reader) SliceBytes(maxLen int) []byte {
	n := r.VarUint()
	if n > uint64(maxLen) || n > MaxAlloc {
		panic(ErrTooLargeAlloc)
	}
	v := make([]byte, n)
	r.FixedBytes(v)
	return v
}

// BigInt writes a non-negative big integer as its canonical big-endian bytes.
func (w *Writer) BigInt(v *big.Int) {
	w.SliceBytes(v.Bytes())
}

func (r *Reader) BigInt() *big.Int {
	b := r.SliceBytes(MaxAlloc)
	if len(b) > 0 && b[0] == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return new(big.Int).SetBytes(b)
}
