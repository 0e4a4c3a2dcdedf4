package cser

// binary.go packs the two canonical streams into one flat byte slice.
//
// Wire layout:
//
//	[ body bytes ] [ bit-stream bytes ] [ reversed varint(len(bit-stream)) ]
//
// The bit-stream length is appended reversed so a decoder can parse it
// backwards from the end of the slice without any leading framing.

// MarshalBinaryAdapter runs the given serialization callback on a fresh
// Writer and flattens the result into a single byte slice.
func MarshalBinaryAdapter(marshal func(*Writer) error) ([]byte, error) {
	w := NewWriter()
	if err := marshal(w); err != nil {
		return nil, err
	}

	raw := make([]byte, 0, len(w.body)+len(w.bits.bytes)+4)
	raw = append(raw, w.body...)
	raw = append(raw, w.bits.bytes...)

	sizeVarint := NewWriter()
	sizeVarint.VarUint(uint64(len(w.bits.bytes)))
	raw = append(raw, reversed(sizeVarint.body)...)
	return raw, nil
}

// UnmarshalBinaryAdapter splits a flat byte slice back into the two streams
// and runs the given deserialization callback over them. Panics raised by
// the Reader on malformed input are converted into returned errors.
func UnmarshalBinaryAdapter(raw []byte, unmarshal func(*Reader) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = ErrMalformedEncoding
			}
		}
	}()

	// decode the reversed bit-stream length from the tail
	tailStart := len(raw) - 10
	if tailStart < 0 {
		tailStart = 0
	}
	sizeReader := &Reader{body: reversed(raw[tailStart:])}
	bitsSize := sizeReader.VarUint()
	raw = raw[:len(raw)-sizeReader.pos]

	if uint64(len(raw)) < bitsSize {
		return ErrMalformedEncoding
	}
	split := uint64(len(raw)) - bitsSize
	r := &Reader{
		bits: bitArray{bytes: raw[split:]},
		body: raw[:split],
	}

	if err := unmarshal(r); err != nil {
		return err
	}

	// strict mode: the whole input must be consumed, and any padding
	// bits of the final bit-stream byte must be zero
	if r.pos != len(r.body) {
		return ErrMalformedEncoding
	}
	if r.bits.unreadTail() {
		return ErrNonCanonicalEncoding
	}
	if len(r.bits.bytes) > (r.bits.readPos+7)/8 {
		return ErrNonCanonicalEncoding
	}
	return nil
}

func reversed(b []byte) []byte {
	rev := make([]byte, len(b))
	for i, v := range b {
		rev[len(b)-1-i] = v
	}
	return rev
}
