package ply

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Request materializes properties of the named element. An empty props
// selects every property; otherwise only the named ones are loaded, in any
// order, and names the element does not have are ignored; use
// File.Property, which reports ErrPropertyNotFound, to check a name first.
// Properties that are already materialized are left as they are, so repeated
// requests are cheap and never decode or byte-swap the same buffer twice.
//
// A decode failure leaves the file unusable: later requests fail with
// ErrFileUnusable.
func (f *File) Request(name string, props []string) error {
	if f.closed {
		return ErrClosed
	}
	if f.err != nil {
		return fmt.Errorf("%w: %w", ErrFileUnusable, f.err)
	}
	e, ok := f.Element(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrElementNotFound, name)
	}

	all := e.Properties()
	fresh := selectFresh(e, all, props)
	if len(fresh) == 0 {
		return nil
	}
	for p := range fresh {
		p.data = alignedBytes(p.size)
		if p.IsList() {
			p.lengths = alignedBytes(e.count * int64(p.listType.Size()))
		}
	}

	var err error
	if f.encoding == EncodingASCII {
		err = f.decodeASCII(e, all, fresh)
	} else {
		err = f.decodeBinary(e, all, fresh)
	}
	if err != nil {
		for p := range fresh {
			p.release()
		}
		f.err = fmt.Errorf("element %q: %w", e.name, err)
		return f.err
	}

	swapped := f.encoding.Binary() && needsSwap(f.encoding)
	for p := range fresh {
		if swapped {
			normalize(p)
		}
		p.materialized = true
	}
	f.log.Debug("materialized element",
		"element", e.name,
		"properties", len(fresh),
		"swapped", swapped,
	)
	return nil
}

// RequestAll materializes every property of every element.
func (f *File) RequestAll() error {
	for _, e := range f.Elements() {
		if err := f.Request(e.name, nil); err != nil {
			return err
		}
	}
	return nil
}

// selectFresh returns the selected properties that still need decoding.
func selectFresh(e *Element, all []*Property, names []string) map[*Property]bool {
	fresh := make(map[*Property]bool)
	pick := func(p *Property) {
		if !p.materialized && p.decodable() {
			fresh[p] = true
		}
	}
	if len(names) == 0 {
		for _, p := range all {
			pick(p)
		}
		return fresh
	}
	for _, n := range names {
		if p, ok := e.Property(n); ok {
			pick(p)
		}
	}
	return fresh
}

func (f *File) decodeASCII(e *Element, props []*Property, fresh map[*Property]bool) error {
	if err := f.cur.seek(e.offset); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	// pos holds each property's write position in values, not bytes.
	pos := make([]int64, len(props))
	for i := range e.count {
		line, err := f.cur.readLine()
		if err != nil {
			return fmt.Errorf("%w: item %d: %w", ErrDecode, i, eofToUnexpected(err))
		}
		tok := tokenizer{b: line}
		for j, p := range props {
			n := uint64(1)
			if p.IsList() {
				n, err = asciiListLength(&tok)
				if err != nil {
					return fmt.Errorf("%w: item %d property %q: %w", ErrDecode, i, p.name, err)
				}
			}
			if !fresh[p] {
				if !tok.skip(n) {
					return fmt.Errorf("%w: item %d property %q: too few values", ErrDecode, i, p.name)
				}
				continue
			}
			if p.IsList() {
				lw := int64(p.listType.Size())
				if err := putCount(p.lengths[i*lw:], p.listType, n); err != nil {
					return fmt.Errorf("%w: item %d property %q: %w", ErrDecode, i, p.name, err)
				}
			}
			w := int64(p.typ.Size())
			for range n {
				t, ok := tok.next()
				if !ok {
					return fmt.Errorf("%w: item %d property %q: too few values", ErrDecode, i, p.name)
				}
				off := pos[j] * w
				if off+w > int64(len(p.data)) {
					return fmt.Errorf("%w: property %q overruns its inspected size", ErrDecode, p.name)
				}
				if err := putASCII(p.data[off:off+w], p.typ, string(t)); err != nil {
					return fmt.Errorf("%w: item %d property %q: %w", ErrDecode, i, p.name, err)
				}
				pos[j]++
			}
		}
	}
	return checkFilled(props, fresh, pos)
}

func (f *File) decodeBinary(e *Element, props []*Property, fresh map[*Property]bool) error {
	if err := f.cur.seek(e.offset); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	order := f.encoding.ByteOrder()
	pos := make([]int64, len(props))
	var lenBuf [8]byte
	for i := range e.count {
		for j, p := range props {
			w := int64(p.typ.Size())
			n := int64(1)
			if p.IsList() {
				lw := int64(p.listType.Size())
				raw := lenBuf[:lw]
				if err := f.cur.readFull(raw); err != nil {
					return fmt.Errorf("%w: item %d property %q: %w", ErrDecode, i, p.name, err)
				}
				l, err := decodeLength(raw, p.listType, order)
				if err != nil {
					return fmt.Errorf("%w: item %d property %q: %w", ErrDecode, i, p.name, err)
				}
				n = int64(l)
				if !f.cur.fits(n, w) {
					return fmt.Errorf("%w: item %d property %q: list of %d values exceeds the data left: %w",
						ErrDecode, i, p.name, n, io.ErrUnexpectedEOF)
				}
				if fresh[p] {
					copy(p.lengths[i*lw:], raw)
				}
			}
			if !fresh[p] {
				if err := f.cur.skip(n * w); err != nil {
					return fmt.Errorf("%w: item %d property %q: %w", ErrDecode, i, p.name, err)
				}
				continue
			}
			off := pos[j] * w
			end := off + n*w
			if end > int64(len(p.data)) {
				return fmt.Errorf("%w: property %q overruns its inspected size", ErrDecode, p.name)
			}
			if err := f.cur.readFull(p.data[off:end]); err != nil {
				return fmt.Errorf("%w: item %d property %q: %w", ErrDecode, i, p.name, err)
			}
			pos[j] += n
		}
	}
	return checkFilled(props, fresh, pos)
}

// checkFilled verifies every decoded buffer ended exactly at its inspected size.
func checkFilled(props []*Property, fresh map[*Property]bool, pos []int64) error {
	for j, p := range props {
		if fresh[p] && pos[j]*int64(p.typ.Size()) != p.size {
			return fmt.Errorf("%w: property %q decoded %d bytes, inspected %d",
				ErrDecode, p.name, pos[j]*int64(p.typ.Size()), p.size)
		}
	}
	return nil
}

// putASCII parses one token as type t and stores it in host byte order.
func putASCII(dst []byte, t ScalarType, tok string) error {
	ne := binary.NativeEndian
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		v, err := strconv.ParseInt(tok, 10, t.Size()*8)
		if err != nil {
			return err
		}
		putUint(dst, t, uint64(v))
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		v, err := strconv.ParseUint(tok, 10, t.Size()*8)
		if err != nil {
			return err
		}
		putUint(dst, t, v)
	case TypeFloat32:
		v, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return err
		}
		ne.PutUint32(dst, math.Float32bits(float32(v)))
	case TypeFloat64:
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return err
		}
		ne.PutUint64(dst, math.Float64bits(v))
	default:
		return fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	return nil
}

// putCount stores a list length as integer type t, rejecting values it cannot hold.
func putCount(dst []byte, t ScalarType, n uint64) error {
	bitsN := uint(t.Size() * 8)
	limit := uint64(math.MaxUint64)
	if bitsN < 64 {
		limit = 1<<bitsN - 1
	}
	if t.signed() {
		limit >>= 1
	}
	if n > limit {
		return fmt.Errorf("list length %d does not fit %s", n, t)
	}
	putUint(dst, t, n)
	return nil
}

// putUint stores the low bits of v in host order at the width of t.
func putUint(dst []byte, t ScalarType, v uint64) {
	ne := binary.NativeEndian
	switch t.Size() {
	case 1:
		dst[0] = byte(v)
	case 2:
		ne.PutUint16(dst, uint16(v))
	case 4:
		ne.PutUint32(dst, uint32(v))
	case 8:
		ne.PutUint64(dst, v)
	}
}
