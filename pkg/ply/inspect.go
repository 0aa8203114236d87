package ply

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// inspect walks the whole data section once, recording each element's
// offset and each property's final byte size. Nothing is materialized.
func (f *File) inspect() error {
	if err := f.cur.seek(f.dataOffset); err != nil {
		return fmt.Errorf("%w: seek to data section: %w", ErrDecode, err)
	}
	for el := f.elements.Front(); el != nil; el = el.Next() {
		e := el.Value
		e.offset = f.cur.off

		props := e.Properties()
		var (
			sizes []int64
			err   error
		)
		switch {
		case f.encoding == EncodingASCII && e.fixedSize():
			sizes, err = f.inspectFixedASCII(e, props)
		case f.encoding == EncodingASCII:
			sizes, err = f.inspectVariableASCII(e, props)
		case e.fixedSize():
			sizes, err = f.inspectFixedBinary(e, props)
		default:
			sizes, err = f.inspectVariableBinary(e, props)
		}
		if err != nil {
			return fmt.Errorf("inspect element %q: %w", e.name, err)
		}
		for i, p := range props {
			p.size = sizes[i]
		}
		f.log.Debug("inspected element",
			"element", e.name,
			"items", e.count,
			"offset", e.offset,
			"bytes", f.cur.off-e.offset,
			"fixed", e.fixedSize(),
		)
	}
	return nil
}

func fixedSizes(e *Element, props []*Property) []int64 {
	sizes := make([]int64, len(props))
	for i, p := range props {
		sizes[i] = e.count * int64(p.typ.Size())
	}
	return sizes
}

// inspectFixedASCII skips one line per item without tokenizing it.
func (f *File) inspectFixedASCII(e *Element, props []*Property) ([]int64, error) {
	for i := range e.count {
		if _, err := f.cur.readLine(); err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", ErrDecode, i, eofToUnexpected(err))
		}
	}
	return fixedSizes(e, props), nil
}

func (f *File) inspectVariableASCII(e *Element, props []*Property) ([]int64, error) {
	sizes := make([]int64, len(props))
	for i := range e.count {
		line, err := f.cur.readLine()
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", ErrDecode, i, eofToUnexpected(err))
		}
		tok := tokenizer{b: line}
		for p, prop := range props {
			n := uint64(1)
			if prop.IsList() {
				n, err = asciiListLength(&tok)
				if err != nil {
					return nil, fmt.Errorf("%w: item %d property %q: %w", ErrDecode, i, prop.name, err)
				}
			}
			if !tok.skip(n) {
				return nil, fmt.Errorf("%w: item %d property %q: too few values", ErrDecode, i, prop.name)
			}
			sizes[p] += int64(n) * int64(prop.typ.Size())
		}
	}
	return sizes, nil
}

// inspectFixedBinary computes the element span and skips it with one seek.
func (f *File) inspectFixedBinary(e *Element, props []*Property) ([]int64, error) {
	var stride int64
	for _, p := range props {
		if !p.typ.Valid() {
			return nil, fmt.Errorf("%w: property %q has type %s", ErrUnknownType, p.name, p.typ)
		}
		stride += int64(p.typ.Size())
	}
	if !f.cur.fits(e.count, stride) {
		return nil, fmt.Errorf("%w: %d items of %d bytes exceed the %d bytes left: %w",
			ErrDecode, e.count, stride, f.cur.remaining(), io.ErrUnexpectedEOF)
	}
	if err := f.cur.skip(e.count * stride); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return fixedSizes(e, props), nil
}

func (f *File) inspectVariableBinary(e *Element, props []*Property) ([]int64, error) {
	for _, p := range props {
		if !p.decodable() {
			return nil, fmt.Errorf("%w: property %q has type %s (list %s)", ErrUnknownType, p.name, p.typ, p.listType)
		}
	}
	order := f.encoding.ByteOrder()
	sizes := make([]int64, len(props))
	var lenBuf [8]byte
	for i := range e.count {
		for p, prop := range props {
			width := int64(prop.typ.Size())
			n := int64(1)
			if prop.IsList() {
				raw := lenBuf[:prop.listType.Size()]
				if err := f.cur.readFull(raw); err != nil {
					return nil, fmt.Errorf("%w: item %d property %q: %w", ErrDecode, i, prop.name, err)
				}
				l, err := decodeLength(raw, prop.listType, order)
				if err != nil {
					return nil, fmt.Errorf("%w: item %d property %q: %w", ErrDecode, i, prop.name, err)
				}
				n = int64(l)
				if !f.cur.fits(n, width) {
					return nil, fmt.Errorf("%w: item %d property %q: list of %d values exceeds the data left: %w",
						ErrDecode, i, prop.name, n, io.ErrUnexpectedEOF)
				}
			}
			if err := f.cur.skip(n * width); err != nil {
				return nil, fmt.Errorf("%w: item %d property %q: %w", ErrDecode, i, prop.name, err)
			}
			sizes[p] += n * width
		}
	}
	return sizes, nil
}

// asciiListLength consumes and parses a list length token.
func asciiListLength(tok *tokenizer) (uint64, error) {
	t, ok := tok.next()
	if !ok {
		return 0, errors.New("missing list length")
	}
	n, err := strconv.ParseUint(string(t), 10, 63)
	if err != nil {
		return 0, fmt.Errorf("list length: %w", err)
	}
	return n, nil
}

// decodeLength reads a raw list length stored in the given byte order.
func decodeLength(b []byte, t ScalarType, order binary.ByteOrder) (uint64, error) {
	var v int64
	switch t {
	case TypeUint8:
		return uint64(b[0]), nil
	case TypeUint16:
		return uint64(order.Uint16(b)), nil
	case TypeUint32:
		return uint64(order.Uint32(b)), nil
	case TypeUint64:
		u := order.Uint64(b)
		if u > 1<<62 {
			return 0, fmt.Errorf("list length %d too large", u)
		}
		return u, nil
	case TypeInt8:
		v = int64(int8(b[0]))
	case TypeInt16:
		v = int64(int16(order.Uint16(b)))
	case TypeInt32:
		v = int64(int32(order.Uint32(b)))
	case TypeInt64:
		v = int64(order.Uint64(b))
	default:
		return 0, fmt.Errorf("%w: list length type %s", ErrUnknownType, t)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative list length %d", v)
	}
	return uint64(v), nil
}
