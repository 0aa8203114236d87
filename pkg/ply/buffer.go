package ply

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// alignedBytes allocates n bytes backed by uint64 words so that the buffer
// can be viewed as any scalar slice without misaligned access.
func alignedBytes(n int64) []byte {
	if n <= 0 {
		return []byte{}
	}
	words := make([]uint64, (n+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), n)
}

type scalar interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

func view[T scalar](p *Property, want ScalarType) ([]T, error) {
	if !p.materialized {
		return nil, fmt.Errorf("%w: %s", ErrNotMaterialized, p.name)
	}
	if p.typ != want {
		return nil, fmt.Errorf("%w: %s is %s, not %s", ErrTypeMismatch, p.name, p.typ, want)
	}
	var zero T
	n := len(p.data) / int(unsafe.Sizeof(zero))
	if n == 0 {
		return []T{}, nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&p.data[0])), n), nil
}

// Typed views over a materialized value buffer. They fail with
// ErrTypeMismatch unless the accessor matches the property's declared type.
// For list properties the values of all items are stored back to back; use
// Lengths to split them.

func (p *Property) Int8s() ([]int8, error)       { return view[int8](p, TypeInt8) }
func (p *Property) Int16s() ([]int16, error)     { return view[int16](p, TypeInt16) }
func (p *Property) Int32s() ([]int32, error)     { return view[int32](p, TypeInt32) }
func (p *Property) Int64s() ([]int64, error)     { return view[int64](p, TypeInt64) }
func (p *Property) Uint8s() ([]uint8, error)     { return view[uint8](p, TypeUint8) }
func (p *Property) Uint16s() ([]uint16, error)   { return view[uint16](p, TypeUint16) }
func (p *Property) Uint32s() ([]uint32, error)   { return view[uint32](p, TypeUint32) }
func (p *Property) Uint64s() ([]uint64, error)   { return view[uint64](p, TypeUint64) }
func (p *Property) Float32s() ([]float32, error) { return view[float32](p, TypeFloat32) }
func (p *Property) Float64s() ([]float64, error) { return view[float64](p, TypeFloat64) }

// Values is a materialized buffer tagged with its scalar type. Data holds a
// slice of the Go type matching Type, e.g. []float32 for TypeFloat32.
type Values struct {
	Type ScalarType
	Data any
}

// Len returns the number of scalar values held.
func (v Values) Len() int {
	switch d := v.Data.(type) {
	case []int8:
		return len(d)
	case []int16:
		return len(d)
	case []int32:
		return len(d)
	case []int64:
		return len(d)
	case []uint8:
		return len(d)
	case []uint16:
		return len(d)
	case []uint32:
		return len(d)
	case []uint64:
		return len(d)
	case []float32:
		return len(d)
	case []float64:
		return len(d)
	default:
		return 0
	}
}

// Values returns the value buffer as a tagged union.
func (p *Property) Values() (Values, error) {
	var (
		data any
		err  error
	)
	switch p.typ {
	case TypeInt8:
		data, err = p.Int8s()
	case TypeInt16:
		data, err = p.Int16s()
	case TypeInt32:
		data, err = p.Int32s()
	case TypeInt64:
		data, err = p.Int64s()
	case TypeUint8:
		data, err = p.Uint8s()
	case TypeUint16:
		data, err = p.Uint16s()
	case TypeUint32:
		data, err = p.Uint32s()
	case TypeUint64:
		data, err = p.Uint64s()
	case TypeFloat32:
		data, err = p.Float32s()
	case TypeFloat64:
		data, err = p.Float64s()
	default:
		return Values{}, fmt.Errorf("%w: %s has type %s", ErrUnknownType, p.name, p.typ)
	}
	if err != nil {
		return Values{}, err
	}
	return Values{Type: p.typ, Data: data}, nil
}

// AsFloat64s widens every value to float64, whatever the declared type.
// Unlike the typed views this allocates a copy.
func (p *Property) AsFloat64s() ([]float64, error) {
	if !p.materialized {
		return nil, fmt.Errorf("%w: %s", ErrNotMaterialized, p.name)
	}
	w := p.typ.Size()
	if w == 0 {
		return nil, fmt.Errorf("%w: %s has type %s", ErrUnknownType, p.name, p.typ)
	}
	out := make([]float64, len(p.data)/w)
	for i := range out {
		out[i] = nativeFloat64(p.data[i*w:], p.typ)
	}
	return out, nil
}

// Lengths returns the per-item list lengths of a materialized list property.
func (p *Property) Lengths() ([]int, error) {
	if !p.IsList() {
		return nil, fmt.Errorf("%w: %s is not a list", ErrTypeMismatch, p.name)
	}
	if !p.materialized {
		return nil, fmt.Errorf("%w: %s", ErrNotMaterialized, p.name)
	}
	w := p.listType.Size()
	out := make([]int, len(p.lengths)/w)
	for i := range out {
		n, err := decodeLength(p.lengths[i*w:], p.listType, binary.NativeEndian)
		if err != nil {
			return nil, err
		}
		out[i] = int(n)
	}
	return out, nil
}

// RawLengths returns the length buffer in host byte order and its type.
func (p *Property) RawLengths() ([]byte, ScalarType, error) {
	if !p.IsList() {
		return nil, TypeNone, fmt.Errorf("%w: %s is not a list", ErrTypeMismatch, p.name)
	}
	if !p.materialized {
		return nil, p.listType, fmt.Errorf("%w: %s", ErrNotMaterialized, p.name)
	}
	return p.lengths, p.listType, nil
}

// nativeFloat64 decodes one host-order value of type t at the start of b.
func nativeFloat64(b []byte, t ScalarType) float64 {
	ne := binary.NativeEndian
	switch t {
	case TypeInt8:
		return float64(int8(b[0]))
	case TypeInt16:
		return float64(int16(ne.Uint16(b)))
	case TypeInt32:
		return float64(int32(ne.Uint32(b)))
	case TypeInt64:
		return float64(int64(ne.Uint64(b)))
	case TypeUint8:
		return float64(b[0])
	case TypeUint16:
		return float64(ne.Uint16(b))
	case TypeUint32:
		return float64(ne.Uint32(b))
	case TypeUint64:
		return float64(ne.Uint64(b))
	case TypeFloat32:
		return float64(math.Float32frombits(ne.Uint32(b)))
	case TypeFloat64:
		return math.Float64frombits(ne.Uint64(b))
	default:
		return 0
	}
}
