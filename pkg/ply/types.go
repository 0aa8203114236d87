package ply

import (
	"encoding/binary"
	"fmt"
)

// ScalarType is the type of a single property value or list length.
type ScalarType uint8

const (
	// TypeUnknown marks a type token that could not be parsed.
	TypeUnknown ScalarType = iota
	// TypeNone is the list type of a property that is not a list.
	TypeNone
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeFloat32
	TypeFloat64
)

var scalarSizes = [...]int{
	TypeUnknown: 0,
	TypeNone:    0,
	TypeInt8:    1,
	TypeInt16:   2,
	TypeInt32:   4,
	TypeInt64:   8,
	TypeUint8:   1,
	TypeUint16:  2,
	TypeUint32:  4,
	TypeUint64:  8,
	TypeFloat32: 4,
	TypeFloat64: 8,
}

// scalarNames maps canonical names and their legacy aliases.
var scalarNames = map[string]ScalarType{
	"int8":    TypeInt8,
	"char":    TypeInt8,
	"int16":   TypeInt16,
	"short":   TypeInt16,
	"int32":   TypeInt32,
	"int":     TypeInt32,
	"int64":   TypeInt64,
	"long":    TypeInt64,
	"uint8":   TypeUint8,
	"uchar":   TypeUint8,
	"uint16":  TypeUint16,
	"ushort":  TypeUint16,
	"uint32":  TypeUint32,
	"uint":    TypeUint32,
	"uint64":  TypeUint64,
	"ulong":   TypeUint64,
	"float32": TypeFloat32,
	"float":   TypeFloat32,
	"float64": TypeFloat64,
	"double":  TypeFloat64,
}

// ParseScalarType maps a header type token to a ScalarType.
// Unrecognised tokens yield TypeUnknown.
func ParseScalarType(token string) ScalarType {
	if t, ok := scalarNames[token]; ok {
		return t
	}
	return TypeUnknown
}

// Size returns the byte width of a value of type t, or 0 for the sentinels.
func (t ScalarType) Size() int {
	if int(t) >= len(scalarSizes) {
		return 0
	}
	return scalarSizes[t]
}

// Valid reports whether t is a concrete scalar type.
func (t ScalarType) Valid() bool {
	return t.Size() > 0
}

func (t ScalarType) signed() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return true
	default:
		return false
	}
}

func (t ScalarType) float() bool {
	return t == TypeFloat32 || t == TypeFloat64
}

func (t ScalarType) String() string {
	switch t {
	case TypeUnknown:
		return "unknown"
	case TypeNone:
		return "none"
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeUint8:
		return "uint8"
	case TypeUint16:
		return "uint16"
	case TypeUint32:
		return "uint32"
	case TypeUint64:
		return "uint64"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Encoding is the representation of the data section.
type Encoding uint8

const (
	EncodingUnknown Encoding = iota
	EncodingASCII
	EncodingBinaryLittleEndian
	EncodingBinaryBigEndian
)

// ParseEncoding maps the encoding token of a format line.
func ParseEncoding(token string) Encoding {
	switch token {
	case "ascii":
		return EncodingASCII
	case "binary_little_endian":
		return EncodingBinaryLittleEndian
	case "binary_big_endian":
		return EncodingBinaryBigEndian
	default:
		return EncodingUnknown
	}
}

// ByteOrder returns the byte order of a binary encoding, or nil otherwise.
func (e Encoding) ByteOrder() binary.ByteOrder {
	switch e {
	case EncodingBinaryLittleEndian:
		return binary.LittleEndian
	case EncodingBinaryBigEndian:
		return binary.BigEndian
	default:
		return nil
	}
}

// Binary reports whether e is one of the binary encodings.
func (e Encoding) Binary() bool {
	return e == EncodingBinaryLittleEndian || e == EncodingBinaryBigEndian
}

func (e Encoding) String() string {
	switch e {
	case EncodingASCII:
		return "ascii"
	case EncodingBinaryLittleEndian:
		return "binary_little_endian"
	case EncodingBinaryBigEndian:
		return "binary_big_endian"
	default:
		return "unknown"
	}
}
