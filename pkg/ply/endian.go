package ply

import (
	"encoding/binary"
	"math/bits"
	"unsafe"
)

var hostLittleEndian = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// needsSwap reports whether binary data in encoding e differs from host order.
func needsSwap(e Encoding) bool {
	switch e {
	case EncodingBinaryLittleEndian:
		return !hostLittleEndian
	case EncodingBinaryBigEndian:
		return hostLittleEndian
	default:
		return false
	}
}

// swapBytes reverses the byte order of every width-sized value in buf in
// place. Widths other than 2, 4 and 8 are left untouched. Trailing bytes
// that do not form a whole value are ignored.
//
// buf must come from alignedBytes for the word-sized fast paths.
func swapBytes(buf []byte, width int) {
	n := len(buf) / max(width, 1)
	if n == 0 {
		return
	}
	switch width {
	case 2:
		s := unsafe.Slice((*uint16)(unsafe.Pointer(&buf[0])), n)
		for i, v := range s {
			s[i] = bits.ReverseBytes16(v)
		}
	case 4:
		s := unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n)
		for i, v := range s {
			s[i] = bits.ReverseBytes32(v)
		}
	case 8:
		s := unsafe.Slice((*uint64)(unsafe.Pointer(&buf[0])), n)
		for i, v := range s {
			s[i] = bits.ReverseBytes64(v)
		}
	}
}

// normalize brings a freshly decoded binary property into host byte order.
// It must run exactly once per decode.
func normalize(p *Property) {
	swapBytes(p.data, p.typ.Size())
	if p.IsList() {
		swapBytes(p.lengths, p.listType.Size())
	}
}
