package ply

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubeFixtures(t *testing.T) map[string][]byte {
	return map[string][]byte{
		"ascii":         cubeASCII(),
		"little endian": cubeBinary(t, binary.LittleEndian),
		"big endian":    cubeBinary(t, binary.BigEndian),
	}
}

func float32sOf(t *testing.T, f *File, element, property string) []float32 {
	t.Helper()
	p, err := f.Property(element, property)
	require.NoError(t, err)
	v, err := p.Float32s()
	require.NoError(t, err)
	return v
}

func TestRequestVertices(t *testing.T) {
	t.Parallel()
	for name, data := range cubeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := openBytes(t, data)
			require.NoError(t, f.Request("vertex", []string{"x", "y", "z"}))

			assert.Equal(t, []float32{0, 1, 0}, float32sOf(t, f, "vertex", "x"))
			assert.Equal(t, []float32{0, 0, 1}, float32sOf(t, f, "vertex", "y"))
			assert.Equal(t, []float32{0, 0, 0}, float32sOf(t, f, "vertex", "z"))

			idx, err := f.Property("face", "vertex_indices")
			require.NoError(t, err)
			assert.False(t, idx.Materialized())
		})
	}
}

func TestRequestFaces(t *testing.T) {
	t.Parallel()
	for name, data := range cubeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := openBytes(t, data)
			require.NoError(t, f.Request("face", nil))

			idx, err := f.Property("face", "vertex_indices")
			require.NoError(t, err)
			lengths, err := idx.Lengths()
			require.NoError(t, err)
			assert.Equal(t, []int{3, 4}, lengths)

			values, err := idx.Int32s()
			require.NoError(t, err)
			assert.Equal(t, []int32{0, 1, 2, 0, 1, 2, 3}, values)

			raw, lt, err := idx.RawLengths()
			require.NoError(t, err)
			assert.Equal(t, TypeUint8, lt)
			assert.Equal(t, []byte{3, 4}, raw)

			sum := 0
			for _, n := range lengths {
				sum += n
			}
			assert.EqualValues(t, idx.Size(), int64(sum*idx.Type().Size()))

			x, err := f.Property("vertex", "x")
			require.NoError(t, err)
			assert.False(t, x.Materialized())
		})
	}
}

func TestRequestSubset(t *testing.T) {
	t.Parallel()
	for name, data := range cubeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := openBytes(t, data)
			require.NoError(t, f.Request("vertex", []string{"z", "nope", "y"}))
			_, err := f.Property("vertex", "nope")
			assert.ErrorIs(t, err, ErrPropertyNotFound)

			x, err := f.Property("vertex", "x")
			require.NoError(t, err)
			assert.False(t, x.Materialized())
			_, err = x.Float32s()
			assert.ErrorIs(t, err, ErrNotMaterialized)

			assert.Equal(t, []float32{0, 0, 1}, float32sOf(t, f, "vertex", "y"))
			assert.Equal(t, []float32{0, 0, 0}, float32sOf(t, f, "vertex", "z"))
		})
	}
}

func TestRequestIdempotent(t *testing.T) {
	t.Parallel()
	for name, data := range cubeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := openBytes(t, data)
			require.NoError(t, f.Request("vertex", []string{"x"}))
			first := float32sOf(t, f, "vertex", "x")

			require.NoError(t, f.Request("vertex", []string{"x"}))
			require.NoError(t, f.Request("vertex", nil))
			require.NoError(t, f.RequestAll())

			again := float32sOf(t, f, "vertex", "x")
			assert.Equal(t, []float32{0, 1, 0}, again)
			assert.Same(t, &first[0], &again[0])

			idx, err := f.Property("face", "vertex_indices")
			require.NoError(t, err)
			values, err := idx.Int32s()
			require.NoError(t, err)
			assert.Equal(t, []int32{0, 1, 2, 0, 1, 2, 3}, values)
		})
	}
}

func TestRequestErrors(t *testing.T) {
	t.Parallel()
	f := openBytes(t, cubeASCII())

	require.NoError(t, f.Request("vertex", nil))
	x, err := f.Property("vertex", "x")
	require.NoError(t, err)
	before, err := x.Float32s()
	require.NoError(t, err)

	err = f.Request("edge", nil)
	assert.ErrorIs(t, err, ErrElementNotFound)
	assert.True(t, x.Materialized())
	after, err := x.Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, after)
	assert.Same(t, &before[0], &after[0])
	idx, err := f.Property("face", "vertex_indices")
	require.NoError(t, err)
	assert.False(t, idx.Materialized())

	_, err = x.Float64s()
	assert.ErrorIs(t, err, ErrTypeMismatch)
	_, err = x.Lengths()
	assert.ErrorIs(t, err, ErrTypeMismatch)
	_, _, err = x.RawLengths()
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = idx.Lengths()
	assert.ErrorIs(t, err, ErrNotMaterialized)
	_, err = idx.Values()
	assert.ErrorIs(t, err, ErrNotMaterialized)
}

func TestPropertyValues(t *testing.T) {
	t.Parallel()
	f := openBytes(t, cubeBinary(t, binary.BigEndian))
	require.NoError(t, f.RequestAll())

	idx, err := f.Property("face", "vertex_indices")
	require.NoError(t, err)
	v, err := idx.Values()
	require.NoError(t, err)
	assert.Equal(t, TypeInt32, v.Type)
	assert.Equal(t, []int32{0, 1, 2, 0, 1, 2, 3}, v.Data)
	assert.Equal(t, 7, v.Len())

	y, err := f.Property("vertex", "y")
	require.NoError(t, err)
	wide, err := y.AsFloat64s()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1}, wide)
}

func TestRequestAllScalarTypes(t *testing.T) {
	t.Parallel()
	header := []string{
		"element item 2",
		"property char a",
		"property uchar b",
		"property short c",
		"property ushort d",
		"property int e",
		"property uint f",
		"property int64 g",
		"property uint64 h",
		"property double i",
	}
	ascii := "-128 0 -32768 0 -2147483648 0 -9007199254740993 0 -0.125\n" +
		"127 255 32767 65535 2147483647 4294967295 9007199254740993 18446744073709551615 0.125\n"

	check := func(t *testing.T, f *File) {
		t.Helper()
		require.NoError(t, f.Request("item", nil))
		v := map[string]any{}
		for _, p := range mustElement(t, f, "item").Properties() {
			vals, err := p.Values()
			require.NoError(t, err)
			v[p.Name()] = vals.Data
		}
		assert.Equal(t, []int8{-128, 127}, v["a"])
		assert.Equal(t, []uint8{0, 255}, v["b"])
		assert.Equal(t, []int16{-32768, 32767}, v["c"])
		assert.Equal(t, []uint16{0, 65535}, v["d"])
		assert.Equal(t, []int32{-2147483648, 2147483647}, v["e"])
		assert.Equal(t, []uint32{0, 4294967295}, v["f"])
		assert.Equal(t, []int64{-9007199254740993, 9007199254740993}, v["g"])
		assert.Equal(t, []uint64{0, 18446744073709551615}, v["h"])
		assert.Equal(t, []float64{-0.125, 0.125}, v["i"])
	}

	t.Run("ascii", func(t *testing.T) {
		t.Parallel()
		check(t, openBytes(t, plyBytes("ascii", header, []byte(ascii))))
	})

	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		format := "binary_little_endian"
		if order == binary.BigEndian {
			format = "binary_big_endian"
		}
		t.Run(format, func(t *testing.T) {
			t.Parallel()
			body := binaryBody(t, order,
				int8(-128), uint8(0), int16(-32768), uint16(0),
				int32(-2147483648), uint32(0),
				int64(-9007199254740993), uint64(0), float64(-0.125),
				int8(127), uint8(255), int16(32767), uint16(65535),
				int32(2147483647), uint32(4294967295),
				int64(9007199254740993), uint64(18446744073709551615), float64(0.125),
			)
			check(t, openBytes(t, plyBytes(format, header, body)))
		})
	}
}

func mustElement(t *testing.T, f *File, name string) *Element {
	t.Helper()
	e, ok := f.Element(name)
	require.True(t, ok, "element %q", name)
	return e
}

func TestRequestPoisonsFileOnDecodeFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"out of range int8", "128 1\n"},
		{"not a number", "1 abc\n"},
		{"float for int", "1.5 1\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			data := plyBytes("ascii", []string{
				"element item 1",
				"property char a",
				"property int b",
				"element other 1",
				"property float v",
			}, []byte(tc.body+"2.5\n"))
			f := openBytes(t, data)

			err := f.Request("item", nil)
			require.ErrorIs(t, err, ErrDecode)
			for _, p := range mustElement(t, f, "item").Properties() {
				assert.False(t, p.Materialized(), p.Name())
			}

			err = f.Request("other", nil)
			assert.ErrorIs(t, err, ErrFileUnusable)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestRequestAfterClose(t *testing.T) {
	t.Parallel()
	f, err := OpenReader(bytes.NewReader(cubeASCII()))
	require.NoError(t, err)
	require.NoError(t, f.Request("vertex", nil))
	x, err := f.Property("vertex", "x")
	require.NoError(t, err)

	require.NoError(t, f.Close())
	assert.False(t, x.Materialized())
	assert.ErrorIs(t, f.Request("vertex", nil), ErrClosed)
	assert.ErrorIs(t, f.Close(), ErrClosed)
	assert.Empty(t, f.Elements())
	_, ok := f.Element("vertex")
	assert.False(t, ok)
}

func TestBigEndianNotSwappedTwice(t *testing.T) {
	t.Parallel()
	data := plyBytes("binary_big_endian", []string{
		"element v 2",
		"property ushort a",
		"property ushort b",
	}, binaryBody(t, binary.BigEndian, uint16(0x0102), uint16(7), uint16(0x0304), uint16(8)))
	f := openBytes(t, data)

	for range 3 {
		require.NoError(t, f.Request("v", []string{"a"}))
		require.NoError(t, f.Request("v", nil))
	}
	a, err := mustElement(t, f, "v").Properties()[0].Uint16s()
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0102, 0x0304}, a)
	b, err := mustElement(t, f, "v").Properties()[1].Uint16s()
	require.NoError(t, err)
	assert.Equal(t, []uint16{7, 8}, b)
}

func TestListLengthTypes(t *testing.T) {
	t.Parallel()
	header := []string{"element face 2", "property list uint short idx"}
	body := binaryBody(t, binary.BigEndian,
		uint32(2), int16(-1), int16(5),
		uint32(1), int16(300),
	)
	f := openBytes(t, plyBytes("binary_big_endian", header, body))
	require.NoError(t, f.RequestAll())

	idx, err := f.Property("face", "idx")
	require.NoError(t, err)
	lengths, err := idx.Lengths()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, lengths)
	vals, err := idx.Int16s()
	require.NoError(t, err)
	assert.Equal(t, []int16{-1, 5, 300}, vals)
	raw, lt, err := idx.RawLengths()
	require.NoError(t, err)
	assert.Equal(t, TypeUint32, lt)
	assert.Equal(t, binary.NativeEndian.AppendUint32(binary.NativeEndian.AppendUint32(nil, 2), 1), raw)
}

func TestPutCount(t *testing.T) {
	t.Parallel()
	buf := make([]byte, 8)
	assert.NoError(t, putCount(buf, TypeUint8, 255))
	assert.Error(t, putCount(buf, TypeUint8, 256))
	assert.NoError(t, putCount(buf, TypeInt8, 127))
	assert.Error(t, putCount(buf, TypeInt8, 128))
	assert.NoError(t, putCount(buf, TypeUint64, 1<<40))
}

func TestASCIIListLengthOverflow(t *testing.T) {
	t.Parallel()
	header := []string{"element face 1", "property list uchar int idx"}
	body := "256" + strings.Repeat(" 0", 256) + "\n"
	f := openBytes(t, plyBytes("ascii", header, []byte(body)))

	err := f.Request("face", nil)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestRequestRejectsListLongerThanData(t *testing.T) {
	t.Parallel()
	data := plyBytes("binary_little_endian", []string{"element face 1", "property list uint64 int64 idx"},
		binaryBody(t, binary.LittleEndian, uint64(1), int64(9)))
	f := openBytes(t, data)

	// Rewrite the length after inspection so only the decode pass sees it.
	binary.LittleEndian.PutUint64(data[f.DataOffset():], 1<<61)

	err := f.Request("face", nil)
	require.ErrorIs(t, err, ErrDecode)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	idx, perr := f.Property("face", "idx")
	require.NoError(t, perr)
	assert.False(t, idx.Materialized())
}
