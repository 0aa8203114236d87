package ply

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// plyBytes assembles a PLY file from header lines (without magic and
// end_header) and a raw data section.
func plyBytes(format string, header []string, body []byte) []byte {
	var b bytes.Buffer
	b.WriteString("ply\n")
	b.WriteString("format " + format + " 1.0\n")
	for _, l := range header {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString("end_header\n")
	b.Write(body)
	return b.Bytes()
}

// binaryBody encodes fixed-size values back to back in the given order.
func binaryBody(t *testing.T, order binary.ByteOrder, values ...any) []byte {
	t.Helper()
	var b bytes.Buffer
	for _, v := range values {
		require.NoError(t, binary.Write(&b, order, v))
	}
	return b.Bytes()
}

func openBytes(t *testing.T, data []byte, opts ...Option) *File {
	t.Helper()
	f, err := OpenReader(bytes.NewReader(data), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

var cubeHeader = []string{
	"comment made by hand",
	"obj_info unit cube corner",
	"element vertex 3",
	"property float x",
	"property float y",
	"property float z",
	"element face 2",
	"property list uchar int vertex_indices",
}

// cubeASCII is the triangle fixture: three vertices, a triangle and a quad.
func cubeASCII() []byte {
	body := strings.Join([]string{
		"0 0 0",
		"1 0 0",
		"0 1 0",
		"3 0 1 2",
		"4 0 1 2 3",
	}, "\n") + "\n"
	return plyBytes("ascii", cubeHeader, []byte(body))
}

func cubeBinary(t *testing.T, order binary.ByteOrder) []byte {
	format := "binary_little_endian"
	if order == binary.BigEndian {
		format = "binary_big_endian"
	}
	body := binaryBody(t, order,
		float32(0), float32(0), float32(0),
		float32(1), float32(0), float32(0),
		float32(0), float32(1), float32(0),
		uint8(3), int32(0), int32(1), int32(2),
		uint8(4), int32(0), int32(1), int32(2), int32(3),
	)
	return plyBytes(format, cubeHeader, body)
}
