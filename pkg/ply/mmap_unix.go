//go:build unix

package ply

import (
	"bytes"
	"os"

	"golang.org/x/sys/unix"
)

// mappedFile serves reads from a read-only memory mapping.
type mappedFile struct {
	*bytes.Reader
	data []byte
}

func (m *mappedFile) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}

// openSource maps path when asked to and possible, otherwise returns the
// open *os.File. The bool reports whether a mapping is in use.
func openSource(path string, mmap bool) (source, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	if !mmap {
		return f, false, nil
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, false, err
	}
	size := st.Size()
	if size <= 0 || size > int64(int(^uint(0)>>1)) {
		return f, false, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return f, false, nil
	}
	_ = f.Close()
	return &mappedFile{Reader: bytes.NewReader(data), data: data}, true, nil
}
