package ply

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/samcharles93/plyload/internal/logger"
)

// source is a seekable stream owned by a File.
type source interface {
	io.ReadSeeker
	io.Closer
}

type options struct {
	log  logger.Logger
	mmap bool
}

// Option configures Open and OpenReader.
type Option func(*options)

// WithLogger sets the logger used for debug output. The default discards.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMmap controls whether Open maps the file into memory. It is on by
// default where the platform supports it; Open falls back to plain reads
// when mapping fails.
func WithMmap(enabled bool) Option {
	return func(o *options) { o.mmap = enabled }
}

func buildOptions(opts []Option) options {
	o := options{log: logger.Nop(), mmap: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open opens the PLY file at path, parses its header and inspects the data
// layout. No property is materialized yet. The returned file must be closed.
func Open(path string, opts ...Option) (*File, error) {
	o := buildOptions(opts)
	src, mapped, err := openSource(path, o.mmap)
	if err != nil {
		return nil, err
	}
	f, err := open(src, src, o)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	f.log.Debug("opened ply file", "path", path, "mmap", mapped)
	return f, nil
}

// OpenReader reads a PLY file from any seekable stream. If rs also
// implements io.Closer, the file takes ownership and closes it on Close.
func OpenReader(rs io.ReadSeeker, opts ...Option) (*File, error) {
	if rs == nil {
		return nil, errors.New("ply: nil reader")
	}
	closer, _ := rs.(io.Closer)
	return open(rs, closer, buildOptions(opts))
}

func open(rs io.ReadSeeker, closer io.Closer, o options) (*File, error) {
	cur, err := newCursor(rs)
	if err != nil {
		return nil, err
	}
	h, err := readHeader(cur)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	f := &File{
		ID:         id,
		encoding:   h.encoding,
		version:    h.version,
		comments:   h.comments,
		objInfo:    h.objInfo,
		elements:   h.elements,
		dataOffset: h.dataOffset,
		cur:        cur,
		closer:     closer,
		log:        o.log.With("file_id", id),
	}
	f.log.Debug("parsed ply header",
		"encoding", f.encoding.String(),
		"elements", f.elements.Len(),
		"data_offset", f.dataOffset,
	)
	if err := f.inspect(); err != nil {
		return nil, err
	}
	return f, nil
}
