package ply

import (
	"io"

	"github.com/elliotchance/orderedmap/v3"

	"github.com/samcharles93/plyload/internal/logger"
)

// Property is a named field of an element: one scalar per item, or a
// variable-length list of scalars per item.
type Property struct {
	name     string
	typ      ScalarType
	listType ScalarType

	// size is the byte size of the fully materialized value buffer.
	size int64

	materialized bool
	data         []byte
	lengths      []byte
}

func (p *Property) Name() string { return p.name }

// Type is the scalar type of each value.
func (p *Property) Type() ScalarType { return p.typ }

// ListType is the type of the per-item list length, or TypeNone for scalars.
func (p *Property) ListType() ScalarType { return p.listType }

func (p *Property) IsList() bool { return p.listType != TypeNone }

// Size is the total byte size of the property's values across all items.
func (p *Property) Size() int64 { return p.size }

// Materialized reports whether the property's buffers have been decoded.
func (p *Property) Materialized() bool { return p.materialized }

// decodable reports whether the property can be materialized at all.
func (p *Property) decodable() bool {
	if !p.typ.Valid() {
		return false
	}
	return p.listType == TypeNone || (p.listType.Valid() && !p.listType.float())
}

func (p *Property) release() {
	p.data = nil
	p.lengths = nil
	p.materialized = false
}

// Element is a named group of items sharing one property schema.
type Element struct {
	name   string
	count  int64
	offset int64
	props  *orderedmap.OrderedMap[string, *Property]
}

func newElement(name string, count int64) *Element {
	return &Element{
		name:  name,
		count: count,
		props: orderedmap.NewOrderedMap[string, *Property](),
	}
}

func (e *Element) Name() string { return e.name }

// Count is the declared number of items.
func (e *Element) Count() int64 { return e.count }

// Offset is the absolute file offset where the element's data starts.
func (e *Element) Offset() int64 { return e.offset }

// Properties returns the element's properties in on-disk order.
func (e *Element) Properties() []*Property {
	out := make([]*Property, 0, e.props.Len())
	for el := e.props.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// Property looks up a property by name.
func (e *Element) Property(name string) (*Property, bool) {
	return e.props.Get(name)
}

// fixedSize reports whether no property of the element is a list.
func (e *Element) fixedSize() bool {
	for el := e.props.Front(); el != nil; el = el.Next() {
		if el.Value.IsList() {
			return false
		}
	}
	return true
}

// File is an open PLY file. It owns the schema, the underlying stream and
// every materialized buffer.
type File struct {
	// ID identifies this handle in log output.
	ID string

	encoding   Encoding
	version    string
	comments   []string
	objInfo    []string
	elements   *orderedmap.OrderedMap[string, *Element]
	dataOffset int64

	cur    *cursor
	closer io.Closer
	log    logger.Logger

	// err is the first decode failure; the cursor is no longer trusted after it.
	err    error
	closed bool
}

func (f *File) Encoding() Encoding { return f.encoding }

// Version is the version token of the format line, usually "1.0".
func (f *File) Version() string { return f.version }

// DataOffset is the offset of the first byte after the header.
func (f *File) DataOffset() int64 { return f.dataOffset }

// Comments returns the header comment lines in order.
func (f *File) Comments() []string { return f.comments }

// ObjInfo returns the header obj_info lines in order.
func (f *File) ObjInfo() []string { return f.objInfo }

// Elements returns the elements in header order.
func (f *File) Elements() []*Element {
	if f.elements == nil {
		return nil
	}
	out := make([]*Element, 0, f.elements.Len())
	for el := f.elements.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// Element looks up an element by name.
func (f *File) Element(name string) (*Element, bool) {
	if f.elements == nil {
		return nil, false
	}
	return f.elements.Get(name)
}

// Property looks up a property of a named element.
func (f *File) Property(element, property string) (*Property, error) {
	e, ok := f.Element(element)
	if !ok {
		return nil, ErrElementNotFound
	}
	p, ok := e.Property(property)
	if !ok {
		return nil, ErrPropertyNotFound
	}
	return p, nil
}

// Close releases every buffer and the underlying stream. It is safe to call
// on a file that never materialized anything; a second call returns ErrClosed.
func (f *File) Close() error {
	if f == nil || f.closed {
		return ErrClosed
	}
	f.closed = true
	if f.elements != nil {
		for el := f.elements.Front(); el != nil; el = el.Next() {
			for pl := el.Value.props.Front(); pl != nil; pl = pl.Next() {
				pl.Value.release()
			}
		}
	}
	f.elements = nil
	f.comments = nil
	f.objInfo = nil
	f.cur = nil

	var err error
	if f.closer != nil {
		err = f.closer.Close()
		f.closer = nil
	}
	f.log.Debug("closed ply file")
	return err
}
