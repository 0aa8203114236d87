// Package ply reads PLY (Polygon File Format) geometry files.
//
// A PLY file starts with a textual header describing a sequence of elements,
// each with an ordered list of scalar or list properties, followed by a data
// section in ASCII or binary (little- or big-endian) encoding.
//
// Loading is split in three phases. Open parses the header into a schema and
// walks the data section once to record every element's offset and every
// property's byte size. Nothing is decoded at that point. Request then
// materializes only the properties a caller asks for into typed buffers,
// skipping over the rest.
//
// A File is not safe for concurrent use. Buffers returned by the typed
// accessors are views owned by the File and must not be retained after Close.
package ply

// Header keywords. These never change.
const (
	magicPLY = "ply"

	keywordFormat    = "format"
	keywordElement   = "element"
	keywordProperty  = "property"
	keywordList      = "list"
	keywordComment   = "comment"
	keywordObjInfo   = "obj_info"
	keywordEndHeader = "end_header"
)
