package ply

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elliotchance/orderedmap/v3"
)

// header is the schema parsed from the textual header.
type header struct {
	encoding   Encoding
	version    string
	comments   []string
	objInfo    []string
	elements   *orderedmap.OrderedMap[string, *Element]
	dataOffset int64
}

func readHeader(c *cursor) (*header, error) {
	if err := c.seek(0); err != nil {
		return nil, err
	}
	line, err := c.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrInvalidMagic
		}
		return nil, err
	}
	if string(line) != magicPLY {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, line)
	}

	h := &header{elements: orderedmap.NewOrderedMap[string, *Element]()}
	var (
		current   *Element
		sawFormat bool
		lineNo    = 1
	)
	for {
		line, err := c.readLine()
		lineNo++
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: missing %s: %w", ErrMalformedHeader, keywordEndHeader, io.ErrUnexpectedEOF)
			}
			return nil, err
		}
		text := string(line)
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case keywordFormat:
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: line %d: format without encoding", ErrMalformedHeader, lineNo)
			}
			h.encoding = ParseEncoding(fields[1])
			if len(fields) > 2 {
				h.version = fields[2]
			}
			sawFormat = true

		case keywordComment:
			h.comments = append(h.comments, headerText(text, keywordComment))

		case keywordObjInfo:
			h.objInfo = append(h.objInfo, headerText(text, keywordObjInfo))

		case keywordElement:
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: line %d: want \"element <name> <count>\"", ErrMalformedHeader, lineNo)
			}
			count, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: line %d: invalid item count %q", ErrMalformedHeader, lineNo, fields[2])
			}
			current = newElement(fields[1], count)
			if !h.elements.Set(current.name, current) {
				return nil, fmt.Errorf("%w: line %d: duplicate element %q", ErrMalformedHeader, lineNo, current.name)
			}

		case keywordProperty:
			if current == nil {
				return nil, fmt.Errorf("%w: line %d: property before any element", ErrMalformedHeader, lineNo)
			}
			prop, err := parseProperty(fields)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedHeader, lineNo, err)
			}
			if !current.props.Set(prop.name, prop) {
				return nil, fmt.Errorf("%w: line %d: duplicate property %q in element %q",
					ErrMalformedHeader, lineNo, prop.name, current.name)
			}

		case keywordEndHeader:
			if !sawFormat {
				return nil, fmt.Errorf("%w: missing format line", ErrUnsupportedEncoding)
			}
			if h.encoding == EncodingUnknown {
				return nil, ErrUnsupportedEncoding
			}
			if h.elements.Len() == 0 {
				return nil, fmt.Errorf("%w: no elements declared", ErrMalformedHeader)
			}
			h.dataOffset = c.off
			return h, nil

		default:
			// Unrecognised header lines carry nothing the data layout depends on.
		}
	}
}

// parseProperty handles "property <type> <name>" and
// "property list <length-type> <value-type> <name>".
func parseProperty(fields []string) (*Property, error) {
	if len(fields) >= 2 && fields[1] == keywordList {
		if len(fields) != 5 {
			return nil, errors.New("want \"property list <length-type> <value-type> <name>\"")
		}
		return &Property{
			name:     fields[4],
			listType: ParseScalarType(fields[2]),
			typ:      ParseScalarType(fields[3]),
		}, nil
	}
	if len(fields) != 3 {
		return nil, errors.New("want \"property <type> <name>\"")
	}
	return &Property{
		name:     fields[2],
		listType: TypeNone,
		typ:      ParseScalarType(fields[1]),
	}, nil
}

// headerText returns everything after the keyword, with one separator removed.
func headerText(line, keyword string) string {
	rest := strings.TrimPrefix(line, keyword)
	if len(rest) > 0 && (rest[0] == ' ' || rest[0] == '\t') {
		rest = rest[1:]
	}
	return rest
}
