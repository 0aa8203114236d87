package ply

import "errors"

var (
	ErrInvalidMagic        = errors.New("invalid PLY magic")
	ErrMalformedHeader     = errors.New("malformed PLY header")
	ErrUnsupportedEncoding = errors.New("unsupported PLY encoding")
	ErrUnknownType         = errors.New("unknown PLY scalar type")
	ErrDecode              = errors.New("corrupt PLY data")

	ErrElementNotFound  = errors.New("ply: element not found")
	ErrPropertyNotFound = errors.New("ply: property not found")
	ErrNotMaterialized  = errors.New("ply: property not materialized")
	ErrTypeMismatch     = errors.New("ply: property type mismatch")
	ErrFileUnusable     = errors.New("ply: file unusable after decode failure")
	ErrClosed           = errors.New("ply: file closed")
)
