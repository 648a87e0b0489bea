// Package mediatype contains the media types an application understands and
// the Entity type used to represent a request body of one of those types.
package mediatype

import (
	"errors"
	"io"
	"mime"
	"strings"
)

var (
	// ErrDuplicate is returned when a media type name is registered twice.
	ErrDuplicate = errors.New("mediatype: already registered")
	// ErrInvalidName is returned when registering a media type without a usable name.
	ErrInvalidName = errors.New("mediatype: invalid name")
	// ErrNoDecoder is returned by Entity.Decode when the media type has no decoder.
	ErrNoDecoder = errors.New("mediatype: no decoder")
	// ErrNotDecodable is returned when an entity cannot be decoded into the target value.
	ErrNotDecodable = errors.New("mediatype: entity not decodable")
)

// DecodeFunc decodes UTF-8 entity data into v, which is usually a pointer.
type DecodeFunc func(data []byte, v any) error

// MediaType describes a registered MIME type and knows how to build an
// Entity from a raw request body.
type MediaType struct {
	// Name is the lower-cased "type/subtype" without parameters.
	Name string
	// Extensions lists the file extensions, without the leading dot, that
	// select this media type. The first one is the preferred extension.
	Extensions []string
	// Decoder is optional. Entities of a media type without a decoder can
	// still be read with Entity.Bytes.
	Decoder DecodeFunc
}

// String implements fmt.Stringer.
func (mt *MediaType) String() string {
	return mt.Name
}

// Extension returns the preferred file extension or an empty string.
func (mt *MediaType) Extension() string {
	if len(mt.Extensions) == 0 {
		return ""
	}
	return mt.Extensions[0]
}

// Type returns the top level type, e.g. "text" for "text/plain".
func (mt *MediaType) Type() string {
	typ, _, _ := strings.Cut(mt.Name, "/")
	return typ
}

// EntityOptions carries what NewEntity needs from the request.
type EntityOptions struct {
	// Stream is the raw body. It is read at most once.
	Stream io.Reader
	// Length is the declared content length, or -1 when unknown.
	Length int64
	// Encoding is the declared charset, empty when none was given.
	Encoding string
	// Params holds the media type parameters of the Content-Type header.
	Params map[string]string
}

// NewEntity builds an Entity of this media type. Nothing is read from the
// stream until the entity data is first requested.
func (mt *MediaType) NewEntity(opts EntityOptions) *Entity {
	return &Entity{
		mediaType: mt,
		stream:    opts.Stream,
		length:    opts.Length,
		encoding:  opts.Encoding,
		params:    opts.Params,
	}
}

// Normalize splits a Content-Type value into its lower-cased media type and
// parameters. Values mime.ParseMediaType rejects are still split on the
// first ';' so a sloppy header keeps its type; their parameters are dropped.
func Normalize(contentType string) (string, map[string]string) {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return "", nil
	}

	name, params, err := mime.ParseMediaType(contentType)
	if err == nil {
		return name, params
	}

	name, _, _ = strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(name)), nil
}
