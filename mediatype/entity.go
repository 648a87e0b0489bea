package mediatype

import (
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/encoding/htmlindex"
)

// Entity is the representation of a request body of a known media type.
// The underlying stream is consumed at most once, on the first call that
// needs the data; the bytes and any read error are kept for later calls.
// An Entity belongs to a single request and is not safe for concurrent use.
type Entity struct {
	mediaType *MediaType
	stream    io.Reader
	length    int64
	encoding  string
	params    map[string]string

	consumed bool
	data     []byte
	err      error
}

// MediaType returns the media type the entity was built for.
func (e *Entity) MediaType() *MediaType { return e.mediaType }

// Length returns the declared content length, -1 when it was not declared.
func (e *Entity) Length() int64 { return e.length }

// Encoding returns the declared charset, possibly empty.
func (e *Entity) Encoding() string { return e.encoding }

// Params returns the media type parameters from the Content-Type header.
func (e *Entity) Params() map[string]string { return e.params }

// Bytes returns the raw entity data.
func (e *Entity) Bytes() ([]byte, error) {
	if !e.consumed {
		e.consumed = true
		e.data, e.err = e.readStream()
		e.stream = nil
	}
	return e.data, e.err
}

func (e *Entity) readStream() ([]byte, error) {
	if e.stream == nil {
		return nil, nil
	}

	src := e.stream
	if e.length >= 0 {
		src = io.LimitReader(src, e.length)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("mediatype: reading %s entity: %w", e.mediaType.Name, err)
	}
	if e.length >= 0 && int64(len(data)) < e.length {
		return data, fmt.Errorf("mediatype: reading %s entity: got %d of %d bytes: %w",
			e.mediaType.Name, len(data), e.length, io.ErrUnexpectedEOF)
	}
	return data, nil
}

// Text returns the entity data transcoded from its declared charset to
// UTF-8. Data without a declared charset is returned as is.
func (e *Entity) Text() (string, error) {
	data, err := e.utf8()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (e *Entity) utf8() ([]byte, error) {
	data, err := e.Bytes()
	if err != nil {
		return nil, err
	}

	charset := strings.ToLower(strings.TrimSpace(e.encoding))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return data, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("mediatype: unsupported charset %q: %w", e.encoding, err)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("mediatype: decoding %s data: %w", charset, err)
	}
	return out, nil
}

// Decode decodes the entity into v with the media type's decoder. Data in
// a declared non UTF-8 charset is transcoded first.
func (e *Entity) Decode(v any) error {
	if e.mediaType.Decoder == nil {
		return fmt.Errorf("%w for %s", ErrNoDecoder, e.mediaType.Name)
	}

	data, err := e.utf8()
	if err != nil {
		return err
	}

	if err := e.mediaType.Decoder(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNotDecodable, e.mediaType.Name, err)
	}
	return nil
}

// Sniff detects the MIME type of the entity data from its content,
// regardless of what the client declared. The result may carry parameters,
// e.g. "text/plain; charset=utf-8".
func (e *Entity) Sniff() (string, error) {
	data, err := e.Bytes()
	if err != nil {
		return "", err
	}
	return mimetype.Detect(data).String(), nil
}
