package mediatype

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Registry maps media type names and file extensions to MediaType
// descriptors. Register everything during setup; lookups are safe for
// concurrent use once registration is done.
type Registry struct {
	byName map[string]*MediaType
	byExt  map[string]*MediaType
	names  []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*MediaType),
		byExt:  make(map[string]*MediaType),
	}
}

// DefaultRegistry returns a new registry preloaded with the media types most
// web applications need: JSON, XML, YAML, URL encoded forms, plain text,
// HTML and raw octet streams.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.MustRegister(&MediaType{Name: JSON, Decoder: decodeJSON})
	reg.MustRegister(&MediaType{Name: XML, Decoder: decodeXML})
	reg.MustRegister(&MediaType{Name: YAML, Extensions: []string{"yaml", "yml"}, Decoder: decodeYAML})
	reg.MustRegister(&MediaType{Name: Form, Decoder: decodeForm})
	reg.MustRegister(&MediaType{Name: PlainText, Decoder: decodeText})
	reg.MustRegister(&MediaType{Name: HTML, Decoder: decodeText})
	reg.MustRegister(&MediaType{Name: OctetStream, Extensions: []string{"bin"}, Decoder: decodeBinary})
	return reg
}

// Register adds mt to the registry, which owns it from then on. The name
// and extensions of mt are normalized in place; the Extensions slice is
// copied first, so a slice shared with other code is left untouched. When
// mt lists no extensions the preferred one is taken from the mimetype
// database, if it knows the type. An extension already claimed by an
// earlier media type keeps pointing at that earlier type.
func (r *Registry) Register(mt *MediaType) error {
	name, _ := Normalize(mt.Name)
	if name == "" || !strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, mt.Name)
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	mt.Name = name
	mt.Extensions = slices.Clone(mt.Extensions)

	if len(mt.Extensions) == 0 {
		if known := mimetype.Lookup(name); known != nil && known.Extension() != "" {
			mt.Extensions = []string{strings.TrimPrefix(known.Extension(), ".")}
		}
	}

	r.byName[name] = mt
	r.names = append(r.names, name)

	for i, ext := range mt.Extensions {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		mt.Extensions[i] = ext
		if _, taken := r.byExt[ext]; !taken {
			r.byExt[ext] = mt
		}
	}

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(mt *MediaType) {
	if err := r.Register(mt); err != nil {
		panic(err)
	}
}

// Lookup returns the media type registered for a Content-Type value.
// Parameters and letter case are ignored. An empty or unregistered value
// reports false in both cases.
func (r *Registry) Lookup(contentType string) (*MediaType, bool) {
	name, _ := Normalize(contentType)
	if name == "" {
		return nil, false
	}
	mt, ok := r.byName[name]
	return mt, ok
}

// ForExtension returns the media type selected by a file extension given
// with or without its leading dot.
func (r *Registry) ForExtension(ext string) (*MediaType, bool) {
	mt, ok := r.byExt[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return mt, ok
}

// Names lists the registered media type names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// MediaTypes resolves names to registered media types, skipping unknown ones.
func (r *Registry) MediaTypes(names ...string) []*MediaType {
	out := make([]*MediaType, 0, len(names))
	for _, name := range names {
		if mt, ok := r.Lookup(name); ok {
			out = append(out, mt)
		}
	}
	return out
}
