package mediatype

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/url"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// FormTag names the struct tag that maps form fields onto struct fields.
const FormTag = "form"

// Names of the media types registered by DefaultRegistry.
const (
	JSON        = "application/json"
	XML         = "application/xml"
	YAML        = "application/yaml"
	Form        = "application/x-www-form-urlencoded"
	PlainText   = "text/plain"
	HTML        = "text/html"
	OctetStream = "application/octet-stream"
)

func decodeJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func decodeXML(data []byte, v any) error {
	return xml.Unmarshal(data, v)
}

func decodeYAML(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

func decodeForm(data []byte, v any) error {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return err
	}

	switch dst := v.(type) {
	case *url.Values:
		*dst = values
	case *map[string][]string:
		*dst = values
	case *map[string]string:
		flat := make(map[string]string, len(values))
		for k := range values {
			flat[k] = values.Get(k)
		}
		*dst = flat
	default:
		return decodeFormStruct(values, v)
	}
	return nil
}

// decodeFormStruct binds values into the fields of the struct v points to
// that carry a "form" tag. Numbers and booleans are converted from their
// text form; a repeated field fills a slice.
func decodeFormStruct(values url.Values, v any) error {
	input := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			input[k] = vs[0]
		} else {
			input[k] = vs
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:               v,
		TagName:              FormTag,
		WeaklyTypedInput:     true,
		IgnoreUntaggedFields: true,
	})
	if err != nil {
		return fmt.Errorf("form data cannot be stored in %T: %w", v, err)
	}
	return decoder.Decode(input)
}

func decodeText(data []byte, v any) error {
	switch dst := v.(type) {
	case *string:
		*dst = string(data)
	case *[]byte:
		*dst = data
	default:
		return fmt.Errorf("text cannot be stored in %T", v)
	}
	return nil
}

func decodeBinary(data []byte, v any) error {
	dst, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("binary data cannot be stored in %T", v)
	}
	*dst = data
	return nil
}
