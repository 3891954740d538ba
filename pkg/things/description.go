package things

import (
	"errors"
	"fmt"
)

// Property type vocabulary. Device-specific extensions are allowed;
// only TypeBoolean carries special coercion semantics.
const (
	TypeBoolean = "boolean"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeString  = "string"
)

// Configuration errors.
var (
	// ErrLegacyNumericType indicates a description that still uses the
	// retired numeric type codes instead of the string vocabulary.
	ErrLegacyNumericType = errors.New("numeric property type is no longer supported")

	// ErrMissingType indicates a description without a type field.
	ErrMissingType = errors.New("property description has no type")
)

// Link is a typed reference attached to a property description.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// Description holds the metadata of a property.
// Pointer fields are optional; nil means undefined.
type Description struct {
	// Title is the human-readable property name.
	Title string

	// Type is the value type ("boolean", "integer", "number", "string",
	// or a device-specific extension).
	Type string

	// AtType is the semantic type tag ("@type" on the wire).
	AtType string

	// Unit is the unit of measurement (e.g., "percent", "watt").
	Unit string

	// Description is a human-readable description.
	Description string

	// Minimum is the lowest allowed numeric value.
	Minimum *float64

	// Maximum is the highest allowed numeric value.
	Maximum *float64

	// MultipleOf constrains numeric values to multiples of this step.
	MultipleOf *float64

	// Enum is the ordered set of allowed values, string-rendered.
	Enum []string

	// ReadOnly rejects every external write when true.
	ReadOnly bool

	// Links are typed references related to the property.
	Links []Link

	// Visible controls whether the property appears in outward
	// descriptions. Nil means unspecified, which counts as visible.
	Visible *bool
}

// IsVisible reports whether the property should appear in outward
// descriptions. An unspecified Visible counts as visible.
func (d Description) IsVisible() bool {
	return d.Visible == nil || *d.Visible
}

// ParseDescription builds a Description from a raw description object,
// adapting legacy field shapes first:
//
//   - a numeric "type" is fatal (the numeric type codes are retired)
//   - "min"/"max"/"label" are accepted as fallbacks for
//     "minimum"/"maximum"/"title" when the canonical fields are absent
//   - "visible" is carried over only when present; absence means visible
//
// The adaptation is a distinct step so the rest of the model only ever
// sees the canonical shape.
func ParseDescription(raw map[string]any) (Description, error) {
	desc := Description{}

	switch t := raw["type"].(type) {
	case nil:
		return desc, ErrMissingType
	case string:
		desc.Type = t
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return desc, fmt.Errorf("%w: got type %v", ErrLegacyNumericType, t)
	default:
		return desc, fmt.Errorf("%w: got %T", ErrMissingType, t)
	}

	desc.Title = rawString(raw, "title")
	if desc.Title == "" {
		desc.Title = rawString(raw, "label")
	}
	desc.AtType = rawString(raw, "@type")
	desc.Unit = rawString(raw, "unit")
	desc.Description = rawString(raw, "description")

	desc.Minimum = rawNumber(raw, "minimum")
	if desc.Minimum == nil {
		desc.Minimum = rawNumber(raw, "min")
	}
	desc.Maximum = rawNumber(raw, "maximum")
	if desc.Maximum == nil {
		desc.Maximum = rawNumber(raw, "max")
	}
	desc.MultipleOf = rawNumber(raw, "multipleOf")

	if enum, ok := raw["enum"].([]any); ok {
		for _, e := range enum {
			desc.Enum = append(desc.Enum, renderString(e))
		}
	}
	if enum, ok := raw["enum"].([]string); ok {
		desc.Enum = append(desc.Enum, enum...)
	}

	if ro, ok := raw["readOnly"].(bool); ok {
		desc.ReadOnly = ro
	}
	if v, ok := raw["visible"].(bool); ok {
		desc.Visible = &v
	}

	if links, ok := raw["links"].([]any); ok {
		for _, l := range links {
			lm, ok := l.(map[string]any)
			if !ok {
				continue
			}
			desc.Links = append(desc.Links, Link{
				Rel:  rawString(lm, "rel"),
				Href: rawString(lm, "href"),
			})
		}
	}

	return desc, nil
}

func rawString(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func rawNumber(raw map[string]any, key string) *float64 {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	n, ok := toFloat64(v)
	if !ok {
		return nil
	}
	return &n
}
