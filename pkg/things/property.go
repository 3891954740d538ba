package things

import (
	"errors"
	"fmt"
	"math"
	"reflect"
)

// Validation rejections. All leave the cached value untouched.
var (
	ErrPropertyReadOnly  = errors.New("read-only property")
	ErrValueBelowMinimum = errors.New("value below minimum")
	ErrValueAboveMaximum = errors.New("value above maximum")
	ErrValueNotMultiple  = errors.New("value is not a multiple")
	ErrInvalidEnumValue  = errors.New("invalid enum value")
)

// multipleOfTolerance is the rounding tolerance for the multipleOf check.
// The check divides instead of taking a remainder so that steps like 0.1
// accept 0.3 despite binary floating-point imprecision.
const multipleOfTolerance = 1e-9

// PropertyNotifier receives change notifications from a property.
// The base Device implements it; tests use a stub.
type PropertyNotifier interface {
	// NotifyPropertyChanged is invoked exactly once per confirmed value
	// change, after the cached value has already been updated.
	NotifyPropertyChanged(p *Property)
}

// Property holds a typed, validated value plus its description.
// A property is owned by exactly one device and never reads device
// state; it only calls outward through its notifier. Callers serialize
// access, the property itself holds no lock.
type Property struct {
	notifier PropertyNotifier
	name     string
	desc     Description

	value         any
	prevGetValue  any
	fireAndForget bool
}

// NewProperty creates a property with the given name and description.
func NewProperty(notifier PropertyNotifier, name string, desc Description) *Property {
	return &Property{
		notifier: notifier,
		name:     name,
		desc:     desc,
	}
}

// NewPropertyFromRaw creates a property from a raw description object,
// applying the legacy adaptation rules of ParseDescription.
// A malformed description is a fatal configuration error.
func NewPropertyFromRaw(notifier PropertyNotifier, name string, raw map[string]any) (*Property, error) {
	desc, err := ParseDescription(raw)
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", name, err)
	}
	return NewProperty(notifier, name, desc), nil
}

// ReadCachedValue returns the last cached value without I/O.
// Reads before any write yield nil. The returned value is recorded as
// the previous-get value so device-layer polling can detect externally
// observed changes.
//
// A device-backed property overrides the read path to fetch live
// values; any override must preserve this bookkeeping.
func (p *Property) ReadCachedValue() any {
	p.prevGetValue = p.value
	return p.value
}

// Value returns the current cached value without touching the
// previous-get bookkeeping. Notification and serialization paths use
// it so device-layer polling is not disturbed.
func (p *Property) Value() any {
	return p.value
}

// PrevGetValue returns the last value handed out by ReadCachedValue.
func (p *Property) PrevGetValue() any {
	return p.prevGetValue
}

// RequestValueChange validates value and, on success, updates the cache
// and notifies the owning device if the cached value changed.
//
// The pipeline short-circuits on the first failure: read-only, then
// minimum, maximum, multipleOf for numeric values, then enum
// membership. The returned value is the cached one, which may differ
// from the input (boolean coercion).
func (p *Property) RequestValueChange(value any) (any, error) {
	if p.desc.ReadOnly {
		return nil, fmt.Errorf("%w: %s", ErrPropertyReadOnly, p.name)
	}

	if n, ok := toFloat64(value); ok {
		if p.desc.Minimum != nil && n < *p.desc.Minimum {
			return nil, fmt.Errorf("%w: %v is less than %v", ErrValueBelowMinimum, value, *p.desc.Minimum)
		}
		if p.desc.Maximum != nil && n > *p.desc.Maximum {
			return nil, fmt.Errorf("%w: %v is greater than %v", ErrValueAboveMaximum, value, *p.desc.Maximum)
		}
		if p.desc.MultipleOf != nil && !isMultipleOf(n, *p.desc.MultipleOf) {
			return nil, fmt.Errorf("%w: %v is not a multiple of %v", ErrValueNotMultiple, value, *p.desc.MultipleOf)
		}
	}

	if len(p.desc.Enum) > 0 {
		rendered := renderString(value)
		member := false
		for _, e := range p.desc.Enum {
			if e == rendered {
				member = true
				break
			}
		}
		if !member {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEnumValue, value)
		}
	}

	return p.SetCachedValueAndNotify(value), nil
}

// SetCachedValue updates the cache, applying type coercion, without any
// notification. Used by read-path synchronization from a backend.
// Returns the cached (coerced) value.
func (p *Property) SetCachedValue(value any) any {
	if p.desc.Type == TypeBoolean {
		value = truthy(value)
	}
	p.value = value
	return p.value
}

// SetCachedValueAndNotify updates the cache and notifies the owning
// device only when the coerced value differs from the previous one.
// Comparing after coercion prevents spurious notifications for
// equivalent-but-differently-typed inputs.
func (p *Property) SetCachedValueAndNotify(value any) any {
	old := p.value
	cached := p.SetCachedValue(value)
	if !valueEquals(old, cached) && p.notifier != nil {
		p.notifier.NotifyPropertyChanged(p)
	}
	return cached
}

// Describe returns the sparse property description used for schema
// publication: every field is included only when defined, and neither
// name, value, nor visibility appears.
func (p *Property) Describe() map[string]any {
	d := map[string]any{
		"type": p.desc.Type,
	}
	if p.desc.Title != "" {
		d["title"] = p.desc.Title
	}
	if p.desc.AtType != "" {
		d["@type"] = p.desc.AtType
	}
	if p.desc.Unit != "" {
		d["unit"] = p.desc.Unit
	}
	if p.desc.Description != "" {
		d["description"] = p.desc.Description
	}
	if p.desc.Minimum != nil {
		d["minimum"] = *p.desc.Minimum
	}
	if p.desc.Maximum != nil {
		d["maximum"] = *p.desc.Maximum
	}
	if len(p.desc.Enum) > 0 {
		d["enum"] = p.desc.Enum
	}
	if p.desc.ReadOnly {
		d["readOnly"] = true
	}
	if p.desc.MultipleOf != nil {
		d["multipleOf"] = *p.desc.MultipleOf
	}
	if len(p.desc.Links) > 0 {
		d["links"] = p.desc.Links
	}
	return d
}

// AsRecord returns the dense introspection view: all description fields
// plus name, value, and visibility, present regardless of definedness.
func (p *Property) AsRecord() map[string]any {
	return map[string]any{
		"name":        p.name,
		"value":       p.value,
		"visible":     p.desc.IsVisible(),
		"title":       p.desc.Title,
		"type":        p.desc.Type,
		"@type":       p.desc.AtType,
		"unit":        p.desc.Unit,
		"description": p.desc.Description,
		"minimum":     derefNumber(p.desc.Minimum),
		"maximum":     derefNumber(p.desc.Maximum),
		"multipleOf":  derefNumber(p.desc.MultipleOf),
		"enum":        p.desc.Enum,
		"readOnly":    p.desc.ReadOnly,
		"links":       p.desc.Links,
	}
}

// Accessors. Setters are plain metadata edits: no validation, no
// notification.

func (p *Property) Name() string            { return p.name }
func (p *Property) SetName(name string)     { p.name = name }
func (p *Property) Title() string           { return p.desc.Title }
func (p *Property) SetTitle(title string)   { p.desc.Title = title }
func (p *Property) Type() string            { return p.desc.Type }
func (p *Property) SetType(t string)        { p.desc.Type = t }
func (p *Property) AtType() string          { return p.desc.AtType }
func (p *Property) SetAtType(at string)     { p.desc.AtType = at }
func (p *Property) Unit() string            { return p.desc.Unit }
func (p *Property) SetUnit(unit string)     { p.desc.Unit = unit }
func (p *Property) Description() string     { return p.desc.Description }
func (p *Property) SetDescription(d string) { p.desc.Description = d }

func (p *Property) Minimum() *float64        { return p.desc.Minimum }
func (p *Property) SetMinimum(min *float64)  { p.desc.Minimum = min }
func (p *Property) Maximum() *float64        { return p.desc.Maximum }
func (p *Property) SetMaximum(max *float64)  { p.desc.Maximum = max }
func (p *Property) MultipleOf() *float64     { return p.desc.MultipleOf }
func (p *Property) SetMultipleOf(m *float64) { p.desc.MultipleOf = m }

func (p *Property) Enum() []string         { return p.desc.Enum }
func (p *Property) SetEnum(enum []string)  { p.desc.Enum = enum }
func (p *Property) ReadOnly() bool         { return p.desc.ReadOnly }
func (p *Property) SetReadOnly(ro bool)    { p.desc.ReadOnly = ro }
func (p *Property) Links() []Link          { return p.desc.Links }
func (p *Property) SetLinks(links []Link)  { p.desc.Links = links }
func (p *Property) IsVisible() bool        { return p.desc.IsVisible() }
func (p *Property) SetVisible(v bool)      { p.desc.Visible = &v }
func (p *Property) IsFireAndForget() bool  { return p.fireAndForget }
func (p *Property) SetFireAndForget(f bool) { p.fireAndForget = f }

// isMultipleOf reports whether v is a multiple of step within rounding
// tolerance, using division rather than a remainder to avoid
// floating-point remainder artifacts.
func isMultipleOf(v, step float64) bool {
	if step == 0 {
		return false
	}
	q := v / step
	return math.Abs(q-math.Round(q)) < multipleOfTolerance
}

// truthy coerces any value to a strict boolean: nil, false, numeric
// zero, and the empty string are false; everything else is true.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	default:
		if n, ok := toFloat64(value); ok {
			return n != 0
		}
		return true
	}
}

// valueEquals compares two cached values. Comparable values compare by
// equality; structured values (maps, slices) always count as changed,
// matching identity semantics for freshly built inputs.
func valueEquals(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a).Comparable() && reflect.TypeOf(b).Comparable() {
		return a == b
	}
	return false
}

// renderString is the string rendering used for enum membership.
func renderString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func derefNumber(n *float64) any {
	if n == nil {
		return nil
	}
	return *n
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
