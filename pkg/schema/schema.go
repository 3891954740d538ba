package schema

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tim-hellhake/gateway-addon-go/pkg/things"
)

// Schema errors.
var (
	// ErrMissingID indicates a definition without a device id.
	ErrMissingID = errors.New("thing definition missing id")

	// ErrMissingTitle indicates a definition without a title.
	ErrMissingTitle = errors.New("thing definition missing title")
)

// ThingDefinition describes one device.
type ThingDefinition struct {
	// ID is the device identifier.
	ID string `yaml:"id"`

	// Title is the human-readable name.
	Title string `yaml:"title"`

	// Description is an optional free-form description.
	Description string `yaml:"description,omitempty"`

	// Types are the semantic @type annotations.
	Types []string `yaml:"types,omitempty"`

	// Properties maps property names to their raw descriptions. The
	// descriptions pass through the same parsing as runtime-supplied
	// ones, so legacy fields (min, max, label) are honored here too.
	Properties map[string]map[string]any `yaml:"properties,omitempty"`

	// Actions maps action names to their declarations.
	Actions map[string]ActionDefinition `yaml:"actions,omitempty"`

	// Events maps event names to their declarations.
	Events map[string]EventDefinition `yaml:"events,omitempty"`
}

// ActionDefinition declares an available action.
type ActionDefinition struct {
	Title       string         `yaml:"title,omitempty"`
	Description string         `yaml:"description,omitempty"`
	Input       map[string]any `yaml:"input,omitempty"`
}

// EventDefinition declares an available event.
type EventDefinition struct {
	Description string `yaml:"description,omitempty"`
	Type        string `yaml:"type,omitempty"`
}

// ParseThing parses a YAML thing definition.
func ParseThing(data []byte) (*ThingDefinition, error) {
	def := &ThingDefinition{}
	if err := yaml.Unmarshal(data, def); err != nil {
		return nil, fmt.Errorf("failed to parse thing definition: %w", err)
	}
	if def.ID == "" {
		return nil, ErrMissingID
	}
	if def.Title == "" {
		return nil, ErrMissingTitle
	}
	return def, nil
}

// LoadThing reads and parses a YAML thing definition file.
func LoadThing(path string) (*ThingDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read thing definition: %w", err)
	}
	return ParseThing(data)
}

// Build turns the definition into a live device. Property descriptions
// that fail parsing abort the build with the property name in the
// error.
func (def *ThingDefinition) Build() (*things.Device, error) {
	d := things.NewDevice(def.ID, def.Title)
	if def.Description != "" {
		d.SetDescription(def.Description)
	}
	if len(def.Types) > 0 {
		d.SetAtTypes(def.Types)
	}

	for name, raw := range def.Properties {
		if _, err := d.NewProperty(name, raw); err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
	}
	for name, action := range def.Actions {
		d.AddAvailableAction(name, things.ActionMetadata{
			Title:       action.Title,
			Description: action.Description,
			Input:       action.Input,
		})
	}
	for name, event := range def.Events {
		d.AddAvailableEvent(name, things.EventMetadata{
			Description: event.Description,
			Type:        event.Type,
		})
	}

	return d, nil
}
