package things

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Device errors.
var (
	ErrDuplicateProperty = errors.New("duplicate property name")
	ErrPropertyNotFound  = errors.New("property not found")
	ErrUnknownAction     = errors.New("unknown action")
	ErrActionNotFound    = errors.New("action not found")
)

// Hub is the outward sink a device forwards its notifications to.
// The IPC layer implements it against a live gateway; tests use a
// capturing stub. A nil hub silently drops notifications.
type Hub interface {
	SendPropertyChanged(d *Device, p *Property)
	SendActionStatus(d *Device, a *Action)
	SendEvent(d *Device, e *Event)
}

// ActionMetadata describes an action a device offers.
type ActionMetadata struct {
	// Title is the human-readable action name.
	Title string

	// Description is a human-readable description.
	Description string

	// Input describes the expected input payload (JSON Schema-like).
	Input map[string]any
}

// EventMetadata describes an event a device can emit.
type EventMetadata struct {
	// Description is a human-readable description.
	Description string

	// Type is the value type of the event payload.
	Type string
}

// Device is the aggregate owning a set of properties, actions, and
// events. It implements the PropertyNotifier and ActionNotifier
// capabilities its leaves call outward into, and serializes access to
// its registries; the leaves themselves hold no locks.
type Device struct {
	mu sync.RWMutex

	id          string
	title       string
	atTypes     []string
	description string

	hub   Hub
	clock Clock

	properties       map[string]*Property
	actions          map[string]*Action
	availableActions map[string]ActionMetadata
	availableEvents  map[string]EventMetadata
	events           []*Event
}

// NewDevice creates a device with the given identity.
func NewDevice(id, title string) *Device {
	return &Device{
		id:               id,
		title:            title,
		clock:            DefaultClock,
		properties:       make(map[string]*Property),
		actions:          make(map[string]*Action),
		availableActions: make(map[string]ActionMetadata),
		availableEvents:  make(map[string]EventMetadata),
	}
}

// SetHub attaches the outward notification sink.
func (d *Device) SetHub(hub Hub) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hub = hub
}

// SetClock replaces the timestamp source used for new actions and
// events. A nil clock restores the default.
func (d *Device) SetClock(clock Clock) {
	if clock == nil {
		clock = DefaultClock
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clock = clock
}

func (d *Device) ID() string { return d.id }

func (d *Device) Title() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.title
}

func (d *Device) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.title = title
}

// AtTypes returns the semantic type tags of the device.
func (d *Device) AtTypes() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.atTypes
}

func (d *Device) SetAtTypes(atTypes []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.atTypes = atTypes
}

func (d *Device) Description() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.description
}

func (d *Device) SetDescription(desc string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.description = desc
}

// NotifyPropertyChanged forwards a confirmed property change to the
// hub. Invoked by properties after their cache is already updated.
func (d *Device) NotifyPropertyChanged(p *Property) {
	d.mu.RLock()
	hub := d.hub
	d.mu.RUnlock()
	if hub != nil {
		hub.SendPropertyChanged(d, p)
	}
}

// ActionNotify forwards an action status transition to the hub.
func (d *Device) ActionNotify(a *Action) {
	d.mu.RLock()
	hub := d.hub
	d.mu.RUnlock()
	if hub != nil {
		hub.SendActionStatus(d, a)
	}
}

// AddProperty registers a property. Property names are unique within a
// device; registering a duplicate fails.
func (d *Device) AddProperty(p *Property) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.properties[p.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProperty, p.Name())
	}
	d.properties[p.Name()] = p
	return nil
}

// NewProperty creates a property owned by this device from a raw
// description and registers it.
func (d *Device) NewProperty(name string, raw map[string]any) (*Property, error) {
	p, err := NewPropertyFromRaw(d, name, raw)
	if err != nil {
		return nil, err
	}
	if err := d.AddProperty(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Property returns a registered property by name.
func (d *Device) Property(name string) (*Property, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, exists := d.properties[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, name)
	}
	return p, nil
}

// Properties returns all registered properties.
func (d *Device) Properties() []*Property {
	d.mu.RLock()
	defer d.mu.RUnlock()
	result := make([]*Property, 0, len(d.properties))
	for _, p := range d.properties {
		result = append(result, p)
	}
	return result
}

// SetProperty requests a value change on the named property and
// returns the cached value the write resolved to.
func (d *Device) SetProperty(name string, value any) (any, error) {
	p, err := d.Property(name)
	if err != nil {
		return nil, err
	}
	return p.RequestValueChange(value)
}

// GetProperty reads the cached value of the named property.
func (d *Device) GetProperty(name string) (any, error) {
	p, err := d.Property(name)
	if err != nil {
		return nil, err
	}
	return p.ReadCachedValue(), nil
}

// AddAvailableAction declares an action clients may request.
func (d *Device) AddAvailableAction(name string, meta ActionMetadata) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.availableActions[name] = meta
}

// AddAvailableEvent declares an event the device can emit.
func (d *Device) AddAvailableEvent(name string, meta EventMetadata) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.availableEvents[name] = meta
}

// RequestAction creates and retains a new action for a declared action
// name. The action id is minted here; the caller (or a device
// subclass) drives Start and Finish.
func (d *Device) RequestAction(name string, input any) (*Action, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.availableActions[name]; !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	a := NewAction(d, uuid.NewString(), name, input, d.clock)
	d.actions[a.ID()] = a
	return a, nil
}

// Action returns a retained action by id.
func (d *Device) Action(id string) (*Action, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, exists := d.actions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrActionNotFound, id)
	}
	return a, nil
}

// Actions returns all retained actions.
func (d *Device) Actions() []*Action {
	d.mu.RLock()
	defer d.mu.RUnlock()
	result := make([]*Action, 0, len(d.actions))
	for _, a := range d.actions {
		result = append(result, a)
	}
	return result
}

// RemoveAction evicts a retained action. Retention is the device's
// responsibility; there is no failure state at the action layer, so an
// owner represents a failed action by removing it unfinished.
func (d *Device) RemoveAction(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.actions[id]; !exists {
		return fmt.Errorf("%w: %s", ErrActionNotFound, id)
	}
	delete(d.actions, id)
	return nil
}

// EmitEvent creates, retains, and forwards an event.
func (d *Device) EmitEvent(name string, data any) *Event {
	d.mu.Lock()
	e := NewEvent(name, data, d.clock)
	d.events = append(d.events, e)
	hub := d.hub
	d.mu.Unlock()
	if hub != nil {
		hub.SendEvent(d, e)
	}
	return e
}

// Events returns all retained events.
func (d *Device) Events() []*Event {
	d.mu.RLock()
	defer d.mu.RUnlock()
	result := make([]*Event, len(d.events))
	copy(result, d.events)
	return result
}

// Describe returns the thing description: identity plus the sparse
// descriptions of all visible properties, the declared actions, and
// the declared events.
func (d *Device) Describe() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	properties := make(map[string]any)
	for name, p := range d.properties {
		if p.IsVisible() {
			properties[name] = p.Describe()
		}
	}

	actions := make(map[string]any)
	for name, meta := range d.availableActions {
		am := map[string]any{}
		if meta.Title != "" {
			am["title"] = meta.Title
		}
		if meta.Description != "" {
			am["description"] = meta.Description
		}
		if meta.Input != nil {
			am["input"] = meta.Input
		}
		actions[name] = am
	}

	events := make(map[string]any)
	for name, meta := range d.availableEvents {
		em := map[string]any{}
		if meta.Description != "" {
			em["description"] = meta.Description
		}
		if meta.Type != "" {
			em["type"] = meta.Type
		}
		events[name] = em
	}

	desc := map[string]any{
		"id":         d.id,
		"title":      d.title,
		"properties": properties,
		"actions":    actions,
		"events":     events,
	}
	if len(d.atTypes) > 0 {
		desc["@type"] = d.atTypes
	}
	if d.description != "" {
		desc["description"] = d.description
	}
	return desc
}
