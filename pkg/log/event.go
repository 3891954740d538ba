package log

import "time"

// Event is a structured add-on log event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the IPC connection (UUID), if any.
	ConnectionID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates message flow for IPC events.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// DeviceID is the device the event concerns, if any.
	DeviceID string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (at most one of these is set).
	Property *PropertyEvent    `cbor:"6,keyasint,omitempty"`
	Action   *ActionEvent      `cbor:"7,keyasint,omitempty"`
	Emitted  *EmittedEvent     `cbor:"8,keyasint,omitempty"`
	Frame    *FrameEvent       `cbor:"9,keyasint,omitempty"`
	State    *StateChangeEvent `cbor:"10,keyasint,omitempty"`
	Error    *ErrorEventData   `cbor:"11,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryProperty indicates a confirmed property value change.
	CategoryProperty Category = 0
	// CategoryAction indicates an action status transition.
	CategoryAction Category = 1
	// CategoryEvent indicates a device-emitted event.
	CategoryEvent Category = 2
	// CategoryFrame indicates an IPC frame.
	CategoryFrame Category = 3
	// CategoryState indicates a link state change.
	CategoryState Category = 4
	// CategoryError indicates an error.
	CategoryError Category = 5
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryProperty:
		return "PROPERTY"
	case CategoryAction:
		return "ACTION"
	case CategoryEvent:
		return "EVENT"
	case CategoryFrame:
		return "FRAME"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// PropertyEvent records a confirmed property value change.
type PropertyEvent struct {
	// Name is the property name.
	Name string `cbor:"1,keyasint"`

	// Value is the cached value after the change.
	Value any `cbor:"2,keyasint,omitempty"`
}

// ActionEvent records an action status transition.
type ActionEvent struct {
	// ID is the action id.
	ID string `cbor:"1,keyasint"`

	// Name is the action name.
	Name string `cbor:"2,keyasint"`

	// Status is the status after the transition.
	Status string `cbor:"3,keyasint"`
}

// EmittedEvent records a device-emitted event.
type EmittedEvent struct {
	// Name is the event name.
	Name string `cbor:"1,keyasint"`

	// Data is the event payload.
	Data any `cbor:"2,keyasint,omitempty"`
}

// FrameEvent records an IPC frame.
type FrameEvent struct {
	// Size is the total frame size including the length prefix.
	Size int `cbor:"1,keyasint"`

	// Data is the frame payload, possibly truncated.
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates the payload was cut for logging.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent records an IPC link state change.
type StateChangeEvent struct {
	// From is the previous state name.
	From string `cbor:"1,keyasint"`

	// To is the new state name.
	To string `cbor:"2,keyasint"`
}

// ErrorEventData records an error.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Context names the operation that failed.
	Context string `cbor:"2,keyasint,omitempty"`
}

// NewPropertyEvent builds a property change event for a device.
func NewPropertyEvent(deviceID, name string, value any) Event {
	return Event{
		Timestamp: time.Now(),
		Category:  CategoryProperty,
		DeviceID:  deviceID,
		Property:  &PropertyEvent{Name: name, Value: value},
	}
}

// NewActionEvent builds an action transition event for a device.
func NewActionEvent(deviceID, id, name, status string) Event {
	return Event{
		Timestamp: time.Now(),
		Category:  CategoryAction,
		DeviceID:  deviceID,
		Action:    &ActionEvent{ID: id, Name: name, Status: status},
	}
}

// NewEmittedEvent builds a device event record.
func NewEmittedEvent(deviceID, name string, data any) Event {
	return Event{
		Timestamp: time.Now(),
		Category:  CategoryEvent,
		DeviceID:  deviceID,
		Emitted:   &EmittedEvent{Name: name, Data: data},
	}
}

// NewErrorEvent builds an error event.
func NewErrorEvent(context string, err error) Event {
	return Event{
		Timestamp: time.Now(),
		Category:  CategoryError,
		Error:     &ErrorEventData{Message: err.Error(), Context: context},
	}
}
