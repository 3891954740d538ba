package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies the payload carried by an envelope.
type MessageType int

// Add-on to gateway message types.
const (
	// MessageAddonRegister announces the add-on to the gateway.
	MessageAddonRegister MessageType = 1

	// MessageDeviceAdded publishes a new device description.
	MessageDeviceAdded MessageType = 2

	// MessagePropertyChanged reports a confirmed property value change.
	MessagePropertyChanged MessageType = 3

	// MessageActionStatus reports an action status transition.
	MessageActionStatus MessageType = 4

	// MessageEventRaised reports a device-emitted event.
	MessageEventRaised MessageType = 5
)

// Gateway to add-on message types.
const (
	// MessageAddonRegistered acknowledges registration.
	MessageAddonRegistered MessageType = 100

	// MessageSetProperty requests a property value change.
	MessageSetProperty MessageType = 101

	// MessageRequestAction requests a new action on a device.
	MessageRequestAction MessageType = 102

	// MessageUnload asks the add-on to shut down.
	MessageUnload MessageType = 103
)

// String returns the message type name.
func (t MessageType) String() string {
	switch t {
	case MessageAddonRegister:
		return "ADDON_REGISTER"
	case MessageDeviceAdded:
		return "DEVICE_ADDED"
	case MessagePropertyChanged:
		return "PROPERTY_CHANGED"
	case MessageActionStatus:
		return "ACTION_STATUS"
	case MessageEventRaised:
		return "EVENT_RAISED"
	case MessageAddonRegistered:
		return "ADDON_REGISTERED"
	case MessageSetProperty:
		return "SET_PROPERTY"
	case MessageRequestAction:
		return "REQUEST_ACTION"
	case MessageUnload:
		return "UNLOAD"
	default:
		return "UNKNOWN"
	}
}

// Message is the envelope for all IPC traffic.
type Message struct {
	MessageType MessageType     `json:"messageType"`
	Data        json.RawMessage `json:"data"`
}

// Envelope errors.
var (
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrEmptyPayload       = errors.New("empty message payload")
)

// AddonRegisterData announces the add-on.
type AddonRegisterData struct {
	AddonID string `json:"addonId"`
	Version string `json:"version"`
}

// AddonRegisteredData acknowledges registration and carries the
// add-on's stored configuration blob.
type AddonRegisteredData struct {
	AddonID string          `json:"addonId"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// DeviceAddedData publishes a device description.
type DeviceAddedData struct {
	AddonID string         `json:"addonId"`
	Device  map[string]any `json:"device"`
}

// PropertyChangedData reports a confirmed property change.
// Property is the sparse description plus name and value, matching
// what the gateway republishes.
type PropertyChangedData struct {
	AddonID  string         `json:"addonId"`
	DeviceID string         `json:"deviceId"`
	Name     string         `json:"name"`
	Value    any            `json:"value"`
	Property map[string]any `json:"property,omitempty"`
}

// ActionStatusData reports an action status transition. Action is the
// sparse action description.
type ActionStatusData struct {
	AddonID  string         `json:"addonId"`
	DeviceID string         `json:"deviceId"`
	ID       string         `json:"id"`
	Action   map[string]any `json:"action"`
}

// EventRaisedData reports a device-emitted event.
type EventRaisedData struct {
	AddonID  string         `json:"addonId"`
	DeviceID string         `json:"deviceId"`
	Event    map[string]any `json:"event"`
}

// SetPropertyData requests a property write on a device.
type SetPropertyData struct {
	DeviceID string `json:"deviceId"`
	Name     string `json:"name"`
	Value    any    `json:"value"`
}

// RequestActionData requests a new action on a device.
type RequestActionData struct {
	DeviceID string `json:"deviceId"`
	Name     string `json:"name"`
	Input    any    `json:"input,omitempty"`
}

// NewMessage builds an envelope around a payload.
func NewMessage(t MessageType, data any) (Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode %s payload: %w", t, err)
	}
	return Message{MessageType: t, Data: raw}, nil
}

// Marshal encodes an envelope to bytes.
func Marshal(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal decodes an envelope from bytes.
func Unmarshal(data []byte) (Message, error) {
	if len(data) == 0 {
		return Message{}, ErrEmptyPayload
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("malformed envelope: %w", err)
	}
	return msg, nil
}

// DecodeData decodes the envelope payload into out.
func (m Message) DecodeData(out any) error {
	if len(m.Data) == 0 {
		return ErrEmptyPayload
	}
	if err := json.Unmarshal(m.Data, out); err != nil {
		return fmt.Errorf("malformed %s payload: %w", m.MessageType, err)
	}
	return nil
}
