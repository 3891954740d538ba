package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/tim-hellhake/gateway-addon-go/pkg/log"
	"github.com/tim-hellhake/gateway-addon-go/pkg/things"
	"github.com/tim-hellhake/gateway-addon-go/pkg/version"
	"github.com/tim-hellhake/gateway-addon-go/pkg/wire"
)

// Manager errors.
var (
	ErrDuplicateDevice = errors.New("duplicate device id")
	ErrDeviceNotFound  = errors.New("device not found")
)

// ManagerConfig configures an add-on manager.
type ManagerConfig struct {
	// AddonID identifies the add-on to the gateway.
	AddonID string

	// Version is the add-on version string.
	Version string

	// Logger for add-on logging (optional).
	Logger log.Logger

	// OnConfig is called with the stored config blob when the gateway
	// acknowledges registration.
	OnConfig func(config json.RawMessage)

	// OnUnload is called when the gateway asks the add-on to stop.
	OnUnload func()

	// OnAction is called with each action the gateway requests, after
	// the model has created it. The add-on drives Start and Finish.
	// When nil, actions stay in their created state.
	OnAction func(d *things.Device, a *things.Action)
}

// Manager binds a set of devices to the gateway link. It implements
// things.Hub: devices attached to it forward their property, action,
// and event notifications outward through the link.
type Manager struct {
	config ManagerConfig
	client *Client
	logger log.Logger

	mu      sync.RWMutex
	devices map[string]*things.Device
}

// NewManager creates a manager on top of an existing client.
// The client's OnMessage must be wired to the manager's HandleMessage
// by the caller (done automatically by Run).
func NewManager(config ManagerConfig, client *Client) *Manager {
	logger := config.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Manager{
		config:  config,
		client:  client,
		logger:  logger,
		devices: make(map[string]*things.Device),
	}
}

// Run connects the client, wires inbound dispatch, and registers the
// add-on with the gateway.
func (m *Manager) Run() error {
	m.client.config.OnMessage = m.HandleMessage
	if err := m.client.Connect(); err != nil {
		return err
	}
	return m.register()
}

func (m *Manager) register() error {
	v := m.config.Version
	if v == "" {
		v = version.Current
	}
	msg, err := wire.NewMessage(wire.MessageAddonRegister, wire.AddonRegisterData{
		AddonID: m.config.AddonID,
		Version: v,
	})
	if err != nil {
		return err
	}
	return m.client.Send(msg)
}

// AddDevice attaches a device to the manager and publishes its
// description to the gateway.
func (m *Manager) AddDevice(d *things.Device) error {
	m.mu.Lock()
	if _, exists := m.devices[d.ID()]; exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateDevice, d.ID())
	}
	m.devices[d.ID()] = d
	m.mu.Unlock()

	d.SetHub(m)

	msg, err := wire.NewMessage(wire.MessageDeviceAdded, wire.DeviceAddedData{
		AddonID: m.config.AddonID,
		Device:  d.Describe(),
	})
	if err != nil {
		return err
	}
	return m.send(msg, "device added")
}

// Device returns an attached device by id.
func (m *Manager) Device(id string) (*things.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, exists := m.devices[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return d, nil
}

// Devices returns all attached devices.
func (m *Manager) Devices() []*things.Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*things.Device, 0, len(m.devices))
	for _, d := range m.devices {
		result = append(result, d)
	}
	return result
}

// SendPropertyChanged forwards a confirmed property change.
// Implements things.Hub.
func (m *Manager) SendPropertyChanged(d *things.Device, p *things.Property) {
	m.logger.Log(log.NewPropertyEvent(d.ID(), p.Name(), p.Value()))

	property := p.Describe()
	property["name"] = p.Name()

	msg, err := wire.NewMessage(wire.MessagePropertyChanged, wire.PropertyChangedData{
		AddonID:  m.config.AddonID,
		DeviceID: d.ID(),
		Name:     p.Name(),
		Value:    p.Value(),
		Property: property,
	})
	if err != nil {
		m.logger.Log(log.NewErrorEvent("property changed", err))
		return
	}
	_ = m.send(msg, "property changed")
}

// SendActionStatus forwards an action status transition.
// Implements things.Hub.
func (m *Manager) SendActionStatus(d *things.Device, a *things.Action) {
	m.logger.Log(log.NewActionEvent(d.ID(), a.ID(), a.Name(), a.Status()))

	msg, err := wire.NewMessage(wire.MessageActionStatus, wire.ActionStatusData{
		AddonID:  m.config.AddonID,
		DeviceID: d.ID(),
		ID:       a.ID(),
		Action:   a.Describe(),
	})
	if err != nil {
		m.logger.Log(log.NewErrorEvent("action status", err))
		return
	}
	_ = m.send(msg, "action status")
}

// SendEvent forwards a device-emitted event. Implements things.Hub.
func (m *Manager) SendEvent(d *things.Device, e *things.Event) {
	m.logger.Log(log.NewEmittedEvent(d.ID(), e.Name(), e.Data()))

	msg, err := wire.NewMessage(wire.MessageEventRaised, wire.EventRaisedData{
		AddonID:  m.config.AddonID,
		DeviceID: d.ID(),
		Event:    e.Describe(),
	})
	if err != nil {
		m.logger.Log(log.NewErrorEvent("event raised", err))
		return
	}
	_ = m.send(msg, "event raised")
}

// send pushes an envelope onto the link. Upcalls from the model are
// fire-and-forget: failures are logged, never propagated back into
// property or action state.
func (m *Manager) send(msg wire.Message, context string) error {
	if err := m.client.Send(msg); err != nil {
		m.logger.Log(log.NewErrorEvent(context, err))
		return err
	}
	return nil
}

// HandleMessage dispatches an inbound gateway envelope.
func (m *Manager) HandleMessage(msg wire.Message) {
	switch msg.MessageType {
	case wire.MessageAddonRegistered:
		var data wire.AddonRegisteredData
		if err := msg.DecodeData(&data); err != nil {
			m.logger.Log(log.NewErrorEvent("registered", err))
			return
		}
		if m.config.OnConfig != nil {
			m.config.OnConfig(data.Config)
		}

	case wire.MessageSetProperty:
		var data wire.SetPropertyData
		if err := msg.DecodeData(&data); err != nil {
			m.logger.Log(log.NewErrorEvent("set property", err))
			return
		}
		m.handleSetProperty(data)

	case wire.MessageRequestAction:
		var data wire.RequestActionData
		if err := msg.DecodeData(&data); err != nil {
			m.logger.Log(log.NewErrorEvent("request action", err))
			return
		}
		m.handleRequestAction(data)

	case wire.MessageUnload:
		if m.config.OnUnload != nil {
			m.config.OnUnload()
		}

	default:
		m.logger.Log(log.NewErrorEvent("dispatch",
			fmt.Errorf("%w: %d", wire.ErrUnknownMessageType, msg.MessageType)))
	}
}

func (m *Manager) handleSetProperty(data wire.SetPropertyData) {
	d, err := m.Device(data.DeviceID)
	if err != nil {
		m.logger.Log(log.NewErrorEvent("set property", err))
		return
	}
	// A confirmed change notifies back through SendPropertyChanged;
	// a rejection leaves the cache untouched and is only logged.
	if _, err := d.SetProperty(data.Name, data.Value); err != nil {
		m.logger.Log(log.NewErrorEvent("set property", err))
	}
}

func (m *Manager) handleRequestAction(data wire.RequestActionData) {
	d, err := m.Device(data.DeviceID)
	if err != nil {
		m.logger.Log(log.NewErrorEvent("request action", err))
		return
	}
	a, err := d.RequestAction(data.Name, data.Input)
	if err != nil {
		m.logger.Log(log.NewErrorEvent("request action", err))
		return
	}
	// Creation itself does not flow through the hub, so the created
	// status is published here before the add-on takes over.
	m.SendActionStatus(d, a)
	if m.config.OnAction != nil {
		m.config.OnAction(d, a)
	}
}

// Unload closes the link.
func (m *Manager) Unload() error {
	return m.client.Close()
}

var _ things.Hub = (*Manager)(nil)
