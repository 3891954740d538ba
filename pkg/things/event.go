package things

// Event is a timestamped occurrence reported by a device.
type Event struct {
	name      string
	data      any
	timestamp string
}

// NewEvent creates an event stamped from clock. A nil clock selects
// DefaultClock.
func NewEvent(name string, data any, clock Clock) *Event {
	if clock == nil {
		clock = DefaultClock
	}
	return &Event{
		name:      name,
		data:      data,
		timestamp: clock(),
	}
}

// Describe returns the sparse outward view: data appears only when
// defined.
func (e *Event) Describe() map[string]any {
	d := map[string]any{
		"name":      e.name,
		"timestamp": e.timestamp,
	}
	if e.data != nil {
		d["data"] = e.data
	}
	return d
}

// AsRecord returns the dense view with every field present.
func (e *Event) AsRecord() map[string]any {
	return map[string]any{
		"name":      e.name,
		"data":      e.data,
		"timestamp": e.timestamp,
	}
}

func (e *Event) Name() string      { return e.name }
func (e *Event) Data() any         { return e.data }
func (e *Event) Timestamp() string { return e.timestamp }
