// Package things implements the add-on device data model.
//
// # Model Hierarchy
//
// An add-on hosts one or more Devices ("things"). Each device exposes:
//
//	Device (lamp-001)
//	├── Properties   typed, validated values (on, brightness, ...)
//	├── Actions      asynchronous operations with a status lifecycle
//	└── Events       timestamped occurrences the device reports
//
// # Properties
//
// A Property holds a cached value plus its description (type, unit,
// bounds, enum, read-only flag). Writes go through an ordered validation
// pipeline; only a write that changes the cached value after coercion
// notifies the owning device. Boolean-typed properties always cache a
// strict bool regardless of the input's representation.
//
// # Actions
//
// An Action is a request record moving through created -> pending ->
// completed. Transitions notify the owning device. There is no failure
// state at this layer; an owner represents failure by removing the
// action instead of finishing it.
//
// # Upward Notification
//
// Properties and actions never read device state. They call outward
// through the PropertyNotifier and ActionNotifier capabilities, which
// the base Device implements by forwarding to an optional Hub sink
// (the IPC layer, or a stub in tests).
//
// # Views
//
// Describe() methods produce sparse maps for schema publication: fields
// are present only when defined, never null placeholders. AsRecord()
// methods produce dense maps for debugging: every field is present
// regardless of definedness.
package things
