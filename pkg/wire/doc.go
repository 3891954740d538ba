// Package wire defines the message envelope for add-on <-> gateway
// traffic.
//
// Messages are JSON because the field names of the device, property,
// and action descriptions are part of the interop surface the gateway
// exposes upward; the envelope keeps the same shape:
//
//	{ "messageType": <int>, "data": { ... } }
//
// Frames on the IPC link are length-prefixed (4-byte big-endian
// length, then the JSON payload); see the ipc package for the framed
// connection.
//
// # Sparse vs dense payloads
//
// Description payloads are sparse: optional fields are present only
// when defined, never null placeholders. The things package builds
// them that way; this package does not re-filter.
package wire
