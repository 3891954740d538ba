// Package ipc implements the add-on side of the gateway IPC link.
//
// The link is a local stream socket carrying length-prefixed JSON
// envelopes (see the wire package). Client owns the socket: it frames
// outgoing messages, runs a read loop for incoming ones, and reports
// frames and state changes to an optional log.Logger.
//
// Manager sits on top of a Client and binds a set of things.Device
// instances to the link: it implements things.Hub to forward property,
// action, and event notifications outward, and dispatches inbound
// set-property and request-action messages to the model.
package ipc
