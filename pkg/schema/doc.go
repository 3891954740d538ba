// Package schema loads thing definitions from YAML files.
//
// A definition file describes one device: its identity, properties,
// declared actions, and declared events. Build turns a parsed
// definition into a live things.Device, running every property
// description through the same validation and legacy adaptation the
// runtime applies.
package schema
