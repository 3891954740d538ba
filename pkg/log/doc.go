// Package log provides structured event logging for add-ons.
//
// Events capture what an add-on does at its observable seams: property
// changes, action status transitions, emitted device events, IPC frames,
// link state changes, and errors. Applications implement Logger (or use
// one of the provided implementations) and pass it to the components
// that accept one.
//
// Provided implementations:
//   - NoopLogger: discards everything
//   - SlogAdapter: forwards events to a log/slog logger
//   - FileLogger: appends CBOR-encoded events to a file
//   - MultiLogger: fans out to several loggers
//
// FileLogger output can be read back with Reader, optionally filtered.
package log
