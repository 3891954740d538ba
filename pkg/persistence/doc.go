// Package persistence stores add-on data between runs.
//
// Two stores cover the two kinds of durable data an add-on has:
// AddonStateStore keeps runtime state (last known property values,
// unfinished actions) in a JSON file, and SettingsStore keeps add-on
// configuration in the gateway's settings database.
package persistence
