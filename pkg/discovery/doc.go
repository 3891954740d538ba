// Package discovery advertises and locates gateway IPC endpoints via
// mDNS (DNS-SD).
//
// A gateway host announces its IPC endpoint as a _gateway-ipc._tcp
// service with its identity in TXT records. Add-ons browse for that
// service to find a gateway without being configured with an address.
//
// The Advertiser and Browser interfaces front the zeroconf-backed
// implementations so callers can substitute fakes in tests.
package discovery
