package discovery

import (
	"errors"
	"time"
)

// Service constants.
const (
	// ServiceTypeGateway is the DNS-SD service type for gateway IPC
	// endpoints.
	ServiceTypeGateway = "_gateway-ipc._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// BrowseTimeout is the default timeout for browse operations.
	BrowseTimeout = 10 * time.Second

	// MaxInstanceNameLen is the DNS-SD instance name limit.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	// TXTKeyGatewayID identifies the gateway instance.
	TXTKeyGatewayID = "id"

	// TXTKeyVersion is the gateway's protocol version.
	TXTKeyVersion = "pv"

	// TXTKeyName is the gateway's human-readable name (optional).
	TXTKeyName = "name"
)

// Discovery errors.
var (
	// ErrMissingRequired indicates a required TXT field is absent.
	ErrMissingRequired = errors.New("missing required TXT field")

	// ErrInvalidTXTRecord indicates a malformed TXT record.
	ErrInvalidTXTRecord = errors.New("invalid TXT record")

	// ErrGatewayNotFound indicates no matching gateway was discovered
	// before the deadline.
	ErrGatewayNotFound = errors.New("gateway not found")
)

// GatewayInfo is the identity a gateway announces.
type GatewayInfo struct {
	// GatewayID uniquely identifies the gateway instance.
	GatewayID string

	// Version is the gateway's protocol version string.
	Version string

	// Name is a human-readable name (optional).
	Name string

	// Port is the IPC listener port.
	Port uint16
}

// GatewayService is a discovered gateway endpoint.
type GatewayService struct {
	// InstanceName is the DNS-SD instance name.
	InstanceName string

	// Host is the announced hostname.
	Host string

	// Port is the IPC listener port.
	Port uint16

	// Addresses are the resolved IP addresses, aggregated across
	// interfaces.
	Addresses []string

	// Info is the decoded identity from the TXT records.
	Info GatewayInfo
}
