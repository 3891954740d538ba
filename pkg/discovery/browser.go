package discovery

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// Browser locates gateway IPC endpoints over mDNS.
type Browser interface {
	// Browse searches for gateways. The channel is closed when the
	// context is cancelled.
	Browse(ctx context.Context) (<-chan *GatewayService, error)

	// Find searches for a specific gateway by ID. Returns when found
	// or when the context ends.
	Find(ctx context.Context, gatewayID string) (*GatewayService, error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout is the default timeout for Find.
	// Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
	}
}

// MDNSBrowser implements the Browser interface using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) *MDNSBrowser {
	if config.BrowseTimeout == 0 {
		config.BrowseTimeout = BrowseTimeout
	}
	return &MDNSBrowser{config: config}
}

// Browse searches for gateways. Results are aggregated by instance
// name: addresses from multiple interfaces are merged into a single
// entry, and an entry is only emitted once.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan *GatewayService, error) {
	b.mu.Lock()
	ctx, b.cancel = context.WithCancel(ctx)
	b.stopped = false
	b.mu.Unlock()

	out := make(chan *GatewayService)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go aggregateEntries(ctx, entries, removed, out)

	go func() {
		_ = zeroconf.Browse(ctx, ServiceTypeGateway, Domain, entries, removed, b.browserOptions()...)
	}()

	return out, nil
}

// aggregateEntries merges per-interface discovery events into unique
// GatewayService emissions until entries closes or ctx ends.
func aggregateEntries(ctx context.Context, entries, removed <-chan *zeroconf.ServiceEntry, out chan<- *GatewayService) {
	defer close(out)

	services := make(map[string]*GatewayService)

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return
			}
			svc := entryToGateway(entry)
			if svc == nil {
				continue
			}

			existing, found := services[svc.InstanceName]
			if found {
				existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
				continue
			}

			services[svc.InstanceName] = svc
			select {
			case out <- svc:
			case <-ctx.Done():
				return
			}

		case entry, ok := <-removed:
			if !ok {
				// A nil channel blocks forever, so a closed
				// removal stream cannot spin the loop.
				removed = nil
				continue
			}
			delete(services, entry.Instance)

		case <-ctx.Done():
			return
		}
	}
}

// Find searches for a specific gateway by ID.
func (b *MDNSBrowser) Find(ctx context.Context, gatewayID string) (*GatewayService, error) {
	ctx, cancel := context.WithTimeout(ctx, b.config.BrowseTimeout)
	defer cancel()

	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case svc, ok := <-results:
			if !ok {
				return nil, ErrGatewayNotFound
			}
			if svc.Info.GatewayID == gatewayID {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, ErrGatewayNotFound
		}
	}
}

// Stop stops all active browsing operations.
func (b *MDNSBrowser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopped = true
	if b.cancel != nil {
		b.cancel()
	}
}

func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}
	return opts
}

// entryToGateway converts a zeroconf entry to a GatewayService.
// Entries with malformed TXT records are dropped.
func entryToGateway(entry *zeroconf.ServiceEntry) *GatewayService {
	info, err := DecodeGatewayTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}
	info.Port = uint16(entry.Port)

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &GatewayService{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    addrs,
		Info:         *info,
	}
}

// mergeAddresses combines two address lists, dropping duplicates and
// preserving first-seen order.
func mergeAddresses(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range incoming {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}
