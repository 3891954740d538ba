package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/enbility/zeroconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseIP(s string) net.IP {
	ip := net.ParseIP(s)
	if ip == nil {
		panic("bad IP literal: " + s)
	}
	return ip
}

func gatewayEntry(instance, id string, port int, addrs []string) *zeroconf.ServiceEntry {
	entry := &zeroconf.ServiceEntry{
		Port: port,
		Text: TXTRecordsToStrings(TXTRecordMap{
			TXTKeyGatewayID: id,
			TXTKeyVersion:   "1.0",
		}),
	}
	entry.Instance = instance
	entry.HostName = instance + ".local."
	for _, addr := range addrs {
		entry.AddrIPv4 = append(entry.AddrIPv4, mustParseIP(addr))
	}
	return entry
}

func TestEntryToGateway(t *testing.T) {
	entry := gatewayEntry("gateway-gw-1", "gw-1", 9500, []string{"192.168.1.10"})

	svc := entryToGateway(entry)
	require.NotNil(t, svc)
	assert.Equal(t, "gateway-gw-1", svc.InstanceName)
	assert.Equal(t, uint16(9500), svc.Port)
	assert.Equal(t, uint16(9500), svc.Info.Port, "SRV port flows into the decoded info")
	assert.Equal(t, "gw-1", svc.Info.GatewayID)
	assert.Equal(t, []string{"192.168.1.10"}, svc.Addresses)
}

func TestEntryToGatewayMalformedTXT(t *testing.T) {
	entry := &zeroconf.ServiceEntry{Port: 9500, Text: []string{"garbage"}}
	entry.Instance = "gateway-x"

	assert.Nil(t, entryToGateway(entry), "malformed announcements are dropped")
}

func TestAggregateEntries(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	out := make(chan *GatewayService)

	go aggregateEntries(ctx, entries, removed, out)

	t.Run("SurvivesClosedRemovalStream", func(t *testing.T) {
		// The removal stream can close before the entry stream does;
		// entries arriving afterwards still flow through.
		close(removed)

		entries <- gatewayEntry("gateway-gw-1", "gw-1", 9500, []string{"192.168.1.10"})
		select {
		case svc := <-out:
			require.NotNil(t, svc)
			assert.Equal(t, "gw-1", svc.Info.GatewayID)
		case <-ctx.Done():
			t.Fatal("timed out waiting for aggregated service")
		}
	})

	t.Run("DuplicateInstanceMergesAddresses", func(t *testing.T) {
		entries <- gatewayEntry("gateway-gw-1", "gw-1", 9500, []string{"10.0.0.5"})

		// A second announcement for a known instance merges silently,
		// so a fresh instance right after proves nothing was re-emitted.
		entries <- gatewayEntry("gateway-gw-2", "gw-2", 9501, nil)
		select {
		case svc := <-out:
			require.NotNil(t, svc)
			assert.Equal(t, "gw-2", svc.Info.GatewayID)
		case <-ctx.Done():
			t.Fatal("timed out waiting for second service")
		}
	})

	t.Run("ClosedEntriesEndsStream", func(t *testing.T) {
		close(entries)
		select {
		case _, ok := <-out:
			assert.False(t, ok, "output closes when the entry stream ends")
		case <-ctx.Done():
			t.Fatal("timed out waiting for output close")
		}
	})
}

func TestMergeAddresses(t *testing.T) {
	merged := mergeAddresses(
		[]string{"192.168.1.10", "fe80::1"},
		[]string{"192.168.1.10", "10.0.0.5"},
	)
	assert.Equal(t, []string{"192.168.1.10", "fe80::1", "10.0.0.5"}, merged)
}
