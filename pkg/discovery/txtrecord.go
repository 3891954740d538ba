package discovery

import (
	"fmt"
	"strings"

	"github.com/tim-hellhake/gateway-addon-go/pkg/version"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeGatewayTXT creates TXT records for gateway discovery.
func EncodeGatewayTXT(info *GatewayInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeyGatewayID] = info.GatewayID
	txt[TXTKeyVersion] = info.Version

	// Optional fields
	if info.Name != "" {
		txt[TXTKeyName] = info.Name
	}

	return txt
}

// DecodeGatewayTXT parses TXT records from gateway discovery.
// The port is carried by the SRV record, not the TXT records, so the
// decoded info has Port zero.
func DecodeGatewayTXT(txt TXTRecordMap) (*GatewayInfo, error) {
	info := &GatewayInfo{}

	var ok bool
	info.GatewayID, ok = txt[TXTKeyGatewayID]
	if !ok || info.GatewayID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyGatewayID)
	}

	info.Version, ok = txt[TXTKeyVersion]
	if !ok || info.Version == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}
	if _, err := version.Parse(info.Version); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTXTRecord, err)
	}

	info.Name = txt[TXTKeyName]

	return info, nil
}

// TXTRecordsToStrings converts a TXT record map to "key=value" strings
// for the mDNS layer.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXT record map.
// Entries without an equals sign are treated as boolean flags with an
// empty value.
func StringsToTXTRecords(records []string) TXTRecordMap {
	txt := make(TXTRecordMap, len(records))
	for _, record := range records {
		key, value, found := strings.Cut(record, "=")
		if !found {
			txt[record] = ""
			continue
		}
		txt[key] = value
	}
	return txt
}
