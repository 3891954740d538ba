package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayTXTRoundTrip(t *testing.T) {
	info := &GatewayInfo{
		GatewayID: "gw-1234",
		Version:   "1.1",
		Name:      "Living Room Hub",
	}

	txt := EncodeGatewayTXT(info)
	assert.Equal(t, "gw-1234", txt[TXTKeyGatewayID])
	assert.Equal(t, "1.1", txt[TXTKeyVersion])
	assert.Equal(t, "Living Room Hub", txt[TXTKeyName])

	decoded, err := DecodeGatewayTXT(txt)
	require.NoError(t, err)
	assert.Equal(t, info.GatewayID, decoded.GatewayID)
	assert.Equal(t, info.Version, decoded.Version)
	assert.Equal(t, info.Name, decoded.Name)
}

func TestGatewayTXTOptionalName(t *testing.T) {
	txt := EncodeGatewayTXT(&GatewayInfo{GatewayID: "gw-1", Version: "1.0"})
	_, present := txt[TXTKeyName]
	assert.False(t, present, "empty name must not be encoded")

	decoded, err := DecodeGatewayTXT(txt)
	require.NoError(t, err)
	assert.Empty(t, decoded.Name)
}

func TestDecodeGatewayTXTMissingFields(t *testing.T) {
	tests := []struct {
		name string
		txt  TXTRecordMap
	}{
		{"empty", TXTRecordMap{}},
		{"missing id", TXTRecordMap{TXTKeyVersion: "1.0"}},
		{"empty id", TXTRecordMap{TXTKeyGatewayID: "", TXTKeyVersion: "1.0"}},
		{"missing version", TXTRecordMap{TXTKeyGatewayID: "gw-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeGatewayTXT(tt.txt)
			assert.ErrorIs(t, err, ErrMissingRequired)
		})
	}
}

func TestDecodeGatewayTXTBadVersion(t *testing.T) {
	_, err := DecodeGatewayTXT(TXTRecordMap{
		TXTKeyGatewayID: "gw-1",
		TXTKeyVersion:   "banana",
	})
	assert.ErrorIs(t, err, ErrInvalidTXTRecord)
}

func TestTXTRecordStringConversion(t *testing.T) {
	txt := TXTRecordMap{"id": "gw-1", "pv": "1.0", "name": "Hub = One"}

	strings := TXTRecordsToStrings(txt)
	assert.Len(t, strings, 3)

	back := StringsToTXTRecords(strings)
	assert.Equal(t, txt, back)
}

func TestStringsToTXTRecordsFlag(t *testing.T) {
	txt := StringsToTXTRecords([]string{"flag", "k=v"})
	assert.Equal(t, "", txt["flag"])
	assert.Equal(t, "v", txt["k"])
}
