package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tim-hellhake/gateway-addon-go/pkg/log"
)

// writeSampleLog creates a log file with a few events and returns its
// path.
func writeSampleLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.log")

	logger, err := log.NewFileLogger(path)
	require.NoError(t, err)

	logger.Log(log.NewPropertyEvent("lamp-1", "on", true))
	logger.Log(log.NewActionEvent("lamp-1", "a1", "fade", "pending"))
	logger.Log(log.NewEmittedEvent("lamp-1", "overheated", float64(104)))
	logger.Log(log.NewPropertyEvent("plug-2", "on", false))
	logger.Log(log.NewErrorEvent("ipc read", assert.AnError))

	require.NoError(t, logger.Close())
	return path
}

func TestRunView(t *testing.T) {
	path := writeSampleLog(t)

	var buf bytes.Buffer
	require.NoError(t, RunView(path, nil, &buf))

	out := buf.String()
	assert.Contains(t, out, "on = true")
	assert.Contains(t, out, "fade (a1) -> pending")
	assert.Contains(t, out, "overheated: 104")
	assert.Contains(t, out, "5 events")
}

func TestRunViewFiltered(t *testing.T) {
	path := writeSampleLog(t)

	category := log.CategoryProperty
	var buf bytes.Buffer
	require.NoError(t, RunView(path, &log.Filter{
		Category: &category,
		DeviceID: "plug-2",
	}, &buf))

	out := buf.String()
	assert.Contains(t, out, "plug-2")
	assert.NotContains(t, out, "lamp-1")
	assert.Contains(t, out, "1 events")
}

func TestRunExportJSONL(t *testing.T) {
	path := writeSampleLog(t)
	output := filepath.Join(t.TempDir(), "out.jsonl")

	require.NoError(t, RunExport(path, "jsonl", output))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[0], `"category":"PROPERTY"`)
	assert.Contains(t, lines[0], `"deviceId":"lamp-1"`)
}

func TestRunExportCSV(t *testing.T) {
	path := writeSampleLog(t)
	output := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, RunExport(path, "csv", output))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 6, "header plus five events")
	assert.Equal(t, "timestamp,connection_id,direction,category,device_id,detail", lines[0])
	assert.Contains(t, lines[1], "on=true")
}

func TestRunExportBadFormat(t *testing.T) {
	path := writeSampleLog(t)
	assert.Error(t, RunExport(path, "xml", ""))
}

func TestRunFilter(t *testing.T) {
	path := writeSampleLog(t)
	output := filepath.Join(t.TempDir(), "filtered.log")

	require.NoError(t, RunFilter(path, FilterOptions{
		Output:   output,
		DeviceID: "lamp-1",
	}))

	reader, err := log.OpenFile(output)
	require.NoError(t, err)
	defer reader.Close()

	events, err := reader.ReadAll(nil)
	require.NoError(t, err)
	assert.Len(t, events, 3)
	for _, event := range events {
		assert.Equal(t, "lamp-1", event.DeviceID)
	}
}

func TestRunStats(t *testing.T) {
	path := writeSampleLog(t)

	var buf bytes.Buffer
	require.NoError(t, RunStats(path, &buf))

	out := buf.String()
	assert.Contains(t, out, "Events:   5")
	assert.Contains(t, out, "PROPERTY")
	assert.Contains(t, out, "lamp-1")
	assert.Contains(t, out, "plug-2")
}

func TestParseFlags(t *testing.T) {
	d, err := ParseDirectionFlag("out")
	require.NoError(t, err)
	assert.Equal(t, log.DirectionOut, d)

	_, err = ParseDirectionFlag("sideways")
	assert.Error(t, err)

	c, err := ParseCategoryFlag("action")
	require.NoError(t, err)
	assert.Equal(t, log.CategoryAction, c)

	_, err = ParseCategoryFlag("nope")
	assert.Error(t, err)
}
