package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/tim-hellhake/gateway-addon-go/pkg/log"
)

// RunStats prints summary statistics for a log file.
func RunStats(path string, w io.Writer) error {
	reader, err := log.OpenFile(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	events, err := reader.ReadAll(nil)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		fmt.Fprintln(w, "No events")
		return nil
	}

	categories := make(map[string]int)
	devices := make(map[string]int)
	frameBytes := 0
	for _, event := range events {
		categories[event.Category.String()]++
		if event.DeviceID != "" {
			devices[event.DeviceID]++
		}
		if event.Frame != nil {
			frameBytes += event.Frame.Size
		}
	}

	first := events[0].Timestamp
	last := events[len(events)-1].Timestamp

	fmt.Fprintf(w, "Events:   %d\n", len(events))
	fmt.Fprintf(w, "Span:     %s .. %s (%s)\n",
		first.UTC().Format("2006-01-02T15:04:05Z"),
		last.UTC().Format("2006-01-02T15:04:05Z"),
		last.Sub(first).Round(time.Millisecond))

	fmt.Fprintln(w, "\nBy category:")
	for _, name := range sortedKeys(categories) {
		fmt.Fprintf(w, "  %-10s %d\n", name, categories[name])
	}

	if len(devices) > 0 {
		fmt.Fprintln(w, "\nBy device:")
		for _, name := range sortedKeys(devices) {
			fmt.Fprintf(w, "  %-20s %d\n", name, devices[name])
		}
	}

	if frameBytes > 0 {
		fmt.Fprintf(w, "\nFrame bytes: %d\n", frameBytes)
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
