// Package commands implements the addon-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/tim-hellhake/gateway-addon-go/pkg/log"
)

// ParseDirectionFlag parses a -direction flag value.
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (want in or out)", s)
	}
}

// ParseCategoryFlag parses a -category flag value.
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "property":
		return log.CategoryProperty, nil
	case "action":
		return log.CategoryAction, nil
	case "event":
		return log.CategoryEvent, nil
	case "frame":
		return log.CategoryFrame, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

// RunView prints events from a log file in human-readable format.
func RunView(path string, filter *log.Filter, w io.Writer) error {
	reader, err := log.OpenFile(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	events, err := reader.ReadAll(filter)
	if err != nil {
		return err
	}

	for _, event := range events {
		formatEvent(w, event)
	}
	fmt.Fprintf(w, "\n%d events\n", len(events))
	return nil
}

// formatEvent writes a human-readable representation of the event.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	connID := shortenConnID(event.ConnectionID)

	fmt.Fprintf(w, "%s [conn:%s] %-3s %-8s", ts, connID,
		event.Direction.String(), event.Category.String())
	if event.DeviceID != "" {
		fmt.Fprintf(w, " device=%s", event.DeviceID)
	}
	fmt.Fprintln(w)

	switch {
	case event.Property != nil:
		fmt.Fprintf(w, "  %s = %v\n", event.Property.Name, event.Property.Value)
	case event.Action != nil:
		fmt.Fprintf(w, "  %s (%s) -> %s\n",
			event.Action.Name, event.Action.ID, event.Action.Status)
	case event.Emitted != nil:
		fmt.Fprintf(w, "  %s: %v\n", event.Emitted.Name, event.Emitted.Data)
	case event.Frame != nil:
		suffix := ""
		if event.Frame.Truncated {
			suffix = " (truncated)"
		}
		fmt.Fprintf(w, "  %d bytes%s\n", event.Frame.Size, suffix)
		if len(event.Frame.Data) > 0 {
			fmt.Fprintf(w, "  %s\n", hexPreview(event.Frame.Data))
		}
	case event.State != nil:
		fmt.Fprintf(w, "  %s -> %s\n", event.State.From, event.State.To)
	case event.Error != nil:
		if event.Error.Context != "" {
			fmt.Fprintf(w, "  %s: %s\n", event.Error.Context, event.Error.Message)
		} else {
			fmt.Fprintf(w, "  %s\n", event.Error.Message)
		}
	}
}

// shortenConnID returns the first 8 characters of a connection ID.
func shortenConnID(id string) string {
	if id == "" {
		return "--------"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// hexPreview renders up to 32 bytes as hex.
func hexPreview(data []byte) string {
	const max = 32
	if len(data) > max {
		return hex.EncodeToString(data[:max]) + "..."
	}
	return hex.EncodeToString(data)
}
