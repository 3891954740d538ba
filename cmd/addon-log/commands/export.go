package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tim-hellhake/gateway-addon-go/pkg/log"
)

// RunExport writes events from a log file as JSONL or CSV.
// Empty output means stdout.
func RunExport(path, format, output string) error {
	reader, err := log.OpenFile(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	events, err := reader.ReadAll(nil)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(w, events)
	case "csv":
		return exportCSV(w, events)
	default:
		return fmt.Errorf("unknown format %q (want jsonl or csv)", format)
	}
}

// jsonEvent is the JSONL projection of a log event.
type jsonEvent struct {
	Timestamp    time.Time             `json:"timestamp"`
	ConnectionID string                `json:"connectionId,omitempty"`
	Direction    string                `json:"direction"`
	Category     string                `json:"category"`
	DeviceID     string                `json:"deviceId,omitempty"`
	Property     *log.PropertyEvent    `json:"property,omitempty"`
	Action       *log.ActionEvent      `json:"action,omitempty"`
	Emitted      *log.EmittedEvent     `json:"event,omitempty"`
	Frame        *log.FrameEvent       `json:"frame,omitempty"`
	State        *log.StateChangeEvent `json:"state,omitempty"`
	Error        *log.ErrorEventData   `json:"error,omitempty"`
}

func exportJSONL(w io.Writer, events []log.Event) error {
	encoder := json.NewEncoder(w)
	for _, event := range events {
		je := jsonEvent{
			Timestamp:    event.Timestamp,
			ConnectionID: event.ConnectionID,
			Direction:    event.Direction.String(),
			Category:     event.Category.String(),
			DeviceID:     event.DeviceID,
			Property:     event.Property,
			Action:       event.Action,
			Emitted:      event.Emitted,
			Frame:        event.Frame,
			State:        event.State,
			Error:        event.Error,
		}
		if err := encoder.Encode(je); err != nil {
			return err
		}
	}
	return nil
}

func exportCSV(w io.Writer, events []log.Event) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "connection_id", "direction", "category", "device_id", "detail"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, event := range events {
		record := []string{
			event.Timestamp.UTC().Format(time.RFC3339Nano),
			event.ConnectionID,
			event.Direction.String(),
			event.Category.String(),
			event.DeviceID,
			eventDetail(event),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// eventDetail renders the payload as a short string for CSV.
func eventDetail(event log.Event) string {
	switch {
	case event.Property != nil:
		return fmt.Sprintf("%s=%v", event.Property.Name, event.Property.Value)
	case event.Action != nil:
		return fmt.Sprintf("%s(%s)->%s", event.Action.Name, event.Action.ID, event.Action.Status)
	case event.Emitted != nil:
		return fmt.Sprintf("%s:%v", event.Emitted.Name, event.Emitted.Data)
	case event.Frame != nil:
		return fmt.Sprintf("%d bytes", event.Frame.Size)
	case event.State != nil:
		return fmt.Sprintf("%s->%s", event.State.From, event.State.To)
	case event.Error != nil:
		return event.Error.Message
	default:
		return ""
	}
}
