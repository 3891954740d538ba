package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger.
// Useful in development to watch add-on activity on the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to the given
// slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Errors log at Error level,
// everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("category", event.Category.String()),
	}

	if event.ConnectionID != "" {
		attrs = append(attrs, slog.String("conn_id", event.ConnectionID))
	}
	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}

	level := slog.LevelDebug
	msg := "addon event"

	switch {
	case event.Property != nil:
		msg = "property changed"
		attrs = append(attrs,
			slog.String("property", event.Property.Name),
			slog.Any("value", event.Property.Value),
		)
	case event.Action != nil:
		msg = "action status"
		attrs = append(attrs,
			slog.String("action_id", event.Action.ID),
			slog.String("action", event.Action.Name),
			slog.String("status", event.Action.Status),
		)
	case event.Emitted != nil:
		msg = "device event"
		attrs = append(attrs,
			slog.String("event", event.Emitted.Name),
			slog.Any("data", event.Emitted.Data),
		)
	case event.Frame != nil:
		msg = "ipc frame"
		attrs = append(attrs,
			slog.String("direction", event.Direction.String()),
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.State != nil:
		msg = "link state"
		attrs = append(attrs,
			slog.String("from", event.State.From),
			slog.String("to", event.State.To),
		)
	case event.Error != nil:
		msg = "error"
		level = slog.LevelError
		attrs = append(attrs, slog.String("error", event.Error.Message))
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
