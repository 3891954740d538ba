package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/tim-hellhake/gateway-addon-go/pkg/log"
)

// FilterOptions configures the filter command.
type FilterOptions struct {
	// Output is the destination log file (required).
	Output string

	// ConnID filters by connection ID.
	ConnID string

	// DeviceID filters by device ID.
	DeviceID string

	// TimeStart filters events at or after this time (RFC3339).
	TimeStart string

	// TimeEnd filters events before this time (RFC3339).
	TimeEnd string

	// Direction filters by direction (in, out).
	Direction string

	// Category filters by category name.
	Category string
}

// buildFilter converts the options into a log.Filter.
func (opts FilterOptions) buildFilter() (*log.Filter, error) {
	filter := &log.Filter{
		ConnectionID: opts.ConnID,
		DeviceID:     opts.DeviceID,
	}

	if opts.Direction != "" {
		d, err := ParseDirectionFlag(opts.Direction)
		if err != nil {
			return nil, err
		}
		filter.Direction = &d
	}
	if opts.Category != "" {
		c, err := ParseCategoryFlag(opts.Category)
		if err != nil {
			return nil, err
		}
		filter.Category = &c
	}
	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return nil, fmt.Errorf("bad -time-start: %w", err)
		}
		filter.TimeStart = &t
	}
	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return nil, fmt.Errorf("bad -time-end: %w", err)
		}
		filter.TimeEnd = &t
	}

	return filter, nil
}

// RunFilter reads a log file and writes the matching events to a new
// log file.
func RunFilter(path string, opts FilterOptions) error {
	filter, err := opts.buildFilter()
	if err != nil {
		return err
	}

	reader, err := log.OpenFile(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	events, err := reader.ReadAll(filter)
	if err != nil {
		return err
	}

	out, err := os.Create(opts.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	writer := log.NewWriter(out)
	for _, event := range events {
		if err := writer.Write(event); err != nil {
			return err
		}
	}

	fmt.Printf("Wrote %d events to %s\n", len(events), opts.Output)
	return nil
}
