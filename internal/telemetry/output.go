package telemetry

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes events with a header row.
func WriteCSV(w io.Writer, events []Event) error {
	if err := gocsv.Marshal(&events, w); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}
	return nil
}
