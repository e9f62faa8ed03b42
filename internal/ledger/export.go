package ledger

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes one section as CSV with a header row.
func (l *Ledger) WriteCSV(w io.Writer, sec Section) error {
	switch sec {
	case Garbage, Treasure:
		rows := l.Stacks(sec)
		if err := gocsv.Marshal(&rows, w); err != nil {
			return fmt.Errorf("writing %s csv: %w", sec, err)
		}
	case Basket, Library:
		rows := l.Fish(sec)
		if err := gocsv.Marshal(&rows, w); err != nil {
			return fmt.Errorf("writing %s csv: %w", sec, err)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownSection, int(sec))
	}
	return nil
}
