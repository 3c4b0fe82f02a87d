// Package export renders rent rolls and reconciliation reports to CSV and
// XLSX for downstream accounting tools.
package export

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lease-cli/internal/model"
)

const dateLayout = "2006-01-02"

// newEncoder builds a csvutil encoder that renders dates without the time
// component.
func newEncoder(w *csv.Writer) *csvutil.Encoder {
	enc := csvutil.NewEncoder(w)
	enc.Register(func(t time.Time) ([]byte, error) {
		return []byte(t.Format(dateLayout)), nil
	})
	return enc
}

// RentRollCSV writes the monthly schedule as CSV, one row per month.
func RentRollCSV(w io.Writer, entries []model.RentRollEntry) error {
	cw := csv.NewWriter(w)
	enc := newEncoder(cw)

	if err := enc.EncodeHeader(model.RentRollEntry{}); err != nil {
		return eris.Wrap(err, "export: encode rent roll header")
	}
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return eris.Wrap(err, "export: encode rent roll row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush rent roll csv")
	}
	return nil
}

// DiscrepancyCSV writes reconciliation discrepancies as CSV.
func DiscrepancyCSV(w io.Writer, discrepancies []model.Discrepancy) error {
	cw := csv.NewWriter(w)
	enc := newEncoder(cw)

	if err := enc.EncodeHeader(model.Discrepancy{}); err != nil {
		return eris.Wrap(err, "export: encode discrepancy header")
	}
	for _, d := range discrepancies {
		if err := enc.Encode(d); err != nil {
			return eris.Wrap(err, "export: encode discrepancy row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush discrepancy csv")
	}
	return nil
}
