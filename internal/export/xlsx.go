package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lease-cli/internal/model"
)

var rentRollHeader = []string{
	"Period Start", "Period End", "Month", "Base Rent",
	"Escalation", "Total Rent", "Cumulative", "Note",
}

var discrepancyHeader = []string{
	"Field", "Severity", "Type", "Description", "Expected", "Actual", "Recommendation",
}

// Workbook writes a two-sheet XLSX: the monthly rent roll and the
// reconciliation discrepancies.
func Workbook(w io.Writer, entries []model.RentRollEntry, report *model.ValidationReport) error {
	f := xlsx.NewFile()

	if err := addRentRollSheet(f, entries); err != nil {
		return err
	}
	if err := addDiscrepancySheet(f, report); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}

func addRentRollSheet(f *xlsx.File, entries []model.RentRollEntry) error {
	sheet, err := f.AddSheet("Rent Roll")
	if err != nil {
		return eris.Wrap(err, "export: add rent roll sheet")
	}

	header := sheet.AddRow()
	for _, h := range rentRollHeader {
		header.AddCell().SetString(h)
	}

	for _, e := range entries {
		row := sheet.AddRow()
		row.AddCell().SetString(e.PeriodStart.Format(dateLayout))
		row.AddCell().SetString(e.PeriodEnd.Format(dateLayout))
		row.AddCell().SetInt(e.MonthNumber)
		row.AddCell().SetFloatWithFormat(e.BaseRent, "0.00")
		row.AddCell().SetFloatWithFormat(e.EscalationAmount, "0.00")
		row.AddCell().SetFloatWithFormat(e.TotalRent, "0.00")
		row.AddCell().SetFloatWithFormat(e.CumulativeRent, "0.00")
		row.AddCell().SetString(e.EscalationNote)
	}
	return nil
}

func addDiscrepancySheet(f *xlsx.File, report *model.ValidationReport) error {
	sheet, err := f.AddSheet("Discrepancies")
	if err != nil {
		return eris.Wrap(err, "export: add discrepancy sheet")
	}

	header := sheet.AddRow()
	for _, h := range discrepancyHeader {
		header.AddCell().SetString(h)
	}

	if report == nil {
		return nil
	}
	for _, d := range report.Discrepancies {
		row := sheet.AddRow()
		row.AddCell().SetString(d.FieldName)
		row.AddCell().SetString(string(d.Severity))
		row.AddCell().SetString(string(d.Type))
		row.AddCell().SetString(d.Description)
		row.AddCell().SetString(d.Expected)
		row.AddCell().SetString(d.Actual)
		row.AddCell().SetString(d.Recommendation)
	}
	return nil
}
