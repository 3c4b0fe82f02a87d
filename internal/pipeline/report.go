package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/lease-cli/internal/model"
)

// FormatReport generates a human-readable processing report.
func FormatReport(doc model.Document, result *Result) string {
	var b strings.Builder

	name := doc.Name
	if name == "" {
		name = doc.ID
	}
	fmt.Fprintf(&b, "# Lease Abstraction Report: %s\n", name)
	fmt.Fprintf(&b, "Document ID: %s\n\n", doc.ID)

	// Summary.
	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Fields extracted: %d\n", len(result.Fields))
	fmt.Fprintf(&b, "- Fields needing review: %d\n", result.ReviewCount)
	fmt.Fprintf(&b, "- Reconciliation: %s (%d discrepancies)\n",
		result.Report.OverallStatus, len(result.Report.Discrepancies))
	fmt.Fprintf(&b, "- Rent schedule: %d months\n\n", len(result.Schedule))

	// Phase results.
	b.WriteString("## Phases\n")
	for _, p := range result.Phases {
		fmt.Fprintf(&b, "- %s: %s (%dms)\n", p.Name, p.Status, p.Duration)
		if p.Error != "" {
			fmt.Fprintf(&b, "  Error: %s\n", p.Error)
		}
	}
	b.WriteString("\n")

	// Extracted fields.
	b.WriteString("## Extracted Fields\n")
	if len(result.Fields) == 0 {
		b.WriteString("No fields extracted.\n\n")
	} else {
		fields := make([]model.LeaseField, len(result.Fields))
		copy(fields, result.Fields)
		sort.Slice(fields, func(i, j int) bool { return fields[i].FieldName < fields[j].FieldName })

		for _, f := range fields {
			fmt.Fprintf(&b, "- **%s**: %s [%s, %.0f%%]\n",
				f.FieldName, f.ValueText, f.ValidationState, f.Confidence)
			if f.ValidationNotes != "" {
				fmt.Fprintf(&b, "  Notes: %s\n", f.ValidationNotes)
			}
		}
		b.WriteString("\n")
	}

	// Discrepancies.
	b.WriteString("## Discrepancies\n")
	if len(result.Report.Discrepancies) == 0 {
		b.WriteString("None found.\n")
	} else {
		for _, d := range result.Report.Discrepancies {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", d.Severity, d.FieldName, d.Description)
			if d.Expected != "" || d.Actual != "" {
				fmt.Fprintf(&b, "  Expected: %s, Actual: %s\n", d.Expected, d.Actual)
			}
		}
	}

	// Projection.
	if result.Projection != nil {
		b.WriteString("\n## Rent Projection\n")
		for _, y := range result.Projection.Years {
			fmt.Fprintf(&b, "- Year %d: $%.2f/mo, $%.2f/yr (cumulative $%.2f)\n",
				y.Year, y.MonthlyRent, y.AnnualRent, y.Cumulative)
		}
		fmt.Fprintf(&b, "- Effective annual escalation: %.2f%%\n", result.Projection.EffectiveRate*100)
	}

	return b.String()
}
