package model

// Severity ranks how serious a reconciliation discrepancy is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank orders severities with critical first. Unknown severities sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// DiscrepancyType categorizes what kind of inconsistency was found.
type DiscrepancyType string

const (
	DiscrepancyValueMismatch    DiscrepancyType = "value_mismatch"
	DiscrepancyLogicError       DiscrepancyType = "logic_error"
	DiscrepancyMissingData      DiscrepancyType = "missing_data"
	DiscrepancyFormatError      DiscrepancyType = "format_error"
	DiscrepancyCalculationError DiscrepancyType = "calculation_error"
)

// Discrepancy is one reconciliation finding. Discrepancies live only in
// reports; they are never persisted as fields.
type Discrepancy struct {
	ID             string          `json:"id" csv:"id"`
	FieldName      string          `json:"field_name" csv:"field_name"`
	Severity       Severity        `json:"severity" csv:"severity"`
	Type           DiscrepancyType `json:"type" csv:"type"`
	Description    string          `json:"description" csv:"description"`
	Expected       string          `json:"expected,omitempty" csv:"expected,omitempty"`
	Actual         string          `json:"actual,omitempty" csv:"actual,omitempty"`
	Recommendation string          `json:"recommendation,omitempty" csv:"recommendation,omitempty"`
}

// ReportStatus is the overall outcome of document reconciliation.
type ReportStatus string

const (
	ReportPass    ReportStatus = "pass"
	ReportWarning ReportStatus = "warning"
	ReportFail    ReportStatus = "fail"
)

// ValidationReport is the whole-document reconciliation result.
type ValidationReport struct {
	DocumentID    string        `json:"document_id"`
	OverallStatus ReportStatus  `json:"overall_status"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

// ComputeStatus derives the overall status from a discrepancy list: fail if
// any critical exists, warning if any high, else pass.
func ComputeStatus(discrepancies []Discrepancy) ReportStatus {
	status := ReportPass
	for _, d := range discrepancies {
		switch d.Severity {
		case SeverityCritical:
			return ReportFail
		case SeverityHigh:
			status = ReportWarning
		}
	}
	return status
}
