package normalize

import (
	"strconv"
	"strings"

	"github.com/sells-group/lease-cli/internal/model"
)

// dateFields are normalized as calendar dates.
var dateFields = map[string]bool{
	model.FieldLeaseStart:       true,
	model.FieldLeaseEnd:         true,
	model.FieldRentCommencement: true,
}

// moneyFields are normalized as non-negative dollar amounts.
var moneyFields = map[string]bool{
	model.FieldBaseRent:        true,
	model.FieldAnnualRent:      true,
	model.FieldSecurityDeposit: true,
	model.FieldCAM:             true,
	model.FieldTaxes:           true,
	model.FieldInsurance:       true,
	model.FieldLateFee:         true,
}

// integerFields are normalized as plain integers.
var integerFields = map[string]bool{
	model.FieldLeaseTermMonths: true,
	model.FieldPaymentDueDay:   true,
	model.FieldSquareFootage:   true,
}

// Field fills in the candidate's normalized value from its raw text based on
// the field's value class. Unparseable input leaves Normalized nil; the field
// is then stored by raw text only. Re-normalizing an already-canonical value
// yields the same result.
func Field(f model.ExtractedField) model.ExtractedField {
	text := strings.TrimSpace(f.ValueText)
	if text == "" {
		return f
	}

	switch {
	case dateFields[f.FieldName]:
		if t, ok := Date(text); ok {
			f.Normalized = &model.NormalizedValue{Date: &t}
			f.ValueText = t.Format(ISODate)
		}

	case moneyFields[f.FieldName]:
		if v, ok := Money(text); ok {
			f.Normalized = &model.NormalizedValue{Numeric: &v}
		}

	case integerFields[f.FieldName]:
		cleaned := strings.ReplaceAll(text, ",", "")
		cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "square feet"))
		if v, err := strconv.ParseFloat(cleaned, 64); err == nil && v >= 0 {
			f.Normalized = &model.NormalizedValue{Numeric: &v}
		}

	case f.FieldName == model.FieldEscalation:
		if clause, ok := Escalation(text); ok && clause.Rate != nil {
			f.Normalized = &model.NormalizedValue{Numeric: clause.Rate}
		}
	}

	return f
}

// Fields normalizes a slice of candidates in place-order.
func Fields(fields []model.ExtractedField) []model.ExtractedField {
	out := make([]model.ExtractedField, len(fields))
	for i, f := range fields {
		out[i] = Field(f)
	}
	return out
}
