package model

import "time"

// Canonical field names produced by the extractors. The pattern table, the
// domain extractor prompts, and the validation rules all key on these.
const (
	FieldLeaseID          = "lease_id"
	FieldTenantName       = "tenant_name"
	FieldLandlordName     = "landlord_name"
	FieldGuarantor        = "guarantor"
	FieldPropertyAddress  = "property_address"
	FieldLeaseStart       = "lease_start"
	FieldLeaseEnd         = "lease_end"
	FieldRentCommencement = "rent_commencement"
	FieldLeaseTermMonths  = "lease_term_months"
	FieldBaseRent         = "base_rent"
	FieldBaseRentSchedule = "base_rent_schedule"
	FieldAnnualRent       = "annual_rent"
	FieldSquareFootage    = "square_footage"
	FieldEscalation       = "escalation"
	FieldRenewalOption    = "renewal_option"
	FieldTermination      = "termination_rights"
	FieldCAM              = "cam_charges"
	FieldTaxes            = "taxes"
	FieldInsurance        = "insurance"
	FieldLateFee          = "late_fee"
	FieldPaymentDueDay    = "payment_due_day"
	FieldPaymentTerms     = "payment_terms"
	FieldNoticeAddress    = "notice_address"
	FieldSecurityDeposit  = "security_deposit"
)

// ExtractionOrigin identifies which extractor produced a candidate.
type ExtractionOrigin string

const (
	OriginPattern ExtractionOrigin = "pattern"
	OriginDomain  ExtractionOrigin = "domain"
)

// ClauseLocation points at the clause text a value was extracted from.
type ClauseLocation struct {
	Page     int    `json:"page"`
	ClauseID string `json:"clause_id"`
	Excerpt  string `json:"excerpt"`
}

// NormalizedValue is the canonical typed form of a field value. A field with
// no NormalizedValue is stored by raw text only (normalization failed or was
// not applicable), never as a zero value.
type NormalizedValue struct {
	Numeric *float64   `json:"numeric,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
}

// ExtractedField is one extraction candidate for a named field.
// Confidence is on a 0-100 scale.
type ExtractedField struct {
	FieldName  string           `json:"field_name"`
	ValueText  string           `json:"value_text,omitempty"`
	Normalized *NormalizedValue `json:"value_normalized,omitempty"`
	Source     *ClauseLocation  `json:"source_clause_location,omitempty"`
	Confidence float64          `json:"extraction_confidence"`
	Origin     ExtractionOrigin `json:"origin,omitempty"`
}

// ValidationState is the review lifecycle tag on a stored field.
type ValidationState string

const (
	StateCandidate ValidationState = "candidate"
	StateAutoPass  ValidationState = "auto_pass"
	StateFlagged   ValidationState = "flagged"
	StateRuleFail  ValidationState = "rule_fail"
	StateHumanPass ValidationState = "human_pass"
	StateHumanEdit ValidationState = "human_edit"
)

// RequiresReview reports whether the state demands human QA before the value
// is trusted downstream.
func (s ValidationState) RequiresReview() bool {
	return s == StateFlagged || s == StateRuleFail
}

// CanTransitionTo reports whether a human reviewer may move a field from s to
// next. Only flagged and rule_fail fields accept human transitions, and only
// into human_pass or human_edit.
func (s ValidationState) CanTransitionTo(next ValidationState) bool {
	if next != StateHumanPass && next != StateHumanEdit {
		return false
	}
	return s == StateFlagged || s == StateRuleFail
}

// LeaseField is a stored, validated field on a document. Fields are upserted
// keyed by (DocumentID, FieldName); the audit layer treats writes as
// supersession, which the store records with UpdatedAt.
type LeaseField struct {
	ExtractedField
	DocumentID      string          `json:"document_id"`
	ValidationState ValidationState `json:"validation_state"`
	ValidationNotes string          `json:"validation_notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// FieldSet indexes lease fields by name for cross-field checks.
type FieldSet map[string]LeaseField

// NewFieldSet builds a FieldSet from a slice, last writer wins.
func NewFieldSet(fields []LeaseField) FieldSet {
	fs := make(FieldSet, len(fields))
	for _, f := range fields {
		fs[f.FieldName] = f
	}
	return fs
}

// Numeric returns the normalized numeric value for a field, if present.
func (fs FieldSet) Numeric(name string) (float64, bool) {
	f, ok := fs[name]
	if !ok || f.Normalized == nil || f.Normalized.Numeric == nil {
		return 0, false
	}
	return *f.Normalized.Numeric, true
}

// Date returns the normalized date value for a field, if present.
func (fs FieldSet) Date(name string) (time.Time, bool) {
	f, ok := fs[name]
	if !ok || f.Normalized == nil || f.Normalized.Date == nil {
		return time.Time{}, false
	}
	return *f.Normalized.Date, true
}

// Text returns the raw text for a field, if stored and non-empty.
func (fs FieldSet) Text(name string) (string, bool) {
	f, ok := fs[name]
	if !ok {
		return "", false
	}
	return f.ValueText, f.ValueText != ""
}
