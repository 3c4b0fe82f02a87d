// Package extract asks a pluggable strategy for structured answers scoped to
// one clause domain. The strategy is optional: when absent or failing, the
// pipeline proceeds on pattern extraction alone.
package extract

import (
	"context"

	"github.com/sells-group/lease-cli/internal/model"
)

// Domain is a semantic extraction scope. Each domain sees only the clause
// segments typed for it, keeping strategy instructions bounded.
type Domain string

const (
	DomainTerm           Domain = "term"
	DomainRent           Domain = "rent"
	DomainEscalation     Domain = "escalation"
	DomainRenewal        Domain = "renewal"
	DomainAdditionalRent Domain = "additional_rent"
)

// Domains lists all extraction domains in processing order.
var Domains = []Domain{
	DomainTerm,
	DomainRent,
	DomainEscalation,
	DomainRenewal,
	DomainAdditionalRent,
}

// ClauseTypes returns the clause segment types that feed this domain.
func (d Domain) ClauseTypes() []model.ClauseType {
	switch d {
	case DomainTerm:
		return []model.ClauseType{model.ClauseTerm}
	case DomainRent:
		return []model.ClauseType{model.ClauseBaseRent}
	case DomainEscalation:
		return []model.ClauseType{model.ClauseEscalation, model.ClauseBaseRent}
	case DomainRenewal:
		return []model.ClauseType{model.ClauseOptions, model.ClauseNotice}
	case DomainAdditionalRent:
		return []model.ClauseType{model.ClauseCAM}
	}
	return nil
}

// Fields returns the field names a domain is expected to answer.
func (d Domain) Fields() []string {
	switch d {
	case DomainTerm:
		return []string{model.FieldLeaseStart, model.FieldLeaseEnd, model.FieldRentCommencement, model.FieldLeaseTermMonths}
	case DomainRent:
		return []string{model.FieldBaseRent, model.FieldAnnualRent, model.FieldBaseRentSchedule, model.FieldSquareFootage, model.FieldSecurityDeposit}
	case DomainEscalation:
		return []string{model.FieldEscalation}
	case DomainRenewal:
		return []string{model.FieldRenewalOption, model.FieldTermination, model.FieldNoticeAddress}
	case DomainAdditionalRent:
		return []string{model.FieldCAM, model.FieldTaxes, model.FieldInsurance, model.FieldLateFee, model.FieldPaymentDueDay}
	}
	return nil
}

// Strategy is the pluggable external extraction collaborator. It receives a
// bounded natural-language instruction for one domain and returns structured
// candidates with strategy-reported confidence.
type Strategy interface {
	Extract(ctx context.Context, domain Domain, instruction string) ([]model.ExtractedField, error)
}
