// Package pattern implements deterministic regex-based field extraction over
// raw lease text. The pattern table is static data so each entry can be unit
// tested in isolation.
package pattern

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/lease-cli/internal/model"
	"github.com/sells-group/lease-cli/internal/normalize"
)

// Entry is one field's extraction spec: an ordered pattern list, a format
// validator that accepted captures must pass, and a fixed confidence for
// matches. A capture rejected by Validate falls through to the next pattern.
type Entry struct {
	Field      string
	Patterns   []*regexp.Regexp
	Validate   func(string) bool
	Confidence float64
}

// Validators. Each checks the captured string's shape, not its semantics.

func validDate(s string) bool {
	_, ok := normalize.Date(s)
	return ok
}

func validMoney(s string) bool {
	_, ok := normalize.Money(s)
	return ok
}

func validInt(s string) bool {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	_, err := strconv.Atoi(cleaned)
	return err == nil
}

func validText(s string) bool {
	return len(strings.TrimSpace(s)) >= 2
}

func validName(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= 2 && len(s) <= 120
}

func validDueDay(s string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil && n >= 1 && n <= 31
}

// re is shorthand for compiling a case-insensitive pattern.
func re(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}

const (
	dateExpr  = `([A-Za-z]+\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}|\d{1,2}[/-]\d{1,2}[/-]\d{4}|\d{4}-\d{2}-\d{2})`
	moneyExpr = `\$\s*([\d,]+(?:\.\d{1,2})?)`
	nameExpr  = `([A-Z][A-Za-z0-9.,'&\- ]{1,100}?)`
)

// Table is the ordered pattern table. Order matters only within one field's
// pattern list; fields are independent.
var Table = []Entry{
	{
		Field: model.FieldLeaseID,
		Patterns: []*regexp.Regexp{
			re(`lease\s+(?:no\.?|number|id)[:\s#]+([A-Z0-9][A-Z0-9\-/]{2,24})`),
			re(`agreement\s+(?:no\.?|number)[:\s#]+([A-Z0-9][A-Z0-9\-/]{2,24})`),
		},
		Validate:   validText,
		Confidence: 90,
	},
	{
		Field: model.FieldTenantName,
		Patterns: []*regexp.Regexp{
			re(`between\s+.{2,80}?\s+and\s+` + nameExpr + `\s*(?:\(|,)?\s*(?:as\s+)?(?:the\s+)?(?:"?tenant"?|"?lessee"?)`),
			re(`(?:tenant|lessee)[:\s]+` + nameExpr + `(?:\s*\(|,|\n|$)`),
		},
		Validate:   validName,
		Confidence: 80,
	},
	{
		Field: model.FieldLandlordName,
		Patterns: []*regexp.Regexp{
			re(`between\s+` + nameExpr + `\s*(?:\(|,)?\s*(?:as\s+)?(?:the\s+)?(?:"?landlord"?|"?lessor"?)`),
			re(`(?:landlord|lessor)[:\s]+` + nameExpr + `(?:\s*\(|,|\n|$)`),
		},
		Validate:   validName,
		Confidence: 80,
	},
	{
		Field: model.FieldGuarantor,
		Patterns: []*regexp.Regexp{
			re(`guarantor[:\s]+` + nameExpr + `(?:\s*\(|,|\n|$)`),
			re(`guaranteed\s+by\s+` + nameExpr + `(?:\s*\(|,|\n|$)`),
		},
		Validate:   validName,
		Confidence: 75,
	},
	{
		Field: model.FieldPropertyAddress,
		Patterns: []*regexp.Regexp{
			re(`(?:premises|property)\s+(?:located|situated)\s+at[:\s]+([^\n]{10,140})`),
			re(`(?:leased\s+premises|demised\s+premises)[:\s]+([^\n]{10,140})`),
			re(`(?:property|premises)\s+address[:\s]+([^\n]{10,140})`),
		},
		Validate:   validText,
		Confidence: 80,
	},
	{
		Field: model.FieldLeaseStart,
		Patterns: []*regexp.Regexp{
			re(`(?:lease\s+)?(?:term\s+shall\s+)?commenc\w+\s+(?:date[:\s]+|on\s+|on\s+or\s+about\s+)` + dateExpr),
			re(`commencement\s+date[^\n]{0,20}?` + dateExpr),
			re(`(?:beginning|starting)\s+(?:on\s+)?` + dateExpr),
		},
		Validate:   validDate,
		Confidence: 85,
	},
	{
		Field: model.FieldLeaseEnd,
		Patterns: []*regexp.Regexp{
			re(`(?:expir\w+|terminat\w+|ending)\s+(?:date[:\s]+|on\s+)` + dateExpr),
			re(`expiration\s+date[^\n]{0,20}?` + dateExpr),
			re(`through\s+(?:and\s+including\s+)?` + dateExpr),
		},
		Validate:   validDate,
		Confidence: 85,
	},
	{
		Field: model.FieldRentCommencement,
		Patterns: []*regexp.Regexp{
			re(`rent\s+commencement\s+date[:\s]+(?:shall\s+be\s+)?` + dateExpr),
			re(`rent\s+shall\s+commence\s+(?:on\s+)?` + dateExpr),
		},
		Validate:   validDate,
		Confidence: 85,
	},
	{
		Field: model.FieldLeaseTermMonths,
		Patterns: []*regexp.Regexp{
			re(`term\s+of\s+(\d{1,3})\s+(?:calendar\s+)?months`),
			re(`for\s+a\s+(?:period|term)\s+of\s+(\d{1,3})\s+months`),
		},
		Validate:   validInt,
		Confidence: 85,
	},
	{
		Field: model.FieldBaseRent,
		Patterns: []*regexp.Regexp{
			re(`(?:base|minimum|monthly)\s+rent[^\n]{0,60}?` + moneyExpr + `\s*(?:per\s+month|/month|monthly|per\s+calendar\s+month)`),
			re(moneyExpr + `\s*per\s+month`),
			re(`(?:base|minimum)\s+rent[^\n]{0,40}?` + moneyExpr),
		},
		Validate:   validMoney,
		Confidence: 85,
	},
	{
		Field: model.FieldAnnualRent,
		Patterns: []*regexp.Regexp{
			re(`annual\s+(?:base\s+)?rent[^\n]{0,40}?` + moneyExpr),
			re(moneyExpr + `\s*per\s+(?:annum|year)`),
		},
		Validate:   validMoney,
		Confidence: 80,
	},
	{
		Field: model.FieldBaseRentSchedule,
		Patterns: []*regexp.Regexp{
			re(`(rent\s+schedule[:\s][^\n]*(?:\n[^\n]*(?:year|month)s?\s+\d+[^\n]*)+)`),
			re(`((?:lease\s+)?years?\s+\d+\s*(?:-|through|to)\s*\d+[:\s]+\$[^\n]+(?:\n[^\n]*years?\s+\d+[^\n]+)*)`),
		},
		Validate:   validText,
		Confidence: 70,
	},
	{
		Field: model.FieldSquareFootage,
		Patterns: []*regexp.Regexp{
			re(`(?:approximately|approx\.?|about)?\s*([\d,]{3,10})\s*(?:rentable\s+|usable\s+)?square\s+feet`),
			re(`([\d,]{3,10})\s*(?:sq\.?\s*ft\.?|sf)\b`),
		},
		Validate:   validInt,
		Confidence: 85,
	},
	{
		Field: model.FieldEscalation,
		Patterns: []*regexp.Regexp{
			re(`((?:[\d.]+%|[a-z]+\s+percent)\s*(?:\([\d.]+%\)\s*)?[^\n.]{0,80}?(?:increase|escalation|adjustment)[^\n.]{0,80})`),
			re(`((?:rent|escalation)[^\n.]{0,80}?(?:cpi|consumer\s+price\s+index)[^\n.]{0,120})`),
			re(`((?:increase|escalat|adjust)[^\n.]{0,120}?(?:[\d.]+%|cpi|consumer\s+price\s+index)[^\n.]{0,80})`),
		},
		Validate:   validText,
		Confidence: 75,
	},
	{
		Field: model.FieldRenewalOption,
		Patterns: []*regexp.Regexp{
			re(`(option\s+to\s+(?:renew|extend)[^\n.]{0,160})`),
			re(`((?:renewal|extension)\s+option[^\n.]{0,160})`),
		},
		Validate:   validText,
		Confidence: 75,
	},
	{
		Field: model.FieldTermination,
		Patterns: []*regexp.Regexp{
			re(`((?:right\s+to\s+terminate|early\s+termination)[^\n.]{0,160})`),
			re(`(terminat\w+\s+(?:right|option)[^\n.]{0,160})`),
		},
		Validate:   validText,
		Confidence: 75,
	},
	{
		Field: model.FieldCAM,
		Patterns: []*regexp.Regexp{
			re(`(?:common\s+area|cam)\s+(?:maintenance\s+)?(?:charges?|costs?|expenses?)[^\n]{0,60}?` + moneyExpr),
			re(`(?:pro\s+rata\s+share|operating\s+expenses)[^\n]{0,60}?` + moneyExpr),
		},
		Validate:   validMoney,
		Confidence: 75,
	},
	{
		Field: model.FieldTaxes,
		Patterns: []*regexp.Regexp{
			re(`(?:real\s+estate|property)\s+taxes[^\n]{0,60}?` + moneyExpr),
			re(`tax\s+(?:reimbursement|charge)[^\n]{0,60}?` + moneyExpr),
		},
		Validate:   validMoney,
		Confidence: 70,
	},
	{
		Field: model.FieldInsurance,
		Patterns: []*regexp.Regexp{
			re(`insurance\s+(?:premium|cost|charge)s?[^\n]{0,60}?` + moneyExpr),
			re(`liability\s+insurance[^\n]{0,80}?` + moneyExpr),
		},
		Validate:   validMoney,
		Confidence: 70,
	},
	{
		Field: model.FieldLateFee,
		Patterns: []*regexp.Regexp{
			re(`late\s+(?:fee|charge|payment\s+charge)[^\n]{0,60}?` + moneyExpr),
			re(`late\s+(?:fee|charge)\s+of\s+([\d.]+%)`),
		},
		Validate:   validText,
		Confidence: 80,
	},
	{
		Field: model.FieldPaymentDueDay,
		Patterns: []*regexp.Regexp{
			re(`due\s+(?:and\s+payable\s+)?on\s+(?:or\s+before\s+)?the\s+(\d{1,2})(?:st|nd|rd|th)?\s+day\s+of\s+(?:each|every)\s+(?:calendar\s+)?month`),
			re(`payable\s+(?:in\s+advance\s+)?on\s+the\s+(\d{1,2})(?:st|nd|rd|th)?\s+(?:day\s+)?of\s+(?:each|every)\s+month`),
		},
		Validate:   validDueDay,
		Confidence: 85,
	},
	{
		Field: model.FieldPaymentTerms,
		Patterns: []*regexp.Regexp{
			re(`(rent\s+(?:is\s+|shall\s+be\s+)?payable[^\n.]{0,140})`),
			re(`(payment\s+terms?[:\s][^\n.]{0,140})`),
		},
		Validate:   validText,
		Confidence: 70,
	},
	{
		Field: model.FieldNoticeAddress,
		Patterns: []*regexp.Regexp{
			re(`notices?\s+(?:to\s+(?:tenant|landlord)\s+)?(?:shall\s+be\s+)?(?:sent|delivered|addressed|mailed)\s+to[:\s]+([^\n]{10,140})`),
			re(`notice\s+address(?:es)?[:\s]+([^\n]{10,140})`),
		},
		Validate:   validText,
		Confidence: 75,
	},
	{
		Field: model.FieldSecurityDeposit,
		Patterns: []*regexp.Regexp{
			re(`security\s+deposit[^\n]{0,60}?` + moneyExpr),
			re(`deposit\s+(?:of|in\s+the\s+amount\s+of)\s+` + moneyExpr),
		},
		Validate:   validMoney,
		Confidence: 85,
	},
}
