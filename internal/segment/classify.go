package segment

import (
	"strings"

	"github.com/sells-group/lease-cli/internal/model"
)

// clauseKeywords maps each clause type to the keywords that indicate it.
// Checked in classifyOrder; the first type with a keyword hit wins, so a
// clause mentioning both rent and term classifies as base_rent.
var clauseKeywords = map[model.ClauseType][]string{
	model.ClauseBaseRent: {
		"base rent", "minimum rent", "monthly rent", "annual rent",
		"fixed rent", "rental rate", "rent payment", "rent shall be",
	},
	model.ClauseEscalation: {
		"escalation", "rent increase", "annual increase", "cpi",
		"consumer price index", "cost of living", "adjustment to rent",
	},
	model.ClauseOptions: {
		"option to renew", "renewal option", "option to extend",
		"extension option", "right of first refusal", "option to purchase",
		"early termination",
	},
	model.ClauseCAM: {
		"common area", "cam", "operating expenses", "additional rent",
		"pro rata share", "triple net", "nnn", "expense stop",
	},
	model.ClauseNotice: {
		"notice", "notices", "certified mail", "registered mail",
		"addressed to",
	},
	model.ClauseTerm: {
		"term of this lease", "lease term", "commencement date",
		"expiration date", "initial term", "term shall",
	},
}

// classifyOrder is the fixed priority order for keyword matching.
var classifyOrder = []model.ClauseType{
	model.ClauseBaseRent,
	model.ClauseEscalation,
	model.ClauseOptions,
	model.ClauseCAM,
	model.ClauseNotice,
	model.ClauseTerm,
}

// classify infers a segment's clause type from its title and body text.
func classify(title, text string) model.ClauseType {
	haystack := strings.ToLower(title + "\n" + text)
	for _, ct := range classifyOrder {
		for _, kw := range clauseKeywords[ct] {
			if containsWord(haystack, kw) {
				return ct
			}
		}
	}
	return model.ClauseMisc
}

// containsWord matches a keyword at word boundaries so that short keywords
// like "cam" do not hit inside unrelated words.
func containsWord(haystack, kw string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], kw)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isWordByte(haystack[i-1])
		after := i+len(kw) >= len(haystack) || !isWordByte(haystack[i+len(kw)])
		if before && after {
			return true
		}
		idx = i + len(kw)
	}
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
