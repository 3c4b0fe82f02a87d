package extract

import (
	"fmt"
	"strings"

	"github.com/sells-group/lease-cli/internal/model"
)

// maxInstructionChars bounds the clause text included in one instruction so a
// single domain never ships the whole document to the strategy.
const maxInstructionChars = 12000

const instructionTemplate = `You are a commercial lease analyst extracting structured data.

Domain: %s
Extract values for these fields: %s

Lease clauses:
%s

Return a single JSON object keyed by field name. Each entry must be
{"value": "<verbatim text from the clauses>", "confidence": <0-100>}.
Omit fields the clauses do not answer. Do not infer values that are not
stated in the text.`

// BuildInstruction assembles the bounded instruction for one domain from the
// clause segments typed for it. Returns "" when no relevant clauses exist.
func BuildInstruction(domain Domain, segments []model.ClauseSegment) string {
	wanted := make(map[model.ClauseType]bool)
	for _, ct := range domain.ClauseTypes() {
		wanted[ct] = true
	}

	var clauses []string
	total := 0
	for _, seg := range segments {
		if !wanted[seg.Type] {
			continue
		}
		block := seg.Text
		if seg.Title != "" {
			block = seg.Title + "\n" + block
		}
		if total+len(block) > maxInstructionChars {
			remaining := maxInstructionChars - total
			if remaining <= 0 {
				break
			}
			block = block[:remaining]
		}
		clauses = append(clauses, block)
		total += len(block)
	}
	if len(clauses) == 0 {
		return ""
	}

	return fmt.Sprintf(instructionTemplate,
		domain,
		strings.Join(domain.Fields(), ", "),
		strings.Join(clauses, "\n\n---\n\n"),
	)
}
