package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"researcher/internal/domain"
)

// BuildPrompt renders the instruction prompt for the report model: the
// plan, the question and every hit as a numbered, sourced context block.
func BuildPrompt(question string, hits []domain.Hit, plan domain.Plan) string {
	planJSON, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		planJSON = []byte("[]")
	}
	var blocks strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&blocks, "[%d] Source: %s\n%s\n\n", i+1, sourceOf(h), h.Text)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert research assistant. Follow this plan: %s\n\n", planJSON)
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	b.WriteString("Context (top relevant chunks):\n")
	b.WriteString(blocks.String())
	b.WriteString(`Produce a clear, concise structured report in Markdown with:
- A short executive summary (1-2 bullets)
- Key findings as bullet points (each bullet must include a short parenthetical citation like (Source: ...))
- Suggested mitigation / recommendations (bulleted)
- A final 'Traceability' section listing each claim and its source (mapping from bullet -> source)

Use no more than ~600 words. Be precise and tag each claim with its source.
`)
	return b.String()
}

func sourceOf(h domain.Hit) string {
	if h.Source == "" {
		return "Local"
	}
	return h.Source
}
