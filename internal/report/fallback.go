package report

import (
	"fmt"
	"regexp"
	"strings"

	"researcher/internal/domain"
)

const maxFindings = 10

var (
	wordPattern     = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	sentenceBreakRe = regexp.MustCompile(`[.!?]\s+`)
)

// Fallback builds a Markdown report without a language model. Each hit
// contributes the sentence that mentions the most question words.
// overview, when non-empty, is added to the executive summary.
func Fallback(question string, hits []domain.Hit, overview string) string {
	qTokens := wordPattern.FindAllString(strings.ToLower(question), -1)
	bullets := make([]string, 0, len(hits))
	for _, h := range hits {
		bullets = append(bullets, fmt.Sprintf("- %s (Source: %s)", bestSentence(h.Text, qTokens), sourceOf(h)))
	}
	if len(bullets) > maxFindings {
		bullets = bullets[:maxFindings]
	}

	var md strings.Builder
	md.WriteString("## Executive summary\n\n")
	fmt.Fprintf(&md, "- Core research question: %s\n", question)
	if overview != "" {
		fmt.Fprintf(&md, "- Overview: %s\n", overview)
	}
	md.WriteString("\n## Key findings\n\n")
	md.WriteString(strings.Join(bullets, "\n"))
	md.WriteString("\n\n## Recommendations\n\n")
	md.WriteString("- Review the above findings and consult original sources.\n")
	md.WriteString("- Consider domain-specific mitigation strategies.\n")
	md.WriteString("\n## Traceability\n\n")
	for i, h := range hits {
		fmt.Fprintf(&md, "- Claim %d: Source: %s\n", i+1, sourceOf(h))
	}
	return md.String()
}

// bestSentence scores sentences by how many question tokens occur in them
// as substrings. Sentences of 10 characters or fewer never win; without a
// winner the first sentence is used.
func bestSentence(text string, qTokens []string) string {
	sentences := splitSentences(text)
	best, bestScore := "", 0
	for _, s := range sentences {
		low := strings.ToLower(s)
		score := 0
		for _, t := range qTokens {
			if strings.Contains(low, t) {
				score++
			}
		}
		trimmed := strings.TrimSpace(s)
		if score > bestScore && len([]rune(trimmed)) > 10 {
			best, bestScore = trimmed, score
		}
	}
	if best == "" && len(sentences) > 0 {
		best = strings.TrimSpace(sentences[0])
	}
	return best
}

// splitSentences cuts after terminal punctuation followed by whitespace.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceBreakRe.FindAllStringIndex(text, -1) {
		out = append(out, text[start:loc[0]+1])
		start = loc[1]
	}
	return append(out, text[start:])
}
