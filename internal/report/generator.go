package report

import (
	"context"
	"log"
	"strings"

	"researcher/internal/domain"
)

const overviewSentences = 2

// Generator writes the final report, preferring the language model and
// falling back to the local keyword summary on any failure.
type Generator struct {
	completer  domain.Completer
	summarizer domain.Summarizer
}

// NewGenerator creates a generator. A nil completer always uses the
// fallback; a nil summarizer omits the fallback overview.
func NewGenerator(completer domain.Completer, summarizer domain.Summarizer) *Generator {
	return &Generator{completer: completer, summarizer: summarizer}
}

// Generate returns the Markdown report and whether the model produced it.
func (g *Generator) Generate(ctx context.Context, question string, hits []domain.Hit, plan domain.Plan) (string, bool) {
	if g.completer != nil {
		text, err := g.completer.Complete(ctx, BuildPrompt(question, hits, plan))
		if err == nil {
			return text, true
		}
		log.Printf("report: model unavailable, using local summary: %v", err)
	}
	return Fallback(question, hits, g.overview(hits)), false
}

func (g *Generator) overview(hits []domain.Hit) string {
	if g.summarizer == nil || len(hits) == 0 {
		return ""
	}
	texts := make([]string, 0, len(hits))
	for _, h := range hits {
		texts = append(texts, strings.TrimSpace(h.Text))
	}
	summary, err := g.summarizer.Summarize(strings.Join(texts, "\n"), overviewSentences)
	if err != nil {
		return ""
	}
	return summary
}
