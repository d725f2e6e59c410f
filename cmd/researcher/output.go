package main

import (
	"fmt"
	"io"
	"strings"

	"researcher/internal/domain"
	"researcher/internal/logging"
	"researcher/internal/service"
)

func printIngest(w io.Writer, sum service.IngestSummary) {
	logging.Status(w, "%s", sum.String())
	if len(sum.Sources) > 0 {
		fmt.Fprintf(w, "Sources: %s\n", strings.Join(sum.Sources, ", "))
	}
	if sum.Digest != "" {
		fmt.Fprintf(w, "Digest: %s\n", sum.Digest)
	}
}

func printHits(w io.Writer, hits []domain.Hit) {
	if len(hits) == 0 {
		fmt.Fprintln(w, "No hits.")
		return
	}
	for i, h := range hits {
		if h.Score != nil {
			fmt.Fprintf(w, "%d. [%s] distance=%.4f\n", i+1, h.Source, *h.Score)
		} else {
			fmt.Fprintf(w, "%d. [%s]\n", i+1, h.Source)
		}
		fmt.Fprintf(w, "   %s\n", strings.Join(strings.Fields(h.Text), " "))
	}
}

func printWarnings(w io.Writer, warnings []error) {
	for _, err := range warnings {
		logging.Warn(w, "%v", err)
	}
}

// formatHits renders hits as Markdown for tool responses.
func formatHits(query string, hits []domain.Hit) string {
	if len(hits) == 0 {
		return fmt.Sprintf("No results found for query: %q", query)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Results for %q (%d hits)\n\n", query, len(hits))
	for i, h := range hits {
		fmt.Fprintf(&sb, "### Hit %d: %s\n\n", i+1, h.Source)
		if h.Score != nil {
			fmt.Fprintf(&sb, "**Distance:** %.4f\n\n", *h.Score)
		}
		sb.WriteString(h.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
