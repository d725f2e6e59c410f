package domain

import (
	"context"
	"fmt"
)

// Document is the extracted text of one loaded file (or one PDF page).
type Document struct {
	Source  string
	Content string
}

// Chunk is a bounded span of a document's text prepared for embedding.
type Chunk struct {
	Content string
	Origin  string
	Index   int
}

// Hit is a retrieval result handed to report generation.
// Score is a distance for local hits (lower is closer) and nil for
// external ones.
type Hit struct {
	Text   string   `json:"text"`
	Source string   `json:"source"`
	Score  *float64 `json:"score"`
}

// Plan is an ordered list of instruction steps for the research agent.
type Plan []string

// Embedder converts texts into fixed-dimension vectors.
// The same input and configuration must always produce the same vectors.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Chunker splits a document into chunks suitable for indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// KnowledgeSource returns a short encyclopedic summary for a query.
type KnowledgeSource interface {
	Name() string
	Summary(ctx context.Context, query string, sentences int) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// Completer sends a single prompt to a text-generation model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AmbiguousTopicError is returned by a KnowledgeSource when a query matches
// several candidate articles. Options are alternative queries, best first.
type AmbiguousTopicError struct {
	Query   string
	Options []string
}

func (e *AmbiguousTopicError) Error() string {
	return fmt.Sprintf("%q is ambiguous: %d candidate topics", e.Query, len(e.Options))
}
