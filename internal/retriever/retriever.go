package retriever

import (
	"context"
	"errors"
	"fmt"
	"log"

	"researcher/internal/domain"
	"researcher/internal/index"
)

// LocalSource labels warnings from the local index.
const LocalSource = "local index"

// LocalSearcher is the part of the index store the retriever needs.
type LocalSearcher interface {
	Query(ctx context.Context, text string, k int) ([]index.Result, error)
}

// SourceUnavailableError is a warning: one source contributed no hits.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// Result holds the merged hits and a warning per degraded source.
type Result struct {
	Hits     []domain.Hit
	Warnings []error
}

// Retriever merges local nearest-neighbor hits with one external summary.
type Retriever struct {
	knowledge domain.KnowledgeSource
	sentences int
}

// New creates a retriever. A nil knowledge source disables the external step.
func New(knowledge domain.KnowledgeSource, sentences int) *Retriever {
	if sentences <= 0 {
		sentences = 3
	}
	return &Retriever{knowledge: knowledge, sentences: sentences}
}

// Retrieve returns local hits followed by at most one external hit. It
// never fails; every problem becomes a warning and fewer hits.
func (r *Retriever) Retrieve(ctx context.Context, query string, store LocalSearcher, topK int) Result {
	var res Result
	local, err := r.Local(ctx, query, store, topK)
	if err != nil {
		res.Warnings = append(res.Warnings, &SourceUnavailableError{Source: LocalSource, Err: err})
	}
	res.Hits = append(res.Hits, local...)
	if r.knowledge != nil {
		ext, err := r.External(ctx, query)
		if err != nil {
			res.Warnings = append(res.Warnings, &SourceUnavailableError{Source: r.knowledge.Name(), Err: err})
		}
		res.Hits = append(res.Hits, ext...)
	}
	for _, w := range res.Warnings {
		log.Printf("retriever: %v", w)
	}
	return res
}

// Local maps the store's nearest neighbors into hits scored by distance.
func (r *Retriever) Local(ctx context.Context, query string, store LocalSearcher, topK int) (hits []domain.Hit, err error) {
	defer recoverInto(&err)
	if store == nil {
		return nil, index.ErrNotInitialized
	}
	results, err := store.Query(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	hits = make([]domain.Hit, 0, len(results))
	for _, res := range results {
		score := res.Distance
		hits = append(hits, domain.Hit{Text: res.TextPreview, Source: res.Source, Score: &score})
	}
	return hits, nil
}

// External asks the knowledge source for a summary of query. An ambiguous
// topic is retried once with its first candidate.
func (r *Retriever) External(ctx context.Context, query string) (hits []domain.Hit, err error) {
	defer recoverInto(&err)
	if r.knowledge == nil {
		return nil, errors.New("no knowledge source configured")
	}
	summary, err := r.knowledge.Summary(ctx, query, r.sentences)
	var amb *domain.AmbiguousTopicError
	if errors.As(err, &amb) {
		if len(amb.Options) == 0 {
			return nil, err
		}
		log.Printf("retriever: %q is ambiguous, retrying with %q", query, amb.Options[0])
		summary, err = r.knowledge.Summary(ctx, amb.Options[0], r.sentences)
	}
	if err != nil {
		return nil, err
	}
	return []domain.Hit{{Text: summary, Source: r.knowledge.Name()}}, nil
}

func recoverInto(err *error) {
	if p := recover(); p != nil {
		*err = fmt.Errorf("panic: %v", p)
	}
}
