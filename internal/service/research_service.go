package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"researcher/internal/chunker"
	"researcher/internal/domain"
	"researcher/internal/index"
	"researcher/internal/loader"
	"researcher/internal/planner"
	"researcher/internal/report"
	"researcher/internal/retriever"
)

// ErrEmptyQuestion is returned by Ask for a blank question.
var ErrEmptyQuestion = errors.New("please enter a question")

// IndexStore is the embedding index the service drives.
type IndexStore interface {
	retriever.LocalSearcher
	Build(ctx context.Context, chunks []domain.Chunk) error
	Load() (bool, error)
	AddDocuments(ctx context.Context, chunks []domain.Chunk) error
	Len() int
	Dimension() int
	Model() string
	Sources() []string
}

// IngestSummary describes the outcome of an indexing step.
type IngestSummary struct {
	Loaded    bool
	Built     bool
	Documents int
	Chunks    int
	Entries   int
	Sources   []string
	Digest    string
}

// String renders a one-line description for status bars.
func (s IngestSummary) String() string {
	switch {
	case s.Loaded:
		return fmt.Sprintf("Loaded index with %d entries from %d sources.", s.Entries, len(s.Sources))
	case s.Built:
		return fmt.Sprintf("Built index from %d chunks in %d documents.", s.Chunks, s.Documents)
	case s.Chunks > 0:
		return fmt.Sprintf("Added %d chunks; index now holds %d entries.", s.Chunks, s.Entries)
	default:
		return "No local documents indexed; answers will rely on the web source."
	}
}

// Answer is the full result of one research question.
type Answer struct {
	Question  string
	Plan      domain.Plan
	Hits      []domain.Hit
	Warnings  []error
	Report    string
	UsedModel bool
}

// Record converts the answer into its export form.
func (a Answer) Record() report.Record {
	return report.Record{Question: a.Question, Plan: a.Plan, Hits: a.Hits, ReportMarkdown: a.Report}
}

// Stats describes the current index.
type Stats struct {
	Entries   int
	Dimension int
	Model     string
	Sources   []string
}

// ResearchService wires loading, segmentation, indexing, retrieval and
// report generation into the research workflow.
type ResearchService struct {
	chunker         domain.Chunker
	store           IndexStore
	retriever       *retriever.Retriever
	generator       *report.Generator
	summarizer      domain.Summarizer
	digestSentences int
}

func NewResearchService(ch domain.Chunker, store IndexStore, r *retriever.Retriever, g *report.Generator, sum domain.Summarizer, digestSentences int) *ResearchService {
	return &ResearchService{chunker: ch, store: store, retriever: r, generator: g, summarizer: sum, digestSentences: digestSentences}
}

// EnsureIndex loads the persisted index, or builds one from dataDir when
// nothing usable is on disk. A missing or empty dataDir is not an error.
func (s *ResearchService) EnsureIndex(ctx context.Context, dataDir string) (IngestSummary, error) {
	found, err := s.store.Load()
	var inc *index.IncompatibleError
	switch {
	case errors.As(err, &inc):
		log.Printf("service: %v; rebuilding from %s", err, dataDir)
	case err != nil:
		return IngestSummary{}, fmt.Errorf("load index: %w", err)
	case found:
		return IngestSummary{Loaded: true, Entries: s.store.Len(), Sources: s.store.Sources()}, nil
	}
	docs, err := loader.Load(dataDir)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("service: data directory %s does not exist", dataDir)
		return IngestSummary{}, nil
	}
	if err != nil {
		return IngestSummary{}, err
	}
	chunks, err := chunker.Segment(s.chunker, docs)
	if err != nil {
		return IngestSummary{}, err
	}
	if len(chunks) == 0 {
		log.Printf("service: no local documents found in %s", dataDir)
		return IngestSummary{}, nil
	}
	return s.build(ctx, docs, chunks)
}

// Rebuild replaces the index with the documents found at paths.
func (s *ResearchService) Rebuild(ctx context.Context, paths ...string) (IngestSummary, error) {
	docs, chunks, err := s.segmentPaths(paths)
	if err != nil {
		return IngestSummary{}, err
	}
	if len(chunks) == 0 {
		return IngestSummary{}, fmt.Errorf("nothing to index in %s: %w", strings.Join(paths, ", "), index.ErrEmptyInput)
	}
	return s.build(ctx, docs, chunks)
}

// AddPath appends the documents at path to the existing index.
func (s *ResearchService) AddPath(ctx context.Context, path string) (IngestSummary, error) {
	docs, chunks, err := s.segmentPaths([]string{path})
	if err != nil {
		return IngestSummary{}, err
	}
	if err := s.store.AddDocuments(ctx, chunks); err != nil {
		return IngestSummary{}, fmt.Errorf("add %s: %w", path, err)
	}
	return IngestSummary{
		Documents: len(docs),
		Chunks:    len(chunks),
		Entries:   s.store.Len(),
		Sources:   s.store.Sources(),
		Digest:    s.digest(docs),
	}, nil
}

// Ask plans, retrieves and writes the report for question.
func (s *ResearchService) Ask(ctx context.Context, question string, topK int) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}
	plan := planner.CreatePlan(question)
	res := s.retriever.Retrieve(ctx, question, s.store, topK)
	md, used := s.generator.Generate(ctx, question, res.Hits, plan)
	return Answer{Question: question, Plan: plan, Hits: res.Hits, Warnings: res.Warnings, Report: md, UsedModel: used}, nil
}

// Search runs retrieval only.
func (s *ResearchService) Search(ctx context.Context, question string, topK int) retriever.Result {
	return s.retriever.Retrieve(ctx, strings.TrimSpace(question), s.store, topK)
}

// Stats reports the state of the index.
func (s *ResearchService) Stats() Stats {
	return Stats{Entries: s.store.Len(), Dimension: s.store.Dimension(), Model: s.store.Model(), Sources: s.store.Sources()}
}

func (s *ResearchService) build(ctx context.Context, docs []domain.Document, chunks []domain.Chunk) (IngestSummary, error) {
	if err := s.store.Build(ctx, chunks); err != nil {
		return IngestSummary{}, fmt.Errorf("build index: %w", err)
	}
	return IngestSummary{
		Built:     true,
		Documents: len(docs),
		Chunks:    len(chunks),
		Entries:   s.store.Len(),
		Sources:   s.store.Sources(),
		Digest:    s.digest(docs),
	}, nil
}

func (s *ResearchService) segmentPaths(paths []string) ([]domain.Document, []domain.Chunk, error) {
	var docs []domain.Document
	for _, p := range paths {
		d, err := loader.Load(p)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", p, err)
		}
		docs = append(docs, d...)
	}
	chunks, err := chunker.Segment(s.chunker, docs)
	if err != nil {
		return nil, nil, err
	}
	return docs, chunks, nil
}

func (s *ResearchService) digest(docs []domain.Document) string {
	if s.summarizer == nil || len(docs) == 0 {
		return ""
	}
	var all strings.Builder
	for _, d := range docs {
		all.WriteString(d.Content)
		all.WriteString("\n")
	}
	summary, err := s.summarizer.Summarize(all.String(), s.digestSentences)
	if err != nil {
		log.Printf("service: digest failed: %v", err)
		return ""
	}
	return summary
}
