package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"sync"

	"researcher/internal/domain"
	"researcher/internal/vectorstore"
	"researcher/internal/vectorstore/flat"
)

// DefaultPreviewChars is how much of a chunk's content the metadata keeps.
const DefaultPreviewChars = 200

// Config locates the persisted pair of files and fixes how vectors compare.
type Config struct {
	// EmbeddingModel names the vector function; it is recorded with the
	// vectors and checked on load. Empty means the embedder's own name.
	EmbeddingModel string
	IndexPath      string
	MetadataPath   string
	DistanceMetric string
	PreviewChars   int
}

// Entry is the persisted metadata for one indexed chunk. Text is a prefix
// of the chunk content, not the full content.
type Entry struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// Result is one nearest-neighbor match.
type Result struct {
	Distance    float64
	Source      string
	TextPreview string
}

// Store owns a flat vector index and its positionally aligned metadata.
// Vector i and entries[i] always describe the same chunk; both are only
// ever appended together.
type Store struct {
	mu       sync.RWMutex
	cfg      Config
	metric   vectorstore.Metric
	embedder domain.Embedder
	index    *flat.Index
	entries  []Entry
}

// NewStore creates an uninitialized store. No dimension is fixed until the
// first Build, Load or AddDocuments.
func NewStore(cfg Config, embedder domain.Embedder) (*Store, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if cfg.IndexPath == "" || cfg.MetadataPath == "" {
		return nil, errors.New("index and metadata paths are required")
	}
	metric, err := vectorstore.ParseMetric(cfg.DistanceMetric)
	if err != nil {
		return nil, err
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = embedder.Name()
	}
	if cfg.PreviewChars <= 0 {
		cfg.PreviewChars = DefaultPreviewChars
	}
	return &Store{cfg: cfg, metric: metric, embedder: embedder}, nil
}

// Build embeds chunks into a fresh index, persists it and replaces the
// in-memory state. Nothing is written when chunks is empty.
func (s *Store) Build(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return ErrEmptyInput
	}
	vecs, err := s.embed(ctx, chunks)
	if err != nil {
		return err
	}
	idx, err := flat.New(len(vecs[0]), s.metric)
	if err != nil {
		return err
	}
	if err := idx.Add(vecs); err != nil {
		return err
	}
	entries := s.entriesFor(chunks)
	if err := s.persist(idx, entries); err != nil {
		return err
	}
	s.mu.Lock()
	s.index, s.entries = idx, entries
	s.mu.Unlock()
	log.Printf("index: built %d entries (dim=%d, model=%s)", len(entries), idx.Dimension(), s.cfg.EmbeddingModel)
	return nil
}

// Load restores a persisted index. It reports false without error when
// either file is missing, leaving the store as it was.
func (s *Store) Load() (bool, error) {
	for _, p := range []string{s.cfg.IndexPath, s.cfg.MetadataPath} {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return false, nil
			}
			return false, err
		}
	}
	model, idx, err := readVectors(s.cfg.IndexPath)
	if err != nil {
		return false, err
	}
	entries, err := readMetadata(s.cfg.MetadataPath)
	if err != nil {
		return false, err
	}
	if idx.Len() != len(entries) {
		return false, fmt.Errorf("%w: %d vectors but %d metadata entries", ErrCorrupt, idx.Len(), len(entries))
	}
	if model != s.cfg.EmbeddingModel {
		return false, &IncompatibleError{Setting: "embedding model", Stored: model, Configured: s.cfg.EmbeddingModel}
	}
	if idx.Metric() != s.metric {
		return false, &IncompatibleError{Setting: "distance metric", Stored: string(idx.Metric()), Configured: string(s.metric)}
	}
	s.mu.Lock()
	s.index, s.entries = idx, entries
	s.mu.Unlock()
	log.Printf("index: loaded %d entries from %s", len(entries), s.cfg.IndexPath)
	return true, nil
}

// AddDocuments appends chunks to the index and persists both files. The
// first batch on an uninitialized store fixes the vector width.
func (s *Store) AddDocuments(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	vecs, err := s.embed(ctx, chunks)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		idx, err := flat.New(len(vecs[0]), s.metric)
		if err != nil {
			return err
		}
		s.index = idx
		log.Printf("index: initialized empty index (dim=%d)", idx.Dimension())
	}
	if err := s.index.Add(vecs); err != nil {
		return err
	}
	s.entries = append(s.entries, s.entriesFor(chunks)...)
	if err := s.persist(s.index, s.entries); err != nil {
		return fmt.Errorf("persist after add: %w", err)
	}
	log.Printf("index: added %d entries, %d total", len(chunks), len(s.entries))
	return nil
}

// Query returns up to k entries nearest to text, closest first. A k larger
// than the number of entries returns every entry.
func (s *Store) Query(ctx context.Context, text string, k int) ([]Result, error) {
	if !s.Initialized() {
		return nil, ErrNotInitialized
	}
	if k <= 0 {
		return nil, nil
	}
	vecs, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for 1 query", len(vecs))
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	// search width is bounded by the stored count so k never sizes an allocation
	k = min(k, s.index.Len())
	if k == 0 {
		return nil, nil
	}
	dists, labels, err := s.index.Search(vecs[0], k)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(labels))
	for i, label := range labels {
		if label < 0 || label >= int64(len(s.entries)) {
			continue
		}
		e := s.entries[label]
		out = append(out, Result{Distance: float64(dists[i]), Source: e.Source, TextPreview: e.Text})
	}
	return out, nil
}

// Initialized reports whether the store holds an index.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index != nil
}

// Len returns the number of indexed entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Dimension returns the fixed vector width, or 0 before initialization.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return 0
	}
	return s.index.Dimension()
}

// Model returns the embedding model identity the store was configured with.
func (s *Store) Model() string { return s.cfg.EmbeddingModel }

// Sources returns the distinct source labels, sorted.
func (s *Store) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, e := range s.entries {
		if _, ok := seen[e.Source]; ok {
			continue
		}
		seen[e.Source] = struct{}{}
		out = append(out, e.Source)
	}
	sort.Strings(out)
	return out
}

func (s *Store) embed(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if len(vecs) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), len(chunks))
	}
	if len(vecs[0]) == 0 {
		return nil, errors.New("embedder returned an empty vector")
	}
	return vecs, nil
}

func (s *Store) entriesFor(chunks []domain.Chunk) []Entry {
	out := make([]Entry, len(chunks))
	for i, c := range chunks {
		out[i] = Entry{Source: c.Origin, Text: preview(c.Content, s.cfg.PreviewChars)}
	}
	return out
}

func (s *Store) persist(idx *flat.Index, entries []Entry) error {
	if err := writeFileAtomic(s.cfg.IndexPath, func(w io.Writer) error {
		return writeVectors(w, s.cfg.EmbeddingModel, idx)
	}); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := writeFileAtomic(s.cfg.MetadataPath, func(w io.Writer) error {
		return writeMetadata(w, entries)
	}); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func preview(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n])
}
