package chunker

import (
	"strings"

	"researcher/internal/domain"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// DefaultSeparators lists split points from coarsest to finest.
// A forced cut at an arbitrary character is the implicit last level.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "? ", "! ", "; ", ", ", " "}

// RecursiveChunker splits text into character-bounded chunks, cutting at
// the coarsest separator that fits and repeating the trailing overlap of
// each chunk at the start of the next one.
type RecursiveChunker struct {
	chunkSize  int
	overlap    int
	separators [][]rune
}

func NewRecursiveChunker(chunkSize, overlap int, separators []string) *RecursiveChunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	seps := make([][]rune, 0, len(separators))
	for _, s := range separators {
		if s == "" {
			continue
		}
		seps = append(seps, []rune(s))
	}
	return &RecursiveChunker{chunkSize: chunkSize, overlap: overlap, separators: seps}
}

// ChunkSize returns the maximum chunk length in characters.
func (c *RecursiveChunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the number of characters shared by consecutive chunks.
func (c *RecursiveChunker) Overlap() int { return c.overlap }

// Chunk splits document after a separator, which stays attached to the
// left chunk ("The sky is blue. "). The next chunk starts exactly Overlap
// characters before the previous end.
func (c *RecursiveChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	text := []rune(strings.TrimSpace(document.Content))
	if len(text) == 0 {
		return nil, nil
	}
	var chunks []domain.Chunk
	start := 0
	for {
		end := len(text)
		if end-start > c.chunkSize {
			end = c.boundary(text, start)
		}
		chunks = append(chunks, domain.Chunk{
			Content: string(text[start:end]),
			Origin:  document.Source,
			Index:   len(chunks),
		})
		if end == len(text) {
			break
		}
		start = end - c.overlap
	}
	return chunks, nil
}

// boundary returns the end of the chunk that begins at start. Candidate
// ends must lie past the midpoint of the fresh (non-overlap) budget so a
// separator close to the start cannot produce a sliver chunk.
func (c *RecursiveChunker) boundary(text []rune, start int) int {
	limit := start + c.chunkSize
	floor := start + c.overlap + (c.chunkSize-c.overlap)/2
	for _, sep := range c.separators {
		if end := lastSeparatorEnd(text, sep, floor, limit); end > 0 {
			return end
		}
	}
	return limit
}

// lastSeparatorEnd returns the largest p in (floor, limit] where sep ends
// at p, or -1.
func lastSeparatorEnd(text, sep []rune, floor, limit int) int {
	for p := limit; p > floor; p-- {
		at := p - len(sep)
		if at < 0 {
			break
		}
		if matchAt(text, sep, at) {
			return p
		}
	}
	return -1
}

func matchAt(text, sep []rune, at int) bool {
	for i, r := range sep {
		if text[at+i] != r {
			return false
		}
	}
	return true
}

// Segment chunks every document in order and concatenates the results.
func Segment(c domain.Chunker, documents []domain.Document) ([]domain.Chunk, error) {
	var all []domain.Chunk
	for _, d := range documents {
		chunks, err := c.Chunk(d)
		if err != nil {
			return nil, err
		}
		all = append(all, chunks...)
	}
	return all, nil
}
