package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"researcher/internal/domain"
)

func TestChunkScenarioSkyAndGrass(t *testing.T) {
	c := NewRecursiveChunker(20, 5, nil)
	chunks, err := c.Chunk(domain.Document{Source: "sky.txt", Content: "The sky is blue. The grass is green."})
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	first := []rune(chunks[0].Content)
	if len(first) > 20 {
		t.Fatalf("first chunk too long: %q", chunks[0].Content)
	}
	tail := string(first[len(first)-5:])
	if !strings.HasPrefix(chunks[1].Content, tail) {
		t.Fatalf("second chunk %q does not start with %q", chunks[1].Content, tail)
	}
	if chunks[0].Content != "The sky is blue. " {
		t.Fatalf("expected split after the first sentence, got %q", chunks[0].Content)
	}
	for i, ch := range chunks {
		if ch.Origin != "sky.txt" || ch.Index != i {
			t.Fatalf("chunk %d has origin %q index %d", i, ch.Origin, ch.Index)
		}
	}
}

func TestChunkBoundAndExactOverlap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 60; i++ {
		sb.WriteString("Paragraph number with several words that keep going. Another sentence follows here!\n")
		if i%7 == 0 {
			sb.WriteString("\n")
		}
		if i%11 == 0 {
			sb.WriteString(strings.Repeat("x", 300))
			sb.WriteString(" ")
		}
	}
	sizes := []struct{ size, overlap int }{{1000, 200}, {100, 20}, {37, 9}, {10, 9}, {50, 0}}
	for _, s := range sizes {
		c := NewRecursiveChunker(s.size, s.overlap, nil)
		chunks, err := c.Chunk(domain.Document{Source: "long", Content: sb.String()})
		if err != nil {
			t.Fatalf("chunk: %v", err)
		}
		if len(chunks) < 2 {
			t.Fatalf("size %d: expected several chunks, got %d", s.size, len(chunks))
		}
		for i, ch := range chunks {
			if n := utf8.RuneCountInString(ch.Content); n > s.size {
				t.Fatalf("size %d: chunk %d has %d chars", s.size, i, n)
			}
			if i == 0 {
				continue
			}
			prev := []rune(chunks[i-1].Content)
			want := string(prev[len(prev)-s.overlap:])
			if !strings.HasPrefix(ch.Content, want) {
				t.Fatalf("size %d: chunk %d does not repeat the trailing %d chars of chunk %d", s.size, i, s.overlap, i-1)
			}
		}
	}
}

func TestChunkPrefersParagraphBreak(t *testing.T) {
	content := strings.Repeat("a", 30) + "\n\n" + strings.Repeat("b ", 20)
	c := NewRecursiveChunker(50, 0, nil)
	chunks, _ := c.Chunk(domain.Document{Content: content})
	if got := chunks[0].Content; got != strings.Repeat("a", 30)+"\n\n" {
		t.Fatalf("expected paragraph split, got %q", got)
	}
}

func TestChunkShortAndEmpty(t *testing.T) {
	c := NewRecursiveChunker(0, 0, nil)
	chunks, _ := c.Chunk(domain.Document{Source: "s", Content: "  short text  "})
	if len(chunks) != 1 || chunks[0].Content != "short text" {
		t.Fatalf("unexpected chunks %+v", chunks)
	}
	chunks, _ = c.Chunk(domain.Document{Content: " \n\t "})
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks for blank content, got %d", len(chunks))
	}
}

func TestChunkCountsCharactersNotBytes(t *testing.T) {
	content := strings.Repeat("жёлтый ", 40)
	c := NewRecursiveChunker(30, 6, nil)
	chunks, _ := c.Chunk(domain.Document{Content: content})
	for i, ch := range chunks {
		if !utf8.ValidString(ch.Content) {
			t.Fatalf("chunk %d split a rune", i)
		}
		if utf8.RuneCountInString(ch.Content) > 30 {
			t.Fatalf("chunk %d too long", i)
		}
	}
}

func TestSegmentKeepsDocumentOrder(t *testing.T) {
	c := NewRecursiveChunker(1000, 200, nil)
	chunks, err := Segment(c, []domain.Document{{Source: "a", Content: "alpha"}, {Source: "b", Content: "beta"}})
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if len(chunks) != 2 || chunks[0].Origin != "a" || chunks[1].Origin != "b" {
		t.Fatalf("unexpected chunks %+v", chunks)
	}
}
