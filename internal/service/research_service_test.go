package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"researcher/internal/chunker"
	"researcher/internal/domain"
	"researcher/internal/embedding/hashing"
	"researcher/internal/index"
	"researcher/internal/report"
	"researcher/internal/retriever"
	"researcher/internal/summarizer"
)

type stubKnowledge struct{ text string }

func (s stubKnowledge) Name() string { return "Wikipedia" }

func (s stubKnowledge) Summary(context.Context, string, int) (string, error) {
	if s.text == "" {
		return "", errors.New("offline")
	}
	return s.text, nil
}

func newService(t *testing.T, stateDir string, embedder domain.Embedder, knowledge domain.KnowledgeSource) *ResearchService {
	t.Helper()
	store, err := index.NewStore(index.Config{
		IndexPath:    filepath.Join(stateDir, "vectors.index"),
		MetadataPath: filepath.Join(stateDir, "vectors_meta.json"),
	}, embedder)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	sum := summarizer.NewFrequencySummarizer()
	return NewResearchService(
		chunker.NewRecursiveChunker(200, 40, nil),
		store,
		retriever.New(knowledge, 3),
		report.NewGenerator(nil, sum),
		sum,
		2,
	)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestEnsureIndexBuildsThenLoads(t *testing.T) {
	data := t.TempDir()
	state := t.TempDir()
	writeFile(t, data, "ocean.txt", "The ocean covers most of the planet. Tides are driven by the moon.")
	writeFile(t, data, "forest.md", "# Forests\n\nForests store carbon and shelter wildlife.")

	svc := newService(t, state, hashing.NewEmbedder(64), stubKnowledge{})
	sum, err := svc.EnsureIndex(context.Background(), data)
	if err != nil {
		t.Fatalf("ensure index: %v", err)
	}
	if !sum.Built || sum.Documents != 2 || sum.Entries == 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.Digest == "" {
		t.Fatalf("expected a digest of the ingested documents")
	}

	again := newService(t, state, hashing.NewEmbedder(64), stubKnowledge{})
	sum2, err := again.EnsureIndex(context.Background(), data)
	if err != nil {
		t.Fatalf("second ensure index: %v", err)
	}
	if !sum2.Loaded || sum2.Entries != sum.Entries {
		t.Fatalf("expected load of %d entries, got %+v", sum.Entries, sum2)
	}
}

func TestEnsureIndexMissingDataDir(t *testing.T) {
	svc := newService(t, t.TempDir(), hashing.NewEmbedder(32), stubKnowledge{})
	sum, err := svc.EnsureIndex(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing data dir should not fail: %v", err)
	}
	if sum.Loaded || sum.Built || svc.Stats().Entries != 0 {
		t.Fatalf("expected nothing indexed, got %+v", sum)
	}
	if !strings.Contains(sum.String(), "No local documents") {
		t.Fatalf("unexpected status line %q", sum.String())
	}
}

func TestEnsureIndexRebuildsOnModelChange(t *testing.T) {
	data := t.TempDir()
	state := t.TempDir()
	writeFile(t, data, "a.txt", "Solar panels convert sunlight into electricity.")

	if _, err := newService(t, state, hashing.NewEmbedder(32), stubKnowledge{}).EnsureIndex(context.Background(), data); err != nil {
		t.Fatal(err)
	}
	svc := newService(t, state, hashing.NewEmbedder(48), stubKnowledge{})
	sum, err := svc.EnsureIndex(context.Background(), data)
	if err != nil {
		t.Fatalf("ensure index: %v", err)
	}
	if !sum.Built {
		t.Fatalf("expected rebuild after model change, got %+v", sum)
	}
	if st := svc.Stats(); st.Dimension != 48 || st.Model != "hashing-48" {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestAddPathExtendsIndex(t *testing.T) {
	data := t.TempDir()
	extra := t.TempDir()
	writeFile(t, data, "a.txt", "Bees pollinate flowering plants.")
	p := writeFile(t, extra, "b.txt", "Volcanoes release gas and ash.")

	svc := newService(t, t.TempDir(), hashing.NewEmbedder(32), stubKnowledge{})
	first, err := svc.EnsureIndex(context.Background(), data)
	if err != nil {
		t.Fatal(err)
	}
	sum, err := svc.AddPath(context.Background(), p)
	if err != nil {
		t.Fatalf("add path: %v", err)
	}
	if sum.Entries != first.Entries+sum.Chunks {
		t.Fatalf("expected %d entries, got %d", first.Entries+sum.Chunks, sum.Entries)
	}
	if len(svc.Stats().Sources) != 2 {
		t.Fatalf("expected two sources, got %v", svc.Stats().Sources)
	}
}

func TestRebuildEmptyPath(t *testing.T) {
	svc := newService(t, t.TempDir(), hashing.NewEmbedder(32), stubKnowledge{})
	_, err := svc.Rebuild(context.Background(), t.TempDir())
	if !errors.Is(err, index.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestAskProducesFallbackReport(t *testing.T) {
	data := t.TempDir()
	writeFile(t, data, "sky.txt", "The sky is blue because air scatters blue light. Sunsets look red.")

	svc := newService(t, t.TempDir(), hashing.NewEmbedder(64), stubKnowledge{text: "Rayleigh scattering explains the blue sky."})
	if _, err := svc.EnsureIndex(context.Background(), data); err != nil {
		t.Fatal(err)
	}
	ans, err := svc.Ask(context.Background(), "  why is the sky blue?  ", 3)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if ans.Question != "why is the sky blue?" {
		t.Fatalf("question not trimmed: %q", ans.Question)
	}
	if ans.UsedModel {
		t.Fatalf("no completer configured, expected fallback report")
	}
	if len(ans.Plan) != 4 {
		t.Fatalf("expected 4 plan steps, got %d", len(ans.Plan))
	}
	last := ans.Hits[len(ans.Hits)-1]
	if last.Source != "Wikipedia" || last.Score != nil {
		t.Fatalf("expected trailing Wikipedia hit, got %+v", last)
	}
	if !strings.Contains(ans.Report, "Executive summary") {
		t.Fatalf("report missing summary section:\n%s", ans.Report)
	}
	if rec := ans.Record(); rec.ReportMarkdown != ans.Report || len(rec.Hits) != len(ans.Hits) {
		t.Fatalf("record does not mirror answer: %+v", rec)
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	svc := newService(t, t.TempDir(), hashing.NewEmbedder(16), stubKnowledge{})
	if _, err := svc.Ask(context.Background(), "   ", 3); !errors.Is(err, ErrEmptyQuestion) {
		t.Fatalf("expected ErrEmptyQuestion, got %v", err)
	}
}

func TestSearchWithoutIndexWarns(t *testing.T) {
	svc := newService(t, t.TempDir(), hashing.NewEmbedder(16), stubKnowledge{})
	res := svc.Search(context.Background(), "anything", 3)
	if len(res.Hits) != 0 {
		t.Fatalf("expected no hits, got %v", res.Hits)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("expected local and web warnings, got %v", res.Warnings)
	}
}
