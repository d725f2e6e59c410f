package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"researcher/internal/chunker"
	"researcher/internal/domain"
	"researcher/internal/embedding/hashing"
	"researcher/internal/index"
	"researcher/internal/report"
	"researcher/internal/retriever"
	"researcher/internal/service"
	"researcher/internal/summarizer"
)

func testService(t *testing.T) *service.ResearchService {
	t.Helper()
	data := t.TempDir()
	if err := os.WriteFile(filepath.Join(data, "tides.txt"), []byte("Tides rise and fall twice a day. The moon pulls the oceans."), 0o644); err != nil {
		t.Fatal(err)
	}
	state := t.TempDir()
	store, err := index.NewStore(index.Config{
		IndexPath:    filepath.Join(state, "vectors.index"),
		MetadataPath: filepath.Join(state, "vectors_meta.json"),
	}, hashing.NewEmbedder(64))
	if err != nil {
		t.Fatal(err)
	}
	sum := summarizer.NewFrequencySummarizer()
	svc := service.NewResearchService(chunker.NewRecursiveChunker(200, 20, nil), store, retriever.New(nil, 3), report.NewGenerator(nil, sum), sum, 2)
	if _, err := svc.EnsureIndex(context.Background(), data); err != nil {
		t.Fatal(err)
	}
	return svc
}

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatalf("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

func TestRetrieveHandler(t *testing.T) {
	h := makeRetrieveHandler(testService(t), 3)
	res, err := h(context.Background(), callTool(map[string]any{"query": "what moves the tides"}))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "tides.txt") {
		t.Fatalf("expected local hit in:\n%s", text)
	}
}

func TestRetrieveHandlerRequiresQuery(t *testing.T) {
	h := makeRetrieveHandler(testService(t), 3)
	res, err := h(context.Background(), callTool(map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatalf("expected tool error for missing query")
	}
}

func TestAskHandlerReturnsReport(t *testing.T) {
	h := makeAskHandler(testService(t), 3)
	res, err := h(context.Background(), callTool(map[string]any{"question": "tides"}))
	if err != nil {
		t.Fatal(err)
	}
	if text := resultText(t, res); !strings.Contains(text, "## Key findings") {
		t.Fatalf("unexpected report:\n%s", text)
	}
	res, _ = h(context.Background(), callTool(map[string]any{"question": " "}))
	if !res.IsError {
		t.Fatalf("expected tool error for blank question")
	}
}

func TestStatsHandler(t *testing.T) {
	h := makeStatsHandler(testService(t))
	res, err := h(context.Background(), callTool(nil))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "**Model:** hashing-64") || !strings.Contains(text, "tides.txt") {
		t.Fatalf("unexpected stats:\n%s", text)
	}
}

func TestPrintHits(t *testing.T) {
	d := 0.5
	var buf bytes.Buffer
	printHits(&buf, []domain.Hit{
		{Text: "local\n text", Source: "a.md", Score: &d},
		{Text: "web text", Source: "Wikipedia"},
	})
	want := "1. [a.md] distance=0.5000\n   local text\n2. [Wikipedia]\n   web text\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}
