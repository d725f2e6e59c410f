package app

import (
	"context"
	"path/filepath"
	"testing"

	"researcher/internal/config"
)

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Index.IndexPath = filepath.Join(dir, "vectors.index")
	cfg.Index.MetadataPath = filepath.Join(dir, "vectors_meta.json")
	cfg.Retriever.Wikipedia.Enabled = false
	cfg.Report.LLM.APIKeyEnv = "RESEARCHER_TEST_LLM_KEY"
	return cfg
}

func TestNewWithoutAPIKeyUsesFallback(t *testing.T) {
	t.Setenv("RESEARCHER_TEST_LLM_KEY", "")
	a, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if a.UsingModel || a.ModelName != "" {
		t.Fatalf("expected offline report generation, got model %q", a.ModelName)
	}
	ans, err := a.Service.Ask(context.Background(), "what is indexed?", 3)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if ans.UsedModel || ans.Report == "" {
		t.Fatalf("expected fallback report, got %+v", ans)
	}
}

func TestNewWithAPIKeyUsesModel(t *testing.T) {
	t.Setenv("RESEARCHER_TEST_LLM_KEY", "sk-test")
	a, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !a.UsingModel || a.ModelName != "gpt-3.5-turbo" {
		t.Fatalf("expected chat model, got %q", a.ModelName)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Embedder.Type = "word2vec"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for unknown embedder")
	}
}
