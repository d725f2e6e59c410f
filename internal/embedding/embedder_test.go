package embedding

import (
	"testing"

	"researcher/internal/config"
)

func TestNewSelectsImplementation(t *testing.T) {
	emb, err := New(config.EmbedderConfig{Type: "hashing", Hashing: config.HashingEmbedderConfig{Dimension: 32}})
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	if emb.Name() != "hashing-32" {
		t.Fatalf("unexpected name %q", emb.Name())
	}
	emb, err = New(config.EmbedderConfig{Type: "ollama"})
	if err != nil {
		t.Fatalf("ollama: %v", err)
	}
	if emb.Name() != "ollama:nomic-embed-text" {
		t.Fatalf("unexpected name %q", emb.Name())
	}
	if _, err := New(config.EmbedderConfig{Type: "word2vec"}); err == nil {
		t.Fatalf("expected error for unknown embedder")
	}
}

func TestNewOpenAIWithoutKeyFails(t *testing.T) {
	t.Setenv("NO_SUCH_KEY_FOR_TEST", "")
	_, err := New(config.EmbedderConfig{Type: "openai", OpenAI: config.OpenAIEmbedderConfig{APIKeyEnv: "NO_SUCH_KEY_FOR_TEST"}})
	if err == nil {
		t.Fatalf("expected missing key error")
	}
}
