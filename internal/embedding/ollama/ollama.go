package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/philippgille/chromem-go"
)

// Config configures the Ollama embedder.
type Config struct {
	URL   string
	Model string
}

// Embedder calls a local Ollama server through chromem-go's embedding func.
// Ollama embeds one text per request, so batches are sent sequentially.
type Embedder struct {
	model string
	embed chromem.EmbeddingFunc
}

// NewEmbedder creates an Ollama embedder. URL is the server root, e.g.
// http://localhost:11434.
func NewEmbedder(cfg Config) *Embedder {
	if cfg.URL == "" {
		cfg.URL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "nomic-embed-text"
	}
	base := strings.TrimRight(cfg.URL, "/") + "/api"
	return &Embedder{model: cfg.Model, embed: chromem.NewEmbeddingFuncOllama(cfg.Model, base)}
}

func (e *Embedder) Name() string { return "ollama:" + e.model }

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.embed(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("ollama embed %d/%d: %w", i+1, len(texts), err)
		}
		out[i] = vec
	}
	return out, nil
}
