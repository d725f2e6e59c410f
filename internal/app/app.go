// Package app assembles the research service from configuration.
package app

import (
	"errors"
	"fmt"
	"log"
	"time"

	"researcher/internal/chunker"
	"researcher/internal/config"
	"researcher/internal/domain"
	"researcher/internal/embedding"
	"researcher/internal/index"
	"researcher/internal/knowledge/wikipedia"
	"researcher/internal/llm"
	"researcher/internal/report"
	"researcher/internal/retriever"
	"researcher/internal/service"
	"researcher/internal/summarizer"
)

// digestSentences bounds the ingest digest shown after indexing.
const digestSentences = 3

// App holds the assembled service and the settings callers need at runtime.
type App struct {
	Service    *service.ResearchService
	Config     *config.AppConfig
	ModelName  string
	UsingModel bool
}

// New validates cfg and wires every component it selects.
func New(cfg *config.AppConfig) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		return nil, err
	}

	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "recursive", "":
		ch = chunker.NewRecursiveChunker(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap, cfg.Chunker.Separators)
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}

	store, err := index.NewStore(index.Config{
		IndexPath:      cfg.Index.IndexPath,
		MetadataPath:   cfg.Index.MetadataPath,
		DistanceMetric: cfg.Index.DistanceMetric,
		PreviewChars:   cfg.Index.PreviewChars,
	}, emb)
	if err != nil {
		return nil, fmt.Errorf("index init failed: %w", err)
	}

	var knowledge domain.KnowledgeSource
	if w := cfg.Retriever.Wikipedia; w.Enabled {
		knowledge = wikipedia.NewClient(wikipedia.Config{
			BaseURL:   w.BaseURL,
			Language:  w.Language,
			UserAgent: w.UserAgent,
			Timeout:   time.Duration(w.TimeoutSecs) * time.Second,
		})
	}

	a := &App{Config: cfg}
	var completer domain.Completer
	chat, err := llm.NewOpenAIChat(llm.Config{
		BaseURL:     cfg.Report.LLM.BaseURL,
		APIKeyEnv:   cfg.Report.LLM.APIKeyEnv,
		Model:       cfg.Report.LLM.Model,
		Temperature: cfg.Report.LLM.Temperature,
		MaxTokens:   cfg.Report.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.Report.LLM.TimeoutSecs) * time.Second,
	})
	switch {
	case errors.Is(err, llm.ErrNoAPIKey):
		log.Printf("app: %s not set, reports use the offline fallback", cfg.Report.LLM.APIKeyEnv)
	case err != nil:
		return nil, fmt.Errorf("llm init failed: %w", err)
	default:
		completer = chat
		a.ModelName = chat.Model()
		a.UsingModel = true
	}

	sum := summarizer.NewFrequencySummarizer()
	a.Service = service.NewResearchService(
		ch,
		store,
		retriever.New(knowledge, cfg.Retriever.Wikipedia.Sentences),
		report.NewGenerator(completer, sum),
		sum,
		digestSentences,
	)
	return a, nil
}
