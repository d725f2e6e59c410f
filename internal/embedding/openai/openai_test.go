package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedBatchesAndOrders(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		calls++
		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, len(req.Input))
		// reversed on purpose; the client must reorder by index
		for i := range req.Input {
			j := len(req.Input) - 1 - i
			data[i] = item{Object: "embedding", Embedding: []float32{float32(len(req.Input[j])), 1}, Index: j}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": req.Model})
	}))
	defer srv.Close()

	t.Setenv("TEST_EMBED_KEY", "test-key")
	c, err := NewClient(Config{BaseURL: srv.URL + "/v1", APIKeyEnv: "TEST_EMBED_KEY", Model: "m", BatchSize: 2})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	vecs, err := c.Embed(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 batched calls, got %d", calls)
	}
	for i, want := range []float32{1, 2, 3} {
		if vecs[i][0] != want {
			t.Fatalf("vector %d out of order: %v", i, vecs[i])
		}
	}
	if c.Name() != "openai:m" {
		t.Fatalf("unexpected name %q", c.Name())
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("TEST_EMBED_MISSING", "")
	if _, err := NewClient(Config{APIKeyEnv: "TEST_EMBED_MISSING"}); err == nil {
		t.Fatalf("expected error without key")
	}
}
