package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

// EmbeddingProvider converts text into a fixed-length vector. Implementations
// must be deterministic for identical input and safe for concurrent use once
// loaded.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// LazyEmbeddingProvider defers model loading until first use. The first
// caller triggers the load; concurrent first-callers block on the same
// attempt instead of loading twice. A failed load is retried on the next
// call rather than cached forever.
type LazyEmbeddingProvider struct {
	mu       sync.Mutex
	factory  func(ctx context.Context) (EmbeddingProvider, error)
	provider EmbeddingProvider
	dim      int
}

func NewLazyEmbeddingProvider(dim int, factory func(ctx context.Context) (EmbeddingProvider, error)) *LazyEmbeddingProvider {
	return &LazyEmbeddingProvider{factory: factory, dim: dim}
}

func (l *LazyEmbeddingProvider) Dimension() int {
	return l.dim
}

func (l *LazyEmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	provider, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return provider.Embed(ctx, text)
}

func (l *LazyEmbeddingProvider) load(ctx context.Context) (EmbeddingProvider, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.provider != nil {
		return l.provider, nil
	}

	provider, err := l.factory(ctx)
	if err != nil {
		log.Error().Err(err).Msg("embedding model load failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}
	if provider.Dimension() != l.dim {
		return nil, fmt.Errorf("%w: model dimension %d, expected %d",
			domain.ErrModelUnavailable, provider.Dimension(), l.dim)
	}

	l.provider = provider
	log.Info().Int("dimension", l.dim).Msg("embedding model loaded")
	return provider, nil
}

// geminiEmbedder calls the Gemini embedding endpoint.
type geminiEmbedder struct {
	client *genai.Client
	model  string
	dim    int
}

// NewGeminiEmbedder creates a remote embedding provider backed by the Gemini
// API.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string, dim int) (EmbeddingProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = "text-embedding-004"
	}

	return &geminiEmbedder{client: client, model: model, dim: dim}, nil
}

func (g *geminiEmbedder) Dimension() int {
	return g.dim
}

func (g *geminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return make([]float32, g.dim), nil
	}

	dim := int32(g.dim)
	resp, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) != g.dim {
		return nil, errors.New("embedding api returned unexpected payload")
	}

	return resp.Embeddings[0].Values, nil
}

// hashingEmbedder is a deterministic local provider: token feature hashing
// into a fixed-size vector, L2 normalized. It carries no semantics worth
// trusting in production but keeps the whole pipeline runnable offline.
type hashingEmbedder struct {
	dim int
}

func NewHashingEmbedder(dim int) EmbeddingProvider {
	return &hashingEmbedder{dim: dim}
}

func (h *hashingEmbedder) Dimension() int {
	return h.dim
}

func (h *hashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, h.dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?()[]{}\"'")
		if token == "" {
			continue
		}
		hasher := fnv.New32a()
		_, _ = hasher.Write([]byte(token))
		sum := hasher.Sum32()
		idx := int(sum % uint32(h.dim))
		// Sign bit keeps hash collisions from only accumulating positively.
		if sum&0x80000000 != 0 {
			vector[idx] -= 1
		} else {
			vector[idx] += 1
		}
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= inv
		}
	}

	return vector, nil
}
