package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

func TestHashingEmbedderDeterministic(t *testing.T) {
	embedder := NewHashingEmbedder(64)

	a, err := embedder.Embed(context.Background(), "golang postgres redis")
	require.NoError(t, err)
	b, err := embedder.Embed(context.Background(), "golang postgres redis")
	require.NoError(t, err)
	c, err := embedder.Embed(context.Background(), "completely different text here")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestHashingEmbedderNormalized(t *testing.T) {
	embedder := NewHashingEmbedder(32)
	v, err := embedder.Embed(context.Background(), "backend engineer with kubernetes experience")
	require.NoError(t, err)

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestHashingEmbedderEmptyText(t *testing.T) {
	embedder := NewHashingEmbedder(16)
	v, err := embedder.Embed(context.Background(), "   ")
	require.NoError(t, err)
	assert.Len(t, v, 16)
	for _, x := range v {
		assert.Zero(t, x)
	}
}

func TestLazyProviderLoadsOnce(t *testing.T) {
	loads := 0
	lazy := NewLazyEmbeddingProvider(16, func(context.Context) (EmbeddingProvider, error) {
		loads++
		return NewHashingEmbedder(16), nil
	})

	_, err := lazy.Embed(context.Background(), "first")
	require.NoError(t, err)
	_, err = lazy.Embed(context.Background(), "second")
	require.NoError(t, err)

	assert.Equal(t, 1, loads)
}

func TestLazyProviderRetriesFailedLoad(t *testing.T) {
	loads := 0
	lazy := NewLazyEmbeddingProvider(16, func(context.Context) (EmbeddingProvider, error) {
		loads++
		if loads == 1 {
			return nil, errors.New("model download failed")
		}
		return NewHashingEmbedder(16), nil
	})

	_, err := lazy.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)

	_, err = lazy.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestLazyProviderRejectsDimensionMismatch(t *testing.T) {
	lazy := NewLazyEmbeddingProvider(32, func(context.Context) (EmbeddingProvider, error) {
		return NewHashingEmbedder(16), nil
	})

	_, err := lazy.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}
