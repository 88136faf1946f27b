package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/leaselens/leaselens/internal/config"
	"github.com/leaselens/leaselens/pkg/errors"
)

// Embedder turns text into fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

type openAIEmbedder struct {
	client *openai.Client
	model  string
	dim    int
}

// NewEmbedder builds an Embedder backed by an OpenAI-compatible endpoint.
// BaseURL may point at any compatible provider.
func NewEmbedder(cfg config.AIConfig) (Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.ErrCodeValidation, "ai.api_key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &openAIEmbedder{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.EmbeddingModel,
		dim:    cfg.EmbeddingDim,
	}, nil
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *openAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "no texts to embed")
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dim,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "create embeddings")
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.Newf(errors.ErrCodeEmbeddingFailed,
			"embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func (e *openAIEmbedder) Dimensions() int {
	return e.dim
}
