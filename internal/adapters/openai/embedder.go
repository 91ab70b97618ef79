// Package openai implements the Embedder port against the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// VectorSize is the dimension of text-embedding-3-small vectors.
const VectorSize = 1536

type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// New creates an OpenAI embedder. model may be empty to use
// text-embedding-3-small.
func New(apiKey, model string) (*Embedder, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	m := openai.SmallEmbedding3
	if model != "" {
		m = openai.EmbeddingModel(model)
	}
	return &Embedder{client: openai.NewClient(apiKey), model: m}, nil
}

// Embed generates a vector embedding for the given text. Empty text is
// rejected here rather than round-tripped to the provider.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text must not be empty")
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: e.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embeddings returned")
	}
	return resp.Data[0].Embedding, nil
}
