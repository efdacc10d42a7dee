package openaiEmbedding

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/CommunityRAG/internal/rag/embedding"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type client struct {
	api       openai.Client
	model     string
	dimension int
	logger    *logger_i.Logger
}

// NewOpenAIClient is shared by the embedder and the openai llm provider.
func NewOpenAIClient(apiKey string, baseURL string, httpClient *http.Client) (openai.Client, error) {
	if apiKey == "" {
		return openai.Client{}, errors.New("missing openai api key")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithHTTPClient(httpClient)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return openai.NewClient(opts...), nil
}

func NewEmbedder(api openai.Client, model string, dimension int) embedding.Embedder {
	logger := logger_i.NewLogger("openai_embedding")
	logger.Info("OpenAI Embedding client created", "model", model, "dimension", dimension)
	return &client{api: api, model: model, dimension: dimension, logger: logger}
}

func (c *client) Dimension() int {
	return c.dimension
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	log := c.logger.WithTrace(ctx)

	res, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model:      c.model,
		Dimensions: openai.Int(int64(c.dimension)),
	})
	if err != nil {
		log.Error("Error getting Embeddings from OpenAI", "error", err.Error())
		return nil, err
	}
	if res == nil || len(res.Data) == 0 {
		return nil, errors.New("openai embedding returned no vectors")
	}

	values := res.Data[0].Embedding
	vector := make([]float32, len(values))
	for i, v := range values {
		vector[i] = float32(v)
	}
	return vector, nil
}
