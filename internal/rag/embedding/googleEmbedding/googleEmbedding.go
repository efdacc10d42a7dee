package googleEmbedding

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/CommunityRAG/internal/rag/embedding"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
	"google.golang.org/genai"
)

const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	taskType  string
	logger    *logger_i.Logger
}

// NewGenAIClient builds the shared genai client used for embeddings, generation and OCR.
func NewGenAIClient(ctx context.Context, apiKey string, httpClient *http.Client) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("missing google api key")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
}

func NewEmbedder(genAi *genai.Client, model string, dimension int32, taskType string) embedding.Embedder {
	logger := logger_i.NewLogger("google_embedding")
	logger.Info("Google Embedding client created", "model", model, "dimension", dimension, "task", taskType)
	return &client{
		genAi:     genAi,
		model:     model,
		dimension: dimension,
		taskType:  taskType,
		logger:    logger,
	}
}

func (c *client) Dimension() int {
	return int(c.dimension)
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	log := c.logger.WithTrace(ctx)
	log.Debug("embedding text", "chars", len(text))

	dimension := c.dimension
	result, err := c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             c.taskType,
	})
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err.Error())
		return nil, err
	}
	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, errors.New("google embedding returned no vectors")
	}
	return result.Embeddings[0].Values, nil
}
