package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/rag/llm"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
	"google.golang.org/genai"
)

type Client struct {
	client      *genai.Client
	modelName   string
	temperature float32
	logger      *logger_i.Logger
}

// NewProvider wraps an already constructed genai client. The same value also
// satisfies the ingest OCR transcriber.
func NewProvider(client *genai.Client, modelName string) *Client {
	logger := logger_i.NewLogger("llm_gemini")
	logger.Info("Gemini client created", "model", modelName)
	return &Client{
		client:      client,
		modelName:   modelName,
		temperature: config.ModelTemperature,
		logger:      logger,
	}
}

var _ llm.Provider = (*Client)(nil)

func (c *Client) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	log := c.logger.WithTrace(ctx)

	contentConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if prompt.System != "" {
		contentConfig.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt.User), contentConfig)
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", err
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", errors.New("gemini returned an empty answer")
	}
	return text, nil
}

// Transcribe sends the document inline and asks the model for a verbatim transcription.
func (c *Client) Transcribe(ctx context.Context, data []byte, mimeType string) (string, error) {
	log := c.logger.WithTrace(ctx)
	log.Debug("transcribing document", "mime", mimeType, "bytes", len(data))

	parts := []*genai.Part{
		genai.NewPartFromBytes(data, mimeType),
		genai.NewPartFromText(config.OCRPrompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		log.Error("Gemini transcription failed", "error", err)
		return "", err
	}
	return result.Text(), nil
}
