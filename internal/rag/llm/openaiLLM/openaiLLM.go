package openaiLLM

import (
	"context"
	"errors"
	"strings"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/rag/llm"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
	"github.com/openai/openai-go"
)

type llmClient struct {
	api       openai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewProvider(api openai.Client, modelName string) llm.Provider {
	logger := logger_i.NewLogger("llm_openai")
	logger.Info("OpenAI client created", "model", modelName)
	return &llmClient{api: api, modelName: modelName, logger: logger}
}

func (c *llmClient) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	log := c.logger.WithTrace(ctx)

	var messages []openai.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	res, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       c.modelName,
		Temperature: openai.Float(float64(config.ModelTemperature)),
	})
	if err != nil {
		log.Error("OpenAI generation failed", "error", err)
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	text := strings.TrimSpace(res.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("openai returned an empty answer")
	}
	return text, nil
}
