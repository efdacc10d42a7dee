package llm

import "context"

// Prompt is a fully assembled generation request. The synthesizer owns its content.
type Prompt struct {
	System string
	User   string
}

type Provider interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}
