package service

import (
	"context"
)

// AIClient is the interface for language-model service providers.
type AIClient interface {
	// Complete performs a single chat completion with a system instruction
	// and a user message, returning the raw model text.
	Complete(ctx context.Context, systemPrompt, userMessage string, temperature float64, maxTokens int) (string, error)

	// CreateEmbeddings generates embedding vectors for texts.
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// IsEnabled returns whether the client is configured and ready.
	IsEnabled() bool
}

// Ensure OpenAIClient implements AIClient
var _ AIClient = (*OpenAIClient)(nil)
