package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const replyPrompt = `You are a kind and empathetic mental health assistant. A user shared: %q. Reply with a short, comforting and positive message.`

// Responder produces an empathetic reply to a journal thought.
type Responder interface {
	Respond(ctx context.Context, thought string) (string, error)
}

// LLMResponder asks a language model for the reply.
type LLMResponder struct {
	model   llms.Model
	timeout time.Duration
}

func NewLLMResponder(model llms.Model, timeout time.Duration) *LLMResponder {
	return &LLMResponder{model: model, timeout: timeout}
}

// NewGeminiResponder builds a responder backed by Google's Gemini API.
func NewGeminiResponder(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*LLMResponder, error) {
	if apiKey == "" {
		return nil, ErrNoResponder
	}
	model, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return NewLLMResponder(model, timeout), nil
}

func (r *LLMResponder) Respond(ctx context.Context, thought string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	reply, err := llms.GenerateFromSinglePrompt(ctx, r.model, fmt.Sprintf(replyPrompt, thought),
		llms.WithMaxTokens(500),
		llms.WithTemperature(0.7),
		llms.WithTopK(40),
		llms.WithTopP(0.95),
	)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("generate reply: empty response")
	}
	return reply, nil
}
