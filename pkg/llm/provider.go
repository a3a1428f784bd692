package llm

import (
	"context"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message in a provider-agnostic format.
type Message struct {
	Role    string
	Content string
}

// Option allows for optional parameters like Temperature and MaxTokens.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Provider defines the contract for any completion backend.
type Provider interface {
	// Chat sends an ordered chat history to the model and returns the
	// generated text. Implementations return an error on transport
	// failure, non-2xx status, or empty content.
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)
}
