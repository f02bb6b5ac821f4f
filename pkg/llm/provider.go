package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
	Name    string // optional participant name
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(max int) Option {
	return func(o *Options) {
		o.MaxTokens = max
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// StreamEventType tags events produced while consuming a completion stream.
type StreamEventType string

const (
	EventContentDelta StreamEventType = "content_delta"
	EventDone         StreamEventType = "done"
	EventError        StreamEventType = "error"
)

// StreamEvent is one parsed event from the wire stream. Content is set for
// content deltas; Err carries the message for error events. Done and Error
// are terminal: no further events follow either.
type StreamEvent struct {
	Type    StreamEventType
	Content string
	Err     string
}

// ChatStream is a pull-based view over an in-flight streamed completion.
// Recv blocks for the next event and never returns two terminal events.
// Close releases the underlying connection and is safe on every exit path.
type ChatStream interface {
	Recv() (StreamEvent, error)

	// Text returns the content accumulated from all deltas received so far.
	Text() string

	Close() error
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// StreamingProvider is an LLMProvider whose backend can deliver the answer
// incrementally. StreamChat fails fast on connection errors or a non-2xx
// status; once a ChatStream is returned the caller owns it and must Close.
type StreamingProvider interface {
	LLMProvider

	StreamChat(ctx context.Context, history []Message, options ...Option) (ChatStream, error)
}
