package dto

import "elasticquest-be/pkg/highlight"

// RAGChatRequest is the streaming chat endpoint payload. Field names match
// the frontend contract (camelCase).
type RAGChatRequest struct {
	Question        string   `json:"question" validate:"required"`
	ContextMaterial string   `json:"contextMaterial"`
	SystemPrompt    string   `json:"systemPrompt"`
	Temperature     *float64 `json:"temperature"`
	MaxTokens       *int     `json:"maxTokens"`
}

// StreamChatChunk is one SSE frame of the streaming chat response.
// Highlights is populated only on the terminal done frame.
type StreamChatChunk struct {
	Content    string              `json:"content"`
	Done       bool                `json:"done"`
	Highlights []highlight.Segment `json:"highlights,omitempty"`
	Error      string              `json:"error,omitempty"`
}

func ContentChunk(content string) StreamChatChunk {
	return StreamChatChunk{Content: content}
}

func DoneChunk(highlights []highlight.Segment) StreamChatChunk {
	return StreamChatChunk{Done: true, Highlights: highlights}
}

func ErrorChunk(message string) StreamChatChunk {
	return StreamChatChunk{Done: true, Error: message}
}
