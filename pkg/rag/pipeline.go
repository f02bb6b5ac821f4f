package rag

import (
	"context"
	"io"
	"time"

	"elasticquest-be/internal/pkg/logger"
	"elasticquest-be/pkg/highlight"
	"elasticquest-be/pkg/llm"
)

// DefaultTimeout bounds one pipeline run end to end, measured from Run.
const DefaultTimeout = 2 * time.Minute

// Delivery is the per-request outbound channel to the human-facing client.
// Every method may fail once the client is gone; the pipeline treats any
// delivery failure as "stop processing", never as an error to surface.
type Delivery interface {
	DeliverChunk(content string) error
	DeliverFinal(segments []highlight.Segment) error
	DeliverError(message string) error
}

// Request carries one chat invocation through the pipeline.
type Request struct {
	Question        string
	ContextMaterial string
	SystemPrompt    string
	Temperature     *float64
	MaxTokens       *int
}

// Pipeline streams an answer from the model and, once the full text is
// known, marks which spans restate the supplied reference material.
// It is stateless across invocations: every Run indexes the request's own
// reference text and discards it afterwards.
type Pipeline struct {
	provider     llm.StreamingProvider
	highlighter  *highlight.Highlighter
	systemPrompt string
	timeout      time.Duration
	logger       logger.ILogger
}

func NewPipeline(provider llm.StreamingProvider, highlighter *highlight.Highlighter, systemPrompt string, timeout time.Duration, log logger.ILogger) *Pipeline {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Pipeline{
		provider:     provider,
		highlighter:  highlighter,
		systemPrompt: systemPrompt,
		timeout:      timeout,
		logger:       log,
	}
}

// Run executes one streaming request to completion. Exactly one terminal
// delivery (final result or error) happens per run, unless the client
// disconnects first, in which case the run ends silently. The outbound
// connection is released on every exit path.
func (p *Pipeline) Run(ctx context.Context, req *Request, delivery Delivery) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	history := p.buildMessages(req)

	opts := []llm.Option{}
	if req.Temperature != nil {
		opts = append(opts, llm.WithTemperature(*req.Temperature))
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(*req.MaxTokens))
	}

	stream, err := p.provider.StreamChat(ctx, history, opts...)
	if err != nil {
		p.logger.Error("RAGPipeline", "Remote completion call failed", map[string]interface{}{"error": err.Error()})
		if derr := delivery.DeliverError(err.Error()); derr != nil {
			p.logger.Warn("RAGPipeline", "Client channel closed before error delivery", nil)
		}
		return
	}
	defer stream.Close()

	for {
		if ctx.Err() != nil {
			// Deadline or caller cancellation: stop reading, no delivery
			// after cancellation is observed.
			p.logger.Warn("RAGPipeline", "Pipeline deadline reached, aborting stream", map[string]interface{}{"error": ctx.Err().Error()})
			return
		}

		event, err := stream.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			p.logger.Error("RAGPipeline", "Stream receive failed", map[string]interface{}{"error": err.Error()})
			return
		}

		switch event.Type {
		case llm.EventContentDelta:
			if err := delivery.DeliverChunk(event.Content); err != nil {
				p.logger.Info("RAGPipeline", "Client disconnected, stopping stream", map[string]interface{}{"received": len(stream.Text())})
				return
			}

		case llm.EventDone:
			segments := p.highlighter.Highlight(stream.Text(), req.ContextMaterial)
			if err := delivery.DeliverFinal(segments); err != nil {
				p.logger.Warn("RAGPipeline", "Client channel closed before final delivery", nil)
			}
			p.logger.Info("RAGPipeline", "Streamed answer completed", map[string]interface{}{
				"answer_length": len(stream.Text()),
				"segments":      len(segments),
			})
			return

		case llm.EventError:
			if err := delivery.DeliverError(event.Err); err != nil {
				p.logger.Warn("RAGPipeline", "Client channel closed before error delivery", nil)
			}
			return
		}
	}
}

// buildMessages assembles the fixed turn order: system prompt (caller
// override or configured default), then one user turn with the reference
// material ahead of the question.
func (p *Pipeline) buildMessages(req *Request) []llm.Message {
	systemPrompt := p.systemPrompt
	if req.SystemPrompt != "" {
		systemPrompt = req.SystemPrompt
	}

	var userContent string
	if req.ContextMaterial != "" {
		userContent = "Reference material:\n" + req.ContextMaterial + "\n\n"
	}
	userContent += "Question:\n" + req.Question

	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userContent},
	}
}
