package rag

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"elasticquest-be/internal/pkg/logger"
	"elasticquest-be/pkg/highlight"
	"elasticquest-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStream replays a fixed sequence of events.
type fakeStream struct {
	events []llm.StreamEvent
	pos    int
	text   strings.Builder
	closed bool
}

func (s *fakeStream) Recv() (llm.StreamEvent, error) {
	if s.pos >= len(s.events) {
		return llm.StreamEvent{}, io.EOF
	}
	event := s.events[s.pos]
	s.pos++
	if event.Type == llm.EventContentDelta {
		s.text.WriteString(event.Content)
	}
	return event, nil
}

func (s *fakeStream) Text() string { return s.text.String() }

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

type fakeProvider struct {
	stream    *fakeStream
	streamErr error
	history   []llm.Message
	options   []llm.Option
}

func (p *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (p *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (p *fakeProvider) StreamChat(ctx context.Context, history []llm.Message, options ...llm.Option) (llm.ChatStream, error) {
	p.history = history
	p.options = options
	if p.streamErr != nil {
		return nil, p.streamErr
	}
	return p.stream, nil
}

// recordingDelivery captures what the pipeline sends, with an optional
// failure point to simulate a client disconnect.
type recordingDelivery struct {
	chunks      []string
	final       []highlight.Segment
	finalCalls  int
	errors      []string
	failAtChunk int // 1-based, 0 means never fail
}

func (d *recordingDelivery) DeliverChunk(content string) error {
	if d.failAtChunk > 0 && len(d.chunks)+1 >= d.failAtChunk {
		return errors.New("broken pipe")
	}
	d.chunks = append(d.chunks, content)
	return nil
}

func (d *recordingDelivery) DeliverFinal(segments []highlight.Segment) error {
	d.final = segments
	d.finalCalls++
	return nil
}

func (d *recordingDelivery) DeliverError(message string) error {
	d.errors = append(d.errors, message)
	return nil
}

func newTestPipeline(t *testing.T, provider llm.StreamingProvider) *Pipeline {
	t.Helper()
	return NewPipeline(
		provider,
		highlight.NewHighlighter(highlight.UnisegTokenizer{}),
		"default system prompt",
		0,
		logger.NewZapLogger(t.TempDir()+"/pipeline.log", false),
	)
}

func TestPipelineHappyPath(t *testing.T) {
	provider := &fakeProvider{stream: &fakeStream{events: []llm.StreamEvent{
		{Type: llm.EventContentDelta, Content: "Elasticsearch uses shards "},
		{Type: llm.EventContentDelta, Content: "to scale."},
		{Type: llm.EventDone},
	}}}

	delivery := &recordingDelivery{}
	pipeline := newTestPipeline(t, provider)

	pipeline.Run(context.Background(), &Request{
		Question:        "How does Elasticsearch scale?",
		ContextMaterial: "Elasticsearch uses shards to distribute data.",
	}, delivery)

	assert.Equal(t, []string{"Elasticsearch uses shards ", "to scale."}, delivery.chunks)
	require.Equal(t, 1, delivery.finalCalls)
	assert.Empty(t, delivery.errors)
	assert.True(t, provider.stream.closed)

	// The final frame reassembles the full answer with at least one
	// highlighted span taken from the reference.
	var text string
	highlighted := false
	for _, seg := range delivery.final {
		text += seg.Text
		if seg.Highlighted {
			highlighted = true
		}
	}
	assert.Equal(t, "Elasticsearch uses shards to scale.", text)
	assert.True(t, highlighted)

	// Message assembly: system turn first, then reference plus question.
	require.Len(t, provider.history, 2)
	assert.Equal(t, "system", provider.history[0].Role)
	assert.Equal(t, "default system prompt", provider.history[0].Content)
	assert.Contains(t, provider.history[1].Content, "Reference material:")
	assert.Contains(t, provider.history[1].Content, "Question:")
}

func TestPipelineSystemPromptOverride(t *testing.T) {
	provider := &fakeProvider{stream: &fakeStream{events: []llm.StreamEvent{{Type: llm.EventDone}}}}
	pipeline := newTestPipeline(t, provider)

	pipeline.Run(context.Background(), &Request{
		Question:     "q",
		SystemPrompt: "be terse",
	}, &recordingDelivery{})

	require.Len(t, provider.history, 2)
	assert.Equal(t, "be terse", provider.history[0].Content)
	assert.NotContains(t, provider.history[1].Content, "Reference material:")
}

func TestPipelineConnectFailure(t *testing.T) {
	provider := &fakeProvider{streamErr: errors.New("remote call failed: 500")}
	delivery := &recordingDelivery{}
	pipeline := newTestPipeline(t, provider)

	pipeline.Run(context.Background(), &Request{Question: "q"}, delivery)

	require.Len(t, delivery.errors, 1)
	assert.Equal(t, "remote call failed: 500", delivery.errors[0])
	assert.Empty(t, delivery.chunks)
	assert.Zero(t, delivery.finalCalls)
}

func TestPipelineStreamError(t *testing.T) {
	provider := &fakeProvider{stream: &fakeStream{events: []llm.StreamEvent{
		{Type: llm.EventContentDelta, Content: "partial"},
		{Type: llm.EventError, Err: "read stream: connection reset"},
	}}}
	delivery := &recordingDelivery{}
	pipeline := newTestPipeline(t, provider)

	pipeline.Run(context.Background(), &Request{Question: "q"}, delivery)

	assert.Equal(t, []string{"partial"}, delivery.chunks)
	require.Len(t, delivery.errors, 1)
	assert.Equal(t, "read stream: connection reset", delivery.errors[0])
	assert.Zero(t, delivery.finalCalls)
	assert.True(t, provider.stream.closed)
}

func TestPipelineClientDisconnect(t *testing.T) {
	provider := &fakeProvider{stream: &fakeStream{events: []llm.StreamEvent{
		{Type: llm.EventContentDelta, Content: "one"},
		{Type: llm.EventContentDelta, Content: "two"},
		{Type: llm.EventContentDelta, Content: "three"},
		{Type: llm.EventDone},
	}}}
	delivery := &recordingDelivery{failAtChunk: 2}
	pipeline := newTestPipeline(t, provider)

	pipeline.Run(context.Background(), &Request{Question: "q"}, delivery)

	// The run stops at the failed chunk: nothing terminal is delivered and
	// the upstream connection is released.
	assert.Equal(t, []string{"one"}, delivery.chunks)
	assert.Zero(t, delivery.finalCalls)
	assert.Empty(t, delivery.errors)
	assert.True(t, provider.stream.closed)
}

func TestPipelineOptionsForwarded(t *testing.T) {
	provider := &fakeProvider{stream: &fakeStream{events: []llm.StreamEvent{{Type: llm.EventDone}}}}
	pipeline := newTestPipeline(t, provider)

	temp := 0.2
	maxTokens := 512
	pipeline.Run(context.Background(), &Request{
		Question:    "q",
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}, &recordingDelivery{})

	opts := &llm.Options{}
	for _, opt := range provider.options {
		opt(opts)
	}
	assert.Equal(t, 0.2, opts.Temperature)
	assert.Equal(t, 512, opts.MaxTokens)
}
