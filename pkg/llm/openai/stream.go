package openai

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"elasticquest-be/pkg/llm"
)

// streamState tracks the consumer's position in its lifecycle:
//
//	idle -> sending -> streaming -> completed | failed
//
// idle and sending live inside StreamChat (a stream object only exists
// once the response body is readable); completed and failed are terminal,
// Recv has no transition out of either.
type streamState int

const (
	stateIdle streamState = iota
	stateSending
	stateStreaming
	stateCompleted
	stateFailed
)

const (
	dataPrefix     = "data:"
	doneMarker     = "[DONE]"
	maxLineSize    = 1024 * 1024
	initialBufSize = 64 * 1024
)

// chatCompletionChunk is the wire shape of one streamed delta event.
type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	state   streamState
	full    strings.Builder
	closed  bool
}

var _ llm.ChatStream = &stream{}

func newStream(body io.ReadCloser) *stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, initialBufSize), maxLineSize)
	return &stream{
		body:    body,
		scanner: scanner,
		state:   stateStreaming,
	}
}

// Recv reads event lines until it can return the next meaningful event.
// Malformed payload lines are logged and skipped; only the data terminator
// or a read error ends the stream. After a terminal event Recv returns
// io.EOF without touching the connection again.
func (s *stream) Recv() (llm.StreamEvent, error) {
	if s.state == stateCompleted || s.state == stateFailed {
		return llm.StreamEvent{}, io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))

		if data == doneMarker {
			s.state = stateCompleted
			return llm.StreamEvent{Type: llm.EventDone}, nil
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			log.Printf("[WARN] skipping malformed stream event: %v", err)
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}

		s.full.WriteString(content)
		return llm.StreamEvent{Type: llm.EventContentDelta, Content: content}, nil
	}

	if err := s.scanner.Err(); err != nil {
		s.state = stateFailed
		return llm.StreamEvent{Type: llm.EventError, Err: fmt.Sprintf("read stream: %v", err)}, nil
	}

	// Body ended cleanly without a terminator; treat as complete.
	s.state = stateCompleted
	return llm.StreamEvent{Type: llm.EventDone}, nil
}

func (s *stream) Text() string {
	return s.full.String()
}

func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
