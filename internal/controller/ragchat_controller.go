package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"elasticquest-be/internal/dto"
	"elasticquest-be/internal/pkg/serverutils"
	"elasticquest-be/pkg/highlight"
	"elasticquest-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IRAGChatController interface {
	RegisterRoutes(r fiber.Router)
	Stream(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type ragChatController struct {
	pipeline *rag.Pipeline
}

func NewRAGChatController(pipeline *rag.Pipeline) IRAGChatController {
	return &ragChatController{pipeline: pipeline}
}

func (c *ragChatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rag-chat")
	h.Post("/stream", c.Stream)
	h.Get("/health", c.Health)
}

// Stream answers a question as a server-sent event stream. Each frame is
// one StreamChatChunk; the final frame carries done=true plus highlights.
func (c *ragChatController) Stream(ctx *fiber.Ctx) error {
	var req dto.RAGChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	pipelineReq := rag.Request{
		Question:        req.Question,
		ContextMaterial: req.ContextMaterial,
		SystemPrompt:    req.SystemPrompt,
		Temperature:     req.Temperature,
		MaxTokens:       req.MaxTokens,
	}

	// The fiber ctx is invalid once this handler returns, so the stream
	// writer runs on a background context. The pipeline enforces its own
	// timeout and stops on the first failed flush.
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		delivery := &sseDelivery{w: w}
		c.pipeline.Run(context.Background(), &pipelineReq, delivery)
	}))

	return nil
}

func (c *ragChatController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("RAG chat service is running", fiber.Map{"status": "ok"}))
}

// sseDelivery writes pipeline output as SSE frames. A flush error means
// the client went away and propagates back to stop the pipeline.
type sseDelivery struct {
	w *bufio.Writer
}

func (d *sseDelivery) writeChunk(chunk dto.StreamChatChunk) error {
	data, err := json.Marshal(chunk)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(d.w, "data: %s\n\n", data); err != nil {
		return err
	}
	return d.w.Flush()
}

func (d *sseDelivery) DeliverChunk(content string) error {
	return d.writeChunk(dto.ContentChunk(content))
}

func (d *sseDelivery) DeliverFinal(segments []highlight.Segment) error {
	return d.writeChunk(dto.DoneChunk(segments))
}

func (d *sseDelivery) DeliverError(message string) error {
	return d.writeChunk(dto.ErrorChunk(message))
}
