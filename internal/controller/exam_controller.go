package controller

import (
	"elasticquest-be/internal/dto"
	"elasticquest-be/internal/pkg/serverutils"
	"elasticquest-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IExamController interface {
	RegisterRoutes(r fiber.Router)
	GetProgress(ctx *fiber.Ctx) error
	SubmitChallenge(ctx *fiber.Ctx) error
	CompleteTopic(ctx *fiber.Ctx) error
	CompleteLevel(ctx *fiber.Ctx) error
	ResetProgress(ctx *fiber.Ctx) error
	GetStats(ctx *fiber.Ctx) error
	GetLeaderboard(ctx *fiber.Ctx) error
}

type examController struct {
	examService        service.IExamService
	leaderboardService service.ILeaderboardService
}

func NewExamController(examService service.IExamService, leaderboardService service.ILeaderboardService) IExamController {
	return &examController{
		examService:        examService,
		leaderboardService: leaderboardService,
	}
}

func (c *examController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/exam")
	h.Use(serverutils.IdentityMiddleware)
	h.Get("/progress", c.GetProgress)
	h.Post("/challenge/submit", c.SubmitChallenge)
	h.Post("/topic/:topicId/complete", c.CompleteTopic)
	h.Post("/level/:levelId/complete", c.CompleteLevel)
	h.Post("/progress/reset", c.ResetProgress)
	h.Get("/stats", c.GetStats)
	h.Get("/leaderboard", c.GetLeaderboard)
}

func (c *examController) userId(ctx *fiber.Ctx) string {
	if id, ok := ctx.Locals("user_id").(string); ok && id != "" {
		return id
	}
	return serverutils.DefaultUserId
}

func (c *examController) GetProgress(ctx *fiber.Ctx) error {
	res, err := c.examService.GetProgress(ctx.Context(), c.userId(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get progress", res))
}

func (c *examController) SubmitChallenge(ctx *fiber.Ctx) error {
	var req dto.ChallengeSubmission
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	validation, progress, err := c.examService.SubmitChallenge(ctx.Context(), c.userId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Challenge submitted", fiber.Map{
		"validation": validation,
		"progress":   progress,
	}))
}

func (c *examController) CompleteTopic(ctx *fiber.Ctx) error {
	topicId := ctx.Params("topicId")
	if topicId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "topicId is required")
	}

	res, err := c.examService.CompleteTopic(ctx.Context(), c.userId(ctx), topicId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Topic completed", res))
}

func (c *examController) CompleteLevel(ctx *fiber.Ctx) error {
	levelId := ctx.Params("levelId")
	if levelId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "levelId is required")
	}

	res, err := c.examService.CompleteLevel(ctx.Context(), c.userId(ctx), levelId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Level completed", res))
}

func (c *examController) ResetProgress(ctx *fiber.Ctx) error {
	res, err := c.examService.ResetProgress(ctx.Context(), c.userId(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Progress reset", res))
}

func (c *examController) GetStats(ctx *fiber.Ctx) error {
	res, err := c.examService.GetStats(ctx.Context(), c.userId(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get stats", res))
}

func (c *examController) GetLeaderboard(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 10)

	res, err := c.leaderboardService.Top(ctx.Context(), limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get leaderboard", res))
}
