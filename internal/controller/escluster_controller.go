package controller

import (
	"elasticquest-be/internal/dto"
	"elasticquest-be/internal/pkg/serverutils"
	"elasticquest-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IESClusterController interface {
	RegisterRoutes(r fiber.Router)
	TestConnection(ctx *fiber.Ctx) error
	ExecuteCommand(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type esClusterController struct {
	service service.IESClusterService
}

func NewESClusterController(service service.IESClusterService) IESClusterController {
	return &esClusterController{service: service}
}

func (c *esClusterController) RegisterRoutes(r fiber.Router) {
	conn := r.Group("/es-connection")
	conn.Post("/test", c.TestConnection)
	conn.Get("/health", c.Health)

	exec := r.Group("/es-execution")
	exec.Post("/execute", c.ExecuteCommand)
}

func (c *esClusterController) TestConnection(ctx *fiber.Ctx) error {
	var req dto.ESConnectionConfig
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.service.TestConnection(ctx.Context(), &req)
	return ctx.JSON(res)
}

func (c *esClusterController) ExecuteCommand(ctx *fiber.Ctx) error {
	var req dto.ESExecutionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.service.ExecuteCommand(ctx.Context(), &req)
	return ctx.JSON(res)
}

func (c *esClusterController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("ES cluster proxy is running", fiber.Map{"status": "ok"}))
}
