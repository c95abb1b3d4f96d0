package controller

import (
	"family-stories-be/internal/dto"
	"family-stories-be/internal/pkg/serverutils"
	"family-stories-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IStoryController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	CreateInteraction(ctx *fiber.Ctx) error
	ListInteractions(ctx *fiber.Ctx) error
}

type storyController struct {
	storyService       service.IStoryService
	interactionService service.IInteractionService
}

func NewStoryController(storyService service.IStoryService, interactionService service.IInteractionService) IStoryController {
	return &storyController{
		storyService:       storyService,
		interactionService: interactionService,
	}
}

func (c *storyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/story/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Post(":id/interactions", c.CreateInteraction)
	h.Get(":id/interactions", c.ListInteractions)
}

func (c *storyController) Create(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateStoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.storyService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create story", res))
}

func (c *storyController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.storyService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show story", res))
}

func (c *storyController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	projectId, err := uuid.Parse(ctx.Query("project_id"))
	if err != nil {
		return serverutils.NewBadRequest("project_id query parameter is required")
	}

	res, err := c.storyService.List(ctx.Context(), userId, projectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list stories", res))
}

func (c *storyController) Update(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.UpdateStoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.storyService.Update(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update story", res))
}

func (c *storyController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.storyService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete story", nil))
}

func (c *storyController) CreateInteraction(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	storyId, _ := uuid.Parse(ctx.Params("id"))

	var req dto.CreateInteractionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.StoryId = storyId
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.interactionService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create interaction", res))
}

func (c *storyController) ListInteractions(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	storyId, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.interactionService.List(ctx.Context(), userId, storyId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list interactions", res))
}
