package controller

import (
	"family-stories-be/internal/dto"
	"family-stories-be/internal/pkg/serverutils"
	"family-stories-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// adminController exposes curriculum management. These mutations are
// content-team only; storytellers never see inactive chapters or prompts.
type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	CreateChapter(ctx *fiber.Ctx) error
	CreatePrompt(ctx *fiber.Ctx) error
	SetChapterActive(ctx *fiber.Ctx) error
	SetPromptActive(ctx *fiber.Ctx) error
}

type adminController struct {
	catalogService service.ICatalogService
}

func NewAdminController(catalogService service.ICatalogService) IAdminController {
	return &adminController{
		catalogService: catalogService,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Use(serverutils.AdminOnly)
	h.Post("chapters", c.CreateChapter)
	h.Post("prompts", c.CreatePrompt)
	h.Put("chapters/:id/active", c.SetChapterActive)
	h.Put("prompts/:id/active", c.SetPromptActive)
}

func (c *adminController) CreateChapter(ctx *fiber.Ctx) error {
	var req dto.CreateChapterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.catalogService.CreateChapter(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create chapter", res))
}

func (c *adminController) CreatePrompt(ctx *fiber.Ctx) error {
	var req dto.CreatePromptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.catalogService.CreatePrompt(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create prompt", res))
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

func (c *adminController) SetChapterActive(ctx *fiber.Ctx) error {
	id, _ := uuid.Parse(ctx.Params("id"))

	var req setActiveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.catalogService.SetChapterActive(ctx.Context(), id, req.IsActive); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update chapter", nil))
}

func (c *adminController) SetPromptActive(ctx *fiber.Ctx) error {
	id, _ := uuid.Parse(ctx.Params("id"))

	var req setActiveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.catalogService.SetPromptActive(ctx.Context(), id, req.IsActive); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update prompt", nil))
}
