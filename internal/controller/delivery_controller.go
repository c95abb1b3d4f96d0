package controller

import (
	"family-stories-be/internal/dto"
	"family-stories-be/internal/entity"
	"family-stories-be/internal/pkg/serverutils"
	"family-stories-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDeliveryController interface {
	RegisterRoutes(r fiber.Router)
	NextPrompt(ctx *fiber.Ctx) error
	Acknowledge(ctx *fiber.Ctx) error
	CreateUserPrompt(ctx *fiber.Ctx) error
	ListUserPrompts(ctx *fiber.Ctx) error
}

type deliveryController struct {
	deliveryService service.IDeliveryService
}

func NewDeliveryController(deliveryService service.IDeliveryService) IDeliveryController {
	return &deliveryController{
		deliveryService: deliveryService,
	}
}

func (c *deliveryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/delivery/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("projects/:projectId/next-prompt", c.NextPrompt)
	h.Post("projects/:projectId/acknowledge", c.Acknowledge)
	h.Post("projects/:projectId/user-prompts", c.CreateUserPrompt)
	h.Get("projects/:projectId/user-prompts", c.ListUserPrompts)
}

func (c *deliveryController) NextPrompt(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	projectId, _ := uuid.Parse(ctx.Params("projectId"))

	res, err := c.deliveryService.GetNextPrompt(ctx.Context(), userId, projectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get next prompt", res))
}

func (c *deliveryController) Acknowledge(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	projectId, _ := uuid.Parse(ctx.Params("projectId"))

	var req dto.AcknowledgeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	// The wire discriminator collapses here: a user ack must carry the
	// prompt id. A system ack may echo the id of the prompt just shown;
	// it is taken at face value and never verified, so it is dropped
	// rather than rejected.
	var ack entity.Acknowledgement
	if req.IsUserPrompt {
		if req.PromptId == uuid.Nil {
			return serverutils.NewBadRequest("prompt_id is required for user prompt acknowledgements")
		}
		ack = entity.UserAck(req.PromptId)
	} else {
		ack = entity.SystemAck()
	}

	if err := c.deliveryService.AcknowledgeDelivery(ctx.Context(), userId, projectId, ack); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success acknowledge delivery", dto.AcknowledgeResponse{Ok: true}))
}

func (c *deliveryController) CreateUserPrompt(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	projectId, _ := uuid.Parse(ctx.Params("projectId"))

	var req dto.CreateUserPromptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.ProjectId = projectId
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.deliveryService.CreateUserPrompt(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success queue user prompt", res))
}

func (c *deliveryController) ListUserPrompts(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	projectId, _ := uuid.Parse(ctx.Params("projectId"))

	res, err := c.deliveryService.ListUserPrompts(ctx.Context(), userId, projectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list user prompts", res))
}
