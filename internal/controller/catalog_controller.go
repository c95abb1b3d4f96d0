package controller

import (
	"family-stories-be/internal/pkg/serverutils"
	"family-stories-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
	ListCurriculum(ctx *fiber.Ctx) error
}

type catalogController struct {
	catalogService service.ICatalogService
}

func NewCatalogController(catalogService service.ICatalogService) ICatalogController {
	return &catalogController{
		catalogService: catalogService,
	}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/catalog/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("curriculum", c.ListCurriculum)
}

func (c *catalogController) ListCurriculum(ctx *fiber.Ctx) error {
	res, err := c.catalogService.ListCurriculum(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list curriculum", res))
}
