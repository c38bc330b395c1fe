package controller

import (
	"docsearch-be/internal/pkg/serverutils"
	"docsearch-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
}

type searchController struct {
	searchService service.ISearchService
}

func NewSearchController(searchService service.ISearchService) ISearchController {
	return &searchController{
		searchService: searchService,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search/v1")
	h.Use(serverutils.OwnerMiddleware)
	h.Get("", c.Search)
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	ownerId := serverutils.OwnerId(ctx)

	query := ctx.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing query parameter 'q'")
	}
	topK := ctx.QueryInt("top_k", 0)
	sourceType := ctx.Query("source_type")

	res, err := c.searchService.Search(ctx.Context(), ownerId, query, topK, sourceType)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search", res))
}
