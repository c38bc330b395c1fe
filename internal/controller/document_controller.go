package controller

import (
	"docsearch-be/internal/dto"
	"docsearch-be/internal/pkg/serverutils"
	"docsearch-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	IngestSync(ctx *fiber.Ctx) error
	JobStatus(ctx *fiber.Ctx) error
	CancelJob(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	ingestionService service.IIngestionService
}

func NewDocumentController(ingestionService service.IIngestionService) IDocumentController {
	return &documentController{
		ingestionService: ingestionService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(serverutils.OwnerMiddleware)
	h.Post("", c.Submit)
	h.Post("sync", c.IngestSync)
	h.Get("job/:id", c.JobStatus)
	h.Post("job/:id/cancel", c.CancelJob)
	h.Delete(":documentId", c.Delete)
}

func (c *documentController) Submit(ctx *fiber.Ctx) error {
	ownerId := serverutils.OwnerId(ctx)

	var req dto.IngestDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestionService.Submit(ctx.Context(), ownerId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Ingestion job accepted", res))
}

func (c *documentController) IngestSync(ctx *fiber.Ctx) error {
	ownerId := serverutils.OwnerId(ctx)

	var req dto.IngestDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestionService.IngestSync(ctx.Context(), ownerId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Document ingested", res))
}

func (c *documentController) JobStatus(ctx *fiber.Ctx) error {
	ownerId := serverutils.OwnerId(ctx)

	jobId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid job id")
	}

	res, err := c.ingestionService.JobStatus(ownerId, jobId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show job", res))
}

func (c *documentController) CancelJob(ctx *fiber.Ctx) error {
	ownerId := serverutils.OwnerId(ctx)

	jobId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid job id")
	}

	if err := c.ingestionService.CancelJob(ownerId, jobId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Cancellation requested", nil))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	ownerId := serverutils.OwnerId(ctx)

	documentId := ctx.Params("documentId")
	if documentId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing document id")
	}

	if err := c.ingestionService.DeleteDocument(ctx.Context(), ownerId, documentId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete document", nil))
}
