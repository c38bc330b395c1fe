package serverutils

import (
	"errors"

	"docsearch-be/internal/apperr"
	"docsearch-be/internal/repository/contract"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// OwnerHeader carries the authenticated caller's id, set by the gateway in
// front of this service. Requests without it are rejected.
const OwnerHeader = "X-Owner-Id"

// OwnerMiddleware resolves the owner id header into ctx.Locals("owner_id").
func OwnerMiddleware(ctx *fiber.Ctx) error {
	raw := ctx.Get(OwnerHeader)
	if raw == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "missing owner identity"))
	}
	ownerId, err := uuid.Parse(raw)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "invalid owner identity"))
	}
	ctx.Locals("owner_id", ownerId.String())
	return ctx.Next()
}

// OwnerId reads the owner id resolved by OwnerMiddleware.
func OwnerId(ctx *fiber.Ctx) uuid.UUID {
	raw, _ := ctx.Locals("owner_id").(string)
	id, _ := uuid.Parse(raw)
	return id
}

// ErrorHandlerMiddleware maps errors bubbling out of controllers to HTTP
// status codes. Domain errors get specific codes; everything else is a 500
// with a generic body so internals never leak.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		code := fiber.StatusInternalServerError
		message := "internal server error"

		switch {
		case errors.Is(err, apperr.ErrEmptyDocument),
			errors.Is(err, apperr.ErrInvalidSourceType),
			errors.Is(err, contract.ErrDimensionMismatch):
			code = fiber.StatusBadRequest
			message = err.Error()
		case errors.Is(err, apperr.ErrDocumentTooLarge):
			code = fiber.StatusRequestEntityTooLarge
			message = err.Error()
		case errors.Is(err, apperr.ErrJobNotFound):
			code = fiber.StatusNotFound
			message = err.Error()
		case errors.Is(err, apperr.ErrJobNotCancellable):
			code = fiber.StatusConflict
			message = err.Error()
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
