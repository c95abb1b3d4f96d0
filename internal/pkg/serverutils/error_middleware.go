package serverutils

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbling out of controllers into
// consistent JSON envelopes. AppErrors carry their own status; validation
// errors become 400s; anything else is a 500 with the detail kept out of
// the response body.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := AsAppError(err); ok {
			if appErr.Code == ErrCodeInternal {
				log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), appErr)
			}
			return ctx.Status(appErr.HTTPStatus()).JSON(ErrorResponse(appErr.Message))
		}

		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(vErrs.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error"))
	}
}
