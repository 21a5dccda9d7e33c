package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-engine/internal/repositories"
	"alfredoptarigan/cv-engine/internal/services"
)

// ErrorHandler renders errors returned by handlers as {"error", "code"}.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := err.Error()

		var fe *fiber.Error
		var ve *services.ValidationError
		switch {
		case errors.As(err, &fe):
			code = fe.Code
		case errors.As(err, &ve):
			code = fiber.StatusBadRequest
			msg = ve.Message
		case errors.Is(err, repositories.ErrNotFound):
			code = fiber.StatusNotFound
		}

		if code >= fiber.StatusInternalServerError && fe == nil {
			msg = "Internal server error"
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": msg,
			"code":  code,
		})
	}
}

// parseUUID reads the :id route param, answering 400 when it is malformed.
func parseUUID(c *fiber.Ctx, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+what+" ID format")
	}
	return id, nil
}

// notFoundOr swaps a repository miss for a 404 carrying msg.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, msg)
	}
	return err
}
