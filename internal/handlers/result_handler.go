package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-engine/internal/models"
	"alfredoptarigan/cv-engine/internal/repositories"
)

type ResultHandler struct {
	evalRepo repositories.EvaluationRepository
}

func NewResultHandler(evalRepo repositories.EvaluationRepository) *ResultHandler {
	return &ResultHandler{
		evalRepo: evalRepo,
	}
}

// HandleGetResult handles GET /result/:id
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	evalID, err := parseUUID(c, "evaluation")
	if err != nil {
		return err
	}

	job, err := h.evalRepo.FindByID(evalID)
	if err != nil {
		return notFoundOr(err, "Evaluation not found")
	}

	response := models.ResultResponse{
		ID:       job.ID.String(),
		UploadID: job.UploadID.String(),
		Status:   string(job.Status),
	}
	switch job.Status {
	case models.StatusCompleted:
		response.Result = job.Result
	case models.StatusFailed:
		response.ErrorMessage = job.ErrorMessage
	}

	return c.JSON(response)
}
