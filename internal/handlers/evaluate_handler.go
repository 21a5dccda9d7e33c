package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-engine/internal/models"
	"alfredoptarigan/cv-engine/internal/repositories"
	"alfredoptarigan/cv-engine/internal/services"
)

type EvaluationHandler struct {
	cv        services.CVEvaluationService
	validator *services.FileValidator
	temp      services.StorageService
	logger    *zap.Logger
}

func NewEvaluationHandler(
	cv services.CVEvaluationService,
	validator *services.FileValidator,
	temp services.StorageService,
	logger *zap.Logger,
) *EvaluationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationHandler{
		cv:        cv,
		validator: validator,
		temp:      temp,
		logger:    logger.Named("evaluation"),
	}
}

// HandleEvaluateFile handles POST /evaluate-file
func (h *EvaluationHandler) HandleEvaluateFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Send the CV as multipart field 'file'.")
	}
	if _, err := h.validator.Validate(file.Filename, file.Size); err != nil {
		return err
	}

	storedName, path, err := h.temp.SaveFile(file)
	if err != nil {
		return err
	}
	defer func() {
		if err := h.temp.DeleteFile(storedName); err != nil {
			h.logger.Warn("failed to remove temp file", zap.String("file", storedName), zap.Error(err))
		}
	}()

	h.logger.Info("processing cv file", zap.String("filename", file.Filename))
	return c.JSON(h.cv.EvaluateFile(c.UserContext(), path, file.Filename, true))
}

// HandleEvaluateText handles POST /evaluate-text
func (h *EvaluationHandler) HandleEvaluateText(c *fiber.Ctx) error {
	var req models.EvaluateTextRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request payload")
	}
	if strings.TrimSpace(req.Text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Text content is required")
	}

	includeSkills := req.IncludeSkills == nil || *req.IncludeSkills
	return c.JSON(h.cv.EvaluateText(c.UserContext(), req.Text, req.Filename, includeSkills))
}

// HandleExtractSkills handles POST /extract-skills
func (h *EvaluationHandler) HandleExtractSkills(c *fiber.Ctx) error {
	var req models.ExtractSkillsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request payload")
	}
	if strings.TrimSpace(req.Text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Text content is required")
	}
	return c.JSON(h.cv.ExtractSkills(req.Text))
}

// HandleModelStatus handles GET /model-status
func (h *EvaluationHandler) HandleModelStatus(c *fiber.Ctx) error {
	return c.JSON(h.cv.ModelStatus(c.UserContext()))
}

// HandleSetupModel handles POST /setup-model
func (h *EvaluationHandler) HandleSetupModel(c *fiber.Ctx) error {
	if err := h.cv.SetupModel(c.UserContext()); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to setup LLM model: "+err.Error())
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "LLM model setup completed successfully",
		"model_name": h.cv.ModelName(),
	})
}

// HandleSupportedFormats handles GET /supported-formats
func (h *EvaluationHandler) HandleSupportedFormats(c *fiber.Ctx) error {
	return c.JSON(models.SupportedFormatsResponse{
		Formats:       h.validator.AllowedTypes(),
		MaxFileSizeMB: h.validator.MaxFileSizeMB(),
		Description:   "Upload CV files in PDF, DOCX, or TXT format for LLM-powered evaluation",
	})
}

// JobHandler queues evaluations of stored uploads on the worker pool.
type JobHandler struct {
	uploads  repositories.UploadRepository
	evalRepo repositories.EvaluationRepository
	worker   services.Worker
}

func NewJobHandler(
	uploads repositories.UploadRepository,
	evalRepo repositories.EvaluationRepository,
	worker services.Worker,
) *JobHandler {
	return &JobHandler{
		uploads:  uploads,
		evalRepo: evalRepo,
		worker:   worker,
	}
}

// HandleEvaluateUpload handles POST /upload/:id/evaluate
func (h *JobHandler) HandleEvaluateUpload(c *fiber.Ctx) error {
	uploadID, err := parseUUID(c, "upload")
	if err != nil {
		return err
	}
	if _, err := h.uploads.FindByID(uploadID); err != nil {
		return notFoundOr(err, "Upload not found")
	}

	now := time.Now()
	job := &models.EvaluationJob{
		ID:        uuid.New(),
		UploadID:  uploadID,
		Status:    models.StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.evalRepo.Create(job); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create evaluation job")
	}

	// A full queue returns immediately and leaves the job for the pending-job poller.
	h.worker.EnqueueJob(job.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.EvaluateResponse{
		ID:     job.ID.String(),
		Status: string(models.StatusQueued),
	})
}
