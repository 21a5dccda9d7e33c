package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-engine/internal/models"
	"alfredoptarigan/cv-engine/internal/services"
)

type UploadHandler struct {
	uploads services.UploadService
}

func NewUploadHandler(uploads services.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// HandleUpload handles POST /upload
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Send the CV as multipart field 'file'.")
	}

	upload, err := h.uploads.Upload(file)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.UploadResponse{
		UploadID: upload.ID.String(),
		Filename: upload.Filename,
		FileSize: upload.FileSize,
		Status:   upload.Status,
		Message:  "File uploaded successfully",
	})
}

// HandleGetUpload handles GET /upload/:id
func (h *UploadHandler) HandleGetUpload(c *fiber.Ctx) error {
	id, err := parseUUID(c, "upload")
	if err != nil {
		return err
	}

	upload, err := h.uploads.Get(id)
	if err != nil {
		return notFoundOr(err, "Upload not found")
	}
	return c.JSON(upload)
}

// HandleListUploads handles GET /uploads
func (h *UploadHandler) HandleListUploads(c *fiber.Ctx) error {
	uploads, err := h.uploads.List()
	if err != nil {
		return err
	}
	return c.JSON(models.UploadListResponse{
		Uploads:    uploads,
		TotalCount: len(uploads),
	})
}

// HandleDeleteUpload handles DELETE /upload/:id
func (h *UploadHandler) HandleDeleteUpload(c *fiber.Ctx) error {
	id, err := parseUUID(c, "upload")
	if err != nil {
		return err
	}

	if err := h.uploads.Delete(id); err != nil {
		return notFoundOr(err, "Upload not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
