package handlers

import "github.com/gofiber/fiber/v2"

type Handlers struct {
	Health     *HealthHandler
	Upload     *UploadHandler
	Evaluation *EvaluationHandler
	Jobs       *JobHandler
	Result     *ResultHandler
}

// RegisterRoutes mounts the API under prefix and the welcome route at "/".
func RegisterRoutes(app *fiber.App, prefix string, h Handlers) {
	app.Get("/", h.Health.HandleRoot)

	api := app.Group(prefix)
	api.Get("/health", h.Health.HandleHealth)

	api.Post("/upload", h.Upload.HandleUpload)
	api.Get("/upload/:id", h.Upload.HandleGetUpload)
	api.Delete("/upload/:id", h.Upload.HandleDeleteUpload)
	api.Get("/uploads", h.Upload.HandleListUploads)

	api.Post("/evaluate-file", h.Evaluation.HandleEvaluateFile)
	api.Post("/evaluate-text", h.Evaluation.HandleEvaluateText)
	api.Post("/extract-skills", h.Evaluation.HandleExtractSkills)
	api.Get("/model-status", h.Evaluation.HandleModelStatus)
	api.Post("/setup-model", h.Evaluation.HandleSetupModel)
	api.Get("/supported-formats", h.Evaluation.HandleSupportedFormats)

	api.Post("/upload/:id/evaluate", h.Jobs.HandleEvaluateUpload)
	api.Get("/result/:id", h.Result.HandleGetResult)
}
