package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-engine/internal/models"
	"alfredoptarigan/cv-engine/internal/repositories"
)

// JobProcessor runs one queued evaluation of a stored upload.
type JobProcessor interface {
	ProcessJob(ctx context.Context, jobID uuid.UUID) error
}

type jobProcessor struct {
	evalRepo   repositories.EvaluationRepository
	uploadRepo repositories.UploadRepository
	cvService  CVEvaluationService
	logger     *zap.Logger
}

func NewJobProcessor(
	evalRepo repositories.EvaluationRepository,
	uploadRepo repositories.UploadRepository,
	cvService CVEvaluationService,
	logger *zap.Logger,
) JobProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &jobProcessor{
		evalRepo:   evalRepo,
		uploadRepo: uploadRepo,
		cvService:  cvService,
		logger:     logger.Named("jobs"),
	}
}

func (p *jobProcessor) ProcessJob(ctx context.Context, jobID uuid.UUID) error {
	job, err := p.evalRepo.FindByID(jobID)
	if err != nil {
		return fmt.Errorf("failed to get evaluation job: %w", err)
	}
	if job.Status != models.StatusQueued {
		p.logger.Debug("job already picked up", zap.String("job_id", jobID.String()), zap.String("status", string(job.Status)))
		return nil
	}

	if err := p.evalRepo.UpdateStatus(jobID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	log := p.logger.With(zap.String("job_id", jobID.String()), zap.String("upload_id", job.UploadID.String()))
	log.Info("starting evaluation")

	upload, err := p.uploadRepo.FindByID(job.UploadID)
	if err != nil {
		p.fail(log, jobID, nil, fmt.Sprintf("Upload not found: %v", err))
		return fmt.Errorf("failed to get upload: %w", err)
	}

	if err := p.uploadRepo.UpdateStatus(upload.ID, models.UploadProcessing, nil); err != nil {
		log.Warn("failed to mark upload processing", zap.Error(err))
	}

	resp := p.cvService.EvaluateFile(ctx, upload.FilePath, upload.Filename, true)
	if !resp.Success {
		p.fail(log, jobID, &upload.ID, resp.Error)
		return fmt.Errorf("evaluation failed: %s", resp.Error)
	}

	if err := p.evalRepo.UpdateResult(jobID, resp); err != nil {
		p.fail(log, jobID, &upload.ID, "Failed to save evaluation result")
		return fmt.Errorf("failed to save result: %w", err)
	}
	if err := p.uploadRepo.UpdateStatus(upload.ID, models.UploadCompleted, nil); err != nil {
		log.Warn("failed to mark upload completed", zap.Error(err))
	}

	log.Info("evaluation completed", zap.Int("overall_score", resp.Evaluation.OverallScore))
	return nil
}

func (p *jobProcessor) fail(log *zap.Logger, jobID uuid.UUID, uploadID *uuid.UUID, msg string) {
	if err := p.evalRepo.UpdateError(jobID, msg); err != nil {
		log.Error("failed to record job error", zap.Error(err))
	}
	if uploadID != nil {
		if err := p.uploadRepo.UpdateStatus(*uploadID, models.UploadFailed, &msg); err != nil {
			log.Error("failed to mark upload failed", zap.Error(err))
		}
	}
}
