package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/cv-engine/internal/models"
)

type EvaluationRepository interface {
	Create(job *models.EvaluationJob) error
	FindByID(id uuid.UUID) (*models.EvaluationJob, error)
	UpdateStatus(id uuid.UUID, status models.EvaluationStatus) error
	UpdateResult(id uuid.UUID, result *models.EvaluationResponse) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int) ([]models.EvaluationJob, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(job *models.EvaluationJob) error {
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create evaluation job: %w", err)
	}
	return nil
}

func (r *evaluationRepository) FindByID(id uuid.UUID) (*models.EvaluationJob, error) {
	var job models.EvaluationJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("evaluation job %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find evaluation job: %w", err)
	}
	return &job, nil
}

func (r *evaluationRepository) UpdateStatus(id uuid.UUID, status models.EvaluationStatus) error {
	return r.update(id, map[string]interface{}{
		"status": status,
	})
}

func (r *evaluationRepository) UpdateResult(id uuid.UUID, result *models.EvaluationResponse) error {
	// Map updates skip the json serializer on Result.
	res := r.db.Model(&models.EvaluationJob{ID: id}).
		Select("status", "result", "updated_at").
		Updates(&models.EvaluationJob{
			Status:    models.StatusCompleted,
			Result:    result,
			UpdatedAt: time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update evaluation result: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("evaluation job %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *evaluationRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
	})
}

func (r *evaluationRepository) FindPendingJobs(limit int) ([]models.EvaluationJob, error) {
	var jobs []models.EvaluationJob
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}
	return jobs, nil
}

func (r *evaluationRepository) update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.Model(&models.EvaluationJob{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update evaluation job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("evaluation job %s: %w", id, ErrNotFound)
	}
	return nil
}
