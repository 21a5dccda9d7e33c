package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/cv-engine/internal/models"
)

type UploadRepository interface {
	Create(upload *models.Upload) error
	FindByID(id uuid.UUID) (*models.Upload, error)
	List() ([]models.Upload, error)
	UpdateStatus(id uuid.UUID, status models.UploadStatus, errorMsg *string) error
	Delete(id uuid.UUID) error
}

type uploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(upload *models.Upload) error {
	if err := r.db.Create(upload).Error; err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}
	return nil
}

func (r *uploadRepository) FindByID(id uuid.UUID) (*models.Upload, error) {
	var upload models.Upload
	if err := r.db.Where("id = ?", id).First(&upload).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("upload %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find upload: %w", err)
	}
	return &upload, nil
}

func (r *uploadRepository) List() ([]models.Upload, error) {
	var uploads []models.Upload
	if err := r.db.Order("created_at DESC").Find(&uploads).Error; err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	return uploads, nil
}

func (r *uploadRepository) UpdateStatus(id uuid.UUID, status models.UploadStatus, errorMsg *string) error {
	result := r.db.Model(&models.Upload{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update upload status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("upload %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *uploadRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.Upload{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete upload: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("upload %s: %w", id, ErrNotFound)
	}
	return nil
}
