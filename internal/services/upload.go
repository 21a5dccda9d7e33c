package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-engine/internal/models"
	"alfredoptarigan/cv-engine/internal/repositories"
)

type UploadService interface {
	Upload(file *multipart.FileHeader) (*models.Upload, error)
	Get(id uuid.UUID) (*models.Upload, error)
	List() ([]models.Upload, error)
	Delete(id uuid.UUID) error
}

type uploadService struct {
	repo      repositories.UploadRepository
	storage   StorageService
	validator *FileValidator
	logger    *zap.Logger
}

func NewUploadService(
	repo repositories.UploadRepository,
	storage StorageService,
	validator *FileValidator,
	logger *zap.Logger,
) UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &uploadService{
		repo:      repo,
		storage:   storage,
		validator: validator,
		logger:    logger.Named("uploads"),
	}
}

// Upload validates and stores file, then registers it as pending.
// Rejections are returned as *ValidationError.
func (s *uploadService) Upload(file *multipart.FileHeader) (*models.Upload, error) {
	ext, err := s.validator.Validate(file.Filename, file.Size)
	if err != nil {
		return nil, err
	}

	storedName, filePath, err := s.storage.SaveFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	now := time.Now()
	upload := &models.Upload{
		ID:         uuid.New(),
		Filename:   file.Filename,
		StoredName: storedName,
		FilePath:   filePath,
		FileSize:   file.Size,
		FileType:   ext,
		Status:     models.UploadPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(upload); err != nil {
		if delErr := s.storage.DeleteFile(storedName); delErr != nil {
			s.logger.Warn("failed to clean up stored file", zap.String("file", storedName), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to register upload: %w", err)
	}

	s.logger.Info("upload stored",
		zap.String("upload_id", upload.ID.String()),
		zap.String("filename", upload.Filename),
		zap.Int64("size", upload.FileSize),
	)
	return upload, nil
}

func (s *uploadService) Get(id uuid.UUID) (*models.Upload, error) {
	return s.repo.FindByID(id)
}

func (s *uploadService) List() ([]models.Upload, error) {
	return s.repo.List()
}

func (s *uploadService) Delete(id uuid.UUID) error {
	upload, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteFile(upload.StoredName); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	s.logger.Info("upload deleted", zap.String("upload_id", id.String()))
	return nil
}
