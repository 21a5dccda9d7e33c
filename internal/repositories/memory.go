package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/cv-engine/internal/models"
)

// memoryUploadRepository keeps uploads in process memory. It is used when no
// database is configured and is lost on restart.
type memoryUploadRepository struct {
	mu      sync.RWMutex
	uploads map[uuid.UUID]models.Upload
}

func NewMemoryUploadRepository() UploadRepository {
	return &memoryUploadRepository{uploads: make(map[uuid.UUID]models.Upload)}
}

func (r *memoryUploadRepository) Create(upload *models.Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if upload.ID == uuid.Nil {
		upload.ID = uuid.New()
	}
	if _, exists := r.uploads[upload.ID]; exists {
		return fmt.Errorf("upload %s already exists", upload.ID)
	}
	now := time.Now()
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = now
	}
	upload.UpdatedAt = now
	r.uploads[upload.ID] = *upload
	return nil
}

func (r *memoryUploadRepository) FindByID(id uuid.UUID) (*models.Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	upload, ok := r.uploads[id]
	if !ok {
		return nil, fmt.Errorf("upload %s: %w", id, ErrNotFound)
	}
	return &upload, nil
}

func (r *memoryUploadRepository) List() ([]models.Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Upload, 0, len(r.uploads))
	for _, u := range r.uploads {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryUploadRepository) UpdateStatus(id uuid.UUID, status models.UploadStatus, errorMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	upload, ok := r.uploads[id]
	if !ok {
		return fmt.Errorf("upload %s: %w", id, ErrNotFound)
	}
	upload.Status = status
	upload.ErrorMessage = errorMsg
	upload.UpdatedAt = time.Now()
	r.uploads[id] = upload
	return nil
}

func (r *memoryUploadRepository) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.uploads[id]; !ok {
		return fmt.Errorf("upload %s: %w", id, ErrNotFound)
	}
	delete(r.uploads, id)
	return nil
}

type memoryEvaluationRepository struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]models.EvaluationJob
}

func NewMemoryEvaluationRepository() EvaluationRepository {
	return &memoryEvaluationRepository{jobs: make(map[uuid.UUID]models.EvaluationJob)}
}

func (r *memoryEvaluationRepository) Create(job *models.EvaluationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("evaluation job %s already exists", job.ID)
	}
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	r.jobs[job.ID] = *job
	return nil
}

func (r *memoryEvaluationRepository) FindByID(id uuid.UUID) (*models.EvaluationJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("evaluation job %s: %w", id, ErrNotFound)
	}
	return &job, nil
}

func (r *memoryEvaluationRepository) UpdateStatus(id uuid.UUID, status models.EvaluationStatus) error {
	return r.mutate(id, func(job *models.EvaluationJob) {
		job.Status = status
	})
}

func (r *memoryEvaluationRepository) UpdateResult(id uuid.UUID, result *models.EvaluationResponse) error {
	return r.mutate(id, func(job *models.EvaluationJob) {
		job.Status = models.StatusCompleted
		job.Result = result
	})
}

func (r *memoryEvaluationRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.mutate(id, func(job *models.EvaluationJob) {
		job.Status = models.StatusFailed
		job.ErrorMessage = &errorMsg
	})
}

func (r *memoryEvaluationRepository) FindPendingJobs(limit int) ([]models.EvaluationJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pending []models.EvaluationJob
	for _, job := range r.jobs {
		if job.Status == models.StatusQueued {
			pending = append(pending, job)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *memoryEvaluationRepository) mutate(id uuid.UUID, fn func(*models.EvaluationJob)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("evaluation job %s: %w", id, ErrNotFound)
	}
	fn(&job)
	job.UpdatedAt = time.Now()
	r.jobs[id] = job
	return nil
}
