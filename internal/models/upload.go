package models

import (
	"time"

	"github.com/google/uuid"
)

type UploadStatus string

const (
	UploadPending    UploadStatus = "pending"
	UploadProcessing UploadStatus = "processing"
	UploadCompleted  UploadStatus = "completed"
	UploadFailed     UploadStatus = "failed"
)

type Upload struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"upload_id"`
	Filename     string       `gorm:"type:text" json:"filename"`
	StoredName   string       `gorm:"type:text" json:"-"`
	FilePath     string       `gorm:"type:text" json:"file_path"`
	FileSize     int64        `gorm:"not null" json:"file_size"`
	FileType     string       `gorm:"type:text" json:"file_type"`
	Status       UploadStatus `gorm:"not null;default:'pending'" json:"status"`
	ErrorMessage *string      `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Upload) TableName() string {
	return "uploads"
}
