package models

import (
	"time"

	"github.com/google/uuid"
)

// CVEvaluationResult is the scored judgment for one CV. Scores are always
// within their documented ranges; OverallScore is a holistic figure and is
// not derived from the three sub-scores.
type CVEvaluationResult struct {
	OverallScore     int      `json:"overall_score"`    // 0-100
	SkillsScore      int      `json:"skills_score"`     // 0-50
	ExperienceScore  int      `json:"experience_score"` // 0-30
	EducationScore   int      `json:"education_score"`  // 0-20
	SkillsFound      []string `json:"skills_found"`
	YearsExperience  int      `json:"years_experience"`
	EducationLevel   string   `json:"education_level"`
	DetailedAnalysis string   `json:"detailed_analysis"`
	Recommendations  []string `json:"recommendations"`
	MarketInsights   string   `json:"market_insights"`
}

type EvaluationStatus string

const (
	StatusQueued     EvaluationStatus = "queued"
	StatusProcessing EvaluationStatus = "processing"
	StatusCompleted  EvaluationStatus = "completed"
	StatusFailed     EvaluationStatus = "failed"
)

// EvaluationJob tracks an asynchronous evaluation of a stored upload.
type EvaluationJob struct {
	ID           uuid.UUID           `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UploadID     uuid.UUID           `gorm:"type:uuid;not null;index" json:"upload_id"`
	Status       EvaluationStatus    `gorm:"not null;default:'queued'" json:"status"`
	Result       *EvaluationResponse `gorm:"type:jsonb;serializer:json" json:"result,omitempty"`
	ErrorMessage *string             `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time           `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time           `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Upload Upload `gorm:"foreignKey:UploadID;constraint:OnDelete:CASCADE" json:"-"`
}

func (EvaluationJob) TableName() string {
	return "evaluation_jobs"
}
