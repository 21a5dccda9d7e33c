package models

import (
	"alfredoptarigan/cv-engine/internal/extraction"
	"alfredoptarigan/cv-engine/internal/skills"
)

type ExtractionMetadata struct {
	ExtractorType string                  `json:"extractor_type"`
	FileSize      int64                   `json:"file_size"`
	TextStats     extraction.TextStats    `json:"text_stats"`
	ContactInfo   *extraction.ContactInfo `json:"contact_info,omitempty"`
}

type FileInfo struct {
	Filename           string              `json:"filename"`
	FileType           string              `json:"file_type"`
	TextLength         int                 `json:"text_length"`
	ExtractionMetadata *ExtractionMetadata `json:"extraction_metadata,omitempty"`
}

// EvaluationResponse is the envelope returned for every evaluation request.
// Exactly one of Evaluation and Error is set.
type EvaluationResponse struct {
	Success    bool                    `json:"success"`
	FileInfo   *FileInfo               `json:"file_info,omitempty"`
	Evaluation *CVEvaluationResult     `json:"evaluation,omitempty"`
	Skills     *skills.ExtractedSkills `json:"skills,omitempty"`
	RawText    string                  `json:"raw_text,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

type EvaluateTextRequest struct {
	Text          string `json:"text"`
	Filename      string `json:"filename"`
	IncludeSkills *bool  `json:"include_skills"`
}

type ExtractSkillsRequest struct {
	Text string `json:"text"`
}

type UploadResponse struct {
	UploadID string       `json:"upload_id"`
	Filename string       `json:"filename"`
	FileSize int64        `json:"file_size"`
	Status   UploadStatus `json:"status"`
	Message  string       `json:"message"`
}

type UploadListResponse struct {
	Uploads    []Upload `json:"uploads"`
	TotalCount int      `json:"total_count"`
}

type ModelStatus struct {
	ModelName string `json:"model_name"`
	Available bool   `json:"available"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

type SupportedFormatsResponse struct {
	Formats       []string `json:"formats"`
	MaxFileSizeMB int64    `json:"max_file_size_mb"`
	Description   string   `json:"description"`
}

type EvaluateResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ResultResponse struct {
	ID           string              `json:"id"`
	UploadID     string              `json:"upload_id"`
	Status       string              `json:"status"`
	Result       *EvaluationResponse `json:"result,omitempty"`
	ErrorMessage *string             `json:"error_message,omitempty"`
}
