package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"alfredoptarigan/cv-engine/internal/extraction"
)

const minFileSize = 1

// ValidationError marks a request that was rejected before any processing.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type FileValidator struct {
	maxSizeMB int64
	allowed   []string
}

// NewFileValidator keeps only the allowed types the extractor registry can
// actually handle.
func NewFileValidator(maxSizeMB int64, allowed []string, factory extraction.ExtractorFactory) *FileValidator {
	var types []string
	for _, t := range allowed {
		t = extraction.NormalizeExtension(t)
		if factory.IsSupported(t) {
			types = append(types, t)
		}
	}
	return &FileValidator{maxSizeMB: maxSizeMB, allowed: types}
}

// Validate checks size limits, then the extension, and returns the
// normalized extension on success.
func (v *FileValidator) Validate(filename string, size int64) (string, error) {
	if size < minFileSize {
		return "", newValidationError("File is empty or too small. Please upload a file with content.")
	}
	if size > v.MaxFileSizeBytes() {
		return "", newValidationError("File too large. Maximum size: %dMB", v.maxSizeMB)
	}

	ext := extraction.NormalizeExtension(filepath.Ext(filename))
	for _, t := range v.allowed {
		if t == ext {
			return ext, nil
		}
	}
	return "", newValidationError("File type not supported. Allowed: %s", strings.Join(v.allowed, ", "))
}

func (v *FileValidator) AllowedTypes() []string {
	out := make([]string, len(v.allowed))
	copy(out, v.allowed)
	return out
}

func (v *FileValidator) MaxFileSizeMB() int64 { return v.maxSizeMB }

func (v *FileValidator) MaxFileSizeBytes() int64 { return v.maxSizeMB * 1024 * 1024 }
