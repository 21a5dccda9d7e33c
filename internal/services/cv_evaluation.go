package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"alfredoptarigan/cv-engine/internal/extraction"
	"alfredoptarigan/cv-engine/internal/llm"
	"alfredoptarigan/cv-engine/internal/models"
	"alfredoptarigan/cv-engine/internal/skills"
)

const rawTextPreviewLimit = 1000

type CVEvaluationService interface {
	EvaluateFile(ctx context.Context, filePath, displayName string, includeSkills bool) *models.EvaluationResponse
	EvaluateText(ctx context.Context, text, filename string, includeSkills bool) *models.EvaluationResponse
	ExtractSkills(text string) skills.ExtractedSkills
	ModelStatus(ctx context.Context) models.ModelStatus
	SetupModel(ctx context.Context) error
	ModelName() string
}

type cvEvaluationService struct {
	factory   extraction.ExtractorFactory
	cleaner   *extraction.TextCleaner
	skills    *skills.Extractor
	evaluator llm.Evaluator
	logger    *zap.Logger
}

func NewCVEvaluationService(
	factory extraction.ExtractorFactory,
	cleaner *extraction.TextCleaner,
	skillsExtractor *skills.Extractor,
	evaluator llm.Evaluator,
	logger *zap.Logger,
) CVEvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cvEvaluationService{
		factory:   factory,
		cleaner:   cleaner,
		skills:    skillsExtractor,
		evaluator: evaluator,
		logger:    logger.Named("cv_evaluation"),
	}
}

func (s *cvEvaluationService) EvaluateFile(ctx context.Context, filePath, displayName string, includeSkills bool) *models.EvaluationResponse {
	if displayName == "" {
		displayName = filepath.Base(filePath)
	}
	ext := filepath.Ext(filePath)

	extractor, ok := s.factory.GetExtractor(ext)
	if !ok {
		return errorResponse("Unsupported file type: " + ext)
	}

	s.logger.Info("extracting text",
		zap.String("file", displayName),
		zap.String("extractor", extractor.Name()),
	)
	extracted := extractor.ExtractText(filePath)
	if !extracted.Success {
		msg := extracted.Error
		if msg == "" {
			msg = "No text could be extracted from CV"
		}
		s.logger.Warn("extraction failed", zap.String("file", displayName), zap.String("error", msg))
		return errorResponse(msg)
	}

	var fileSize int64
	if info, err := os.Stat(filePath); err == nil {
		fileSize = info.Size()
	}

	resp := s.evaluate(ctx, extracted.Text, includeSkills)
	resp.FileInfo = &models.FileInfo{
		Filename:   displayName,
		FileType:   "." + extraction.NormalizeExtension(ext),
		TextLength: utf8.RuneCountInString(extracted.Text),
		ExtractionMetadata: &models.ExtractionMetadata{
			ExtractorType: extractor.Name(),
			FileSize:      fileSize,
			TextStats:     s.cleaner.GetTextStats(extracted.Text),
			ContactInfo:   contactInfo(s.cleaner, extracted.Text),
		},
	}
	return resp
}

func (s *cvEvaluationService) EvaluateText(ctx context.Context, text, filename string, includeSkills bool) *models.EvaluationResponse {
	if strings.TrimSpace(text) == "" {
		return errorResponse("No text provided for evaluation")
	}
	if filename == "" {
		filename = "direct_input.txt"
	}

	s.logger.Info("evaluating text input", zap.String("file", filename), zap.Int("characters", utf8.RuneCountInString(text)))

	resp := s.evaluate(ctx, text, includeSkills)
	resp.FileInfo = &models.FileInfo{
		Filename:   filename,
		FileType:   "text",
		TextLength: utf8.RuneCountInString(text),
		ExtractionMetadata: &models.ExtractionMetadata{
			ExtractorType: "DirectInput",
			FileSize:      int64(len(text)),
			TextStats:     s.cleaner.GetTextStats(text),
			ContactInfo:   contactInfo(s.cleaner, text),
		},
	}
	return resp
}

// evaluate cleans the text, optionally extracts skills and asks the model.
func (s *cvEvaluationService) evaluate(ctx context.Context, text string, includeSkills bool) *models.EvaluationResponse {
	cleaned := s.cleaner.CleanUnicodeText(text)
	evaluation := s.evaluator.EvaluateCV(ctx, cleaned)

	resp := &models.EvaluationResponse{
		Success:    true,
		Evaluation: &evaluation,
		RawText:    previewText(text),
	}
	if includeSkills && s.skills != nil {
		found := s.skills.Extract(cleaned)
		resp.Skills = &found
	}

	s.logger.Info("evaluation completed",
		zap.Int("overall_score", evaluation.OverallScore),
		zap.Bool("skills_included", resp.Skills != nil),
	)
	return resp
}

func (s *cvEvaluationService) ExtractSkills(text string) skills.ExtractedSkills {
	return s.skills.Extract(s.cleaner.CleanUnicodeText(text))
}

func (s *cvEvaluationService) ModelStatus(ctx context.Context) models.ModelStatus {
	status := models.ModelStatus{ModelName: s.evaluator.ModelName()}

	available, err := s.evaluator.IsModelAvailable(ctx)
	switch {
	case err != nil:
		s.logger.Error("model status check failed", zap.Error(err))
		status.Status = "error"
		status.Error = err.Error()
	case available:
		status.Available = true
		status.Status = "ready"
	default:
		status.Status = "not_available"
	}
	return status
}

func (s *cvEvaluationService) SetupModel(ctx context.Context) error {
	if err := s.evaluator.PullModelIfNeeded(ctx); err != nil {
		s.logger.Error("model setup failed", zap.Error(err))
		return err
	}
	s.logger.Info("model setup completed", zap.String("model", s.evaluator.ModelName()))
	return nil
}

func (s *cvEvaluationService) ModelName() string { return s.evaluator.ModelName() }

func errorResponse(msg string) *models.EvaluationResponse {
	return &models.EvaluationResponse{Success: false, Error: msg}
}

func contactInfo(c *extraction.TextCleaner, text string) *extraction.ContactInfo {
	info := c.ExtractContactInfo(text)
	return &info
}

// previewText truncates to rawTextPreviewLimit characters, marking the cut.
func previewText(text string) string {
	if utf8.RuneCountInString(text) <= rawTextPreviewLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:rawTextPreviewLimit]) + "..."
}
