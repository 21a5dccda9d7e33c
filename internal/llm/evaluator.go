package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/cv-engine/internal/models"
)

const DefaultModel = "llama3.2:1b"

type Options struct {
	Model       string
	Temperature float64
	TopP        float64
}

func DefaultOptions() Options {
	return Options{Model: DefaultModel, Temperature: 0.1, TopP: 0.9}
}

type Evaluator interface {
	// EvaluateCV always returns a usable result. Model and parsing failures
	// degrade to Fallback.
	EvaluateCV(ctx context.Context, cvText string) models.CVEvaluationResult
	IsModelAvailable(ctx context.Context) (bool, error)
	PullModelIfNeeded(ctx context.Context) error
	ModelName() string
}

type evaluator struct {
	backend Backend
	opts    Options
	logger  *zap.Logger
}

func NewEvaluator(backend Backend, opts Options, logger *zap.Logger) Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	logger = logger.Named("llm")
	logger.Info("evaluator initialized", zap.String("model", opts.Model))
	return &evaluator{backend: backend, opts: opts, logger: logger}
}

func (e *evaluator) ModelName() string { return e.opts.Model }

func (e *evaluator) EvaluateCV(ctx context.Context, cvText string) models.CVEvaluationResult {
	reply, err := e.backend.Chat(ctx, ChatRequest{
		Model:       e.opts.Model,
		System:      SystemPrompt,
		Prompt:      BuildPrompt(cvText),
		Temperature: e.opts.Temperature,
		TopP:        e.opts.TopP,
	})
	if err != nil {
		e.logger.Error("model call failed, using fallback", zap.Error(err))
		return Fallback(cvText)
	}

	result, err := ParseEvaluation(reply)
	if err != nil {
		e.logger.Error("unusable model response, using fallback",
			zap.String("reason", failureReason(err)),
			zap.Error(err),
			zap.String("response", truncateForLog(reply, 500)),
		)
		return Fallback(cvText)
	}

	e.logger.Info("cv evaluated", zap.Int("overall_score", result.OverallScore))
	return result
}

func (e *evaluator) IsModelAvailable(ctx context.Context) (bool, error) {
	names, err := e.backend.ListModels(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list models: %w", err)
	}
	for _, name := range names {
		if sameModel(name, e.opts.Model) {
			return true, nil
		}
	}
	return false, nil
}

func (e *evaluator) PullModelIfNeeded(ctx context.Context) error {
	available, err := e.IsModelAvailable(ctx)
	if err != nil {
		e.logger.Warn("could not check model availability, pulling anyway", zap.Error(err))
	}
	if available {
		e.logger.Info("model already available", zap.String("model", e.opts.Model))
		return nil
	}

	e.logger.Info("pulling model", zap.String("model", e.opts.Model))
	if err := e.backend.PullModel(ctx, e.opts.Model); err != nil {
		return fmt.Errorf("failed to pull model %s: %w", e.opts.Model, err)
	}
	e.logger.Info("model pulled", zap.String("model", e.opts.Model))
	return nil
}

// sameModel treats an untagged name as the ":latest" tag.
func sameModel(listed, wanted string) bool {
	if listed == wanted {
		return true
	}
	if !strings.Contains(wanted, ":") {
		return listed == wanted+":latest"
	}
	return false
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNoJSON):
		return "no_json"
	case errors.Is(err, ErrMalformedJSON):
		return "malformed_json"
	case errors.Is(err, ErrInvalidResult):
		return "invalid_result"
	default:
		return "unknown"
	}
}

func truncateForLog(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
