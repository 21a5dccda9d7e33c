package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiBackend struct {
	client *genai.Client
}

func NewGeminiBackend(ctx context.Context, apiKey string) (Backend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiBackend{client: client}, nil
}

func (g *geminiBackend) Chat(ctx context.Context, req ChatRequest) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr(float32(req.Temperature)),
		TopP:              genai.Ptr(float32(req.TopP)),
		ResponseMIMEType:  "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in gemini response")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in gemini response")
	}
	return text, nil
}

func (g *geminiBackend) ListModels(ctx context.Context) ([]string, error) {
	var names []string

	page, err := g.client.Models.List(ctx, &genai.ListModelsConfig{})
	for {
		if errors.Is(err, genai.ErrPageDone) {
			return names, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list gemini models: %w", err)
		}
		for _, m := range page.Items {
			names = append(names, strings.TrimPrefix(m.Name, "models/"))
		}
		if page.NextPageToken == "" {
			return names, nil
		}
		page, err = page.Next(ctx)
	}
}

// PullModel only verifies the model exists. Gemini models are hosted remotely.
func (g *geminiBackend) PullModel(ctx context.Context, name string) error {
	if _, err := g.client.Models.Get(ctx, name, nil); err != nil {
		return fmt.Errorf("gemini model %s is not available: %w", name, err)
	}
	return nil
}
