package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

type ollamaBackend struct {
	client     *resty.Client
	pullClient *resty.Client
}

// NewOllamaBackend talks to an Ollama server over its HTTP API. timeout
// bounds chat and listing calls; model pulls are bounded only by ctx.
func NewOllamaBackend(baseURL string, timeout time.Duration) Backend {
	newClient := func() *resty.Client {
		return resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json")
	}
	return &ollamaBackend{
		client:     newClient().SetTimeout(timeout),
		pullClient: newClient(),
	}
}

func (o *ollamaBackend) Chat(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"model": req.Model,
			"messages": []map[string]string{
				{"role": "system", "content": req.System},
				{"role": "user", "content": req.Prompt},
			},
			"stream": false,
			"options": map[string]interface{}{
				"temperature": req.Temperature,
				"top_p":       req.TopP,
			},
		}).
		Post("/api/chat")
	if err != nil {
		return "", fmt.Errorf("ollama chat request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ollama chat returned %d: %s", resp.StatusCode(), errorMessage(resp))
	}

	content := gjson.Get(resp.String(), "message.content")
	if !content.Exists() {
		return "", fmt.Errorf("ollama chat response has no message content")
	}
	return content.String(), nil
}

func (o *ollamaBackend) ListModels(ctx context.Context) ([]string, error) {
	resp, err := o.client.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return nil, fmt.Errorf("ollama list models failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ollama list models returned %d: %s", resp.StatusCode(), errorMessage(resp))
	}

	body := resp.String()
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("ollama list models returned invalid JSON")
	}

	var names []string
	for _, name := range gjson.Get(body, "models.#.name").Array() {
		names = append(names, name.String())
	}
	return names, nil
}

func (o *ollamaBackend) PullModel(ctx context.Context, name string) error {
	resp, err := o.pullClient.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"model":  name,
			"stream": false,
		}).
		Post("/api/pull")
	if err != nil {
		return fmt.Errorf("ollama pull %s failed: %w", name, err)
	}
	if resp.IsError() {
		return fmt.Errorf("ollama pull %s returned %d: %s", name, resp.StatusCode(), errorMessage(resp))
	}
	if msg := gjson.Get(resp.String(), "error"); msg.Exists() {
		return fmt.Errorf("ollama pull %s: %s", name, msg.String())
	}
	return nil
}

func errorMessage(resp *resty.Response) string {
	if msg := gjson.Get(resp.String(), "error"); msg.Exists() {
		return msg.String()
	}
	return resp.Status()
}
