package llm

import "context"

type ChatRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	TopP        float64
}

// Backend is a chat-capable model host. Implementations must be safe for
// concurrent use.
type Backend interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	ListModels(ctx context.Context) ([]string, error)
	// PullModel makes name available locally. Pulling a model that is
	// already present is not an error.
	PullModel(ctx context.Context, name string) error
}
