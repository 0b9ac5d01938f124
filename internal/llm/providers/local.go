// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"fmt"
	"strings"
)

// Message is a single chat turn.
type Message struct {
	Role    string
	Content string
}

// Request is one completion call. WebSearch asks the backend to consult the
// web before answering; backends that cannot search ignore it.
type Request struct {
	Messages    []Message
	WebSearch   bool
	Temperature *float64
}

// Citation is an external source the backend consulted.
type Citation struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Completion is the backend's answer.
type Completion struct {
	Text      string
	Citations []Citation
	Model     string
}

// Provider is a text-completion backend.
type Provider interface {
	Complete(ctx context.Context, req Request) (Completion, error)
	Name() string
}

// LocalProvider echoes the final prompt. It keeps the service usable without
// an API key.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Complete(ctx context.Context, req Request) (Completion, error) {
	if len(req.Messages) == 0 {
		return Completion{}, fmt.Errorf("no messages provided")
	}
	last := req.Messages[len(req.Messages)-1].Content
	return Completion{Text: "[local-stub] " + strings.TrimSpace(last), Model: "local"}, nil
}

func (l *LocalProvider) Name() string {
	return "local"
}
