// File path: internal/llm/providers/openai_client.go
package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"golang.org/x/time/rate"

	"github.com/nicodishanthj/propinsight/internal/common"
)

// OpenAIConfig selects models and sampling for the OpenAI provider.
type OpenAIConfig struct {
	ChatModel         string
	SearchModel       string
	Temperature       float64
	SearchContextSize string
	RequestsPerSecond float64
	Burst             int
}

type OpenAIProvider struct {
	client  openai.Client
	cfg     OpenAIConfig
	limiter *rate.Limiter
}

func NewOpenAIProvider(client openai.Client, cfg OpenAIConfig) *OpenAIProvider {
	if cfg.ChatModel == "" {
		cfg.ChatModel = string(openai.ChatModelGPT4oMini)
	}
	if cfg.SearchModel == "" {
		cfg.SearchModel = string(openai.ChatModelGPT4oMiniSearchPreview)
	}
	if cfg.SearchContextSize == "" {
		cfg.SearchContextSize = "medium"
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	logger := common.Logger()
	logger.Info("llm: OpenAI provider configured", "chat_model", cfg.ChatModel, "search_model", cfg.SearchModel, "rps", cfg.RequestsPerSecond)
	return &OpenAIProvider{client: client, cfg: cfg, limiter: rate.NewLimiter(limit, cfg.Burst)}
}

func (o *OpenAIProvider) Complete(ctx context.Context, req Request) (Completion, error) {
	if len(req.Messages) == 0 {
		return Completion{}, fmt.Errorf("no messages provided")
	}
	logger := common.Logger()
	if err := o.limiter.Wait(ctx); err != nil {
		return Completion{}, fmt.Errorf("rate limit wait: %w", err)
	}
	params := openai.ChatCompletionNewParams{}
	for _, msg := range req.Messages {
		switch strings.ToLower(msg.Role) {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		}
	}
	model := o.cfg.ChatModel
	if req.WebSearch {
		// Search models reject sampling parameters.
		model = o.cfg.SearchModel
		params.WebSearchOptions = openai.ChatCompletionNewParamsWebSearchOptions{
			SearchContextSize: o.cfg.SearchContextSize,
		}
	} else {
		temperature := o.cfg.Temperature
		if req.Temperature != nil {
			temperature = *req.Temperature
		}
		params.Temperature = openai.Float(temperature)
	}
	params.Model = openai.ChatModel(model)

	start := time.Now()
	logger.Debug("llm: sending chat completion request", "model", model, "messages", len(req.Messages), "web_search", req.WebSearch)
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("llm: chat completion failed", "model", model, "error", err)
		return Completion{}, err
	}
	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("no choices returned")
	}
	message := resp.Choices[0].Message
	completion := Completion{Text: message.Content, Model: resp.Model}
	for _, annotation := range message.Annotations {
		if annotation.URLCitation.URL == "" {
			continue
		}
		completion.Citations = append(completion.Citations, Citation{
			Label: annotation.URLCitation.Title,
			URL:   annotation.URLCitation.URL,
		})
	}
	logger.Debug("llm: chat completion succeeded", "model", model, "dur", time.Since(start), "citations", len(completion.Citations))
	return completion, nil
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}
