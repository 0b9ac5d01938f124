// File path: internal/llm/llm.go
package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/nicodishanthj/propinsight/internal/common"
	"github.com/nicodishanthj/propinsight/internal/llm/providers"
)

type (
	Message    = providers.Message
	Request    = providers.Request
	Completion = providers.Completion
	Citation   = providers.Citation
	Provider   = providers.Provider
)

const defaultTemperature = 0.2

// Config carries the completion backend settings read from the environment.
type Config struct {
	APIKey            string
	Endpoint          string
	HTTPTimeout       time.Duration
	MaxRetries        int
	ChatModel         string
	SearchModel       string
	Temperature       float64
	SearchContextSize string
	RequestsPerSecond float64
	Burst             int
}

// LoadConfig reads OPENAI_* variables. Invalid numeric values are reported.
func LoadConfig() (Config, error) {
	cfg := Config{
		APIKey:            strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Endpoint:          strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")),
		ChatModel:         strings.TrimSpace(os.Getenv("OPENAI_CHAT_MODEL")),
		SearchModel:       strings.TrimSpace(os.Getenv("OPENAI_SEARCH_MODEL")),
		SearchContextSize: strings.TrimSpace(os.Getenv("OPENAI_SEARCH_CONTEXT_SIZE")),
		Temperature:       defaultTemperature,
		MaxRetries:        -1,
	}
	if raw := strings.TrimSpace(os.Getenv("OPENAI_HTTP_TIMEOUT")); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse OPENAI_HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = timeout
	}
	if raw := strings.TrimSpace(os.Getenv("OPENAI_MAX_RETRIES")); raw != "" {
		retries, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse OPENAI_MAX_RETRIES: %w", err)
		}
		cfg.MaxRetries = retries
	}
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TEMPERATURE")); raw != "" {
		temperature, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse OPENAI_TEMPERATURE: %w", err)
		}
		cfg.Temperature = temperature
	}
	if raw := strings.TrimSpace(os.Getenv("OPENAI_RATE_LIMIT")); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse OPENAI_RATE_LIMIT: %w", err)
		}
		cfg.RequestsPerSecond = rps
	}
	if raw := strings.TrimSpace(os.Getenv("OPENAI_RATE_BURST")); raw != "" {
		burst, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse OPENAI_RATE_BURST: %w", err)
		}
		cfg.Burst = burst
	}
	return cfg, nil
}

// NewProvider returns the OpenAI provider when an API key is configured and
// the local echo provider otherwise.
func NewProvider(cfg Config) Provider {
	logger := common.Logger()
	if cfg.APIKey == "" {
		logger.Warn("llm: OPENAI_API_KEY not set; falling back to local provider")
		return providers.NewLocalProvider()
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.HTTPTimeout > 0 {
		logger.Info("llm: configuring OpenAI client with custom request timeout", "timeout", cfg.HTTPTimeout)
		opts = append(opts, option.WithRequestTimeout(cfg.HTTPTimeout))
	}
	if cfg.MaxRetries >= 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}
	if cfg.Endpoint != "" {
		logger.Info("llm: configuring OpenAI client with custom endpoint", "endpoint", cfg.Endpoint)
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	} else {
		logger.Debug("llm: using default OpenAI endpoint")
	}
	client := openai.NewClient(opts...)
	logger.Info("llm: OpenAI provider selected")
	return providers.NewOpenAIProvider(client, providers.OpenAIConfig{
		ChatModel:         cfg.ChatModel,
		SearchModel:       cfg.SearchModel,
		Temperature:       cfg.Temperature,
		SearchContextSize: cfg.SearchContextSize,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	})
}

// Temperature returns a pointer suitable for Request.Temperature.
func Temperature(value float64) *float64 {
	return &value
}
