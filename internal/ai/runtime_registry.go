package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/config"
)

// RuntimeFactory builds a Runtime from the generic config below.
type RuntimeFactory func(RuntimeConfig) Runtime

// RuntimeConfig carries common knobs used by runtimes.
type RuntimeConfig struct {
	HTTPTimeout time.Duration
	RetryMax    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	APIKey      string
	BaseURL     string
}

var registry = map[string]RuntimeFactory{}

// RegisterRuntime registers a provider name with its factory.
func RegisterRuntime(name string, f RuntimeFactory) { registry[name] = f }

// GetRuntime creates a Runtime for the given provider if registered.
func GetRuntime(name string, cfg RuntimeConfig) (Runtime, bool) {
	if f, ok := registry[name]; ok {
		return f(cfg), true
	}
	return nil, false
}

// NormalizeProvider maps user spellings onto the provider identifiers.
func NormalizeProvider(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openai", "gpt", "chatgpt":
		return ProviderOpenAI, nil
	case "gemini", "google":
		return ProviderGemini, nil
	case "", "none", "off", "simulated":
		return ProviderNone, nil
	default:
		return "", fmt.Errorf("invalid ai provider: %s (use openai, gemini or none)", name)
	}
}

func init() {
	RegisterRuntime(ProviderOpenAI, func(c RuntimeConfig) Runtime {
		return NewClientWithBaseURL(c.APIKey, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay, c.BaseURL)
	})
	RegisterRuntime(ProviderGemini, func(c RuntimeConfig) Runtime {
		return NewGeminiClient(c.APIKey, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay).WithBaseURL(c.BaseURL)
	})
}

// NewAssistant builds the assistant selected by cfg. It returns (nil, nil)
// when the provider is "none" or its API key is not set, which callers treat
// as "use simulated output".
func NewAssistant(cfg *config.Global) (*Assistant, error) {
	if cfg == nil {
		return nil, nil
	}
	provider, err := NormalizeProvider(cfg.AIProvider)
	if err != nil {
		return nil, err
	}
	rc := RuntimeConfig{
		HTTPTimeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second,
		RetryMax:    cfg.RetryMaxAttempts,
		BaseDelay:   time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond,
	}
	var model string
	switch provider {
	case ProviderOpenAI:
		rc.APIKey, rc.BaseURL, model = cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel
	case ProviderGemini:
		rc.APIKey, model = cfg.GeminiAPIKey, cfg.GeminiModel
	default:
		return nil, nil
	}
	if strings.TrimSpace(rc.APIKey) == "" {
		return nil, nil
	}
	rt, ok := GetRuntime(provider, rc)
	if !ok {
		return nil, fmt.Errorf("no runtime registered for %s", provider)
	}
	return &Assistant{
		Runtime:     rt,
		Provider:    provider,
		Model:       model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}, nil
}
