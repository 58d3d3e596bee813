package ai

import "context"

// Runtime is implemented by every LLM backend (OpenAI-compatible, Gemini).
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers used across the CLI and config.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Assistant binds a runtime to the model and sampling knobs used by the
// pricing and content features. A nil *Assistant means no AI is configured
// and callers fall back to simulated output.
type Assistant struct {
	Runtime     Runtime
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Ask sends a system + user prompt pair and returns the first choice's text.
func (a *Assistant) Ask(ctx context.Context, system, user string) (string, error) {
	msgs := make([]Message, 0, 2)
	if system != "" {
		msgs = append(msgs, Message{Role: "system", Content: system})
	}
	msgs = append(msgs, Message{Role: "user", Content: user})
	resp, err := a.Runtime.Generate(ctx, GenerateRequest{
		Model:       a.Model,
		Messages:    msgs,
		MaxTokens:   a.MaxTokens,
		Temperature: a.Temperature,
	})
	if err != nil {
		return "", err
	}
	if resp.Text() == "" {
		return "", ErrEmptyResponse
	}
	return resp.Text(), nil
}
