package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls Google's generateContent REST endpoint and maps the
// result onto the shared GenerateResponse shape.
type GeminiClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	retry      retryPolicy
}

// NewGeminiClient creates a client for the public Gemini API.
func NewGeminiClient(apiKey string, httpTimeout time.Duration, retryMax int, baseDelay, maxDelay time.Duration) *GeminiClient {
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	return &GeminiClient{
		httpClient: &http.Client{Timeout: httpTimeout},
		apiKey:     apiKey,
		baseURL:    defaultGeminiBaseURL,
		retry:      newRetryPolicy(retryMax, baseDelay, maxDelay),
	}
}

// WithBaseURL overrides the API root (used in tests).
func (c *GeminiClient) WithBaseURL(baseURL string) *GeminiClient {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// Generate sends the conversation to Gemini. System messages become the
// systemInstruction; assistant turns are sent with the "model" role.
func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if c.apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is missing")
	}
	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}
	greq := geminiRequest{}
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			if greq.SystemInstruction == nil {
				greq.SystemInstruction = &geminiContent{}
			}
			greq.SystemInstruction.Parts = append(greq.SystemInstruction.Parts, geminiPart{Text: m.Content})
		case "assistant":
			greq.Contents = append(greq.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			greq.Contents = append(greq.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}
	if len(greq.Contents) == 0 {
		return nil, errors.New("messages cannot be empty")
	}
	if req.MaxTokens > 0 || req.Temperature > 0 {
		greq.GenerationConfig = &geminiGenerationConfig{MaxOutputTokens: req.MaxTokens, Temperature: req.Temperature}
	}
	payload, err := json.Marshal(greq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(req.Model), url.QueryEscape(c.apiKey))

	var gresp geminiResponse
	var requestID string
	err = c.retry.do(ctx, c.httpClient, func() (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		return httpReq, nil
	}, func(resp *http.Response) error {
		requestID = extractRequestID(resp)
		return json.NewDecoder(resp.Body).Decode(&gresp)
	})
	if err != nil {
		return nil, err
	}

	out := &GenerateResponse{RequestID: requestID}
	out.Usage = Usage{
		PromptTokens:     gresp.UsageMetadata.PromptTokenCount,
		CompletionTokens: gresp.UsageMetadata.CandidatesTokenCount,
		TotalTokens:      gresp.UsageMetadata.TotalTokenCount,
	}
	for _, cand := range gresp.Candidates {
		var sb strings.Builder
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		out.Choices = append(out.Choices, Choice{Message: Message{Role: "assistant", Content: sb.String()}})
	}
	return out, nil
}
