package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/config"
)

func TestGeminiGenerateMapsRolesAndResponse(t *testing.T) {
	var got geminiRequest
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-1.5-flash:generateContent" || r.URL.Query().Get("key") != "gk" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"role": "model", "parts": []any{
					map[string]any{"text": "Benvenuti "},
					map[string]any{"text": "a casa!"},
				}}},
			},
			"usageMetadata": map[string]any{"promptTokenCount": 7, "candidatesTokenCount": 3, "totalTokenCount": 10},
		})
	}))
	defer srv.Close()

	c := NewGeminiClient("gk", 2*time.Second, 1, 0, 0).WithBaseURL(srv.URL)
	resp, err := c.Generate(context.Background(), GenerateRequest{
		Model: "gemini-1.5-flash",
		Messages: []Message{
			{Role: "system", Content: "You are a host."},
			{Role: "user", Content: "Write a welcome."},
		},
		MaxTokens: 64,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Text() != "Benvenuti a casa!" {
		t.Fatalf("unexpected text %q", resp.Text())
	}
	if resp.Usage.TotalTokens != 10 {
		t.Fatalf("usage not mapped: %+v", resp.Usage)
	}
	if got.SystemInstruction == nil || got.SystemInstruction.Parts[0].Text != "You are a host." {
		t.Fatalf("system instruction not sent: %+v", got)
	}
	if len(got.Contents) != 1 || got.Contents[0].Role != "user" {
		t.Fatalf("contents not mapped: %+v", got.Contents)
	}
	if got.GenerationConfig == nil || got.GenerationConfig.MaxOutputTokens != 64 {
		t.Fatalf("generation config missing: %+v", got.GenerationConfig)
	}
}

func TestGeminiModelNotFound(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 404, "message": "models/nope is not found", "status": "NOT_FOUND"}})
	}))
	defer srv.Close()

	c := NewGeminiClient("gk", 2*time.Second, 1, 0, 0).WithBaseURL(srv.URL)
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "nope", Messages: userMsg("hi")})
	var nf *ModelNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected ModelNotFoundError, got %T: %v", err, err)
	}
}

func TestRegistryBuildsProviders(t *testing.T) {
	for _, name := range []string{ProviderOpenAI, ProviderGemini} {
		rt, ok := GetRuntime(name, RuntimeConfig{APIKey: "k"})
		if !ok || rt == nil {
			t.Fatalf("provider %s not registered", name)
		}
	}
	if _, ok := GetRuntime(ProviderNone, RuntimeConfig{}); ok {
		t.Fatalf("none must not build a runtime")
	}
	if p, err := NormalizeProvider("Google"); err != nil || p != ProviderGemini {
		t.Fatalf("normalize google: %q %v", p, err)
	}
	if _, err := NormalizeProvider("llama"); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestNewAssistantFallsBackWithoutKey(t *testing.T) {
	a, err := NewAssistant(&config.Global{AIProvider: "openai"})
	if err != nil || a != nil {
		t.Fatalf("expected nil assistant without key, got %v %v", a, err)
	}
	a, err = NewAssistant(&config.Global{AIProvider: "gemini", GeminiAPIKey: "k", GeminiModel: "gemini-1.5-flash"})
	if err != nil || a == nil {
		t.Fatalf("expected gemini assistant: %v", err)
	}
	if a.Provider != ProviderGemini || a.Model != "gemini-1.5-flash" {
		t.Fatalf("unexpected assistant %+v", a)
	}
	if _, err := NewAssistant(&config.Global{AIProvider: "bogus"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
