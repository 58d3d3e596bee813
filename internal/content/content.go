package content

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/ai"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
)

// Content kinds.
const (
	ListingDescription = "listing_description"
	WelcomeMessage     = "welcome_message"
	SocialPost         = "social_post"
	HouseRules         = "house_rules"
)

// SourceSimulated marks text produced from templates without a model.
const SourceSimulated = "simulated"

// ErrUnknownKind is returned for unsupported content kinds.
var ErrUnknownKind = errors.New("unknown content kind")

// Request describes the text to produce.
type Request struct {
	Kind     string         `json:"kind"`
	Property store.Property `json:"property"`
	Tone     string         `json:"tone"`
	Language string         `json:"language"`
	// Extra is free-form guidance appended to the prompt.
	Extra string `json:"extra"`
}

// Result is generated text plus where it came from.
type Result struct {
	Kind    string `json:"kind"`
	Text    string `json:"text"`
	Source  string `json:"source"`
	Warning string `json:"warning,omitempty"`
}

// Generator writes marketing and guest-facing text for a property.
type Generator struct {
	Assistant *ai.Assistant
	Timeout   time.Duration
}

// NewGenerator returns a generator; a nil assistant always simulates.
func NewGenerator(assistant *ai.Assistant) *Generator {
	return &Generator{Assistant: assistant, Timeout: 60 * time.Second}
}

// Kinds lists the supported kinds in sorted order.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Prompt renders the user prompt for req.
func Prompt(req Request) (string, error) {
	k, ok := kinds[req.Kind]
	if !ok {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnknownKind, req.Kind, strings.Join(Kinds(), ", "))
	}
	return render(k.prompt, withDefaults(req))
}

// Generate produces the text. A failing or missing assistant yields the
// simulated text with Warning set instead of an error.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	req = withDefaults(req)
	k, ok := kinds[req.Kind]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownKind, req.Kind, strings.Join(Kinds(), ", "))
	}
	if strings.TrimSpace(req.Property.Name) == "" {
		return Result{}, errors.New("property name is required")
	}
	if g.Assistant == nil {
		return g.simulate(k, req, "")
	}
	prompt, err := render(k.prompt, req)
	if err != nil {
		return Result{}, err
	}
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	text, err := g.Assistant.Ask(ctx, systemPrompt, prompt)
	if err != nil {
		return g.simulate(k, req, fmt.Sprintf("AI generation failed: %v", err))
	}
	return Result{Kind: req.Kind, Text: strings.TrimSpace(text), Source: "ai:" + g.Assistant.Provider}, nil
}

func (g *Generator) simulate(k kind, req Request, warning string) (Result, error) {
	text, err := render(k.simulated, req)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: req.Kind, Text: strings.TrimSpace(text), Source: SourceSimulated, Warning: warning}, nil
}

func withDefaults(req Request) Request {
	req.Kind = strings.ToLower(strings.TrimSpace(req.Kind))
	if req.Tone == "" {
		req.Tone = "warm"
	}
	if req.Language == "" {
		req.Language = "English"
	}
	return req
}

func render(t *template.Template, req Request) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, req); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return sb.String(), nil
}
