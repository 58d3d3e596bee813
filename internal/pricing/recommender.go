package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/ai"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
)

// RecommendJitter is the spread applied to simulated recommendations.
const RecommendJitter = 0.10

// SourceSimulated marks output computed locally instead of by a model.
const SourceSimulated = "simulated"

// Recommendation is a suggested nightly price for one date.
type Recommendation struct {
	PropertyID       string     `json:"property_id"`
	Date             store.Date `json:"date"`
	Season           string     `json:"season"`
	BasePrice        float64    `json:"base_price"`
	RecommendedPrice float64    `json:"recommended_price"`
	MinPrice         float64    `json:"min_price"`
	MaxPrice         float64    `json:"max_price"`
	Reasoning        string     `json:"reasoning"`
	Source           string     `json:"source"`
	Warning          string     `json:"warning,omitempty"`
}

// Recommender suggests prices through an AI assistant, falling back to the
// shared multiplier model when the assistant is absent or fails. It is safe
// for concurrent use.
type Recommender struct {
	Assistant   *ai.Assistant
	Multipliers Multipliers
	Rand        *rand.Rand
	Currency    string
	Timeout     time.Duration

	mu sync.Mutex // guards Rand
}

// NewRecommender returns a recommender; a nil assistant always simulates.
func NewRecommender(assistant *ai.Assistant, currency string) *Recommender {
	return &Recommender{Assistant: assistant, Multipliers: DefaultMultipliers, Rand: newRand(), Currency: currency, Timeout: 60 * time.Second}
}

type aiRecommendation struct {
	RecommendedPrice float64 `json:"recommended_price"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	Reasoning        string  `json:"reasoning"`
}

// Recommend returns a price suggestion for the night of date. AI and parse
// failures never surface as errors: they become a simulated result with
// Warning set.
func (r *Recommender) Recommend(ctx context.Context, p store.Property, seasons []store.Season, date store.Date) (Recommendation, error) {
	if p.BasePrice <= 0 {
		return Recommendation{}, fmt.Errorf("property %s has no base price", p.ID)
	}
	if date.IsZero() {
		return Recommendation{}, errors.New("date is required")
	}
	season := SeasonFor(seasons, date)
	rec := Recommendation{PropertyID: p.ID, Date: date, BasePrice: p.BasePrice, Season: "none"}
	if season != nil {
		rec.Season = season.Name
	}
	if r.Assistant == nil {
		return r.simulate(rec, seasons, ""), nil
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	text, err := r.Assistant.Ask(ctx, pricingSystemPrompt, r.prompt(p, season, date))
	if err != nil {
		return r.simulate(rec, seasons, fmt.Sprintf("AI recommendation failed: %v", err)), nil
	}
	parsed, err := parseRecommendation(text)
	if err != nil {
		return r.simulate(rec, seasons, fmt.Sprintf("AI response unusable: %v", err)), nil
	}
	rec.RecommendedPrice = round2(parsed.RecommendedPrice)
	rec.MinPrice = round2(parsed.MinPrice)
	rec.MaxPrice = round2(parsed.MaxPrice)
	rec.Reasoning = strings.TrimSpace(parsed.Reasoning)
	rec.Source = "ai:" + r.Assistant.Provider
	return rec, nil
}

func (r *Recommender) simulate(rec Recommendation, seasons []store.Season, warning string) Recommendation {
	mult := r.Multipliers
	if mult.Weekday == ([7]float64{}) {
		mult = DefaultMultipliers
	}
	factor := mult.Factor(seasons, rec.Date)
	r.mu.Lock()
	j := jitter(r.Rand, RecommendJitter)
	r.mu.Unlock()
	price := rec.BasePrice * factor * j
	rec.RecommendedPrice = round2(price)
	rec.MinPrice = round2(price * 0.9)
	rec.MaxPrice = round2(price * 1.1)
	rec.Reasoning = fmt.Sprintf("%s season, %s: demand factor %.2f applied to the base price of %.2f %s.",
		rec.Season, rec.Date.Weekday(), factor, rec.BasePrice, r.currency())
	rec.Source = SourceSimulated
	rec.Warning = warning
	return rec
}

func (r *Recommender) currency() string {
	if r.Currency == "" {
		return "EUR"
	}
	return r.Currency
}

const pricingSystemPrompt = "You are a revenue manager for short-term rentals. Answer with a single JSON object and nothing else."

func (r *Recommender) prompt(p store.Property, season *store.Season, date store.Date) string {
	var sb strings.Builder
	sb.WriteString("[PROPERTY]\n")
	fmt.Fprintf(&sb, "Name: %s\nCity: %s\nBedrooms: %d\nBathrooms: %g\nMax guests: %d\n", p.Name, p.City, p.Bedrooms, p.Bathrooms, p.MaxGuests)
	fmt.Fprintf(&sb, "Base price: %.2f %s\nCurrent price: %.2f %s\n", p.BasePrice, r.currency(), p.CurrentPrice, r.currency())
	if len(p.Amenities) > 0 {
		fmt.Fprintf(&sb, "Amenities: %s\n", strings.Join(p.Amenities, ", "))
	}
	sb.WriteString("\n[DATE]\n")
	fmt.Fprintf(&sb, "%s (%s)\n", date, date.Weekday())
	if season != nil {
		fmt.Fprintf(&sb, "Season: %s (%+.0f%%)", season.Name, season.PriceModifier)
		if season.Notes != "" {
			fmt.Fprintf(&sb, " - %s", season.Notes)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n[TASK]\n")
	sb.WriteString(`Recommend the nightly price. Reply with JSON: {"recommended_price": number, "min_price": number, "max_price": number, "reasoning": string}`)
	sb.WriteString("\n")
	return sb.String()
}

// parseRecommendation extracts the first JSON object from a model reply,
// tolerating markdown fences and prose around it.
func parseRecommendation(text string) (aiRecommendation, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return aiRecommendation{}, errors.New("no JSON object in response")
	}
	var out aiRecommendation
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return aiRecommendation{}, fmt.Errorf("decode: %w", err)
	}
	if out.RecommendedPrice <= 0 {
		return aiRecommendation{}, errors.New("recommended_price must be positive")
	}
	if out.MinPrice <= 0 || out.MinPrice > out.RecommendedPrice {
		out.MinPrice = out.RecommendedPrice * 0.9
	}
	if out.MaxPrice < out.RecommendedPrice {
		out.MaxPrice = out.RecommendedPrice * 1.1
	}
	return out, nil
}
