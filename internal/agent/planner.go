package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rahul/finbot/internal/engine"
	"github.com/rahul/finbot/internal/observability"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

var (
	ErrMalformedPlan   = errors.New("malformed plan")
	ErrUnknownProvider = errors.New("unknown provider")
)

// MalformedPlanError carries the generator output that could not be decoded.
type MalformedPlanError struct {
	Provider string
	Raw      string
	Err      error
}

func (e *MalformedPlanError) Error() string {
	return fmt.Sprintf("%s returned a malformed plan: %v", e.Provider, e.Err)
}

func (e *MalformedPlanError) Is(target error) bool { return target == ErrMalformedPlan }
func (e *MalformedPlanError) Unwrap() error        { return e.Err }

// Planner turns a natural-language problem into a calculation plan.
type Planner interface {
	Generate(ctx context.Context, provider, problem string) (*engine.Plan, error)
}

// ParsePlan decodes a generator response. Markdown code fences and any
// chatter around the JSON object are dropped first.
func ParsePlan(raw string) (*engine.Plan, error) {
	text := strings.ReplaceAll(raw, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "{") {
		start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
		if start < 0 || end < start {
			return nil, &MalformedPlanError{Raw: raw, Err: errors.New("no JSON object in response")}
		}
		text = text[start : end+1]
	}

	var plan engine.Plan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return nil, &MalformedPlanError{Raw: raw, Err: err}
	}
	return &plan, nil
}

// LLMPlanner asks a language model for the plan. Each provider name maps
// to its own model.
type LLMPlanner struct {
	Models  map[string]llms.Model
	Prompts *PromptManager
	Logger  *observability.Logger
}

func NewLLMPlanner(models map[string]llms.Model, prompts *PromptManager, logger *observability.Logger) *LLMPlanner {
	return &LLMPlanner{Models: models, Prompts: prompts, Logger: logger}
}

func (p *LLMPlanner) Generate(ctx context.Context, provider, problem string) (*engine.Plan, error) {
	model, ok := p.Models[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	systemPrompt, err := p.Prompts.GetPlannerPrompt()
	if err != nil {
		return nil, err
	}
	userPrompt := fmt.Sprintf("Problema a resolver: \"%s\"", problem)

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, userPrompt),
	}

	resp, err := model.GenerateContent(ctx, messages, llms.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("failed to generate calculation plan from %s: %w", provider, err)
	}
	if len(resp.Choices) == 0 {
		return nil, &MalformedPlanError{Provider: provider, Err: errors.New("empty response")}
	}
	choice := resp.Choices[0]

	chatID, requestID := requestFrom(ctx)
	if p.Logger != nil {
		p.Logger.LogLLM(chatID, requestID, provider, userPrompt, choice.Content)
		in, out := tokenUsage(choice.GenerationInfo)
		if in > 0 || out > 0 {
			p.Logger.LogCost(chatID, requestID, in, out, provider)
		}
	}

	plan, err := ParsePlan(choice.Content)
	if err != nil {
		var mp *MalformedPlanError
		if errors.As(err, &mp) {
			mp.Provider = provider
		}
		return nil, err
	}
	return plan, nil
}

// tokenUsage reads prompt and completion token counts from the provider
// specific generation info.
func tokenUsage(info map[string]any) (int, int) {
	pick := func(keys ...string) int {
		for _, k := range keys {
			if n, ok := asInt(info[k]); ok {
				return n
			}
		}
		return 0
	}
	return pick("PromptTokens", "input_tokens"), pick("CompletionTokens", "output_tokens")
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
