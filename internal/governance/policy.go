package governance

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rahul/finbot/internal/engine"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains the context of a plan to be evaluated before it runs.
type Request struct {
	ChatID  string
	Problem string
	Plan    *engine.Plan
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine evaluates plans against a set of rules.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine is a basic implementation of PolicyEngine.
type DefaultPolicyEngine struct {
	MaxSteps       int
	DeniedFormulas map[string]bool
	DeniedRegex    []*regexp.Regexp
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedFormulas: make(map[string]bool),
		DeniedRegex:    make([]*regexp.Regexp, 0),
	}
}

func (e *DefaultPolicyEngine) DenyFormula(name string) {
	e.DeniedFormulas[name] = true
}

// DenyProblem rejects any request whose problem text matches pattern.
func (e *DefaultPolicyEngine) DenyProblem(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedRegex = append(e.DeniedRegex, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	for _, re := range e.DeniedRegex {
		if re.MatchString(req.Problem) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Problem matches restricted pattern: %s", re.String()),
			}, nil
		}
	}

	if req.Plan != nil {
		if e.MaxSteps > 0 && len(req.Plan.Steps) > e.MaxSteps {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Plan has %d steps, limit is %d", len(req.Plan.Steps), e.MaxSteps),
			}, nil
		}
		for _, s := range req.Plan.Steps {
			if e.DeniedFormulas[s.Formula] {
				return Result{
					Effect: EffectDeny,
					Reason: fmt.Sprintf("Formula '%s' is restricted by system policy", s.Formula),
				}, nil
			}
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}
