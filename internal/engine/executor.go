// Package engine executes calculation plans: it threads a variable
// environment through the plan's steps in order, resolving references and
// applying formulas from the formula registry.
package engine

import (
	"fmt"

	"github.com/rahul/finbot/internal/formula"
)

// Executor runs plans against a formula registry. It holds no per-plan
// state, so one Executor may serve concurrent requests.
type Executor struct {
	Formulas *formula.Registry
}

func NewExecutor(formulas *formula.Registry) *Executor {
	if formulas == nil {
		formulas = formula.Default()
	}
	return &Executor{Formulas: formulas}
}

// missingDataReason stands in when the generator flagged missing data
// without saying which.
const missingDataReason = "el enunciado no incluye todos los datos necesarios"

// Execute evaluates every step of plan in declared order. Any failure aborts
// the run and no partial output is returned.
func (x *Executor) Execute(plan *Plan) (*Execution, error) {
	if plan == nil {
		return nil, fmt.Errorf("nil plan")
	}
	if plan.Insufficient() {
		reason := plan.Error
		if reason == "" {
			reason = missingDataReason
		}
		return nil, &InsufficientDataError{Reason: reason}
	}

	env := NewEnvironment(plan.InitialData)
	executed := make([]ExecutedStep, 0, len(plan.Steps))

	for idx, step := range plan.Steps {
		out, err := x.runStep(step, env)
		if err != nil {
			return nil, &StepError{Index: idx, StepName: step.Name, Formula: step.Formula, Err: err}
		}
		env.Bind(step.Target, out.Result)
		executed = append(executed, out)
	}

	return &Execution{
		Interpretation: plan.Interpretation,
		Steps:          executed,
		Variables:      env.Snapshot(),
		FinalVariable:  plan.FinalVariable,
	}, nil
}

func (x *Executor) runStep(step Step, env *Environment) (ExecutedStep, error) {
	if !identPattern.MatchString(step.Target) {
		return ExecutedStep{}, fmt.Errorf("%w: %q", ErrInvalidTarget, step.Target)
	}
	resolved, err := Resolve(step.Inputs, env)
	if err != nil {
		return ExecutedStep{}, err
	}
	result, trace, err := x.Formulas.Evaluate(step.Formula, formula.Args{
		Params:     resolved,
		Expression: step.GeneratedFormula,
	})
	if err != nil {
		return ExecutedStep{}, err
	}

	out := ExecutedStep{Step: step, Result: result, Substituted: trace}
	out.Inputs = resolved
	return out, nil
}
