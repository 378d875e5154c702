package engine

import "encoding/json"

// Plan is a structured description of a sequential calculation, produced
// by a plan generator from a natural-language problem.
type Plan struct {
	Interpretation string         `json:"interpretation"`
	InitialData    map[string]any `json:"initial_data"`
	Steps          []Step         `json:"calculation_steps"`
	FinalVariable  string         `json:"final_variable"`

	// Error is set instead of the fields above when the generator decided
	// the problem lacks the data needed to build a plan.
	Error string `json:"error,omitempty"`

	hasError bool
}

// UnmarshalJSON records whether the document carried an "error" key at all,
// so {"error": ""} still decodes as the insufficient-data variant.
func (p *Plan) UnmarshalJSON(data []byte) error {
	type plain Plan
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = Plan(decoded)
	_, p.hasError = fields["error"]
	return nil
}

// Insufficient reports whether p is the insufficient-data variant.
func (p *Plan) Insufficient() bool {
	return p.hasError || p.Error != ""
}

// Step is one formula application. Inputs values are either literals or
// references of the form {{name}}.
type Step struct {
	Name             string         `json:"step_name"`
	Formula          string         `json:"formula_name"`
	Inputs           map[string]any `json:"inputs"`
	Target           string         `json:"target_variable"`
	GeneratedFormula string         `json:"generated_formula,omitempty"`
}

// ExecutedStep is a Step whose inputs have been resolved to literal values,
// together with the computed result and the substitution trace.
type ExecutedStep struct {
	Step
	Result      float64 `json:"result"`
	Substituted string  `json:"substituted_formula"`
}

// Execution is the outcome of running a plan.
type Execution struct {
	Interpretation string         `json:"interpretation"`
	Steps          []ExecutedStep `json:"steps"`
	Variables      map[string]any `json:"variables"`
	FinalVariable  string         `json:"final_variable"`
}

// Final returns the value bound to the plan's final variable.
func (e *Execution) Final() (any, bool) {
	if e.FinalVariable == "" {
		return nil, false
	}
	v, ok := e.Variables[e.FinalVariable]
	return v, ok
}
