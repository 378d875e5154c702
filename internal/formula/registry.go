// Package formula is the closed catalogue of financial and arithmetic
// formulas a calculation plan may apply. Every formula is a pure function
// from named parameters to one number plus a substitution trace.
package formula

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrUnknownFormula = errors.New("unknown formula")
	ErrInvalidResult  = errors.New("invalid result")
)

// UnknownFormulaError is returned for identifiers missing from the registry.
type UnknownFormulaError struct {
	Name string
}

func (e *UnknownFormulaError) Error() string {
	return fmt.Sprintf("formula '%s' is not implemented in the calculation engine", e.Name)
}

func (e *UnknownFormulaError) Unwrap() error { return ErrUnknownFormula }

// InvalidResultError is returned when a formula yields NaN or an infinity.
type InvalidResultError struct {
	Name  string
	Value float64
}

func (e *InvalidResultError) Error() string {
	return fmt.Sprintf("calculation for '%s' resulted in an invalid value (%s)", e.Name, FormatNum(e.Value))
}

func (e *InvalidResultError) Unwrap() error { return ErrInvalidResult }

// Evaluator computes a formula. The returned string is the formula with the
// resolved values substituted, ending in "= result".
type Evaluator func(a Args) (float64, string, error)

// Registry maps formula identifiers to evaluators.
type Registry struct {
	formulas map[string]Evaluator
}

func NewRegistry() *Registry {
	return &Registry{
		formulas: make(map[string]Evaluator),
	}
}

func (r *Registry) Register(name string, fn Evaluator) {
	r.formulas[name] = fn
}

func (r *Registry) Get(name string) (Evaluator, bool) {
	fn, ok := r.formulas[name]
	return fn, ok
}

// Names returns the registered identifiers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.formulas))
	for name := range r.formulas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluate runs the named formula and checks that the result is finite.
func (r *Registry) Evaluate(name string, a Args) (float64, string, error) {
	fn, ok := r.formulas[name]
	if !ok {
		return 0, "", &UnknownFormulaError{Name: name}
	}
	result, trace, err := fn(a)
	if err != nil {
		return 0, "", fmt.Errorf("%s: %w", name, err)
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, "", &InvalidResultError{Name: name, Value: result}
	}
	return result, trace, nil
}

// Default returns a registry holding every built-in formula.
func Default() *Registry {
	r := NewRegistry()
	registerUtil(r)
	registerSimpleInterest(r)
	registerCompoundInterest(r)
	registerRates(r)
	registerDiscounts(r)
	registerAnnuities(r)
	registerGradients(r)
	registerLoans(r)
	r.Register(Experimental, evalExperimental)
	return r
}

// simple builds an evaluator whose trace is a fixed template over the
// parameter values followed by "= result".
func simple(compute func(p Params) float64, trace func(p Params) string) Evaluator {
	return func(a Args) (float64, string, error) {
		result := compute(a.Params)
		return result, fmt.Sprintf("%s = %s", trace(a.Params), FormatNum(result)), nil
	}
}
