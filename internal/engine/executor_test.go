package engine

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/rahul/finbot/internal/formula"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_EmptyPlan(t *testing.T) {
	plan := &Plan{
		Interpretation: "nothing to do",
		InitialData:    map[string]any{"P": 1000.0, "fecha": "2024-01-01"},
	}

	exec, err := NewExecutor(nil).Execute(plan)
	require.NoError(t, err)
	assert.Empty(t, exec.Steps)
	assert.Equal(t, plan.InitialData, exec.Variables)
	assert.Equal(t, "nothing to do", exec.Interpretation)
}

func TestExecute_SimpleInterest(t *testing.T) {
	plan := &Plan{
		InitialData: map[string]any{"P": 1000.0, "j": 0.05, "n": 2.0},
		Steps: []Step{{
			Name:    "Interés simple",
			Formula: "formula_is_I_from_Pjn",
			Inputs:  map[string]any{"P": "{{P}}", "j": "{{j}}", "n": "{{n}}"},
			Target:  "I",
		}},
		FinalVariable: "I",
	}

	exec, err := NewExecutor(nil).Execute(plan)
	require.NoError(t, err)
	require.Len(t, exec.Steps, 1)

	step := exec.Steps[0]
	assert.Equal(t, 100.0, step.Result)
	assert.Equal(t, map[string]any{"P": 1000.0, "j": 0.05, "n": 2.0}, step.Inputs)
	assert.Equal(t, "Interés simple", step.Name)
	assert.Equal(t, "1000 * 0.05 * 2 = 100", step.Substituted)

	final, ok := exec.Final()
	require.True(t, ok)
	assert.Equal(t, 100.0, final)

	// the plan itself still carries the references
	assert.Equal(t, "{{P}}", plan.Steps[0].Inputs["P"])
}

func TestExecute_EquivalentRate(t *testing.T) {
	plan := &Plan{
		InitialData: map[string]any{"i_conocida": 0.0168, "n_dias_conocido": 72.8, "n_dias_deseado": 187.0},
		Steps: []Step{{
			Name:    "Tasa equivalente",
			Formula: "formula_tasa_equivalente",
			Inputs: map[string]any{
				"i_conocida":      "{{i_conocida}}",
				"n_dias_conocido": "{{n_dias_conocido}}",
				"n_dias_deseado":  "{{n_dias_deseado}}",
			},
			Target: "i_equiv",
		}},
	}

	exec, err := NewExecutor(nil).Execute(plan)
	require.NoError(t, err)
	got := exec.Steps[0].Result
	assert.Equal(t, math.Pow(1.0168, 187/72.8)-1, got)
	assert.Greater(t, got, 0.0)
}

func TestExecute_ChainedSteps(t *testing.T) {
	plan := &Plan{
		InitialData: map[string]any{},
		Steps: []Step{
			{
				Name:    "Días",
				Formula: formula.DaysBetween,
				Inputs:  map[string]any{"fecha_inicial": "2024-01-15", "fecha_final": "2024-04-14"},
				Target:  "n_dias",
			},
			{
				Name:    "Fracción de año",
				Formula: formula.YearFraction,
				Inputs:  map[string]any{"n_dias": "{{n_dias}}"},
				Target:  "t",
			},
		},
		FinalVariable: "t",
	}

	exec, err := NewExecutor(nil).Execute(plan)
	require.NoError(t, err)
	require.Len(t, exec.Steps, 2)

	assert.Equal(t, 90.0, exec.Steps[0].Result)
	assert.Equal(t, exec.Steps[0].Result, exec.Steps[1].Inputs["n_dias"])
	assert.Equal(t, 0.25, exec.Steps[1].Result)
	assert.Equal(t, 0.25, exec.Variables["t"])
}

func TestExecute_UndefinedVariable(t *testing.T) {
	plan := &Plan{
		InitialData: map[string]any{"P": 1000.0},
		Steps: []Step{
			{Name: "ok", Formula: "formula_util_suma", Inputs: map[string]any{"valor1": "{{P}}", "valor2": 1.0}, Target: "x"},
			{Name: "bad", Formula: "formula_util_suma", Inputs: map[string]any{"valor1": "{{undeclared}}", "valor2": 1.0}, Target: "y"},
		},
	}

	exec, err := NewExecutor(nil).Execute(plan)
	require.Error(t, err)
	assert.Nil(t, exec)
	assert.True(t, errors.Is(err, ErrUndefinedVariable))

	var refErr *ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "undeclared", refErr.Name)

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, 1, stepErr.Index)
	assert.Equal(t, "formula_util_suma", stepErr.Formula)
	assert.Contains(t, err.Error(), "step 2")
}

func TestExecute_ForwardReferenceFails(t *testing.T) {
	plan := &Plan{
		Steps: []Step{
			{Name: "uses later", Formula: "formula_util_suma", Inputs: map[string]any{"valor1": "{{later}}", "valor2": 1.0}, Target: "x"},
			{Name: "later", Formula: "formula_util_suma", Inputs: map[string]any{"valor1": 1.0, "valor2": 1.0}, Target: "later"},
		},
	}
	_, err := NewExecutor(nil).Execute(plan)
	assert.True(t, errors.Is(err, ErrUndefinedVariable))
}

func TestExecute_UnknownFormula(t *testing.T) {
	plan := &Plan{Steps: []Step{{Name: "x", Formula: "formula_magic", Inputs: map[string]any{}, Target: "x"}}}
	_, err := NewExecutor(nil).Execute(plan)
	assert.True(t, errors.Is(err, formula.ErrUnknownFormula))
}

func TestExecute_InvalidResultNamesStep(t *testing.T) {
	plan := &Plan{Steps: []Step{{
		Name:    "divide",
		Formula: "formula_util_division",
		Inputs:  map[string]any{"valor1": 1.0, "valor2": 0.0},
		Target:  "q",
	}}}
	_, err := NewExecutor(nil).Execute(plan)
	assert.True(t, errors.Is(err, formula.ErrInvalidResult))

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "divide", stepErr.StepName)
}

func TestExecute_InvalidTarget(t *testing.T) {
	plan := &Plan{Steps: []Step{{Name: "x", Formula: "formula_util_suma", Inputs: map[string]any{"valor1": 1.0, "valor2": 1.0}, Target: "bad name"}}}
	_, err := NewExecutor(nil).Execute(plan)
	assert.True(t, errors.Is(err, ErrInvalidTarget))
}

func TestExecute_InsufficientData(t *testing.T) {
	var plan Plan
	require.NoError(t, json.Unmarshal([]byte(`{"error": "falta la tasa de interés"}`), &plan))

	_, err := NewExecutor(nil).Execute(&plan)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
	assert.Contains(t, err.Error(), "falta la tasa")
}

func TestExecute_EmptyErrorIsStillInsufficient(t *testing.T) {
	var plan Plan
	require.NoError(t, json.Unmarshal([]byte(`{"error": ""}`), &plan))
	require.True(t, plan.Insufficient())

	_, err := NewExecutor(nil).Execute(&plan)
	var insufficient *InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, missingDataReason, insufficient.Reason)

	var full Plan
	require.NoError(t, json.Unmarshal([]byte(`{"interpretation": "x", "calculation_steps": []}`), &full))
	assert.False(t, full.Insufficient())
}

func TestExecute_BadDateIsInvalidResult(t *testing.T) {
	tests := []struct {
		name   string
		inputs map[string]any
	}{
		{"missing end date", map[string]any{"fecha_inicial": "2024-01-15"}},
		{"unparseable end date", map[string]any{"fecha_inicial": "2024-01-15", "fecha_final": "not a date"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan := &Plan{Steps: []Step{{
				Name:    "plazo",
				Formula: formula.DaysBetween,
				Inputs:  tc.inputs,
				Target:  "d",
			}}}
			exec, err := NewExecutor(nil).Execute(plan)
			assert.Nil(t, exec)
			assert.True(t, errors.Is(err, formula.ErrInvalidResult), "got %v", err)

			var stepErr *StepError
			require.True(t, errors.As(err, &stepErr))
			assert.Equal(t, 0, stepErr.Index)
			assert.Equal(t, formula.DaysBetween, stepErr.Formula)
		})
	}
}

func TestExecute_LastWriteWins(t *testing.T) {
	plan := &Plan{
		InitialData: map[string]any{"x": 1.0},
		Steps: []Step{
			{Name: "double", Formula: "formula_util_multiplicacion", Inputs: map[string]any{"valor1": "{{x}}", "valor2": 2.0}, Target: "x"},
			{Name: "double again", Formula: "formula_util_multiplicacion", Inputs: map[string]any{"valor1": "{{x}}", "valor2": 2.0}, Target: "x"},
		},
	}
	exec, err := NewExecutor(nil).Execute(plan)
	require.NoError(t, err)
	assert.Equal(t, 2.0, exec.Steps[1].Inputs["valor1"])
	assert.Equal(t, 4.0, exec.Variables["x"])
	assert.Equal(t, 1.0, plan.InitialData["x"])
}

func TestExecute_Idempotent(t *testing.T) {
	plan := &Plan{
		InitialData: map[string]any{"P": 5000.0, "i": 0.02, "n": 12.0},
		Steps: []Step{
			{Name: "monto", Formula: "formula_ic_S_from_Pin", Inputs: map[string]any{"P": "{{P}}", "i": "{{i}}", "n": "{{n}}"}, Target: "S"},
			{Name: "interés", Formula: "formula_util_resta", Inputs: map[string]any{"valor1": "{{S}}", "valor2": "{{P}}"}, Target: "I"},
			{Name: "días", Formula: formula.DaysBetween, Inputs: map[string]any{"fecha_inicial": "2024-03-01", "fecha_final": "2024-11-05"}, Target: "d"},
		},
	}
	x := NewExecutor(nil)
	first, err := x.Execute(plan)
	require.NoError(t, err)
	second, err := x.Execute(plan)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExecute_Experimental(t *testing.T) {
	plan := &Plan{
		InitialData: map[string]any{"S": 500.0, "i": 0.02},
		Steps: []Step{{
			Name:             "valor actual",
			Formula:          formula.Experimental,
			Inputs:           map[string]any{"S": "{{S}}", "i": "{{i}}", "n": 12.0},
			Target:           "P",
			GeneratedFormula: "S / (1 + i)^n",
		}},
	}
	exec, err := NewExecutor(nil).Execute(plan)
	require.NoError(t, err)
	assert.InDelta(t, 500/math.Pow(1.02, 12), exec.Steps[0].Result, 1e-9)
	assert.Contains(t, exec.Steps[0].Substituted, "500 / (1 + 0.02)^12 = ")
}
