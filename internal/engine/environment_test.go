package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_RoundTrip(t *testing.T) {
	env := NewEnvironment(nil)
	env.Bind("x", 42.5)
	env.Bind("fecha", "2024-05-01")

	got, err := Resolve(map[string]any{"a": "{{x}}", "b": "{{fecha}}"}, env)
	require.NoError(t, err)
	assert.Equal(t, 42.5, got["a"])
	assert.Equal(t, "2024-05-01", got["b"])
}

func TestResolve_LiteralsPassThrough(t *testing.T) {
	env := NewEnvironment(map[string]any{"x": 1.0})
	inputs := map[string]any{
		"num":     3.0,
		"date":    "2024-01-01",
		"open":    "{{x",
		"close":   "x}}",
		"inner":   "a{{x}}b",
		"single":  "{x}",
		"nothing": nil,
		"boolean": true,
		"short":   "{{}",
	}
	got, err := Resolve(inputs, env)
	require.NoError(t, err)
	assert.Equal(t, inputs, got)
}

func TestResolve_InvalidReference(t *testing.T) {
	env := NewEnvironment(map[string]any{"x": 1.0})
	for _, ref := range []string{"{{ x }}", "{{x-y}}", "{{}}", "{{a.b}}", "{{{x}}}"} {
		_, err := Resolve(map[string]any{"in": ref}, env)
		require.Error(t, err, ref)
		assert.True(t, errors.Is(err, ErrInvalidReference), ref)
	}
}

func TestResolve_UndefinedVariable(t *testing.T) {
	_, err := Resolve(map[string]any{"in": "{{undefined_name}}"}, NewEnvironment(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUndefinedVariable))
	assert.Contains(t, err.Error(), "undefined_name")
}

func TestResolve_DoesNotMutateEnvironment(t *testing.T) {
	env := NewEnvironment(map[string]any{"x": 1.0})
	before := env.Snapshot()
	_, _ = Resolve(map[string]any{"a": "{{x}}", "b": "{{missing}}"}, env)
	assert.Equal(t, before, env.Snapshot())
}

func TestNewEnvironment_CopiesSeed(t *testing.T) {
	seed := map[string]any{"x": 1.0}
	env := NewEnvironment(seed)
	env.Bind("x", 2.0)
	env.Bind("y", 3.0)
	assert.Equal(t, map[string]any{"x": 1.0}, seed)
}
