package engine

import (
	"regexp"
	"sort"
	"strings"
)

var identPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Environment maps variable names to values (numbers or date strings). It
// lives for exactly one plan execution.
type Environment struct {
	vars map[string]any
}

// NewEnvironment seeds an environment with a copy of initial.
func NewEnvironment(initial map[string]any) *Environment {
	vars := make(map[string]any, len(initial))
	for k, v := range initial {
		vars[k] = v
	}
	return &Environment{vars: vars}
}

func (e *Environment) Lookup(name string) (any, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Bind sets name to v, replacing any earlier binding.
func (e *Environment) Bind(name string, v any) {
	e.vars[name] = v
}

// Snapshot returns a copy of the current bindings.
func (e *Environment) Snapshot() map[string]any {
	out := make(map[string]any, len(e.vars))
	for k, v := range e.vars {
		out[k] = v
	}
	return out
}

// Resolve replaces every reference in inputs with its bound value. A string
// that starts with "{{" and ends with "}}" is always a reference; anything
// else passes through unchanged. The environment is only read.
func Resolve(inputs map[string]any, env *Environment) (map[string]any, error) {
	keys := make([]string, 0, len(inputs))
	for key := range inputs {
		keys = append(keys, key)
	}
	// sorted so the same plan always reports the same failing input
	sort.Strings(keys)

	resolved := make(map[string]any, len(inputs))
	for _, key := range keys {
		value := inputs[key]
		s, ok := value.(string)
		if !ok || !isReference(s) {
			resolved[key] = value
			continue
		}
		name := s[2 : len(s)-2]
		if !identPattern.MatchString(name) {
			return nil, &ReferenceError{Kind: ErrInvalidReference, Input: key, Name: name}
		}
		v, ok := env.Lookup(name)
		if !ok {
			return nil, &ReferenceError{Kind: ErrUndefinedVariable, Input: key, Name: name}
		}
		resolved[key] = v
	}
	return resolved, nil
}

func isReference(s string) bool {
	return len(s) >= 4 && strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}")
}
