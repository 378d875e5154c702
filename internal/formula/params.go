package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Params holds a step's resolved inputs keyed by parameter name.
type Params map[string]any

// Args is what an Evaluator receives: the resolved parameters and, for the
// experimental formula only, the expression supplied alongside the step.
type Args struct {
	Params
	Expression string
}

// Num returns the named parameter as a float64. Missing or non-numeric
// parameters read as NaN so they fail the finite-result check.
func (p Params) Num(name string) float64 {
	v, ok := p[name]
	if !ok {
		return math.NaN()
	}
	f, ok := toFloat(v)
	if !ok {
		return math.NaN()
	}
	return f
}

// NumOr is Num with a default for absent parameters.
func (p Params) NumOr(name string, def float64) float64 {
	v, ok := p[name]
	if !ok || v == nil {
		return def
	}
	f, ok := toFloat(v)
	if !ok || f == 0 {
		return def
	}
	return f
}

// Date returns the named parameter as a calendar date at UTC midnight.
func (p Params) Date(name string) (time.Time, error) {
	v, ok := p[name]
	if !ok {
		return time.Time{}, fmt.Errorf("missing date parameter %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("parameter %q is not a date: %v", name, v)
	}
	return ParseDate(s)
}

// ParseDate accepts ISO dates (YYYY-MM-DD, optionally followed by a time)
// and falls back to dateparse for other common layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	iso := s
	if i := strings.IndexByte(iso, 'T'); i == 10 {
		iso = iso[:i]
	}
	if t, err := time.ParseInLocation("2006-01-02", iso, time.UTC); err == nil {
		return t, nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Format renders a value the way it appears in a substitution trace.
func Format(v any) string {
	switch n := v.(type) {
	case nil:
		return "undefined"
	case float64:
		return FormatNum(n)
	case string:
		return n
	default:
		if f, ok := toFloat(v); ok {
			return FormatNum(f)
		}
		return fmt.Sprint(v)
	}
}

// FormatNum prints the shortest representation that round-trips.
func FormatNum(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// V formats the named parameter for a trace.
func (p Params) V(name string) string {
	v, ok := p[name]
	if !ok {
		return "undefined"
	}
	return Format(v)
}
