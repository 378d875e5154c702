package formula

import (
	"fmt"
	"math"
	"strings"
)

const (
	DaysBetween  = "formula_util_dias_entre_fechas"
	YearFraction = "formula_util_fraccion_anio"
	Experimental = "formula_experimental"
)

// commercialYear is the day-count base of the year fraction utility.
const commercialYear = 360

func registerUtil(r *Registry) {
	r.Register(DaysBetween, evalDaysBetween)
	r.Register(YearFraction, simple(
		func(p Params) float64 { return p.Num("n_dias") / commercialYear },
		func(p Params) string { return fmt.Sprintf("%s / %d", p.V("n_dias"), commercialYear) },
	))
	r.Register("formula_util_suma", simple(
		func(p Params) float64 { return p.Num("valor1") + p.Num("valor2") },
		func(p Params) string { return fmt.Sprintf("%s + %s", p.V("valor1"), p.V("valor2")) },
	))
	r.Register("formula_util_resta", simple(
		func(p Params) float64 { return p.Num("valor1") - p.Num("valor2") },
		func(p Params) string { return fmt.Sprintf("%s - %s", p.V("valor1"), p.V("valor2")) },
	))
	r.Register("formula_util_multiplicacion", simple(
		func(p Params) float64 { return p.Num("valor1") * p.Num("valor2") },
		func(p Params) string { return fmt.Sprintf("%s * %s", p.V("valor1"), p.V("valor2")) },
	))
	r.Register("formula_util_division", simple(
		func(p Params) float64 { return p.Num("valor1") / p.Num("valor2") },
		func(p Params) string { return fmt.Sprintf("%s / %s", p.V("valor1"), p.V("valor2")) },
	))
}

// evalDaysBetween counts whole calendar days between two dates. The order
// of the dates does not matter. A missing or unreadable date yields NaN.
func evalDaysBetween(a Args) (float64, string, error) {
	days := math.NaN()
	from, errFrom := a.Date("fecha_inicial")
	to, errTo := a.Date("fecha_final")
	if errFrom == nil && errTo == nil {
		days = math.Ceil(math.Abs(to.Sub(from).Hours()) / 24)
	}
	trace := fmt.Sprintf("DiasEntre(%s, %s) = %s", a.V("fecha_final"), a.V("fecha_inicial"), FormatNum(days))
	return days, trace, nil
}

func evalExperimental(a Args) (float64, string, error) {
	if a.Expression == "" {
		return 0, "", fmt.Errorf("%w: 'generated_formula' is required for the experimental formula", ErrBadExpression)
	}
	e, err := ParseExpr(a.Expression)
	if err != nil {
		return 0, "", err
	}
	var unbound []string
	for _, id := range e.Identifiers() {
		if _, ok := a.Params[id]; !ok {
			unbound = append(unbound, id)
		}
	}
	if len(unbound) > 0 {
		return 0, "", fmt.Errorf("%w: no input bound for %s", ErrBadExpression, strings.Join(unbound, ", "))
	}
	result, err := e.Eval(a.Params)
	if err != nil {
		return 0, "", err
	}
	return result, fmt.Sprintf("%s = %s", e.Substitute(a.Params), FormatNum(result)), nil
}
