package formula

import (
	"fmt"
	"math"
)

// Gradients: arithmetic (ga, constant increment G) and geometric (gg,
// growth rate g over a first payment R).
func registerGradients(r *Registry) {
	r.Register("formula_ga_P_from_Gin", simple(
		func(p Params) float64 {
			i, n := p.Num("i"), p.Num("n")
			v := math.Pow(1+i, -n)
			return (p.Num("G") / i) * (((1 - v) / i) - (n * v))
		},
		func(p Params) string {
			return fmt.Sprintf("(%s/%s) * (((1-(1+%s)^-%s)/%s) - (%s*(1+%s)^-%s))",
				p.V("G"), p.V("i"), p.V("i"), p.V("n"), p.V("i"), p.V("n"), p.V("i"), p.V("n"))
		},
	))
	r.Register("formula_ga_S_from_Gin", simple(
		func(p Params) float64 {
			i, n := p.Num("i"), p.Num("n")
			return (p.Num("G") / i) * (((math.Pow(1+i, n) - 1) / i) - n)
		},
		func(p Params) string {
			return fmt.Sprintf("(%s/%s) * ((((1+%s)^%s-1)/%s) - %s)",
				p.V("G"), p.V("i"), p.V("i"), p.V("n"), p.V("i"), p.V("n"))
		},
	))
	r.Register("formula_ga_R_from_Gin", simple(
		func(p Params) float64 {
			i, n := p.Num("i"), p.Num("n")
			return p.Num("G") * (1/i - n/(math.Pow(1+i, n)-1))
		},
		func(p Params) string {
			return fmt.Sprintf("%s * (1/%s - %s/((1+%s)^%s-1))", p.V("G"), p.V("i"), p.V("n"), p.V("i"), p.V("n"))
		},
	))
	r.Register("formula_gg_P_from_Rgin", evalGeometricPresent)
	r.Register("formula_gg_S_from_Rgin", evalGeometricFuture)
}

// evalGeometricPresent uses the limit n*R/(1+i) when i == g; the general
// form divides by i-g.
func evalGeometricPresent(a Args) (float64, string, error) {
	R, g, i, n := a.Num("R"), a.Num("g"), a.Num("i"), a.Num("n")
	if i == g {
		result := n * R / (1 + i)
		return result, fmt.Sprintf("%s*%s/(1+%s) = %s", a.V("n"), a.V("R"), a.V("i"), FormatNum(result)), nil
	}
	result := R * ((1 - math.Pow((1+g)/(1+i), n)) / (i - g))
	trace := fmt.Sprintf("%s*((1-((1+%s)/(1+%s))^%s)/(%s-%s)) = %s",
		a.V("R"), a.V("g"), a.V("i"), a.V("n"), a.V("i"), a.V("g"), FormatNum(result))
	return result, trace, nil
}

// evalGeometricFuture uses the limit n*R*(1+i)^(n-1) when i == g.
func evalGeometricFuture(a Args) (float64, string, error) {
	R, g, i, n := a.Num("R"), a.Num("g"), a.Num("i"), a.Num("n")
	if i == g {
		result := n * R * math.Pow(1+i, n-1)
		return result, fmt.Sprintf("%s*%s*(1+%s)^(%s-1) = %s", a.V("n"), a.V("R"), a.V("i"), a.V("n"), FormatNum(result)), nil
	}
	result := R * ((math.Pow(1+i, n) - math.Pow(1+g, n)) / (i - g))
	trace := fmt.Sprintf("%s*(((1+%s)^%s-(1+%s)^%s)/(%s-%s)) = %s",
		a.V("R"), a.V("i"), a.V("n"), a.V("g"), a.V("n"), a.V("i"), a.V("g"), FormatNum(result))
	return result, trace, nil
}
