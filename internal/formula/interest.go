package formula

import (
	"fmt"
	"math"
)

// Parameter names follow the textbook notation the plan generator is taught:
// P principal, S future amount, I interest, j nominal rate, i periodic rate,
// n periods, m capitalizations per period.

func registerSimpleInterest(r *Registry) {
	r.Register("formula_is_I_from_Pjn", simple(
		func(p Params) float64 { return p.Num("P") * p.Num("j") * p.Num("n") },
		func(p Params) string { return fmt.Sprintf("%s * %s * %s", p.V("P"), p.V("j"), p.V("n")) },
	))
	r.Register("formula_is_S_from_Pjn", simple(
		func(p Params) float64 { return p.Num("P") * (1 + p.Num("j")*p.Num("n")) },
		func(p Params) string { return fmt.Sprintf("%s * (1 + %s * %s)", p.V("P"), p.V("j"), p.V("n")) },
	))
	r.Register("formula_is_P_from_Sjn", simple(
		func(p Params) float64 { return p.Num("S") / (1 + p.Num("j")*p.Num("n")) },
		func(p Params) string { return fmt.Sprintf("%s / (1 + %s * %s)", p.V("S"), p.V("j"), p.V("n")) },
	))
	r.Register("formula_is_P_from_Ijn", simple(
		func(p Params) float64 { return p.Num("I") / (p.Num("j") * p.Num("n")) },
		func(p Params) string { return fmt.Sprintf("%s / (%s * %s)", p.V("I"), p.V("j"), p.V("n")) },
	))
	r.Register("formula_is_n_from_SPI", simple(
		func(p Params) float64 { return (p.Num("S")/p.Num("P") - 1) / p.Num("j") },
		func(p Params) string { return fmt.Sprintf("(%s / %s - 1) / %s", p.V("S"), p.V("P"), p.V("j")) },
	))
	r.Register("formula_is_n_from_IPj", simple(
		func(p Params) float64 { return p.Num("I") / (p.Num("P") * p.Num("j")) },
		func(p Params) string { return fmt.Sprintf("%s / (%s * %s)", p.V("I"), p.V("P"), p.V("j")) },
	))
	r.Register("formula_is_j_from_SPn", simple(
		func(p Params) float64 { return (p.Num("S")/p.Num("P") - 1) / p.Num("n") },
		func(p Params) string { return fmt.Sprintf("(%s / %s - 1) / %s", p.V("S"), p.V("P"), p.V("n")) },
	))
	r.Register("formula_is_j_from_IPn", simple(
		func(p Params) float64 { return p.Num("I") / (p.Num("P") * p.Num("n")) },
		func(p Params) string { return fmt.Sprintf("%s / (%s * %s)", p.V("I"), p.V("P"), p.V("n")) },
	))
}

func registerCompoundInterest(r *Registry) {
	r.Register("formula_ic_S_from_Pin", simple(
		func(p Params) float64 { return p.Num("P") * math.Pow(1+p.Num("i"), p.Num("n")) },
		func(p Params) string { return fmt.Sprintf("%s * (1 + %s)^%s", p.V("P"), p.V("i"), p.V("n")) },
	))
	r.Register("formula_ic_P_from_Sin", simple(
		func(p Params) float64 { return p.Num("S") * math.Pow(1+p.Num("i"), -p.Num("n")) },
		func(p Params) string { return fmt.Sprintf("%s * (1 + %s)^-%s", p.V("S"), p.V("i"), p.V("n")) },
	))
	r.Register("formula_ic_I_from_Pin", simple(
		func(p Params) float64 { return p.Num("P") * (math.Pow(1+p.Num("i"), p.Num("n")) - 1) },
		func(p Params) string { return fmt.Sprintf("%s * ((1 + %s)^%s - 1)", p.V("P"), p.V("i"), p.V("n")) },
	))
	r.Register("formula_ic_P_from_Iin", simple(
		func(p Params) float64 { return p.Num("I") / (math.Pow(1+p.Num("i"), p.Num("n")) - 1) },
		func(p Params) string { return fmt.Sprintf("%s / ((1 + %s)^%s - 1)", p.V("I"), p.V("i"), p.V("n")) },
	))
	r.Register("formula_ic_n_from_SPi", simple(
		func(p Params) float64 { return math.Log(p.Num("S")/p.Num("P")) / math.Log(1+p.Num("i")) },
		func(p Params) string { return fmt.Sprintf("log(%s / %s) / log(1 + %s)", p.V("S"), p.V("P"), p.V("i")) },
	))
	r.Register("formula_ic_i_from_SPn", simple(
		func(p Params) float64 { return math.Pow(p.Num("S")/p.Num("P"), 1/p.Num("n")) - 1 },
		func(p Params) string { return fmt.Sprintf("(%s / %s)^(1/%s) - 1", p.V("S"), p.V("P"), p.V("n")) },
	))
	r.Register("formula_ic_S_from_Pjm", simple(
		func(p Params) float64 { return p.Num("P") * math.Pow(1+p.Num("j")/p.Num("m"), p.Num("n")) },
		func(p Params) string { return fmt.Sprintf("%s * (1 + %s / %s)^%s", p.V("P"), p.V("j"), p.V("m"), p.V("n")) },
	))
	r.Register("formula_ic_P_from_Sjm", simple(
		func(p Params) float64 { return p.Num("S") * math.Pow(1+p.Num("j")/p.Num("m"), -p.Num("n")) },
		func(p Params) string { return fmt.Sprintf("%s * (1 + %s / %s)^-%s", p.V("S"), p.V("j"), p.V("m"), p.V("n")) },
	))
	r.Register("formula_ic_n_from_IPi", simple(
		func(p Params) float64 { return math.Log(p.Num("I")/p.Num("P")+1) / math.Log(1+p.Num("i")) },
		func(p Params) string { return fmt.Sprintf("log(%s / %s + 1) / log(1 + %s)", p.V("I"), p.V("P"), p.V("i")) },
	))
	r.Register("formula_ic_i_from_IPn", simple(
		func(p Params) float64 { return math.Pow(p.Num("I")/p.Num("P")+1, 1/p.Num("n")) - 1 },
		func(p Params) string { return fmt.Sprintf("(%s / %s + 1)^(1/%s) - 1", p.V("I"), p.V("P"), p.V("n")) },
	))
	r.Register("formula_ic_j_from_SPnm", simple(
		func(p Params) float64 { return p.Num("m") * (math.Pow(p.Num("S")/p.Num("P"), 1/p.Num("n")) - 1) },
		func(p Params) string {
			return fmt.Sprintf("%s * ((%s / %s)^(1/%s) - 1)", p.V("m"), p.V("S"), p.V("P"), p.V("n"))
		},
	))
}

func registerRates(r *Registry) {
	r.Register("formula_tasa_proporcional", simple(
		func(p Params) float64 { return p.Num("j") * (p.Num("n_dias_deseado") / p.Num("n_dias_conocido")) },
		func(p Params) string {
			return fmt.Sprintf("%s * (%s / %s)", p.V("j"), p.V("n_dias_deseado"), p.V("n_dias_conocido"))
		},
	))
	r.Register("formula_tasa_efectiva_from_nominal", simple(
		func(p Params) float64 {
			m := p.Num("m")
			return math.Pow(1+p.Num("j")/m, m*p.NumOr("t", 1)) - 1
		},
		func(p Params) string {
			return fmt.Sprintf("(1 + %s / %s)^(%s*%s) - 1", p.V("j"), p.V("m"), p.V("m"), FormatNum(p.NumOr("t", 1)))
		},
	))
	r.Register("formula_tasa_equivalente", simple(
		func(p Params) float64 {
			return math.Pow(1+p.Num("i_conocida"), p.Num("n_dias_deseado")/p.Num("n_dias_conocido")) - 1
		},
		func(p Params) string {
			return fmt.Sprintf("(1 + %s)^(%s/%s) - 1", p.V("i_conocida"), p.V("n_dias_deseado"), p.V("n_dias_conocido"))
		},
	))
	r.Register("formula_tasa_real", simple(
		func(p Params) float64 { return (p.Num("i") - p.Num("pi")) / (1 + p.Num("pi")) },
		func(p Params) string { return fmt.Sprintf("(%s - %s) / (1 + %s)", p.V("i"), p.V("pi"), p.V("pi")) },
	))
}
