package formula

import (
	"fmt"
	"math"
)

// Annuities: ordinary (av), due (aa), deferred ordinary (adv) and deferred
// due (ada). R is the periodic payment and k the number of deferred periods.

func registerAnnuities(r *Registry) {
	r.Register("formula_av_S_from_Rin", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return p.Num("R") * ((math.Pow(1+i, p.Num("n")) - 1) / i)
		},
		func(p Params) string { return fmt.Sprintf("%s * ((1 + %s)^%s - 1) / %s", p.V("R"), p.V("i"), p.V("n"), p.V("i")) },
	))
	r.Register("formula_av_P_from_Rin", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return p.Num("R") * ((1 - math.Pow(1+i, -p.Num("n"))) / i)
		},
		func(p Params) string { return fmt.Sprintf("%s * (1 - (1 + %s)^-%s) / %s", p.V("R"), p.V("i"), p.V("n"), p.V("i")) },
	))
	r.Register("formula_av_R_from_Sin", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return p.Num("S") * (i / (math.Pow(1+i, p.Num("n")) - 1))
		},
		func(p Params) string {
			return fmt.Sprintf("%s * (%s / ((1 + %s)^%s - 1))", p.V("S"), p.V("i"), p.V("i"), p.V("n"))
		},
	))
	r.Register("formula_av_R_from_Pin", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return p.Num("P") * (i / (1 - math.Pow(1+i, -p.Num("n"))))
		},
		func(p Params) string {
			return fmt.Sprintf("%s * (%s / (1 - (1 + %s)^-%s))", p.V("P"), p.V("i"), p.V("i"), p.V("n"))
		},
	))
	r.Register("formula_av_n_from_SRi", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return math.Log((p.Num("S")*i/p.Num("R"))+1) / math.Log(1+i)
		},
		func(p Params) string {
			return fmt.Sprintf("log((%s * %s / %s) + 1) / log(1 + %s)", p.V("S"), p.V("i"), p.V("R"), p.V("i"))
		},
	))
	r.Register("formula_av_n_from_PRi", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return -math.Log(1-(p.Num("P")*i/p.Num("R"))) / math.Log(1+i)
		},
		func(p Params) string {
			return fmt.Sprintf("-log(1 - (%s * %s / %s)) / log(1 + %s)", p.V("P"), p.V("i"), p.V("R"), p.V("i"))
		},
	))

	r.Register("formula_aa_S_from_Rin", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return p.Num("R") * ((math.Pow(1+i, p.Num("n")) - 1) / i) * (1 + i)
		},
		func(p Params) string {
			return fmt.Sprintf("%s * (((1 + %s)^%s - 1) / %s) * (1 + %s)", p.V("R"), p.V("i"), p.V("n"), p.V("i"), p.V("i"))
		},
	))
	r.Register("formula_aa_P_from_Rin", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return p.Num("R") * ((1 - math.Pow(1+i, -p.Num("n"))) / i) * (1 + i)
		},
		func(p Params) string {
			return fmt.Sprintf("%s * ((1 - (1 + %s)^-%s) / %s) * (1 + %s)", p.V("R"), p.V("i"), p.V("n"), p.V("i"), p.V("i"))
		},
	))
	r.Register("formula_aa_R_from_Sin", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return (p.Num("S") / (1 + i)) * (i / (math.Pow(1+i, p.Num("n")) - 1))
		},
		func(p Params) string {
			return fmt.Sprintf("(%s / (1 + %s)) * (%s / ((1 + %s)^%s - 1))", p.V("S"), p.V("i"), p.V("i"), p.V("i"), p.V("n"))
		},
	))
	r.Register("formula_aa_R_from_Pin", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return (p.Num("P") / (1 + i)) * (i / (1 - math.Pow(1+i, -p.Num("n"))))
		},
		func(p Params) string {
			return fmt.Sprintf("(%s / (1 + %s)) * (%s / (1 - (1 + %s)^-%s))", p.V("P"), p.V("i"), p.V("i"), p.V("i"), p.V("n"))
		},
	))
	r.Register("formula_aa_n_from_PRi", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return -math.Log(1-(p.Num("P")*i/(p.Num("R")*(1+i)))) / math.Log(1+i)
		},
		func(p Params) string {
			return fmt.Sprintf("-log(1 - (%s * %s / (%s * (1+%s)))) / log(1 + %s)", p.V("P"), p.V("i"), p.V("R"), p.V("i"), p.V("i"))
		},
	))
	r.Register("formula_aa_n_from_SRi", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return math.Log((p.Num("S")*i/(p.Num("R")*(1+i)))+1) / math.Log(1+i)
		},
		func(p Params) string {
			return fmt.Sprintf("log((%s * %s / (%s*(1+%s))) + 1) / log(1 + %s)", p.V("S"), p.V("i"), p.V("R"), p.V("i"), p.V("i"))
		},
	))

	r.Register("formula_adv_P_from_Rink", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return p.Num("R") * ((1 - math.Pow(1+i, -p.Num("n"))) / i) * math.Pow(1+i, -p.Num("k"))
		},
		func(p Params) string {
			return fmt.Sprintf("%s * ((1 - (1 + %s)^-%s) / %s) * (1 + %s)^-%s",
				p.V("R"), p.V("i"), p.V("n"), p.V("i"), p.V("i"), p.V("k"))
		},
	))
	r.Register("formula_ada_P_from_Rink", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return p.Num("R") * ((1 - math.Pow(1+i, -p.Num("n"))) / i) * (1 + i) * math.Pow(1+i, -p.Num("k"))
		},
		func(p Params) string {
			return fmt.Sprintf("%s * ((1 - (1 + %s)^-%s) / %s) * (1 + %s) * (1 + %s)^-%s",
				p.V("R"), p.V("i"), p.V("n"), p.V("i"), p.V("i"), p.V("i"), p.V("k"))
		},
	))
	r.Register("formula_adv_n_from_PRik", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return -math.Log(1-(p.Num("P")*math.Pow(1+i, p.Num("k"))*i/p.Num("R"))) / math.Log(1+i)
		},
		func(p Params) string {
			return fmt.Sprintf("-log(1 - (%s * (1+%s)^%s * %s / %s)) / log(1+%s)",
				p.V("P"), p.V("i"), p.V("k"), p.V("i"), p.V("R"), p.V("i"))
		},
	))
	r.Register("formula_adv_k_from_PRin", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return math.Log(p.Num("R")*(1-math.Pow(1+i, -p.Num("n")))/(p.Num("P")*i)) / math.Log(1+i)
		},
		func(p Params) string {
			return fmt.Sprintf("log(%s * (1 - (1+%s)^-%s) / (%s*%s)) / log(1+%s)",
				p.V("R"), p.V("i"), p.V("n"), p.V("P"), p.V("i"), p.V("i"))
		},
	))
	r.Register("formula_ada_n_from_PRik", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return -math.Log(1-(p.Num("P")*i/(p.Num("R")*math.Pow(1+i, 1-p.Num("k"))))) / math.Log(1+i)
		},
		func(p Params) string {
			return fmt.Sprintf("-log(1 - (%s*%s/(%s*(1+%s)^(1-%s))))/log(1+%s)",
				p.V("P"), p.V("i"), p.V("R"), p.V("i"), p.V("k"), p.V("i"))
		},
	))
	r.Register("formula_ada_k_from_PRin", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return math.Log(p.Num("R")*(1-math.Pow(1+i, -p.Num("n")))*(1+i)/(p.Num("P")*i)) / math.Log(1+i)
		},
		func(p Params) string {
			return fmt.Sprintf("log(%s*(1-(1+%s)^-%s)*(1+%s)/(%s*%s))/log(1+%s)",
				p.V("R"), p.V("i"), p.V("n"), p.V("i"), p.V("P"), p.V("i"), p.V("i"))
		},
	))
}
