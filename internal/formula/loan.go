package formula

import (
	"fmt"
	"math"
)

// Loan amortization under the French system: P borrowed at rate i over n
// periods, N is the period of interest within the schedule.
func registerLoans(r *Registry) {
	r.Register("formula_prestamo_saldo_N", simple(
		func(p Params) float64 {
			i := p.Num("i")
			pn := math.Pow(1+i, p.Num("n"))
			return p.Num("P") * ((pn - math.Pow(1+i, p.Num("N"))) / (pn - 1))
		},
		func(p Params) string {
			return fmt.Sprintf("%s * (((1+%s)^%s-(1+%s)^%s)/((1+%s)^%s-1))",
				p.V("P"), p.V("i"), p.V("n"), p.V("i"), p.V("N"), p.V("i"), p.V("n"))
		},
	))
	r.Register("formula_prestamo_amortizacion_N", simple(
		func(p Params) float64 {
			i, n := p.Num("i"), p.Num("n")
			return installment(p.Num("P"), i, n) * math.Pow(1+i, p.Num("N")-1-n)
		},
		func(p Params) string {
			return fmt.Sprintf("(%s*%s/(1-(1+%s)^-%s)) * (1+%s)^(%s-1-%s)",
				p.V("P"), p.V("i"), p.V("i"), p.V("n"), p.V("i"), p.V("N"), p.V("n"))
		},
	))
	r.Register("formula_prestamo_interes_N", simple(
		func(p Params) float64 {
			i, n := p.Num("i"), p.Num("n")
			return installment(p.Num("P"), i, n) * (1 - math.Pow(1+i, p.Num("N")-1-n))
		},
		func(p Params) string {
			return fmt.Sprintf("(%s*%s/(1-(1+%s)^-%s)) * (1-(1+%s)^(%s-1-%s))",
				p.V("P"), p.V("i"), p.V("i"), p.V("n"), p.V("i"), p.V("N"), p.V("n"))
		},
	))
	r.Register("formula_prestamo_A1_from_Pin", simple(
		func(p Params) float64 {
			i, n := p.Num("i"), p.Num("n")
			return installment(p.Num("P"), i, n) * math.Pow(1+i, -n)
		},
		func(p Params) string {
			return fmt.Sprintf("(%s*%s/(1-(1+%s)^-%s))*(1+%s)^-%s",
				p.V("P"), p.V("i"), p.V("i"), p.V("n"), p.V("i"), p.V("n"))
		},
	))
	r.Register("formula_prestamo_de_from_RinN", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return p.Num("R") * math.Pow(1+i, -p.Num("n")) * ((math.Pow(1+i, p.Num("N")) - 1) / i)
		},
		func(p Params) string {
			return fmt.Sprintf("%s*(1+%s)^-%s*(((1+%s)^%s-1)/%s)",
				p.V("R"), p.V("i"), p.V("n"), p.V("i"), p.V("N"), p.V("i"))
		},
	))
	r.Register("formula_prestamo_de_from_PinN", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return p.Num("P") * ((math.Pow(1+i, p.Num("N")) - 1) / (math.Pow(1+i, p.Num("n")) - 1))
		},
		func(p Params) string {
			return fmt.Sprintf("%s*(((1+%s)^%s-1)/((1+%s)^%s-1))",
				p.V("P"), p.V("i"), p.V("N"), p.V("i"), p.V("n"))
		},
	))
	r.Register("formula_prestamo_de_from_A1iN", simple(
		func(p Params) float64 {
			i := p.Num("i")
			return p.Num("A1") * ((math.Pow(1+i, p.Num("N")) - 1) / i)
		},
		func(p Params) string {
			return fmt.Sprintf("%s*(((1+%s)^%s-1)/%s)", p.V("A1"), p.V("i"), p.V("N"), p.V("i"))
		},
	))
}

// installment is the level payment that amortizes P over n periods at i.
func installment(P, i, n float64) float64 {
	return P * (i / (1 - math.Pow(1+i, -n)))
}
