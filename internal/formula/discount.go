package formula

import (
	"fmt"
	"math"
)

// Discount formulas: rational (dr*) discounts at an interest rate, bank
// (db*) discounts at a discount rate d (simple) or de (compound).
func registerDiscounts(r *Registry) {
	r.Register("formula_drs_D_from_Sjn", simple(
		func(p Params) float64 {
			jn := p.Num("j") * p.Num("n")
			return (p.Num("S") * jn) / (1 + jn)
		},
		func(p Params) string {
			return fmt.Sprintf("(%s * %s * %s) / (1 + %s * %s)", p.V("S"), p.V("j"), p.V("n"), p.V("j"), p.V("n"))
		},
	))
	r.Register("formula_dr_D_from_Sin", simple(
		func(p Params) float64 { return p.Num("S") * (1 - math.Pow(1+p.Num("i"), -p.Num("n"))) },
		func(p Params) string { return fmt.Sprintf("%s * (1 - (1 + %s)^-%s)", p.V("S"), p.V("i"), p.V("n")) },
	))
	r.Register("formula_dr_P_from_Sin", simple(
		func(p Params) float64 { return p.Num("S") * math.Pow(1+p.Num("i"), -p.Num("n")) },
		func(p Params) string { return fmt.Sprintf("%s * (1 + %s)^-%s", p.V("S"), p.V("i"), p.V("n")) },
	))

	r.Register("formula_dbs_DB_from_Sdn", simple(
		func(p Params) float64 { return p.Num("S") * p.Num("d") * p.Num("n") },
		func(p Params) string { return fmt.Sprintf("%s * %s * %s", p.V("S"), p.V("d"), p.V("n")) },
	))
	r.Register("formula_dbs_P_from_Sdn", simple(
		func(p Params) float64 { return p.Num("S") * (1 - p.Num("d")*p.Num("n")) },
		func(p Params) string { return fmt.Sprintf("%s * (1 - %s * %s)", p.V("S"), p.V("d"), p.V("n")) },
	))
	r.Register("formula_dbs_S_from_DBdn", simple(
		func(p Params) float64 { return p.Num("DB") / (p.Num("d") * p.Num("n")) },
		func(p Params) string { return fmt.Sprintf("%s / (%s * %s)", p.V("DB"), p.V("d"), p.V("n")) },
	))
	r.Register("formula_dbs_d_from_DBSn", simple(
		func(p Params) float64 { return p.Num("DB") / (p.Num("S") * p.Num("n")) },
		func(p Params) string { return fmt.Sprintf("%s / (%s * %s)", p.V("DB"), p.V("S"), p.V("n")) },
	))
	r.Register("formula_dbs_n_from_DBSd", simple(
		func(p Params) float64 { return p.Num("DB") / (p.Num("S") * p.Num("d")) },
		func(p Params) string { return fmt.Sprintf("%s / (%s * %s)", p.V("DB"), p.V("S"), p.V("d")) },
	))

	r.Register("formula_db_DB_from_Sden", simple(
		func(p Params) float64 { return p.Num("S") * (1 - math.Pow(1-p.Num("de"), p.Num("n"))) },
		func(p Params) string { return fmt.Sprintf("%s * (1 - (1 - %s)^%s)", p.V("S"), p.V("de"), p.V("n")) },
	))
	r.Register("formula_db_P_from_Sden", simple(
		func(p Params) float64 { return p.Num("S") * math.Pow(1-p.Num("de"), p.Num("n")) },
		func(p Params) string { return fmt.Sprintf("%s * (1 - %s)^%s", p.V("S"), p.V("de"), p.V("n")) },
	))
	r.Register("formula_db_S_from_DBden", simple(
		func(p Params) float64 { return p.Num("DB") / (1 - math.Pow(1-p.Num("de"), p.Num("n"))) },
		func(p Params) string { return fmt.Sprintf("%s / (1 - (1 - %s)^%s)", p.V("DB"), p.V("de"), p.V("n")) },
	))
	r.Register("formula_db_de_from_DBSn", simple(
		func(p Params) float64 { return 1 - math.Pow(1-p.Num("DB")/p.Num("S"), 1/p.Num("n")) },
		func(p Params) string { return fmt.Sprintf("1 - (1 - %s/%s)^(1/%s)", p.V("DB"), p.V("S"), p.V("n")) },
	))
	r.Register("formula_db_de_from_Psn", simple(
		func(p Params) float64 { return 1 - math.Pow(p.Num("P")/p.Num("S"), 1/p.Num("n")) },
		func(p Params) string { return fmt.Sprintf("1 - (%s/%s)^(1/%s)", p.V("P"), p.V("S"), p.V("n")) },
	))
	r.Register("formula_db_n_from_DBSde", simple(
		func(p Params) float64 { return math.Log(1-p.Num("DB")/p.Num("S")) / math.Log(1-p.Num("de")) },
		func(p Params) string { return fmt.Sprintf("log(1 - %s/%s) / log(1 - %s)", p.V("DB"), p.V("S"), p.V("de")) },
	))
}
