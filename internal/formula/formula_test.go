package formula

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eval(t *testing.T, name string, params Params) (float64, string) {
	t.Helper()
	result, trace, err := Default().Evaluate(name, Args{Params: params})
	require.NoError(t, err, "formula %s", name)
	return result, trace
}

func TestSimpleInterest(t *testing.T) {
	result, trace := eval(t, "formula_is_I_from_Pjn", Params{"P": 1000.0, "j": 0.05, "n": 2.0})
	assert.Equal(t, 100.0, result)
	assert.Equal(t, "1000 * 0.05 * 2 = 100", trace)
}

func TestEquivalentRate(t *testing.T) {
	result, trace := eval(t, "formula_tasa_equivalente", Params{
		"i_conocida":      0.0168,
		"n_dias_conocido": 72.8,
		"n_dias_deseado":  187.0,
	})
	assert.InDelta(t, math.Pow(1.0168, 187/72.8)-1, result, 1e-15)
	assert.InDelta(t, 0.0437, result, 1e-3)
	assert.Contains(t, trace, "(1 + 0.0168)^(187/72.8) - 1 = ")
}

// TestEveryFormula checks each closed-form formula against a hand-worked
// value. Inputs are chosen so inverse formulas land on round numbers.
func TestEveryFormula(t *testing.T) {
	const (
		annuityPV  = 331 / 1.331 // R=100, i=10%, n=3
		payment    = 402.1148036253773
		firstAmort = payment - 100
	)

	tests := []struct {
		formula string
		params  Params
		want    float64
	}{
		{"formula_is_I_from_Pjn", Params{"P": 1000.0, "j": 0.05, "n": 2.0}, 100},
		{"formula_is_S_from_Pjn", Params{"P": 1000.0, "j": 0.05, "n": 2.0}, 1100},
		{"formula_is_P_from_Sjn", Params{"S": 1100.0, "j": 0.05, "n": 2.0}, 1000},
		{"formula_is_P_from_Ijn", Params{"I": 100.0, "j": 0.05, "n": 2.0}, 1000},
		{"formula_is_n_from_SPI", Params{"S": 1100.0, "P": 1000.0, "j": 0.05}, 2},
		{"formula_is_n_from_IPj", Params{"I": 100.0, "P": 1000.0, "j": 0.05}, 2},
		{"formula_is_j_from_SPn", Params{"S": 1100.0, "P": 1000.0, "n": 2.0}, 0.05},
		{"formula_is_j_from_IPn", Params{"I": 100.0, "P": 1000.0, "n": 2.0}, 0.05},

		{"formula_ic_S_from_Pin", Params{"P": 1000.0, "i": 0.1, "n": 2.0}, 1210},
		{"formula_ic_P_from_Sin", Params{"S": 1210.0, "i": 0.1, "n": 2.0}, 1000},
		{"formula_ic_I_from_Pin", Params{"P": 1000.0, "i": 0.1, "n": 2.0}, 210},
		{"formula_ic_P_from_Iin", Params{"I": 210.0, "i": 0.1, "n": 2.0}, 1000},
		{"formula_ic_n_from_SPi", Params{"S": 1210.0, "P": 1000.0, "i": 0.1}, 2},
		{"formula_ic_i_from_SPn", Params{"S": 1210.0, "P": 1000.0, "n": 2.0}, 0.1},
		{"formula_ic_S_from_Pjm", Params{"P": 1000.0, "j": 0.2, "m": 2.0, "n": 2.0}, 1210},
		{"formula_ic_P_from_Sjm", Params{"S": 1210.0, "j": 0.2, "m": 2.0, "n": 2.0}, 1000},
		{"formula_ic_n_from_IPi", Params{"I": 210.0, "P": 1000.0, "i": 0.1}, 2},
		{"formula_ic_i_from_IPn", Params{"I": 210.0, "P": 1000.0, "n": 2.0}, 0.1},
		{"formula_ic_j_from_SPnm", Params{"S": 1210.0, "P": 1000.0, "n": 2.0, "m": 2.0}, 0.2},

		{"formula_tasa_proporcional", Params{"j": 0.12, "n_dias_deseado": 90.0, "n_dias_conocido": 360.0}, 0.03},
		{"formula_tasa_efectiva_from_nominal", Params{"j": 0.12, "m": 12.0}, 0.12682503013196977},
		{"formula_tasa_equivalente", Params{"i_conocida": 0.1, "n_dias_deseado": 720.0, "n_dias_conocido": 360.0}, 0.21},
		{"formula_tasa_real", Params{"i": 0.1, "pi": 0.05}, 0.05 / 1.05},

		{"formula_drs_D_from_Sjn", Params{"S": 1100.0, "j": 0.05, "n": 2.0}, 100},
		{"formula_dr_D_from_Sin", Params{"S": 1210.0, "i": 0.1, "n": 2.0}, 210},
		{"formula_dr_P_from_Sin", Params{"S": 1210.0, "i": 0.1, "n": 2.0}, 1000},
		{"formula_dbs_DB_from_Sdn", Params{"S": 5000.0, "d": 0.1, "n": 0.5}, 250},
		{"formula_dbs_P_from_Sdn", Params{"S": 5000.0, "d": 0.1, "n": 0.5}, 4750},
		{"formula_dbs_S_from_DBdn", Params{"DB": 250.0, "d": 0.1, "n": 0.5}, 5000},
		{"formula_dbs_d_from_DBSn", Params{"DB": 250.0, "S": 5000.0, "n": 0.5}, 0.1},
		{"formula_dbs_n_from_DBSd", Params{"DB": 250.0, "S": 5000.0, "d": 0.1}, 0.5},
		{"formula_db_DB_from_Sden", Params{"S": 1000.0, "de": 0.1, "n": 2.0}, 190},
		{"formula_db_P_from_Sden", Params{"S": 1000.0, "de": 0.1, "n": 2.0}, 810},
		{"formula_db_S_from_DBden", Params{"DB": 190.0, "de": 0.1, "n": 2.0}, 1000},
		{"formula_db_de_from_DBSn", Params{"DB": 190.0, "S": 1000.0, "n": 2.0}, 0.1},
		{"formula_db_de_from_Psn", Params{"P": 810.0, "S": 1000.0, "n": 2.0}, 0.1},
		{"formula_db_n_from_DBSde", Params{"DB": 190.0, "S": 1000.0, "de": 0.1}, 2},

		{"formula_av_S_from_Rin", Params{"R": 100.0, "i": 0.1, "n": 3.0}, 331},
		{"formula_av_P_from_Rin", Params{"R": 100.0, "i": 0.1, "n": 3.0}, annuityPV},
		{"formula_av_R_from_Sin", Params{"S": 331.0, "i": 0.1, "n": 3.0}, 100},
		{"formula_av_R_from_Pin", Params{"P": 1000.0, "i": 0.1, "n": 3.0}, payment},
		{"formula_av_n_from_SRi", Params{"S": 331.0, "R": 100.0, "i": 0.1}, 3},
		{"formula_av_n_from_PRi", Params{"P": annuityPV, "R": 100.0, "i": 0.1}, 3},
		{"formula_aa_S_from_Rin", Params{"R": 100.0, "i": 0.1, "n": 3.0}, 364.1},
		{"formula_aa_P_from_Rin", Params{"R": 100.0, "i": 0.1, "n": 3.0}, annuityPV * 1.1},
		{"formula_aa_R_from_Sin", Params{"S": 364.1, "i": 0.1, "n": 3.0}, 100},
		{"formula_aa_R_from_Pin", Params{"P": annuityPV * 1.1, "i": 0.1, "n": 3.0}, 100},
		{"formula_aa_n_from_PRi", Params{"P": annuityPV * 1.1, "R": 100.0, "i": 0.1}, 3},
		{"formula_aa_n_from_SRi", Params{"S": 364.1, "R": 100.0, "i": 0.1}, 3},
		{"formula_adv_P_from_Rink", Params{"R": 100.0, "i": 0.1, "n": 3.0, "k": 2.0}, annuityPV / 1.21},
		{"formula_ada_P_from_Rink", Params{"R": 100.0, "i": 0.1, "n": 3.0, "k": 2.0}, annuityPV / 1.1},
		{"formula_adv_n_from_PRik", Params{"P": annuityPV / 1.21, "R": 100.0, "i": 0.1, "k": 2.0}, 3},
		{"formula_adv_k_from_PRin", Params{"P": annuityPV / 1.21, "R": 100.0, "i": 0.1, "n": 3.0}, 2},
		{"formula_ada_n_from_PRik", Params{"P": annuityPV / 1.1, "R": 100.0, "i": 0.1, "k": 2.0}, 3},
		{"formula_ada_k_from_PRin", Params{"P": annuityPV / 1.1, "R": 100.0, "i": 0.1, "n": 3.0}, 2},

		{"formula_ga_P_from_Gin", Params{"G": 100.0, "i": 0.1, "n": 3.0}, 310 / 1.331},
		{"formula_ga_S_from_Gin", Params{"G": 100.0, "i": 0.1, "n": 3.0}, 310},
		{"formula_ga_R_from_Gin", Params{"G": 100.0, "i": 0.1, "n": 3.0}, 100 * (10 - 3/0.331)},
		{"formula_gg_P_from_Rgin", Params{"R": 100.0, "g": 0.03, "i": 0.05, "n": 3.0}, 280.30666234747923},
		{"formula_gg_S_from_Rgin", Params{"R": 100.0, "g": 0.03, "i": 0.05, "n": 3.0}, 324.49},

		{"formula_prestamo_saldo_N", Params{"P": 1000.0, "i": 0.1, "n": 3.0, "N": 1.0}, 1100 - payment},
		{"formula_prestamo_amortizacion_N", Params{"P": 1000.0, "i": 0.1, "n": 3.0, "N": 1.0}, firstAmort},
		{"formula_prestamo_interes_N", Params{"P": 1000.0, "i": 0.1, "n": 3.0, "N": 1.0}, 100},
		{"formula_prestamo_A1_from_Pin", Params{"P": 1000.0, "i": 0.1, "n": 3.0}, firstAmort},
		{"formula_prestamo_de_from_RinN", Params{"R": payment, "i": 0.1, "n": 3.0, "N": 1.0}, firstAmort},
		{"formula_prestamo_de_from_PinN", Params{"P": 1000.0, "i": 0.1, "n": 3.0, "N": 2.0}, firstAmort * 2.1},
		{"formula_prestamo_de_from_A1iN", Params{"A1": firstAmort, "i": 0.1, "N": 2.0}, firstAmort * 2.1},

		{DaysBetween, Params{"fecha_inicial": "2024-01-15", "fecha_final": "2024-03-15"}, 60},
		{YearFraction, Params{"n_dias": 90.0}, 0.25},
		{"formula_util_suma", Params{"valor1": 1.5, "valor2": 2.0}, 3.5},
		{"formula_util_resta", Params{"valor1": 1.5, "valor2": 2.0}, -0.5},
		{"formula_util_multiplicacion", Params{"valor1": 1.5, "valor2": 2.0}, 3},
		{"formula_util_division", Params{"valor1": 10.0, "valor2": 4.0}, 2.5},
	}

	covered := map[string]bool{Experimental: true}
	for _, tc := range tests {
		covered[tc.formula] = true
		t.Run(tc.formula, func(t *testing.T) {
			got, trace := eval(t, tc.formula, tc.params)
			assert.InDelta(t, tc.want, got, 1e-9)
			assert.Contains(t, trace, " = "+FormatNum(got))
		})
	}

	for _, name := range Default().Names() {
		assert.True(t, covered[name], "no value test for %s", name)
	}
}

func TestEffectiveRateOverSeveralYears(t *testing.T) {
	got, trace := eval(t, "formula_tasa_efectiva_from_nominal", Params{"j": 0.12, "m": 12.0, "t": 2.0})
	assert.InDelta(t, math.Pow(1.01, 24)-1, got, 1e-12)
	assert.Contains(t, trace, "(1 + 0.12 / 12)^(12*2) - 1")
}

func TestNumericStringsAreCoerced(t *testing.T) {
	got, _ := eval(t, "formula_util_suma", Params{"valor1": "1.5", "valor2": 2.0})
	assert.Equal(t, 3.5, got)
}

func TestGeometricGradientEqualRates(t *testing.T) {
	result, trace := eval(t, "formula_gg_P_from_Rgin", Params{"R": 100.0, "g": 0.05, "i": 0.05, "n": 3.0})
	assert.InDelta(t, 3*100/1.05, result, 1e-12)
	assert.Equal(t, "3*100/(1+0.05) = "+FormatNum(result), trace)

	future, _ := eval(t, "formula_gg_S_from_Rgin", Params{"R": 100.0, "g": 0.05, "i": 0.05, "n": 3.0})
	assert.InDelta(t, 3*100*math.Pow(1.05, 2), future, 1e-9)
}

func TestDaysBetween(t *testing.T) {
	forward, trace := eval(t, DaysBetween, Params{"fecha_inicial": "2024-01-15", "fecha_final": "2024-03-15"})
	assert.Equal(t, 60.0, forward)
	assert.Equal(t, "DiasEntre(2024-03-15, 2024-01-15) = 60", trace)

	backward, _ := eval(t, DaysBetween, Params{"fecha_inicial": "2024-03-15", "fecha_final": "2024-01-15"})
	assert.Equal(t, forward, backward)

	withTime, _ := eval(t, DaysBetween, Params{"fecha_inicial": "2024-01-15T13:45:00", "fecha_final": "2024-01-16"})
	assert.Equal(t, 1.0, withTime)
}

func TestDaysBetweenBadDatesAreInvalidResult(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"not a string", Params{"fecha_inicial": 12.0, "fecha_final": "2024-01-01"}},
		{"unparseable", Params{"fecha_inicial": "2024-01-01", "fecha_final": "not a date"}},
		{"missing", Params{"fecha_inicial": "2024-01-01"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Default().Evaluate(DaysBetween, Args{Params: tc.params})
			require.Error(t, err)

			var invalid *InvalidResultError
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, DaysBetween, invalid.Name)
			assert.True(t, math.IsNaN(invalid.Value))
		})
	}
}

func TestUnknownFormula(t *testing.T) {
	_, _, err := Default().Evaluate("formula_does_not_exist", Args{Params: Params{"P": 1.0}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownFormula))

	var unknown *UnknownFormulaError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "formula_does_not_exist", unknown.Name)
}

func TestMissingParameterIsInvalidResult(t *testing.T) {
	_, _, err := Default().Evaluate("formula_is_I_from_Pjn", Args{Params: Params{"P": 1000.0, "j": 0.05}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidResult))

	var invalid *InvalidResultError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "formula_is_I_from_Pjn", invalid.Name)
}

func TestDivisionByZeroIsInvalidResult(t *testing.T) {
	_, _, err := Default().Evaluate("formula_util_division", Args{Params: Params{"valor1": 1.0, "valor2": 0.0}})
	assert.True(t, errors.Is(err, ErrInvalidResult))

	_, _, err = Default().Evaluate("formula_ic_n_from_SPi", Args{Params: Params{"S": -5.0, "P": 1.0, "i": 0.1}})
	assert.True(t, errors.Is(err, ErrInvalidResult))
}

func TestExperimental(t *testing.T) {
	result, trace, err := Default().Evaluate(Experimental, Args{
		Params:     Params{"P": 1000.0, "i": 0.1, "n": 2.0},
		Expression: "P * (1 + i)^n",
	})
	require.NoError(t, err)
	assert.InDelta(t, 1210, result, 1e-9)
	assert.Equal(t, "1000 * (1 + 0.1)^2 = "+FormatNum(result), trace)
}

func TestExperimentalRequiresExpression(t *testing.T) {
	_, _, err := Default().Evaluate(Experimental, Args{Params: Params{"P": 1.0}})
	assert.True(t, errors.Is(err, ErrBadExpression))
}

func TestExperimentalListsUnboundIdentifiers(t *testing.T) {
	_, _, err := Default().Evaluate(Experimental, Args{
		Params:     Params{"P": 1000.0},
		Expression: "P * (1 + i)^n",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadExpression))
	assert.Contains(t, err.Error(), "no input bound for i, n")
}

func TestRegistryNamesSorted(t *testing.T) {
	names := Default().Names()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
	assert.Contains(t, names, Experimental)
	assert.Contains(t, names, "formula_prestamo_de_from_A1iN")
}
