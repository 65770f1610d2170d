package nautilus

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferenceFactorsRank(t *testing.T) {
	w, err := PreferenceFactors(
		Preference{Method: MethodRank, Info: []float64{1, 2, 3}},
		[]float64{10, 10, 10},
		[]float64{0, 5, 8},
	)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.1, 0.1, 1.0 / 6}, w, 1e-12)
}

func TestPreferenceFactorsPercentage(t *testing.T) {
	w, err := PreferenceFactors(
		Preference{Method: MethodPercentage, Info: []float64{25, 75}},
		[]float64{4, 4},
		[]float64{0, 0},
	)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1.0 / 3}, w, 1e-12)
}

func TestPreferenceFactorsErrors(t *testing.T) {
	_, err := PreferenceFactors(Preference{Method: MethodRank, Info: []float64{1, 2}}, []float64{1, 1}, []float64{0})
	assert.Equal(t, KindConfiguration, KindOf(err))

	_, err = PreferenceFactors(Preference{Method: MethodRank, Info: []float64{1, 2}}, []float64{1, 1}, []float64{0, 1})
	assert.Equal(t, KindConfiguration, KindOf(err))

	_, err = PreferenceFactors(Preference{Method: MethodRank, Info: []float64{1, 3}}, []float64{1, 1}, []float64{0, 0})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestPreferenceFactorsSubnormalPercentage(t *testing.T) {
	pref := Preference{Method: MethodPercentage, Info: []float64{1e-310, 100}}
	require.NoError(t, ValidatePreference(2, pref))

	w, err := PreferenceFactors(pref, []float64{1, 1}, []float64{-1e-6, -1e-6})
	require.Error(t, err)
	assert.Nil(t, w)
	assert.Equal(t, KindValidation, KindOf(err))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "preference_info", ve.Field)
}

func TestValidatePreference(t *testing.T) {
	cases := []struct {
		name string
		pref Preference
		ok   bool
	}{
		{"ranks", Preference{MethodRank, []float64{2, 1, 3}}, true},
		{"tied ranks", Preference{MethodRank, []float64{1, 1, 2}}, true},
		{"rank zero", Preference{MethodRank, []float64{0, 1, 2}}, false},
		{"rank above n", Preference{MethodRank, []float64{1, 2, 4}}, false},
		{"fractional rank", Preference{MethodRank, []float64{1, 1.5, 2}}, false},
		{"too few", Preference{MethodRank, []float64{1, 2}}, false},
		{"too many", Preference{MethodRank, []float64{1, 2, 3, 1}}, false},
		{"percentages", Preference{MethodPercentage, []float64{20, 30, 50}}, true},
		{"fractional percentages", Preference{MethodPercentage, []float64{33.3, 33.3, 33.4}}, true},
		{"sum 99", Preference{MethodPercentage, []float64{20, 30, 49}}, false},
		{"zero percentage", Preference{MethodPercentage, []float64{0, 50, 50}}, false},
		{"negative percentage", Preference{MethodPercentage, []float64{-10, 60, 50}}, false},
		{"nan", Preference{MethodPercentage, []float64{math.NaN(), 50, 50}}, false},
		{"unknown method", Preference{Method(3), []float64{1, 2, 3}}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidatePreference(3, c.pref)
			if c.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestPreferenceFactorsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("rank factors are positive and finite", prop.ForAll(
		func(ranks []int, span float64, ideal float64) bool {
			n := len(ranks)
			info := make([]float64, n)
			nadir := make([]float64, n)
			utopian := make([]float64, n)
			for i, r := range ranks {
				info[i] = float64(r%n + 1)
				utopian[i] = ideal
				nadir[i] = ideal + span*float64(i+1)
			}
			w, err := PreferenceFactors(Preference{Method: MethodRank, Info: info}, nadir, utopian)
			if err != nil {
				return false
			}
			for _, v := range w {
				if !(v > 0) || math.IsInf(v, 0) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(4, gen.IntRange(0, 100)),
		gen.Float64Range(1e-3, 1e6),
		gen.Float64Range(-1e6, 1e6),
	))

	properties.Property("percentage factors are positive and finite", prop.ForAll(
		func(a, b float64) bool {
			total := a + b + 1
			info := []float64{100 * a / total, 100 * b / total, 100 / total}
			info[2] = 100 - info[0] - info[1]
			w, err := PreferenceFactors(Preference{Method: MethodPercentage, Info: info},
				[]float64{1, 10, 100}, []float64{0, 0, 0})
			if err != nil {
				return false
			}
			for _, v := range w {
				if !(v > 0) || math.IsInf(v, 0) {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0.01, 100),
		gen.Float64Range(0.01, 100),
	))

	properties.Property("tiny percentages give finite factors or a validation error", prop.ForAll(
		func(exp int, mantissa float64) bool {
			p := mantissa * math.Pow(10, float64(exp))
			if !(p > 0) {
				return true
			}
			info := []float64{p, 100 - p}
			w, err := PreferenceFactors(Preference{Method: MethodPercentage, Info: info},
				[]float64{1, 1}, []float64{-1e-6, -1e-6})
			if err != nil {
				return KindOf(err) == KindValidation
			}
			for _, v := range w {
				if !(v > 0) || math.IsInf(v, 0) {
					return false
				}
			}
			return true
		},
		gen.IntRange(-323, 1),
		gen.Float64Range(1, 9.99),
	))

	properties.TestingRun(t)
}
