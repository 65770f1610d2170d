package nautilus

import (
	"math"
)

// percentTol absorbs float rounding in percentage sums.
const percentTol = 1e-9

// #region validate-preference
// ValidatePreference checks preference information for n objectives.
func ValidatePreference(n int, pref Preference) error {
	switch pref.Method {
	case MethodRank, MethodPercentage:
	default:
		return invalid("preference_method", "must be 1 (rank) or 2 (percentage), got %d", int(pref.Method))
	}
	if len(pref.Info) != n {
		return invalid("preference_info", "got %d values for %d objectives", len(pref.Info), n)
	}
	for i, v := range pref.Info {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid("preference_info", "value %d is not finite", i)
		}
	}

	if pref.Method == MethodRank {
		for i, r := range pref.Info {
			if r != math.Trunc(r) {
				return invalid("preference_info", "rank %d (%v) is not an integer", i, r)
			}
			if r < 1 || r > float64(n) {
				return invalid("preference_info", "rank %d (%v) outside [1, %d]", i, r, n)
			}
		}
		return nil
	}

	var sum float64
	for i, p := range pref.Info {
		if p <= 0 {
			return invalid("preference_info", "percentage %d (%v) must be positive", i, p)
		}
		sum += p
	}
	if math.Abs(sum-100) > percentTol*100 {
		return invalid("preference_info", "percentages must sum to 100, got %v", sum)
	}
	return nil
}

// #endregion validate-preference

// #region preference-factors
// PreferenceFactors turns preference information into ASF weights:
//
//	w_i = 1 / (p_i * (nadir_i - utopian_i))
//
// where p_i is the rank, or the percentage divided by 100.
func PreferenceFactors(pref Preference, nadir, utopian []float64) ([]float64, error) {
	if len(nadir) != len(utopian) {
		return nil, misconfigured("nadir has %d entries, utopian has %d", len(nadir), len(utopian))
	}
	if err := ValidatePreference(len(nadir), pref); err != nil {
		return nil, err
	}
	w := make([]float64, len(nadir))
	for i, v := range pref.Info {
		p := v
		if pref.Method == MethodPercentage {
			p = v / 100
		}
		span := nadir[i] - utopian[i]
		if !(span > 0) {
			return nil, misconfigured("nadir - utopian is %v for objective %d", span, i)
		}
		w[i] = 1 / (p * span)
		if !(w[i] > 0) || math.IsInf(w[i], 0) {
			return nil, invalid("preference_info", "factor for objective %d is not finite", i)
		}
	}
	return w, nil
}

// #endregion preference-factors
