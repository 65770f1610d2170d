package gate

import (
	"fmt"
	"math"
)

// #region gate
// Gate decides whether a computed step may be committed to history.
type Gate struct {
	config Config
}

// NewGate creates a gate with the given configuration.
func NewGate(config Config) *Gate {
	return &Gate{config: config}
}

// Evaluate checks hard vetoes first, then collects soft warnings.
func (g *Gate) Evaluate(c Candidate) Decision {
	var vetoes []VetoSignal

	// --- Hard veto pass ---

	named := []struct {
		name string
		v    []float64
	}{
		{"x", c.X}, {"f", c.F}, {"z", c.Z}, {"lower_bounds", c.Lower}, {"upper_bounds", c.Upper},
	}
	for _, nv := range named {
		if i := firstNonFinite(nv.v); i >= 0 {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoNonFinite,
				Reason: fmt.Sprintf("%s[%d] is %v", nv.name, i, nv.v[i]),
			})
		}
	}
	if math.IsNaN(c.Distance) || math.IsInf(c.Distance, 0) {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoNonFinite,
			Reason: fmt.Sprintf("distance is %v", c.Distance),
		})
	}
	if len(c.F) != len(c.Z) || len(c.Lower) != len(c.Z) || len(c.Upper) != len(c.Z) {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoDimension,
			Reason: fmt.Sprintf("f=%d z=%d lower=%d upper=%d", len(c.F), len(c.Z), len(c.Lower), len(c.Upper)),
		})
	}

	if len(vetoes) > 0 {
		return Decision{
			Action:      "reject",
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
		}
	}

	// --- Soft checks ---
	var warnings []string
	for i := range c.Lower {
		if c.Lower[i] > c.Upper[i]+g.config.BoundTol*(1+math.Abs(c.Upper[i])) {
			warnings = append(warnings, fmt.Sprintf("lower bound %d (%.6g) above upper bound (%.6g)", i, c.Lower[i], c.Upper[i]))
		}
	}
	if c.Distance < -g.config.DistanceTol || c.Distance > 100+g.config.DistanceTol {
		warnings = append(warnings, fmt.Sprintf("distance %.6g outside [0, 100]", c.Distance))
	}

	return Decision{
		Action:   "commit",
		Reason:   fmt.Sprintf("passed gate: %d warnings", len(warnings)),
		Warnings: warnings,
	}
}

// #endregion gate

// #region helpers
func firstNonFinite(v []float64) int {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return i
		}
	}
	return -1
}

// #endregion helpers
