package problem

import (
	"fmt"
	"math"
	"sort"
)

// #region func
// Func is a Problem assembled from plain evaluation functions.
type Func struct {
	Name           string
	ObjectiveNames []string
	VarBounds      []Bound
	Objectives     func(x []float64) []float64
	Constraints    func(x []float64) []float64 // nil when unconstrained

	// Ideal and Nadir are the known reference points, if any.
	Ideal []float64
	Nadir []float64
}

// NumObjectives returns the number of objectives.
func (p *Func) NumObjectives() int {
	return len(p.ObjectiveNames)
}

// Bounds returns the variable bounds.
func (p *Func) Bounds() []Bound {
	return p.VarBounds
}

// Evaluate computes objective and constraint values at x.
func (p *Func) Evaluate(x []float64) (Evaluation, error) {
	if len(x) != len(p.VarBounds) {
		return Evaluation{}, fmt.Errorf("evaluate %s: got %d variables, want %d", p.Name, len(x), len(p.VarBounds))
	}
	objs := p.Objectives(x)
	if len(objs) != p.NumObjectives() {
		return Evaluation{}, fmt.Errorf("evaluate %s: got %d objectives, want %d", p.Name, len(objs), p.NumObjectives())
	}
	ev := Evaluation{Objectives: objs}
	if p.Constraints != nil {
		ev.Constraints = p.Constraints(x)
	}
	return ev, nil
}

// #endregion func

// #region start
// Midpoint returns a start vector inside the bounds: the box centre where
// both ends are finite, the finite end otherwise, and 0 when unbounded.
func Midpoint(bounds []Bound) []float64 {
	x := make([]float64, len(bounds))
	for i, b := range bounds {
		lo, hi := !math.IsInf(b.Lower, 0), !math.IsInf(b.Upper, 0)
		switch {
		case lo && hi:
			x[i] = b.Lower + (b.Upper-b.Lower)/2
		case lo:
			x[i] = b.Lower
		case hi:
			x[i] = b.Upper
		}
	}
	return x
}

// #endregion start

// #region catalog
var catalog = map[string]func() *Func{
	"cylinder": Cylinder,
	"linear":   Linear,
	"plane":    Plane,
}

// Lookup returns a fresh copy of a catalog problem by name.
func Lookup(name string) (*Func, error) {
	mk, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown problem %q (have %v)", name, Names())
	}
	return mk(), nil
}

// Names lists the catalog problems in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Cylinder trades the volume of a cylinder (r, h) against its negated
// surface area, with the radius/height ratio capped at the golden ratio.
func Cylinder() *Func {
	return &Func{
		Name:           "cylinder",
		ObjectiveNames: []string{"volume", "neg_area"},
		VarBounds:      []Bound{{Lower: 2.5, Upper: 15}, {Lower: 10, Upper: 50}},
		Objectives: func(x []float64) []float64 {
			r, h := x[0], x[1]
			return []float64{
				math.Pi * r * r * h,
				-(2*math.Pi*math.Pi + math.Pi*r*h),
			}
		},
		Constraints: func(x []float64) []float64 {
			return []float64{-(x[0]/x[1] - 1.618)}
		},
		Ideal: []float64{196.34971768, -2375.93349431},
		Nadir: []float64{35342.91192077, -98.27906444},
	}
}

// Linear has two directly conflicting objectives on [0, 1]; every feasible
// point is Pareto optimal.
func Linear() *Func {
	return &Func{
		Name:           "linear",
		ObjectiveNames: []string{"f1", "f2"},
		VarBounds:      []Bound{{Lower: 0, Upper: 1}},
		Objectives: func(x []float64) []float64 {
			return []float64{x[0], 1 - x[0]}
		},
		Ideal: []float64{0, 0},
		Nadir: []float64{1, 1},
	}
}

// Plane has three objectives on the unit square whose sum is constant.
func Plane() *Func {
	return &Func{
		Name:           "plane",
		ObjectiveNames: []string{"f1", "f2", "f3"},
		VarBounds:      []Bound{{Lower: 0, Upper: 1}, {Lower: 0, Upper: 1}},
		Objectives: func(x []float64) []float64 {
			return []float64{x[0], x[1], 2 - x[0] - x[1]}
		},
		Ideal: []float64{0, 0, 0},
		Nadir: []float64{1, 1, 2},
	}
}

// #endregion catalog
