package nautilus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/danielpatrickdp/nautilus-navigator/internal/gate"
	"github.com/danielpatrickdp/nautilus-navigator/internal/problem"
	"github.com/danielpatrickdp/nautilus-navigator/internal/solver"
	"github.com/danielpatrickdp/nautilus-navigator/internal/update"
)

// #region navigator
// Navigator runs one NAUTILUS session. It owns the session state and
// history; each turn is computed on a pending copy and committed only when
// every sub-step succeeded.
type Navigator struct {
	mu sync.Mutex

	id      string
	prob    problem.Problem
	ideal   []float64
	nadir   []float64
	utopian []float64
	x0      []float64
	names   []string

	asf    *ReferenceSolver
	bounds *BoundsEstimator
	gate   *gate.Gate
	log    *slog.Logger

	s session
}

// session is the mutable part of a Navigator, copied per turn.
type session struct {
	phase       Phase
	step        int
	nIterations int
	left        int
	pref        Preference
	factors     []float64
	stepBack    bool
	shortStep   bool
	history     *History
	final       *StopRequest
}

func (s session) clone() session {
	c := s
	c.history = s.history.clone()
	return c
}

// NewNavigator validates the reference points against the problem and
// prepares a session awaiting the initial preferences.
func NewNavigator(p problem.Problem, opt solver.Optimizer, ideal, nadir []float64, o Options) (*Navigator, error) {
	if p == nil || opt == nil {
		return nil, misconfigured("problem and optimizer are required")
	}
	k := p.NumObjectives()
	if k < 2 {
		return nil, misconfigured("need at least 2 objectives, problem has %d", k)
	}
	if len(ideal) != k || len(nadir) != k {
		return nil, misconfigured("ideal has %d entries, nadir has %d, problem has %d objectives", len(ideal), len(nadir), k)
	}
	if len(p.Bounds()) == 0 {
		return nil, misconfigured("problem has no decision variables")
	}

	eps := o.UtopianEpsilon
	if eps == 0 {
		eps = defaultUtopianEpsilon
	}
	if !(eps > 0) || math.IsInf(eps, 0) {
		return nil, misconfigured("utopian epsilon must be positive, got %v", eps)
	}
	rho := o.Rho
	if rho == 0 {
		rho = defaultRho
	}
	if !(rho > 0) || math.IsInf(rho, 0) {
		return nil, misconfigured("rho must be positive, got %v", rho)
	}

	utopian := make([]float64, k)
	for i := range ideal {
		if !finite(ideal[i]) || !finite(nadir[i]) {
			return nil, misconfigured("reference point entry %d is not finite", i)
		}
		utopian[i] = ideal[i] - eps
		if !(nadir[i]-utopian[i] > 0) {
			return nil, misconfigured("nadir %v does not exceed utopian %v for objective %d", nadir[i], utopian[i], i)
		}
	}

	names := o.ObjectiveNames
	if len(names) == 0 {
		names = make([]string, k)
		for i := range names {
			names[i] = fmt.Sprintf("f%d", i+1)
		}
	}
	if len(names) != k {
		return nil, misconfigured("%d objective names for %d objectives", len(names), k)
	}

	log := o.Logger
	if log == nil {
		log = slog.Default()
	}
	if o.SessionID != "" {
		log = log.With("session", o.SessionID)
	}
	gcfg := o.Gate
	if gcfg == (gate.Config{}) {
		gcfg = gate.DefaultConfig()
	}

	return &Navigator{
		id:      o.SessionID,
		prob:    p,
		ideal:   clone(ideal),
		nadir:   clone(nadir),
		utopian: utopian,
		x0:      problem.Midpoint(p.Bounds()),
		names:   append([]string(nil), names...),
		asf:     NewReferenceSolver(p, opt, rho, o.SolveTimeout, log),
		bounds:  NewBoundsEstimator(p, opt, o.Workers, o.SolveTimeout, log),
		gate:    gate.NewGate(gcfg),
		log:     log,
		s: session{
			phase:   PhaseAwaitingInitial,
			history: NewHistory(nadir),
		},
	}, nil
}

// #endregion navigator

// #region requests
// Start returns the request for the initial preferences.
func (n *Navigator) Start() *InitialRequest {
	return &InitialRequest{
		Message:        initialMessage,
		Ideal:          clone(n.ideal),
		Nadir:          clone(n.nadir),
		ObjectiveNames: append([]string(nil), n.names...),
	}
}

func (n *Navigator) iterationRequest(s session) (*IterationRequest, error) {
	rec, err := s.history.Latest()
	if err != nil {
		return nil, err
	}
	return &IterationRequest{
		Message:        iterationMessage,
		Ideal:          clone(n.ideal),
		Nadir:          clone(n.nadir),
		NIterations:    s.nIterations,
		LowerBounds:    clone(rec.Lower),
		UpperBounds:    clone(rec.Upper),
		Distance:       rec.Distance,
		Step:           s.step,
		IterationsLeft: s.left,
		ObjectiveNames: append([]string(nil), n.names...),
	}, nil
}

// #endregion requests

// #region iterate
// Iterate validates a raw JSON response for the current phase and applies
// it. In the terminated phase the stop payload is returned and the response
// is ignored.
func (n *Navigator) Iterate(ctx context.Context, raw []byte) (Request, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	k := n.prob.NumObjectives()
	switch n.s.phase {
	case PhaseTerminated:
		return n.s.final, nil
	case PhaseAwaitingInitial:
		in, err := ValidateInitial(k, raw)
		if err != nil {
			n.logFailure("initial", err)
			return nil, err
		}
		return n.begin(ctx, in)
	default:
		turn, err := ValidateIteration(k, raw)
		if err != nil {
			n.logFailure("unparsed", err)
			return nil, err
		}
		return n.apply(ctx, turn)
	}
}

// Begin applies the validated initial response.
func (n *Navigator) Begin(ctx context.Context, in InitialTurn) (Request, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.s.phase == PhaseTerminated {
		return n.s.final, nil
	}
	return n.begin(ctx, in)
}

// Apply applies a validated later-turn response.
func (n *Navigator) Apply(ctx context.Context, turn Turn) (Request, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.apply(ctx, turn)
}

// #endregion iterate

// #region begin
func (n *Navigator) begin(ctx context.Context, in InitialTurn) (Request, error) {
	if n.s.phase != PhaseAwaitingInitial {
		return nil, invalid("n_iterations", "initial preferences were already given")
	}
	req, err := n.beginPending(ctx, in)
	if err != nil {
		n.logFailure("initial", err)
		return nil, err
	}
	return req, nil
}

func (n *Navigator) beginPending(ctx context.Context, in InitialTurn) (Request, error) {
	if in.Iterations < 1 {
		return nil, invalid("n_iterations", "must be a positive integer, got %d", in.Iterations)
	}
	factors, err := PreferenceFactors(in.Preference, n.nadir, n.utopian)
	if err != nil {
		return nil, err
	}

	s := n.s.clone()
	s.nIterations = in.Iterations
	s.left = in.Iterations
	s.step = 1
	s.pref = in.Preference
	s.factors = factors

	q, err := s.history.PointBefore(s.step)
	if err != nil {
		return nil, err
	}
	x, f, err := n.asf.Solve(ctx, q, n.x0, factors)
	if err != nil {
		return nil, err
	}
	rec, err := n.advance(ctx, s, x, f, q)
	if err != nil {
		return nil, err
	}
	if err := s.history.Append(rec); err != nil {
		return nil, err
	}
	s.phase = PhaseIterating
	return n.commit(s, "initial", rec)
}

// #endregion begin

// #region apply
func (n *Navigator) apply(ctx context.Context, turn Turn) (Request, error) {
	switch n.s.phase {
	case PhaseTerminated:
		return n.s.final, nil
	case PhaseAwaitingInitial:
		return nil, invalid("n_iterations", "initial preferences have not been given yet")
	}
	name := IntentName(turn.Intent)
	req, err := n.applyPending(ctx, turn)
	if err != nil {
		n.logFailure(name, err)
		return nil, err
	}
	return req, nil
}

func (n *Navigator) applyPending(ctx context.Context, turn Turn) (Request, error) {
	if turn.Intent == nil {
		return nil, invalid("", "no intent")
	}
	if turn.Horizon < 0 {
		return nil, invalid("n_iterations", "must be a positive integer, got %d", turn.Horizon)
	}

	s := n.s.clone()
	if turn.Horizon > 0 {
		s.nIterations = turn.Horizon
		s.left = turn.Horizon
	}

	if _, stop := turn.Intent.(Stop); stop || s.left <= 1 {
		return n.terminate(s)
	}

	switch in := turn.Intent.(type) {
	case Continue:
		latest, err := s.history.Latest()
		if err != nil {
			return nil, err
		}
		s.stepBack, s.shortStep = false, false
		s.left--
		s.step++
		rec, err := n.advance(ctx, s, latest.X, latest.F, latest.Z)
		if err != nil {
			return nil, err
		}
		if err := s.history.Append(rec); err != nil {
			return nil, err
		}
		return n.commit(s, IntentName(in), rec)

	case NewPreference:
		factors, err := PreferenceFactors(in.Preference, n.nadir, n.utopian)
		if err != nil {
			return nil, err
		}
		latest, err := s.history.Latest()
		if err != nil {
			return nil, err
		}
		s.stepBack, s.shortStep = false, false
		s.pref, s.factors = in.Preference, factors
		s.left--
		s.step++
		x, f, err := n.asf.Solve(ctx, latest.Z, n.x0, factors)
		if err != nil {
			return nil, err
		}
		rec, err := n.advance(ctx, s, x, f, latest.Z)
		if err != nil {
			return nil, err
		}
		if err := s.history.Append(rec); err != nil {
			return nil, err
		}
		return n.commit(s, IntentName(in), rec)

	case StepBack:
		return n.stepBack(ctx, s, in)

	case Stop:
		return n.terminate(s)
	}
	return nil, misconfigured("unknown intent %T", turn.Intent)
}

func (n *Navigator) stepBack(ctx context.Context, s session, in StepBack) (Request, error) {
	cur, err := s.history.Latest()
	if err != nil {
		return nil, err
	}
	zPrev, err := s.history.PointBefore(s.step)
	if err != nil {
		return nil, err
	}
	s.stepBack = true

	var rec StepRecord
	if in.Short {
		s.shortStep = true
		res, err := update.Short(cur.Z, zPrev, cur.F, n.nadir)
		if err != nil {
			return nil, misconfigured("short step: %v", err)
		}
		rec, err = n.finish(ctx, s, cur.X, cur.F, zPrev, res)
		if err != nil {
			return nil, err
		}
	} else {
		if in.Preference == nil {
			return nil, invalid("preference_info", "stepping back needs new preference information")
		}
		factors, err := PreferenceFactors(*in.Preference, n.nadir, n.utopian)
		if err != nil {
			return nil, err
		}
		s.shortStep = false
		s.pref, s.factors = *in.Preference, factors
		x, f, err := n.asf.Solve(ctx, zPrev, n.x0, factors)
		if err != nil {
			return nil, err
		}
		rec, err = n.advance(ctx, s, x, f, zPrev)
		if err != nil {
			return nil, err
		}
	}
	if err := s.history.Replace(rec); err != nil {
		return nil, err
	}
	return n.commit(s, IntentName(in), rec)
}

// terminate ends the session at the latest committed solution.
func (n *Navigator) terminate(s session) (Request, error) {
	latest, err := s.history.Latest()
	if err != nil {
		return nil, err
	}
	s.left = 0
	s.phase = PhaseTerminated
	s.final = &StopRequest{
		Message:         stopMessage,
		Solution:        clone(latest.X),
		ObjectiveVector: clone(latest.F),
	}
	n.s = s
	n.log.Info("navigation finished", "step", s.step, "solution", describe(latest.X), "objectives", describe(latest.F))
	return s.final, nil
}

// #endregion apply

// #region compute
// advance computes a full step from zPrev toward f using the iterations left.
func (n *Navigator) advance(ctx context.Context, s session, x, f, zPrev []float64) (StepRecord, error) {
	res, err := update.Step(s.left, zPrev, f, n.nadir)
	if err != nil {
		return StepRecord{}, misconfigured("iteration point: %v", err)
	}
	return n.finish(ctx, s, x, f, zPrev, res)
}

// finish estimates the next reachable region around the new iteration point
// and runs the commit gate over the assembled record.
func (n *Navigator) finish(ctx context.Context, s session, x, f, zPrev []float64, res update.Result) (StepRecord, error) {
	lower, err := n.bounds.Estimate(ctx, n.x0, zPrev)
	if err != nil {
		return StepRecord{}, err
	}
	rec := StepRecord{
		Step:     s.step,
		X:        clone(x),
		F:        clone(f),
		Z:        res.Point,
		Lower:    lower,
		Upper:    clone(res.Point),
		Distance: res.Metrics.Distance,
	}

	d := n.gate.Evaluate(gate.Candidate{
		X: rec.X, F: rec.F, Z: rec.Z,
		Lower: rec.Lower, Upper: rec.Upper,
		Distance: rec.Distance,
	})
	if d.Vetoed {
		return StepRecord{}, &SolverFailure{Task: "gate", Reason: d.Reason}
	}
	for _, w := range d.Warnings {
		n.log.Warn("step committed with warning", "step", rec.Step, "warning", w)
	}
	n.log.Debug("iteration point updated", "step", rec.Step, "kind", res.Metrics.Kind,
		"step_norm", res.Metrics.StepNorm, "remaining", res.Metrics.Remaining)
	return rec, nil
}

func (n *Navigator) commit(s session, intent string, rec StepRecord) (Request, error) {
	req, err := n.iterationRequest(s)
	if err != nil {
		return nil, err
	}
	n.s = s
	n.log.Info("turn committed", "intent", intent, "step", s.step,
		"iterations_left", s.left, "distance", rec.Distance)
	return req, nil
}

func (n *Navigator) logFailure(intent string, err error) {
	n.log.Warn("turn rejected", "intent", intent, "kind", string(KindOf(err)), "err", err)
}

// #endregion compute

// #region accessors
// ID returns the session id given in Options.
func (n *Navigator) ID() string { return n.id }

// Phase returns the current phase.
func (n *Navigator) Phase() Phase {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.s.phase
}

// History returns a copy of the committed step records.
func (n *Navigator) History() []StepRecord {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.s.history.Records()
}

// Latest returns the most recent committed record.
func (n *Navigator) Latest() (StepRecord, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.s.history.Latest()
}

// Final returns the stop payload once the session has terminated.
func (n *Navigator) Final() (*StopRequest, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.s.final, n.s.final != nil
}

// Snapshot returns the session counters and flags.
func (n *Navigator) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return Snapshot{
		Phase:          n.s.phase,
		Step:           n.s.step,
		NIterations:    n.s.nIterations,
		IterationsLeft: n.s.left,
		Preference:     Preference{Method: n.s.pref.Method, Info: clone(n.s.pref.Info)},
		StepBack:       n.s.stepBack,
		ShortStep:      n.s.shortStep,
		HistoryLen:     n.s.history.Len(),
	}
}

// Factors returns the preference factors in use.
func (n *Navigator) Factors() []float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return clone(n.s.factors)
}

// NumObjectives returns the number of objectives of the problem.
func (n *Navigator) NumObjectives() int { return n.prob.NumObjectives() }

// Utopian returns the utopian point.
func (n *Navigator) Utopian() []float64 { return clone(n.utopian) }

// ObjectiveNames returns the objective labels.
func (n *Navigator) ObjectiveNames() []string { return append([]string(nil), n.names...) }

// #endregion accessors

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsRecoverable reports whether the DM can resubmit after err.
func IsRecoverable(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindSolver:
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// FormatVector renders a vector with the objective labels, for CLI output.
func FormatVector(names []string, v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		label := fmt.Sprintf("#%d", i)
		if i < len(names) {
			label = names[i]
		}
		parts[i] = fmt.Sprintf("%s=%.6g", label, x)
	}
	return strings.Join(parts, " ")
}
