package nautilus

// #region intent
// Intent is what the DM asked for on a later turn. The concrete types are
// Continue, StepBack, NewPreference and Stop.
type Intent interface {
	intentName() string
}

// Continue advances one step with the previous preferences and solution.
type Continue struct{}

// StepBack recomputes the current step from the previous iteration point,
// either as a short halfway step or with new preferences.
type StepBack struct {
	Short      bool
	Preference *Preference // required when Short is false
}

// NewPreference advances one step after re-solving with new preferences.
type NewPreference struct {
	Preference Preference
}

// Stop ends the navigation at the current solution.
type Stop struct{}

func (Continue) intentName() string      { return "continue" }
func (StepBack) intentName() string      { return "step_back" }
func (NewPreference) intentName() string { return "new_preference" }
func (Stop) intentName() string          { return "stop" }

// IntentName returns a stable label for logs.
func IntentName(in Intent) string {
	if in == nil {
		return "none"
	}
	if sb, ok := in.(StepBack); ok && sb.Short {
		return "short_step"
	}
	return in.intentName()
}

// #endregion intent

// #region turn
// Turn is a validated later-turn response. Horizon > 0 changes the total
// and remaining iteration count before the intent is applied.
type Turn struct {
	Horizon int
	Intent  Intent
}

// InitialTurn is a validated first-turn response.
type InitialTurn struct {
	Iterations int
	Preference Preference
}

// #endregion turn
