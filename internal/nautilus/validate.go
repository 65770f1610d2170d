package nautilus

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// #region response
// response is the decoded DM answer. Numbers are floats so that schema
// checked integers such as 5.0 still decode.
type response struct {
	NIterations      *float64  `json:"n_iterations"`
	StepBack         *bool     `json:"step_back"`
	ShortStep        *bool     `json:"short_step"`
	UsePrevious      *bool     `json:"use_previous_preference"`
	PreferenceMethod *float64  `json:"preference_method"`
	PreferenceInfo   []float64 `json:"preference_info"`
	Stop             *bool     `json:"stop"`
}

func decode(schema *jsonschema.Schema, raw []byte) (response, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return response{}, &ValidationError{Reason: "malformed JSON: " + err.Error()}
	}
	if err := schema.Validate(doc); err != nil {
		return response{}, schemaError(err)
	}
	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return response{}, &ValidationError{Reason: err.Error()}
	}
	return r, nil
}

func (r response) preference(n int) (Preference, error) {
	if r.PreferenceMethod == nil {
		return Preference{}, invalid("preference_method", "missing")
	}
	if r.PreferenceInfo == nil {
		return Preference{}, invalid("preference_info", "missing")
	}
	pref := Preference{
		Method: Method(int(*r.PreferenceMethod)),
		Info:   append([]float64(nil), r.PreferenceInfo...),
	}
	if err := ValidatePreference(n, pref); err != nil {
		return Preference{}, err
	}
	return pref, nil
}

// #endregion response

// #region validate-initial
// ValidateInitial validates the first response of a session for a problem
// with n objectives.
func ValidateInitial(n int, raw []byte) (InitialTurn, error) {
	r, err := decode(initialSchema, raw)
	if err != nil {
		return InitialTurn{}, err
	}
	pref, err := r.preference(n)
	if err != nil {
		return InitialTurn{}, err
	}
	return InitialTurn{Iterations: int(*r.NIterations), Preference: pref}, nil
}

// #endregion validate-initial

// #region validate-iteration
// ValidateIteration validates a later response and resolves it into a Turn.
func ValidateIteration(n int, raw []byte) (Turn, error) {
	r, err := decode(iterationSchema, raw)
	if err != nil {
		return Turn{}, err
	}

	var turn Turn
	if r.NIterations != nil {
		turn.Horizon = int(*r.NIterations)
	}

	if r.Stop != nil && *r.Stop {
		if r.StepBack != nil && *r.StepBack {
			return Turn{}, invalid("stop", "cannot be combined with step_back")
		}
		turn.Intent = Stop{}
		return turn, nil
	}

	if r.StepBack == nil {
		return Turn{}, invalid("step_back", "missing")
	}
	if r.UsePrevious == nil {
		return Turn{}, invalid("use_previous_preference", "missing")
	}
	stepBack, usePrev := *r.StepBack, *r.UsePrevious
	short := r.ShortStep != nil && *r.ShortStep

	if usePrev && (r.PreferenceMethod != nil || r.PreferenceInfo != nil) {
		return Turn{}, invalid("preference_info", "given while use_previous_preference is true")
	}

	switch {
	case short && !stepBack:
		return Turn{}, invalid("short_step", "requires step_back")
	case short && !usePrev:
		return Turn{}, invalid("short_step", "cannot be combined with new preference information")
	case short:
		turn.Intent = StepBack{Short: true}
		return turn, nil
	case stepBack && usePrev:
		return Turn{}, invalid("use_previous_preference", "stepping back without a short step needs new preference information")
	case usePrev:
		turn.Intent = Continue{}
		return turn, nil
	}

	pref, err := r.preference(n)
	if err != nil {
		return Turn{}, err
	}
	if stepBack {
		turn.Intent = StepBack{Preference: &pref}
	} else {
		turn.Intent = NewPreference{Preference: pref}
	}
	return turn, nil
}

// #endregion validate-iteration
