package nautilus

import "fmt"

// #region history
// History holds the committed navigation steps 1..n on top of the seed
// iteration point Z0 (the nadir). Records are never mutated once stored; a
// step-back replaces the latest record as a whole.
type History struct {
	seed    []float64
	records []StepRecord
}

// NewHistory starts an empty history seeded with Z0.
func NewHistory(seed []float64) *History {
	return &History{seed: clone(seed)}
}

// Len returns the number of computed steps.
func (h *History) Len() int { return len(h.records) }

// At returns the record of step k (1-based).
func (h *History) At(k int) (StepRecord, error) {
	if k < 1 || k > len(h.records) {
		return StepRecord{}, fmt.Errorf("step %d: %w", k, ErrStepNotComputed)
	}
	return h.records[k-1], nil
}

// Latest returns the most recent record.
func (h *History) Latest() (StepRecord, error) {
	return h.At(len(h.records))
}

// PointBefore returns the iteration point preceding step k: the seed for
// k == 1, otherwise Z of step k-1.
func (h *History) PointBefore(k int) ([]float64, error) {
	if k == 1 {
		return h.seed, nil
	}
	rec, err := h.At(k - 1)
	if err != nil {
		return nil, err
	}
	return rec.Z, nil
}

// Append stores the record of the step directly after the latest one.
func (h *History) Append(rec StepRecord) error {
	if rec.Step != len(h.records)+1 {
		return fmt.Errorf("append step %d after %d steps: out of order", rec.Step, len(h.records))
	}
	h.records = append(h.records, rec)
	return nil
}

// Replace overwrites the latest record with a recomputation of the same step.
func (h *History) Replace(rec StepRecord) error {
	if len(h.records) == 0 || rec.Step != len(h.records) {
		return fmt.Errorf("replace step %d with %d steps: not the latest", rec.Step, len(h.records))
	}
	h.records[len(h.records)-1] = rec
	return nil
}

// Records returns a copy of all records in step order.
func (h *History) Records() []StepRecord {
	return append([]StepRecord(nil), h.records...)
}

func (h *History) clone() *History {
	return &History{seed: h.seed, records: h.Records()}
}

// #endregion history
