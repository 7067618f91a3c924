package posture

import "github.com/de-tools/posture-atlas/pkg/models/domain"

type ControlTally struct {
	Compliant    int
	NonCompliant int
	Total        int
}

// TallyControls counts controls by outcome. Only non_compliant counts as
// non-compliant; partial and unassessed controls only add to the total.
func TallyControls(controls []domain.ComplianceControl) ControlTally {
	t := ControlTally{Total: len(controls)}
	for _, c := range controls {
		switch c.Status {
		case domain.ControlStatusCompliant:
			t.Compliant++
		case domain.ControlStatusNonCompliant:
			t.NonCompliant++
		}
	}
	return t
}

// Score is the compliant share of all controls in percent. ok is false when
// there are no controls.
func (t ControlTally) Score() (score float64, ok bool) {
	if t.Total == 0 {
		return 0, false
	}
	return float64(t.Compliant) / float64(t.Total) * 100.0, true
}

// RecomputeScore returns the framework score implied by the full control set,
// or current when the set is empty.
func RecomputeScore(current float64, controls []domain.ComplianceControl) float64 {
	score, ok := TallyControls(controls).Score()
	if !ok {
		return current
	}
	return score
}
