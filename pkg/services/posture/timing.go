package posture

import (
	"math"
	"time"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
)

// ElapsedMinutes is floor((terminal - detectedAt) / 1m), or nil when either
// timestamp is missing. Terminal timestamps before detection give negative values.
func ElapsedMinutes(detectedAt, terminal *time.Time) *int64 {
	if detectedAt == nil || terminal == nil {
		return nil
	}
	minutes := int64(math.Floor(terminal.Sub(*detectedAt).Minutes()))
	return &minutes
}

// ApplyIncidentTiming copies the terminal timestamps carried by upd onto inc
// and derives the matching elapsed-time fields. A timing field is only
// touched when its timestamp is part of upd.
func ApplyIncidentTiming(inc *domain.Incident, upd domain.IncidentUpdate) {
	if upd.ContainedAt != nil {
		t := upd.ContainedAt.UTC()
		inc.ContainedAt = &t
		if m := ElapsedMinutes(inc.DetectedAt, &t); m != nil {
			inc.ResponseTimeMinutes = m
		}
	}
	if upd.ResolvedAt != nil {
		t := upd.ResolvedAt.UTC()
		inc.ResolvedAt = &t
		if m := ElapsedMinutes(inc.DetectedAt, &t); m != nil {
			inc.ResolutionTimeMinutes = m
		}
	}
}
