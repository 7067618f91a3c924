package posture

import "github.com/de-tools/posture-atlas/pkg/models/domain"

// Lower bounds of each band, checked from the top.
const (
	lowRiskFloor    = 90.0
	mediumRiskFloor = 70.0
	highRiskFloor   = 50.0
)

// ClassifyRisk maps a security score to a risk band. A higher score means
// lower risk. NaN matches no floor and lands in critical.
func ClassifyRisk(score float64) domain.RiskLevel {
	switch {
	case score >= lowRiskFloor:
		return domain.RiskLevelLow
	case score >= mediumRiskFloor:
		return domain.RiskLevelMedium
	case score >= highRiskFloor:
		return domain.RiskLevelHigh
	default:
		return domain.RiskLevelCritical
	}
}
