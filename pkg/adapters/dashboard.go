package adapters

import (
	"time"

	"github.com/de-tools/posture-atlas/pkg/models/api"
	"github.com/de-tools/posture-atlas/pkg/models/domain"
)

func MapPostureDomainToApi(p domain.SecurityPosture) api.SecurityPosture {
	trend := make([]api.TrendPoint, 0, len(p.TrendData))
	for _, tp := range p.TrendData {
		trend = append(trend, api.TrendPoint{
			Date:  tp.Date.UTC().Format(time.RFC3339),
			Value: tp.Value,
		})
	}
	return api.SecurityPosture{
		OverallScore:        p.OverallScore,
		RiskLevel:           string(p.RiskLevel),
		CriticalAlerts:      p.CriticalAlerts,
		OpenVulnerabilities: p.OpenVulnerabilities,
		ActiveIncidents:     p.ActiveIncidents,
		ComplianceScore:     p.ComplianceScore,
		TrendData:           trend,
	}
}

func MapStatsDomainToApi(s domain.DashboardStats) api.DashboardStats {
	return api.DashboardStats{
		TotalVulnerabilities:    s.TotalVulnerabilities,
		CriticalVulnerabilities: s.CriticalVulnerabilities,
		OpenIncidents:           s.OpenIncidents,
		CriticalIncidents:       s.CriticalIncidents,
		ComplianceFrameworks:    s.ComplianceFrameworks,
		CompliantFrameworks:     s.CompliantFrameworks,
		SecurityScore:           s.SecurityScore,
		ComplianceScore:         s.ComplianceScore,
	}
}
