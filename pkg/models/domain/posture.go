package domain

import "time"

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

type TrendPoint struct {
	Date  time.Time
	Value float64
}

type SecurityPosture struct {
	OverallScore        float64
	RiskLevel           RiskLevel
	CriticalAlerts      int64
	OpenVulnerabilities int64
	ActiveIncidents     int64
	ComplianceScore     float64
	TrendData           []TrendPoint
}

type DashboardStats struct {
	TotalVulnerabilities    int64
	CriticalVulnerabilities int64
	OpenIncidents           int64
	CriticalIncidents       int64
	ComplianceFrameworks    int64
	CompliantFrameworks     int64
	SecurityScore           float64
	ComplianceScore         float64
}
