package api

type TrendPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type SecurityPosture struct {
	OverallScore        float64      `json:"overall_score"`
	RiskLevel           string       `json:"risk_level"`
	CriticalAlerts      int64        `json:"critical_alerts"`
	OpenVulnerabilities int64        `json:"open_vulnerabilities"`
	ActiveIncidents     int64        `json:"active_incidents"`
	ComplianceScore     float64      `json:"compliance_score"`
	TrendData           []TrendPoint `json:"trend_data"`
}

type DashboardStats struct {
	TotalVulnerabilities    int64   `json:"total_vulnerabilities"`
	CriticalVulnerabilities int64   `json:"critical_vulnerabilities"`
	OpenIncidents           int64   `json:"open_incidents"`
	CriticalIncidents       int64   `json:"critical_incidents"`
	ComplianceFrameworks    int64   `json:"compliance_frameworks"`
	CompliantFrameworks     int64   `json:"compliant_frameworks"`
	SecurityScore           float64 `json:"security_score"`
	ComplianceScore         float64 `json:"compliance_score"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
