package domain

import (
	"fmt"
	"time"
)

type MetricType string

const (
	MetricTypeSecurityScore      MetricType = "security_score"
	MetricTypeRiskLevel          MetricType = "risk_level"
	MetricTypeThreatCount        MetricType = "threat_count"
	MetricTypeIncidentCount      MetricType = "incident_count"
	MetricTypeVulnerabilityCount MetricType = "vulnerability_count"
	MetricTypeComplianceScore    MetricType = "compliance_score"
)

func ParseMetricType(s string) (MetricType, error) {
	switch t := MetricType(s); t {
	case MetricTypeSecurityScore,
		MetricTypeRiskLevel,
		MetricTypeThreatCount,
		MetricTypeIncidentCount,
		MetricTypeVulnerabilityCount,
		MetricTypeComplianceScore:
		return t, nil
	}
	return "", fmt.Errorf("%w: metric type %q", ErrInvalidValue, s)
}

// SecurityMetric is one observation of the append-only metric time series.
type SecurityMetric struct {
	ID          int64
	Type        MetricType
	Value       float64
	Category    string
	Description string
	RecordedAt  time.Time
	CreatedAt   time.Time
}

type MetricFilter struct {
	Type  *MetricType
	Since *time.Time
	Limit int
}
