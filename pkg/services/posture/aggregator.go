package posture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

type VulnerabilityCounter interface {
	Count(ctx context.Context, criteria domain.VulnerabilityCriteria) (int64, error)
}

type IncidentCounter interface {
	Count(ctx context.Context, criteria domain.IncidentCriteria) (int64, error)
}

type FrameworkCounter interface {
	CountFrameworks(ctx context.Context, minScore *float64) (int64, error)
}

type MetricReader interface {
	Latest(ctx context.Context, metricType domain.MetricType) (*domain.SecurityMetric, error)
	ListSince(ctx context.Context, metricType domain.MetricType, since time.Time) ([]domain.SecurityMetric, error)
}

// Aggregator composes the read-only dashboard views. It never writes.
type Aggregator interface {
	Posture(ctx context.Context) (domain.SecurityPosture, error)
	Stats(ctx context.Context) (domain.DashboardStats, error)
}

type aggregator struct {
	vulnerabilities VulnerabilityCounter
	incidents       IncidentCounter
	frameworks      FrameworkCounter
	metrics         MetricReader
	settings        domain.PostureSettings
	now             func() time.Time
}

type Option func(*aggregator)

// WithClock overrides the time source used for the trend window.
func WithClock(now func() time.Time) Option {
	return func(a *aggregator) {
		a.now = now
	}
}

func NewAggregator(
	vulnerabilities VulnerabilityCounter,
	incidents IncidentCounter,
	frameworks FrameworkCounter,
	metrics MetricReader,
	settings domain.PostureSettings,
	opts ...Option,
) Aggregator {
	a := &aggregator{
		vulnerabilities: vulnerabilities,
		incidents:       incidents,
		frameworks:      frameworks,
		metrics:         metrics,
		settings:        settings,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var (
	criticalSeverity    = domain.SeverityCritical
	inactiveIncidents   = domain.InactiveIncidentStatuses
	openVulnerabilities = domain.OpenVulnerabilityStatuses
)

func (a *aggregator) Posture(ctx context.Context) (domain.SecurityPosture, error) {
	logger := zerolog.Ctx(ctx)

	securityScore, err := a.latestOr(ctx, domain.MetricTypeSecurityScore, a.settings.DefaultSecurityScore)
	if err != nil {
		return domain.SecurityPosture{}, err
	}
	complianceScore, err := a.latestOr(ctx, domain.MetricTypeComplianceScore, a.settings.DefaultComplianceScore)
	if err != nil {
		return domain.SecurityPosture{}, err
	}

	criticalVulns, err := a.vulnerabilities.Count(ctx, domain.VulnerabilityCriteria{
		Severity: &criticalSeverity,
		Statuses: openVulnerabilities,
	})
	if err != nil {
		return domain.SecurityPosture{}, fmt.Errorf("count critical vulnerabilities: %w", err)
	}
	criticalIncidents, err := a.incidents.Count(ctx, domain.IncidentCriteria{
		Severity:        &criticalSeverity,
		ExcludeStatuses: inactiveIncidents,
	})
	if err != nil {
		return domain.SecurityPosture{}, fmt.Errorf("count critical incidents: %w", err)
	}
	openVulns, err := a.vulnerabilities.Count(ctx, domain.VulnerabilityCriteria{
		Statuses: openVulnerabilities,
	})
	if err != nil {
		return domain.SecurityPosture{}, fmt.Errorf("count open vulnerabilities: %w", err)
	}
	activeIncidents, err := a.incidents.Count(ctx, domain.IncidentCriteria{
		ExcludeStatuses: inactiveIncidents,
	})
	if err != nil {
		return domain.SecurityPosture{}, fmt.Errorf("count active incidents: %w", err)
	}

	since := a.now().UTC().Add(-a.settings.TrendWindow)
	observations, err := a.metrics.ListSince(ctx, domain.MetricTypeSecurityScore, since)
	if err != nil {
		return domain.SecurityPosture{}, fmt.Errorf("load score trend: %w", err)
	}
	trend := make([]domain.TrendPoint, 0, len(observations))
	for _, m := range observations {
		trend = append(trend, domain.TrendPoint{Date: m.RecordedAt, Value: m.Value})
	}

	p := domain.SecurityPosture{
		OverallScore:        securityScore,
		RiskLevel:           ClassifyRisk(securityScore),
		CriticalAlerts:      criticalVulns + criticalIncidents,
		OpenVulnerabilities: openVulns,
		ActiveIncidents:     activeIncidents,
		ComplianceScore:     complianceScore,
		TrendData:           trend,
	}

	logger.Debug().
		Float64("score", p.OverallScore).
		Str("risk_level", string(p.RiskLevel)).
		Int64("critical_alerts", p.CriticalAlerts).
		Msg("posture computed")

	return p, nil
}

func (a *aggregator) Stats(ctx context.Context) (domain.DashboardStats, error) {
	var s domain.DashboardStats
	var err error

	if s.TotalVulnerabilities, err = a.vulnerabilities.Count(ctx, domain.VulnerabilityCriteria{}); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("count vulnerabilities: %w", err)
	}
	if s.CriticalVulnerabilities, err = a.vulnerabilities.Count(ctx, domain.VulnerabilityCriteria{
		Severity: &criticalSeverity,
	}); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("count critical vulnerabilities: %w", err)
	}
	if s.OpenIncidents, err = a.incidents.Count(ctx, domain.IncidentCriteria{
		ExcludeStatuses: inactiveIncidents,
	}); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("count open incidents: %w", err)
	}
	if s.CriticalIncidents, err = a.incidents.Count(ctx, domain.IncidentCriteria{
		Severity: &criticalSeverity,
	}); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("count critical incidents: %w", err)
	}
	if s.ComplianceFrameworks, err = a.frameworks.CountFrameworks(ctx, nil); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("count frameworks: %w", err)
	}
	threshold := a.settings.CompliantThreshold
	if s.CompliantFrameworks, err = a.frameworks.CountFrameworks(ctx, &threshold); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("count compliant frameworks: %w", err)
	}
	if s.SecurityScore, err = a.latestOr(ctx, domain.MetricTypeSecurityScore, a.settings.DefaultSecurityScore); err != nil {
		return domain.DashboardStats{}, err
	}
	if s.ComplianceScore, err = a.latestOr(ctx, domain.MetricTypeComplianceScore, a.settings.DefaultComplianceScore); err != nil {
		return domain.DashboardStats{}, err
	}

	return s, nil
}

func (a *aggregator) latestOr(ctx context.Context, metricType domain.MetricType, fallback float64) (float64, error) {
	m, err := a.metrics.Latest(ctx, metricType)
	if errors.Is(err, domain.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return 0, fmt.Errorf("latest %s: %w", metricType, err)
	}
	return m.Value, nil
}
