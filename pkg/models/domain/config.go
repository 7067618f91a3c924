package domain

import (
	"net"
	"time"
)

// Config is built once at startup and handed to whichever component needs a section of it.
type Config struct {
	App      AppSettings      `mapstructure:"app"`
	Server   ServerSettings   `mapstructure:"server"`
	Database DatabaseSettings `mapstructure:"database"`
	Posture  PostureSettings  `mapstructure:"posture"`
	SLA      SLASettings      `mapstructure:"sla"`
	Workflow WorkflowSettings `mapstructure:"workflow"`
}

type AppSettings struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Debug   bool   `mapstructure:"debug"`
}

type ServerSettings struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type DatabaseSettings struct {
	Path              string        `mapstructure:"path"`
	ConnectMaxElapsed time.Duration `mapstructure:"connect_max_elapsed"`
}

// PostureSettings holds the read-path policy of the dashboard.
type PostureSettings struct {
	DefaultSecurityScore   float64       `mapstructure:"default_security_score"`
	DefaultComplianceScore float64       `mapstructure:"default_compliance_score"`
	TrendWindow            time.Duration `mapstructure:"trend_window"`
	CompliantThreshold     float64       `mapstructure:"compliant_threshold"`
}

// SLASettings maps severity to remediation days. Zero disables the deadline.
type SLASettings struct {
	CriticalDays int `mapstructure:"critical"`
	HighDays     int `mapstructure:"high"`
	MediumDays   int `mapstructure:"medium"`
	LowDays      int `mapstructure:"low"`
}

// WorkflowSettings configures background jobs. A zero interval disables the job.
type WorkflowSettings struct {
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`
}

func (s SLASettings) Deadline(sev Severity, from time.Time) *time.Time {
	var days int
	switch sev {
	case SeverityCritical:
		days = s.CriticalDays
	case SeverityHigh:
		days = s.HighDays
	case SeverityMedium:
		days = s.MediumDays
	case SeverityLow:
		days = s.LowDays
	}
	if days <= 0 {
		return nil
	}
	d := from.AddDate(0, 0, days)
	return &d
}

func DefaultPostureSettings() PostureSettings {
	return PostureSettings{
		DefaultSecurityScore:   75.0,
		DefaultComplianceScore: 0.0,
		TrendWindow:            30 * 24 * time.Hour,
		CompliantThreshold:     80.0,
	}
}

func (s ServerSettings) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}
