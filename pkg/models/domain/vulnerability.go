package domain

import (
	"fmt"
	"slices"
	"time"
)

type VulnerabilityStatus string

const (
	VulnerabilityStatusOpen          VulnerabilityStatus = "open"
	VulnerabilityStatusInProgress    VulnerabilityStatus = "in_progress"
	VulnerabilityStatusResolved      VulnerabilityStatus = "resolved"
	VulnerabilityStatusAcceptedRisk  VulnerabilityStatus = "accepted_risk"
	VulnerabilityStatusFalsePositive VulnerabilityStatus = "false_positive"
)

// OpenVulnerabilityStatuses are the statuses counted as open on the dashboard.
var OpenVulnerabilityStatuses = []VulnerabilityStatus{
	VulnerabilityStatusOpen,
	VulnerabilityStatusInProgress,
}

func ParseVulnerabilityStatus(s string) (VulnerabilityStatus, error) {
	switch st := VulnerabilityStatus(s); st {
	case VulnerabilityStatusOpen,
		VulnerabilityStatusInProgress,
		VulnerabilityStatusResolved,
		VulnerabilityStatusAcceptedRisk,
		VulnerabilityStatusFalsePositive:
		return st, nil
	}
	return "", fmt.Errorf("%w: vulnerability status %q", ErrInvalidValue, s)
}

func (s VulnerabilityStatus) IsOpen() bool {
	return slices.Contains(OpenVulnerabilityStatuses, s)
}

type Vulnerability struct {
	ID               int64
	Title            string
	Description      string
	CVEID            string
	CVSSScore        *float64
	Severity         Severity
	Status           VulnerabilityStatus
	AssetName        string
	AssetType        string
	Source           string
	DiscoveredAt     time.Time
	ResolvedAt       *time.Time
	SLADeadline      *time.Time // advisory only
	RemediationNotes string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// VulnerabilityUpdate carries the fields a client may change; nil means unset.
type VulnerabilityUpdate struct {
	Status           *VulnerabilityStatus
	RemediationNotes *string
	ResolvedAt       *time.Time
	SLADeadline      *time.Time
}

func (v *Vulnerability) Apply(u VulnerabilityUpdate) {
	if u.Status != nil {
		v.Status = *u.Status
	}
	if u.RemediationNotes != nil {
		v.RemediationNotes = *u.RemediationNotes
	}
	if u.ResolvedAt != nil {
		t := *u.ResolvedAt
		v.ResolvedAt = &t
	}
	if u.SLADeadline != nil {
		t := *u.SLADeadline
		v.SLADeadline = &t
	}
}

type VulnerabilityFilter struct {
	Page
	Severity *Severity
	Status   *VulnerabilityStatus
}

// VulnerabilityCriteria selects vulnerabilities for counting. Empty fields match everything.
type VulnerabilityCriteria struct {
	Severity *Severity
	Statuses []VulnerabilityStatus
}
