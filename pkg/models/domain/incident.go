package domain

import (
	"fmt"
	"slices"
	"time"
)

type IncidentType string

const (
	IncidentTypeDataBreach         IncidentType = "data_breach"
	IncidentTypeMalware            IncidentType = "malware"
	IncidentTypePhishing           IncidentType = "phishing"
	IncidentTypeDDoS               IncidentType = "ddos"
	IncidentTypeUnauthorizedAccess IncidentType = "unauthorized_access"
	IncidentTypeInsiderThreat      IncidentType = "insider_threat"
	IncidentTypeOther              IncidentType = "other"
)

func ParseIncidentType(s string) (IncidentType, error) {
	switch t := IncidentType(s); t {
	case IncidentTypeDataBreach,
		IncidentTypeMalware,
		IncidentTypePhishing,
		IncidentTypeDDoS,
		IncidentTypeUnauthorizedAccess,
		IncidentTypeInsiderThreat,
		IncidentTypeOther:
		return t, nil
	}
	return "", fmt.Errorf("%w: incident type %q", ErrInvalidValue, s)
}

type IncidentStatus string

const (
	IncidentStatusDetected      IncidentStatus = "detected"
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusContained     IncidentStatus = "contained"
	IncidentStatusResolved      IncidentStatus = "resolved"
	IncidentStatusClosed        IncidentStatus = "closed"
)

func ParseIncidentStatus(s string) (IncidentStatus, error) {
	switch st := IncidentStatus(s); st {
	case IncidentStatusDetected,
		IncidentStatusInvestigating,
		IncidentStatusContained,
		IncidentStatusResolved,
		IncidentStatusClosed:
		return st, nil
	}
	return "", fmt.Errorf("%w: incident status %q", ErrInvalidValue, s)
}

// InactiveIncidentStatuses are the statuses no longer counted as active on the
// dashboard. Only resolved is terminal here; closed incidents that never went
// through resolved are still counted.
var InactiveIncidentStatuses = []IncidentStatus{IncidentStatusResolved}

func (s IncidentStatus) IsActive() bool {
	return !slices.Contains(InactiveIncidentStatuses, s)
}

type Incident struct {
	ID                    int64
	Title                 string
	Description           string
	Type                  IncidentType
	Status                IncidentStatus
	Severity              Severity
	DetectedAt            *time.Time
	ContainedAt           *time.Time
	ResolvedAt            *time.Time
	ResponseTimeMinutes   *int64
	ResolutionTimeMinutes *int64
	AffectedAssets        string
	RootCause             string
	LessonsLearned        string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type IncidentUpdate struct {
	Status         *IncidentStatus
	ContainedAt    *time.Time
	ResolvedAt     *time.Time
	RootCause      *string
	LessonsLearned *string
}

type IncidentFilter struct {
	Page
	Status   *IncidentStatus
	Severity *Severity
}

// IncidentCriteria selects incidents for counting. Empty fields match everything.
type IncidentCriteria struct {
	Severity        *Severity
	ExcludeStatuses []IncidentStatus
}
