package domain

import (
	"fmt"
	"time"
)

type FrameworkType string

const (
	FrameworkTypeISO27001 FrameworkType = "iso_27001"
	FrameworkTypeNISTCSF  FrameworkType = "nist_csf"
	FrameworkTypeSOC2     FrameworkType = "soc_2"
	FrameworkTypeGDPR     FrameworkType = "gdpr"
	FrameworkTypeHIPAA    FrameworkType = "hipaa"
	FrameworkTypePCIDSS   FrameworkType = "pci_dss"
)

func ParseFrameworkType(s string) (FrameworkType, error) {
	switch t := FrameworkType(s); t {
	case FrameworkTypeISO27001,
		FrameworkTypeNISTCSF,
		FrameworkTypeSOC2,
		FrameworkTypeGDPR,
		FrameworkTypeHIPAA,
		FrameworkTypePCIDSS:
		return t, nil
	}
	return "", fmt.Errorf("%w: framework type %q", ErrInvalidValue, s)
}

type ControlStatus string

const (
	ControlStatusCompliant          ControlStatus = "compliant"
	ControlStatusNonCompliant       ControlStatus = "non_compliant"
	ControlStatusPartiallyCompliant ControlStatus = "partially_compliant"
	ControlStatusNotApplicable      ControlStatus = "not_applicable"
	ControlStatusNotAssessed        ControlStatus = "not_assessed"
)

func ParseControlStatus(s string) (ControlStatus, error) {
	switch st := ControlStatus(s); st {
	case ControlStatusCompliant,
		ControlStatusNonCompliant,
		ControlStatusPartiallyCompliant,
		ControlStatusNotApplicable,
		ControlStatusNotAssessed:
		return st, nil
	}
	return "", fmt.Errorf("%w: control status %q", ErrInvalidValue, s)
}

type ComplianceFramework struct {
	ID             int64
	Name           string
	Type           FrameworkType
	Version        string
	Description    string
	OverallScore   float64
	LastAssessedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Controls       []ComplianceControl
}

type ComplianceControl struct {
	ID               int64
	FrameworkID      int64 // immutable after creation
	ControlID        string
	Title            string
	Description      string
	Status           ControlStatus
	Evidence         string
	RemediationNotes string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ControlUpdate has no framework field: a control never moves between frameworks.
type ControlUpdate struct {
	Status           *ControlStatus
	Evidence         *string
	RemediationNotes *string
}

func (c *ComplianceControl) Apply(u ControlUpdate) {
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.Evidence != nil {
		c.Evidence = *u.Evidence
	}
	if u.RemediationNotes != nil {
		c.RemediationNotes = *u.RemediationNotes
	}
}

// ComplianceAssessment is an append-only snapshot of a scoring run.
type ComplianceAssessment struct {
	ID                   int64
	FrameworkID          int64
	AssessedAt           time.Time
	OverallScore         float64
	CompliantControls    int
	NonCompliantControls int
	TotalControls        int
	AssessorName         string
	Notes                string
	CreatedAt            time.Time
}
