package api

import "time"

type ComplianceControl struct {
	ID               int64  `json:"id"`
	FrameworkID      int64  `json:"framework_id"`
	ControlID        string `json:"control_id"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	Status           string `json:"status"`
	Evidence         string `json:"evidence,omitempty"`
	RemediationNotes string `json:"remediation_notes,omitempty"`
}

type ComplianceFramework struct {
	ID             int64               `json:"id"`
	Name           string              `json:"name"`
	FrameworkType  string              `json:"framework_type"`
	Version        string              `json:"version,omitempty"`
	Description    string              `json:"description,omitempty"`
	OverallScore   float64             `json:"overall_score"`
	LastAssessedAt *time.Time          `json:"last_assessed_at"`
	Controls       []ComplianceControl `json:"controls"`
}

type ComplianceFrameworkCreate struct {
	Name          string `json:"name"`
	FrameworkType string `json:"framework_type"`
	Version       string `json:"version"`
	Description   string `json:"description"`
}

type ComplianceControlCreate struct {
	ControlID   string `json:"control_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type ComplianceControlUpdate struct {
	Status           *string `json:"status"`
	Evidence         *string `json:"evidence"`
	RemediationNotes *string `json:"remediation_notes"`
}

type ComplianceAssessment struct {
	ID                   int64     `json:"id"`
	FrameworkID          int64     `json:"framework_id"`
	AssessedAt           time.Time `json:"assessed_at"`
	OverallScore         float64   `json:"overall_score"`
	CompliantControls    int       `json:"compliant_controls"`
	NonCompliantControls int       `json:"non_compliant_controls"`
	TotalControls        int       `json:"total_controls"`
	AssessorName         string    `json:"assessor_name,omitempty"`
	Notes                string    `json:"notes,omitempty"`
}

type ComplianceAssessmentCreate struct {
	FrameworkID          int64   `json:"framework_id"`
	OverallScore         float64 `json:"overall_score"`
	CompliantControls    int     `json:"compliant_controls"`
	NonCompliantControls int     `json:"non_compliant_controls"`
	TotalControls        int     `json:"total_controls"`
	AssessorName         string  `json:"assessor_name"`
	Notes                string  `json:"notes"`
}

// AssessRequest asks the server to snapshot the framework's current controls.
type AssessRequest struct {
	AssessorName string `json:"assessor_name"`
	Notes        string `json:"notes"`
}
