package store

import (
	"database/sql"
	"time"
)

type ComplianceFramework struct {
	ID             int64
	Name           string
	FrameworkType  string
	Version        sql.NullString
	Description    sql.NullString
	OverallScore   float64
	LastAssessedAt sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ComplianceControl struct {
	ID               int64
	FrameworkID      int64
	ControlID        string
	Title            string
	Description      sql.NullString
	Status           string
	Evidence         sql.NullString
	RemediationNotes sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type ComplianceAssessment struct {
	ID                   int64
	FrameworkID          int64
	AssessedAt           time.Time
	OverallScore         float64
	CompliantControls    int64
	NonCompliantControls int64
	TotalControls        int64
	AssessorName         sql.NullString
	Notes                sql.NullString
	CreatedAt            time.Time
}
