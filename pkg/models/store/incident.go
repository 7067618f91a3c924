package store

import (
	"database/sql"
	"time"
)

type Incident struct {
	ID                    int64
	Title                 string
	Description           sql.NullString
	IncidentType          string
	Status                string
	Severity              string
	DetectedAt            sql.NullTime
	ContainedAt           sql.NullTime
	ResolvedAt            sql.NullTime
	ResponseTimeMinutes   sql.NullInt64
	ResolutionTimeMinutes sql.NullInt64
	AffectedAssets        sql.NullString
	RootCause             sql.NullString
	LessonsLearned        sql.NullString
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
